package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetWord returns existing word id or inserts a new word and returns its id.
func CreateOrGetWord(db DBExecutor, word, lemma, language string) (int64, error) {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return 0, fmt.Errorf("word must be non-empty")
	}
	if lemma == "" {
		lemma = trimmed
	}

	var id int64
	err := db.QueryRow(`INSERT INTO words (word, lemma, language) VALUES (?, ?, ?)
		ON CONFLICT(word, lemma, language) DO UPDATE SET word = excluded.word
		RETURNING id`, trimmed, lemma, language).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert word: %w", err)
	}
	return id, nil
}

// CreateOrGetSource returns existing source id or inserts a new source and returns its id.
func CreateOrGetSource(db DBExecutor, sourceType, title, url, meta string) (int64, error) {
	sourceType = strings.TrimSpace(sourceType)
	if sourceType == "" {
		return 0, fmt.Errorf("sourceType must be non-empty")
	}

	const maxRetries = 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		var id int64
		err := db.QueryRow(`SELECT id FROM sources WHERE source_type = ? AND title = ? AND url = ?`,
			sourceType, title, url).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		res, err := db.Exec(`INSERT INTO sources (source_type, title, url, meta) VALUES (?, ?, ?, ?)`,
			sourceType, title, url, meta)
		if err != nil {
			// A concurrent writer inserted the same source; select again.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}
	return 0, fmt.Errorf("could not create or get source after %d retries", maxRetries)
}

// LinkWordToSource records a word's statistics within a source. Re-analyzing
// a source replaces the previous values.
func LinkWordToSource(db DBExecutor, wordID, sourceID int64, count int, frequency float64, localLevel string) error {
	if wordID <= 0 {
		return fmt.Errorf("wordID must be positive")
	}
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	_, err := db.Exec(`INSERT INTO word_sources (word_id, source_id, occurrence_count, frequency, local_level, first_seen_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(word_id, source_id) DO UPDATE SET
	  occurrence_count = excluded.occurrence_count,
	  frequency = excluded.frequency,
	  local_level = excluded.local_level`,
		wordID, sourceID, count, frequency, localLevel, time.Now().UTC())
	return err
}

// DeleteSourceLinks removes every word link of a source.
func DeleteSourceLinks(db DBExecutor, sourceID int64) error {
	if sourceID <= 0 {
		return fmt.Errorf("sourceID must be positive")
	}
	_, err := db.Exec(`DELETE FROM word_sources WHERE source_id = ?`, sourceID)
	return err
}

// UpdateWordClassification stores the upstream classifier's verdict for a word.
func UpdateWordClassification(db DBExecutor, wordID int64, level string, confidence float64, rank int) error {
	if wordID <= 0 {
		return fmt.Errorf("wordID must be positive")
	}
	_, err := db.Exec(`UPDATE words SET cefr_level = ?, confidence = ?, frequency_rank = ? WHERE id = ?`,
		level, confidence, rank, wordID)
	return err
}

// UnclassifiedWords returns words that have no CEFR level yet.
func UnclassifiedWords(db DBExecutor) ([]Word, error) {
	rows, err := db.Query(`SELECT id, word, lemma, language FROM words WHERE IFNULL(cefr_level, '') = '' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Word
	for rows.Next() {
		var w Word
		if err := rows.Scan(&w.ID, &w.Word, &w.Lemma, &w.Language); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWordsBySource returns the words of a source, most frequent first.
func GetWordsBySource(db DBExecutor, sourceID int64) ([]SourceWord, error) {
	rows, err := db.Query(`SELECT w.id, w.word, w.lemma, w.language, w.cefr_level, w.confidence, w.frequency_rank,
		ws.occurrence_count, ws.frequency, ws.local_level
		FROM words w JOIN word_sources ws ON ws.word_id = w.id
		WHERE ws.source_id = ?
		ORDER BY ws.occurrence_count DESC, ws.id`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceWord
	for rows.Next() {
		var sw SourceWord
		var level sql.NullString
		var conf sql.NullFloat64
		var rank sql.NullInt64
		if err := rows.Scan(&sw.ID, &sw.Word.Word, &sw.Lemma, &sw.Language, &level, &conf, &rank,
			&sw.OccurrenceCount, &sw.Frequency, &sw.LocalLevel); err != nil {
			return nil, err
		}
		sw.CEFRLevel = level.String
		sw.Confidence = conf.Float64
		sw.FrequencyRank = int(rank.Int64)
		out = append(out, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveAnalysis inserts an analysis row. A RunID is generated when empty and
// CreatedAt defaults to now. It returns the stored analysis.
func SaveAnalysis(db DBExecutor, a Analysis) (Analysis, error) {
	if a.SourceID <= 0 {
		return a, fmt.Errorf("sourceID must be positive")
	}
	if a.RunID == "" {
		a.RunID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	// Stored as text; a single zone keeps ORDER BY created_at chronological.
	a.CreatedAt = a.CreatedAt.UTC()

	var level, score, adj, conf, rank interface{}
	if a.Scored() {
		level, score, adj = a.DifficultyLevel, a.DifficultyScore, a.RarityAdjustment
		conf, rank = a.AverageConfidence, a.AverageFrequencyRank
	}
	res, err := db.Exec(`INSERT INTO analyses (run_id, source_id, total_words, unique_words, difficulty_level,
		difficulty_score, rarity_adjustment, average_confidence, average_frequency_rank, breakdown, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID, a.SourceID, a.TotalWords, a.UniqueWords, level, score, adj, conf, rank, a.Breakdown, a.CreatedAt)
	if err != nil {
		return a, fmt.Errorf("insert analysis: %w", err)
	}
	a.ID, err = res.LastInsertId()
	return a, err
}

// LatestAnalysis returns the most recent analysis of a source, or sql.ErrNoRows.
func LatestAnalysis(db DBExecutor, sourceID int64) (Analysis, error) {
	var a Analysis
	var level sql.NullString
	var score, adj, conf, rank sql.NullFloat64
	err := db.QueryRow(`SELECT id, run_id, source_id, total_words, unique_words, difficulty_level, difficulty_score,
		rarity_adjustment, average_confidence, average_frequency_rank, breakdown, created_at
		FROM analyses WHERE source_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, sourceID).Scan(
		&a.ID, &a.RunID, &a.SourceID, &a.TotalWords, &a.UniqueWords, &level, &score,
		&adj, &conf, &rank, &a.Breakdown, &a.CreatedAt)
	if err != nil {
		return Analysis{}, err
	}
	a.DifficultyLevel = level.String
	a.DifficultyScore = score.Float64
	a.RarityAdjustment = adj.Float64
	a.AverageConfidence = conf.Float64
	a.AverageFrequencyRank = rank.Float64
	return a, nil
}
