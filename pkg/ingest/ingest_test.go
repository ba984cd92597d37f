package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/japaniel/lexigrade/pkg/db"
	"github.com/japaniel/lexigrade/pkg/lexicon"
)

func setupDB(t *testing.T) *sql.DB {
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	return conn
}

func sampleDocs(n int) []Document {
	docs := make([]Document, n)
	for i := range docs {
		docs[i] = Document{
			Title: fmt.Sprintf("Episode %d", i),
			Text:  fmt.Sprintf("the cat sat on the mat and the dog barked %d times at episode%d", i, i),
		}
	}
	return docs
}

func TestIngestPersistsInOrder(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	ingester := NewIngester(conn, nil)
	ingester.BatchSize = 3
	ingester.Workers = 4

	var mu sync.Mutex
	var lastDone, progressTotal int
	ingester.OnProgress = func(done, total int) {
		mu.Lock()
		lastDone, progressTotal = done, total
		mu.Unlock()
	}

	docs := sampleDocs(10)
	summaries, err := ingester.Ingest(context.Background(), docs)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(summaries) != len(docs) {
		t.Fatalf("expected %d summaries, got %d", len(docs), len(summaries))
	}
	for i, s := range summaries {
		if s.Title != docs[i].Title {
			t.Fatalf("summary %d: expected title %q, got %q", i, docs[i].Title, s.Title)
		}
		if s.RunID == "" || s.SourceID == 0 {
			t.Fatalf("summary %d not persisted: %+v", i, s)
		}
		if s.Result != nil {
			t.Fatalf("expected no scored result without a lexicon")
		}
	}
	// Sources are created in input order, so their ids increase with it.
	for i := 1; i < len(summaries); i++ {
		if summaries[i].SourceID <= summaries[i-1].SourceID {
			t.Fatalf("source ids out of input order: %d then %d", summaries[i-1].SourceID, summaries[i].SourceID)
		}
	}
	if lastDone != len(docs) || progressTotal != len(docs) {
		t.Fatalf("expected final progress %d/%d, got %d/%d", len(docs), len(docs), lastDone, progressTotal)
	}

	words, err := db.GetWordsBySource(conn, summaries[0].SourceID)
	if err != nil {
		t.Fatalf("GetWordsBySource: %v", err)
	}
	if len(words) != summaries[0].Links {
		t.Fatalf("expected %d linked words, got %d", summaries[0].Links, len(words))
	}
	if words[0].Word.Word != "the" || words[0].OccurrenceCount != 3 || words[0].LocalLevel != "A1" {
		t.Fatalf("unexpected top word: %+v", words[0])
	}

	a, err := db.LatestAnalysis(conn, summaries[0].SourceID)
	if err != nil {
		t.Fatalf("LatestAnalysis: %v", err)
	}
	if a.Scored() || a.RunID != summaries[0].RunID || a.TotalWords != summaries[0].Script.TotalWords {
		t.Fatalf("unexpected stored analysis: %+v", a)
	}
	if !strings.Contains(a.Breakdown, `"A1"`) {
		t.Fatalf("expected breakdown keyed by level, got %s", a.Breakdown)
	}
}

func TestIngestWithLexicon(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	lex := lexicon.NewIndex([]lexicon.Entry{
		{Word: "the", CEFR: "A1", Confidence: 0.99, FrequencyRank: 1},
		{Word: "cat", CEFR: "A1", Confidence: 0.95, FrequencyRank: 950},
		{Word: "sat", CEFR: "A2", Confidence: 0.9, FrequencyRank: 2100},
		{Word: "mat", CEFR: "B1", Confidence: 0.8, FrequencyRank: 7800},
	})
	ingester := NewIngester(conn, lex)
	ingester.BatchSize = 2

	summaries, err := ingester.Ingest(context.Background(), []Document{
		{Title: "Cats", Text: "The cat sat on the mat."},
		{Title: "Empty", Text: "!!! ???"},
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if summaries[0].Result == nil {
		t.Fatalf("expected a scored result for a document with words")
	}
	if summaries[1].Result != nil || summaries[1].Script.TotalWords != 0 {
		t.Fatalf("expected an unscored empty document, got %+v", summaries[1])
	}

	a, err := db.LatestAnalysis(conn, summaries[0].SourceID)
	if err != nil {
		t.Fatalf("LatestAnalysis: %v", err)
	}
	if !a.Scored() || a.DifficultyLevel != summaries[0].Result.DifficultyLevel.String() {
		t.Fatalf("expected scored analysis, got %+v", a)
	}

	// Stored words were classified from the lexicon after the run.
	var level string
	if err := conn.QueryRow(`SELECT cefr_level FROM words WHERE word = ?`, "mat").Scan(&level); err != nil {
		t.Fatalf("query: %v", err)
	}
	if level != "B1" {
		t.Fatalf("expected mat classified B1, got %q", level)
	}
}

func TestIngestReanalysisReplacesLinks(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	ingester := NewIngester(conn, nil)

	first, err := ingester.Ingest(context.Background(), []Document{{Title: "Draft", Text: "cat cat dog"}})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	second, err := ingester.Ingest(context.Background(), []Document{{Title: "Draft", Text: "dog dog dog bird"}})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if first[0].SourceID != second[0].SourceID {
		t.Fatalf("expected the same source to be reused")
	}
	if first[0].RunID == second[0].RunID {
		t.Fatalf("expected a new run id per analysis")
	}

	words, err := db.GetWordsBySource(conn, second[0].SourceID)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 || words[0].Word.Word != "dog" || words[0].OccurrenceCount != 3 || words[1].Word.Word != "bird" {
		t.Fatalf("expected replaced links, got %+v", words)
	}
	a, err := db.LatestAnalysis(conn, second[0].SourceID)
	if err != nil {
		t.Fatalf("LatestAnalysis: %v", err)
	}
	if a.UniqueWords != len(words) {
		t.Fatalf("analysis counts %d unique words but %d are linked", a.UniqueWords, len(words))
	}
}

func TestIngestContextCancel(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	ingester := NewIngester(conn, nil)
	ingester.BatchSize = 10

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries, err := ingester.Ingest(ctx, sampleDocs(100))
	if len(summaries) != 0 {
		t.Errorf("Expected no summaries with cancelled context, got %d", len(summaries))
	}
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM sources`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected nothing stored, got %d sources", n)
	}
}

func TestIngestNoDocuments(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()
	summaries, err := NewIngester(conn, nil).Ingest(context.Background(), nil)
	if err != nil || summaries != nil {
		t.Fatalf("expected nil, nil; got %v, %v", summaries, err)
	}
}

func TestSaveDefaultsSourceType(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	ig := NewIngester(conn, nil)
	p, err := ig.Process(Document{Title: "Solo", Text: "one two two"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	s, err := Save(conn, "en", p)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	var st string
	if err := conn.QueryRow(`SELECT source_type FROM sources WHERE id = ?`, s.SourceID).Scan(&st); err != nil {
		t.Fatal(err)
	}
	if st != "script" {
		t.Fatalf("expected default source type script, got %q", st)
	}
}
