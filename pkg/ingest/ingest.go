// Package ingest analyzes many documents concurrently and stores the results.
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/japaniel/lexigrade/pkg/cefr"
	"github.com/japaniel/lexigrade/pkg/db"
	"github.com/japaniel/lexigrade/pkg/difficulty"
	"github.com/japaniel/lexigrade/pkg/lexicon"
	"github.com/japaniel/lexigrade/pkg/vocab"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Document is one text to analyze.
type Document struct {
	Title string
	Text  string
	// SourceType defaults to "script".
	SourceType string
	URL        string
	Meta       string
}

// Processed is the analysis of a document before it is stored.
type Processed struct {
	Doc    Document
	Script vocab.ScriptAnalysis
	Ranked []vocab.WordFrequency
	// Result is nil when no lexicon was configured or the document had no words.
	Result *difficulty.Result
}

// Summary describes one stored document.
type Summary struct {
	Title    string
	SourceID int64
	RunID    string
	// Links is the number of distinct words linked to the source.
	Links  int
	Script vocab.ScriptAnalysis
	Result *difficulty.Result
}

// Ingester analyzes documents and persists sources, words and analyses.
type Ingester struct {
	DB *sql.DB
	// Lexicon, when set, scores every document and classifies new words.
	Lexicon  *lexicon.Index
	Analyzer vocab.Analyzer
	// Language is stored with every word.
	Language  string
	BatchSize int
	// Logger is used for informational messages. nil means no logging.
	Logger *slog.Logger
	// OnProgress is called with the number of committed documents and the total.
	OnProgress func(done, total int)

	// Concurrency settings
	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates a new Ingester. lex may be nil.
func NewIngester(conn *sql.DB, lex *lexicon.Index) *Ingester {
	return &Ingester{
		DB:        conn,
		Lexicon:   lex,
		Language:  "en",
		BatchSize: 50,
		Workers:   4,
	}
}

type processedDoc struct {
	Index int
	Processed
	Error error
}

// Process runs the analysis of a single document.
func (ig *Ingester) Process(doc Document) (Processed, error) {
	ft, ranked := ig.Analyzer.Ranked(doc.Text)
	cats := vocab.Categorize(ranked)
	if cats == nil {
		cats = vocab.EmptyCategories()
	}
	p := Processed{
		Doc: doc,
		Script: vocab.ScriptAnalysis{
			Title:       doc.Title,
			TotalWords:  ft.Total(),
			UniqueWords: ft.Len(),
			Categories:  cats,
		},
		Ranked: ranked,
	}
	if ig.Lexicon == nil {
		return p, nil
	}
	res, err := ig.Lexicon.Score(ranked)
	switch {
	case errors.Is(err, difficulty.ErrNoWords):
		return p, nil
	case err != nil:
		return p, fmt.Errorf("score %q: %w", doc.Title, err)
	}
	p.Result = &res
	return p, nil
}

// Ingest analyzes docs on a worker pool and stores them through a BatchWriter
// in input order. The returned summaries are in input order too. The first
// error stops the run.
func (ig *Ingester) Ingest(ctx context.Context, docs []Document) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	total := len(docs)
	if total == 0 {
		return nil, nil
	}

	start := time.Now()
	summaries := make([]Summary, total)

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(ig.Workers, ig.Workers*2)
	} else {
		wp = NewWorkerPool(ig.Workers, ig.Workers*2)
	}
	resultCh := make(chan processedDoc, ig.Workers*2)
	closedResultCh := false
	doneCh := make(chan error, 1)

	bw := NewBatchWriter(ig.DB, ig.BatchSize, 100*time.Millisecond)
	var progressMu sync.Mutex
	committed := 0
	bw.OnCommit = func(n int) {
		progressMu.Lock()
		committed += n
		done := committed
		progressMu.Unlock()
		if ig.OnProgress != nil {
			ig.OnProgress(done, total)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		wp.Close()
		if !closedResultCh {
			close(resultCh)
		}
		_ = bw.Close()
	}()

	wp.Start(ctx)

	// Consumer: restore input order and hand each document to the writer.
	go func() {
		defer close(doneCh)
		buffer := make(map[int]processedDoc)
		nextIdx := 0

		for {
			var res processedDoc
			var ok bool
			select {
			case <-ctx.Done():
				doneCh <- ctx.Err()
				return
			case res, ok = <-resultCh:
			}
			if !ok {
				if nextIdx < total {
					doneCh <- fmt.Errorf("ingest stopped after %d of %d documents", nextIdx, total)
					return
				}
				doneCh <- nil
				return
			}
			if res.Error != nil {
				cancel()
				doneCh <- res.Error
				return
			}
			buffer[res.Index] = res

			for {
				item, ok := buffer[nextIdx]
				if !ok {
					break
				}
				delete(buffer, nextIdx)

				err := bw.Submit(func(ctx context.Context, ex db.DBExecutor) error {
					s, err := Save(ex, ig.Language, item.Processed)
					if err != nil {
						return err
					}
					summaries[item.Index] = s
					return nil
				})
				if err != nil {
					cancel()
					doneCh <- err
					return
				}
				nextIdx++
			}
		}
	}()

Loop:
	for i, doc := range docs {
		idx, doc := i, doc
		job := func(ctx context.Context) error {
			p, err := ig.Process(doc)
			select {
			case resultCh <- processedDoc{Index: idx, Processed: p, Error: err}:
			case <-ctx.Done():
			}
			return nil
		}

		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, ctx.Err()) || errors.Is(err, ErrPoolClosed) {
				break Loop
			}
			return nil, fmt.Errorf("submit document %d: %w", idx, err)
		}
	}

	// All jobs have delivered once the pool is closed.
	wp.Close()
	close(resultCh)
	closedResultCh = true

	consumerErr := <-doneCh

	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	if consumerErr == nil {
		consumerErr = ctx.Err()
	}
	if consumerErr != nil {
		return nil, consumerErr
	}

	if ig.Lexicon != nil {
		n, err := ig.Lexicon.ProcessUpdates(ig.DB)
		if err != nil {
			return summaries, fmt.Errorf("classify new words: %w", err)
		}
		if ig.Logger != nil {
			ig.Logger.Info("classified new words", "count", n)
		}
	}
	if ig.Logger != nil {
		ig.Logger.Info("ingest complete", "documents", total, "elapsed", time.Since(start))
	}
	return summaries, nil
}

// Save stores one processed document: its source, a word link per distinct
// word and an analysis row. Links from an earlier analysis of the same source
// are dropped first.
func Save(ex db.DBExecutor, language string, p Processed) (Summary, error) {
	sourceType := p.Doc.SourceType
	if sourceType == "" {
		sourceType = "script"
	}
	sourceID, err := db.CreateOrGetSource(ex, sourceType, p.Doc.Title, p.Doc.URL, p.Doc.Meta)
	if err != nil {
		return Summary{}, fmt.Errorf("persist source %q: %w", p.Doc.Title, err)
	}

	if err := db.DeleteSourceLinks(ex, sourceID); err != nil {
		return Summary{}, fmt.Errorf("clear links of source %d: %w", sourceID, err)
	}
	levels := localLevels(p.Script.Categories)
	for _, wf := range p.Ranked {
		wordID, err := db.CreateOrGetWord(ex, wf.Word, wf.Lemma, language)
		if err != nil {
			return Summary{}, fmt.Errorf("persist word %s: %w", wf.Word, err)
		}
		if err := db.LinkWordToSource(ex, wordID, sourceID, wf.Count, wf.Frequency, levels[wf.Word]); err != nil {
			return Summary{}, fmt.Errorf("link word %d: %w", wordID, err)
		}
	}

	a := db.Analysis{
		SourceID:    sourceID,
		TotalWords:  p.Script.TotalWords,
		UniqueWords: p.Script.UniqueWords,
	}
	var breakdown []byte
	if r := p.Result; r != nil {
		a.DifficultyLevel = r.DifficultyLevel.String()
		a.DifficultyScore = r.DifficultyScore
		a.RarityAdjustment = r.RarityAdjustment
		a.AverageConfidence = r.Metadata.AverageConfidence
		a.AverageFrequencyRank = r.Metadata.AverageFrequencyRank
		breakdown, err = json.Marshal(r.Breakdown)
	} else {
		breakdown, err = json.Marshal(categorySizes(p.Script.Categories))
	}
	if err != nil {
		return Summary{}, fmt.Errorf("encode breakdown: %w", err)
	}
	a.Breakdown = string(breakdown)

	saved, err := db.SaveAnalysis(ex, a)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Title:    p.Doc.Title,
		SourceID: sourceID,
		RunID:    saved.RunID,
		Links:    len(p.Ranked),
		Script:   p.Script,
		Result:   p.Result,
	}, nil
}

func localLevels(cats []vocab.DifficultyCategory) map[string]string {
	out := make(map[string]string)
	for _, c := range cats {
		for _, w := range c.Words {
			out[w.Word] = c.Level.String()
		}
	}
	return out
}

// categorySizes is the breakdown stored for unscored runs: words per
// percentile category.
func categorySizes(cats []vocab.DifficultyCategory) map[cefr.Level]int {
	out := make(map[cefr.Level]int, len(cats))
	for _, c := range cats {
		out[c.Level] = len(c.Words)
	}
	return out
}
