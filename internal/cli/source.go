package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/japaniel/lexigrade/pkg/fetch"
	"github.com/japaniel/lexigrade/pkg/ingest"
	"github.com/japaniel/lexigrade/pkg/lexicon"
	"github.com/japaniel/lexigrade/pkg/vocab"
)

// readDocument loads the text named by args[0] ("-" is stdin) or fetches url.
func (a *app) readDocument(cmd *cobra.Command, args []string, url, title string) (ingest.Document, error) {
	if url != "" {
		if len(args) > 0 {
			return ingest.Document{}, errors.New("give either a file or --url, not both")
		}
		a.logger.Info("fetching article", "url", url)
		page, err := fetch.Article(cmd.Context(), nil, url)
		if err != nil {
			return ingest.Document{}, err
		}
		a.logger.Debug("article extracted", "title", page.Title, "chars", humanize.Comma(int64(len(page.Text))))
		if title == "" {
			title = page.Title
		}
		return ingest.Document{
			Title:      title,
			Text:       page.Text,
			SourceType: "website_article",
			URL:        url,
			Meta:       page.Site,
		}, nil
	}

	if len(args) == 0 {
		return ingest.Document{}, errors.New("a file argument or --url is required")
	}
	path := args[0]
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return ingest.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if title == "" {
		title = titleFromPath(path)
	}
	return ingest.Document{Title: title, Text: string(data), SourceType: "script", Meta: path}, nil
}

func titleFromPath(path string) string {
	if path == "-" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// analyzer returns the tokenizer pipeline for the configured language.
func (a *app) analyzer() (vocab.Analyzer, error) {
	if a.cfg.Language != "ja" {
		return vocab.Analyzer{}, nil
	}
	jt, err := vocab.NewJapaneseTokenizer()
	if err != nil {
		return vocab.Analyzer{}, fmt.Errorf("load japanese dictionary: %w", err)
	}
	return vocab.Analyzer{Tokenizer: jt, Lemmatizer: jt}, nil
}

// loadLexicon makes sure the lexicon file is present and indexes it.
func (a *app) loadLexicon(ctx context.Context) (*lexicon.Index, error) {
	lc := a.cfg.Lexicon
	if err := lexicon.Ensure(ctx, lc.Path, lc.URL); err != nil {
		return nil, err
	}
	entries, err := lexicon.Load(lc.Path)
	if err != nil {
		return nil, fmt.Errorf("load lexicon %s: %w", lc.Path, err)
	}
	ix := lexicon.NewIndex(entries)
	ix.UnknownRank = lc.UnknownRank
	ix.Logger = a.logger
	a.logger.Info("lexicon loaded", "path", lc.Path, "words", humanize.Comma(int64(ix.Len())))
	return ix, nil
}
