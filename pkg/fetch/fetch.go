// Package fetch downloads a web article and extracts its readable text.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// MaxBodySize caps how much HTML is read from a single page.
const MaxBodySize = 10 * 1024 * 1024

// ErrTooLarge is returned when a page exceeds MaxBodySize.
var ErrTooLarge = errors.New("response body exceeds size limit")

// DefaultClient is used when Article is given a nil client.
var DefaultClient = &http.Client{Timeout: 30 * time.Second}

// Page is the extracted content of an article.
type Page struct {
	Title  string
	Byline string
	Site   string
	Text   string
}

// Headers of a desktop Chrome; some sites answer 403 to anything else.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9,ja;q=0.8",
	"Referer":                   "https://www.google.com/",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "cross-site",
	"Upgrade-Insecure-Requests": "1",
}

// Article fetches rawURL and returns its main text.
func Article(ctx context.Context, client *http.Client, rawURL string) (Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Page{}, fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}
	if client == nil {
		client = DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("create request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > MaxBodySize {
		return Page{}, fmt.Errorf("%w: content-length %d", ErrTooLarge, resp.ContentLength)
	}

	// One extra byte tells a page of exactly MaxBodySize from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return Page{}, fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Page{}, ErrTooLarge
	}

	return Extract(SanitizeRuby(body), parsed)
}

// Extract runs readability over an HTML document.
func Extract(html []byte, pageURL *url.URL) (Page, error) {
	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("extract article: %w", err)
	}
	return Page{
		Title:  strings.TrimSpace(article.Title),
		Byline: strings.TrimSpace(article.Byline),
		Site:   article.SiteName,
		Text:   strings.TrimSpace(article.TextContent),
	}, nil
}

var (
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby drops <rt> and <rp> elements so furigana is not counted as
// words next to the kanji it annotates ("漢字かんじ").
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	return reRP.ReplaceAll(cleaned, nil)
}
