package lexicon

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoSource is returned by Ensure when the file is missing and no URL is configured.
var ErrNoSource = errors.New("lexicon missing and no download url configured")

// HTTPClient is used for downloads; tests may replace it.
var HTTPClient = &http.Client{Timeout: 60 * time.Second}

// Ensure makes sure a lexicon exists at path, downloading it from url when it
// does not. Gzip and tar.gz payloads are unpacked; for archives the first .json
// member is used.
func Ensure(ctx context.Context, path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if url == "" {
		return fmt.Errorf("%w: %s", ErrNoSource, path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "lexigrade-cli")
	resp, err := HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	// Same directory as path so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lexicon-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := extract(resp.Body, url, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func extract(body io.Reader, url string, dst io.Writer) error {
	br := bufio.NewReader(body)
	magic, _ := br.Peek(2)
	if len(magic) < 2 || magic[0] != 0x1f || magic[1] != 0x8b {
		_, err := io.Copy(dst, br)
		return err
	}

	gz, err := gzip.NewReader(br)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	if !strings.HasSuffix(url, ".tgz") && !strings.HasSuffix(url, ".tar.gz") {
		_, err := io.Copy(dst, gz)
		return err
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return errors.New("no json file found in downloaded archive")
		}
		if err != nil {
			return fmt.Errorf("read tar archive: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && strings.HasSuffix(hdr.Name, ".json") {
			if _, err := io.Copy(dst, tr); err != nil {
				return fmt.Errorf("write lexicon: %w", err)
			}
			return nil
		}
	}
}
