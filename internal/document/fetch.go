// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/study-engine/pkg/types"
)

// pdfMagic is the signature every PDF file starts with.
var pdfMagic = []byte("%PDF")

// FetchResult holds the outcome of a batch fetch run.
type FetchResult struct {
	Downloaded int
	Failed     int
	Paths      []string
}

// Total returns the number of URLs processed.
func (r FetchResult) Total() int { return r.Downloaded + r.Failed }

// HasFailures reports whether any downloads failed.
func (r FetchResult) HasFailures() bool { return r.Failed > 0 }

// FetchPDF downloads a PDF from url into the configured uploads
// directory and returns the stored path. The payload must carry the PDF
// signature; HTML error pages served with a 200 are rejected.
func FetchPDF(ctx context.Context, client *http.Client, rawURL string, cfg types.DocumentConfig) (string, error) {
	dir := cfg.UploadsDir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	destPath := filepath.Join(dir, fetchFileName(rawURL))
	if _, err := os.Stat(destPath); err == nil {
		destPath = filepath.Join(dir, uuid.NewString()+".pdf")
	}

	// Download to a temp file, rename on success, so a partial download
	// never looks like a stored document.
	tmpFile, err := os.CreateTemp(dir, ".fetch-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(resp.Body, head); err != nil || !bytes.Equal(head, pdfMagic) {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%s did not return a PDF", rawURL)
	}

	_, copyErr := io.Copy(tmpFile, io.MultiReader(bytes.NewReader(head), resp.Body))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, nil
}

// FetchBatch downloads multiple PDFs, printing per-item status and
// continuing after individual failures. A delay between consecutive
// downloads keeps the sources happy.
func FetchBatch(ctx context.Context, client *http.Client, urls []string, cfg types.DocumentConfig, w io.Writer) FetchResult {
	var result FetchResult
	for i, u := range urls {
		if i > 0 && cfg.FetchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.FetchDelay):
			}
		}
		if ctx.Err() != nil {
			break
		}

		dest, err := FetchPDF(ctx, client, u, cfg)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", u, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "fetched: %s -> %s\n", u, dest)
		result.Downloaded++
		result.Paths = append(result.Paths, dest)
	}
	fmt.Fprintf(w, "\nFetch summary: %d downloaded, %d failed (total: %d)\n",
		result.Downloaded, result.Failed, result.Total())
	return result
}

// fetchFileName derives a stored file name from the URL's last path
// segment, falling back to a random name when the URL gives nothing
// usable.
func fetchFileName(rawURL string) string {
	base := path.Base(strings.SplitN(rawURL, "?", 2)[0])
	base = strings.TrimSuffix(base, "/")
	if base == "" || base == "." || base == "/" || !strings.HasSuffix(strings.ToLower(base), ".pdf") {
		return uuid.NewString() + ".pdf"
	}
	return base
}
