// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document turns uploaded or fetched study material into plain
// text. PDFs are split into pages and transcribed page by page; scans
// that transcribe poorly fall back to OCR; .txt and .md files pass
// through directly. The stage degrades instead of failing: thin output
// is reported as a warning, only a fully unreadable document is an error.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/study-engine/pkg/types"
)

const (
	defaultMaxPages = 20

	// minHealthyWords is the extraction size below which the result is
	// flagged as a warning and OCR is attempted.
	minHealthyWords = 50
)

// OCRConverter recovers text from a scanned PDF file.
type OCRConverter interface {
	Convert(pdfPath string) (string, error)
}

// Processor extracts text from documents. OCR is optional; without it,
// scanned PDFs simply come back with a warning status.
type Processor struct {
	Pages PageParser
	OCR   OCRConverter
	Cfg   types.DocumentConfig
}

// splitPDF is swappable in tests, which have no real PDFs to split.
var splitPDF = splitPages

// Process extracts text from the file at path. The extension picks the
// route: .pdf goes through page transcription, .txt and .md are read
// as-is. Unsupported types return an error.
func (p Processor) Process(ctx context.Context, path string) (types.Extraction, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return p.processPDF(ctx, path)
	case ".txt", ".md":
		return p.processPlain(path)
	default:
		return types.Extraction{}, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func (p Processor) processPlain(path string) (types.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("reading %s: %w", path, err)
	}

	text := string(data)
	ext := types.Extraction{
		Text:        text,
		PageCount:   1,
		MethodsUsed: []string{"text"},
	}
	ext.ExtractedPages = 1
	return finalize(ext), nil
}

func (p Processor) processPDF(ctx context.Context, path string) (types.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("reading %s: %w", path, err)
	}

	pages, err := splitPDF(data)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("splitting %s: %w", path, err)
	}

	maxPages := p.Cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	ext := types.Extraction{
		PageCount:   len(pages),
		MethodsUsed: []string{"llm_parse"},
	}
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}

	var b strings.Builder
	for i, page := range pages {
		if ctx.Err() != nil {
			return types.Extraction{}, ctx.Err()
		}
		text, err := p.Pages.ParsePage(ctx, page)
		if err != nil {
			return types.Extraction{}, fmt.Errorf("page %d: %w", i+1, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fmt.Fprintf(&b, "<!-- page %d -->\n%s\n\n", i+1, text)
		ext.ExtractedPages++
	}
	ext.Text = b.String()

	// A near-empty transcription usually means a scanned document.
	if countWords(ext.Text) < minHealthyWords && p.OCR != nil {
		if ocrText, ocrErr := p.OCR.Convert(path); ocrErr == nil && countWords(ocrText) > countWords(ext.Text) {
			ext.Text = ocrText
			ext.MethodsUsed = append(ext.MethodsUsed, "ocr")
		}
	}

	return finalize(ext), nil
}

// finalize fills the word count and grades the extraction: no words is an
// error, a thin result is a warning, anything else is ok.
func finalize(ext types.Extraction) types.Extraction {
	ext.WordCount = countWords(ext.Text)

	switch {
	case ext.WordCount == 0:
		ext.Status = types.ExtractionError
		ext.Message = "no readable text found in document"
	case ext.WordCount < minHealthyWords:
		ext.Status = types.ExtractionWarning
		ext.Message = fmt.Sprintf("only %d words extracted; results may be unreliable", ext.WordCount)
	default:
		ext.Status = types.ExtractionOK
	}
	return ext
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

// splitPages splits raw PDF bytes into single-page PDFs.
func splitPages(data []byte) ([][]byte, error) {
	conf := model.NewDefaultConfiguration()
	pdfContext, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}

	var pages [][]byte
	for pageNum := 1; pageNum <= pdfContext.PageCount; pageNum++ {
		pageReader, err := api.ExtractPage(pdfContext, pageNum)
		if err != nil {
			return nil, err
		}
		pageData, err := io.ReadAll(pageReader)
		if err != nil {
			return nil, err
		}
		pages = append(pages, pageData)
	}
	return pages, nil
}
