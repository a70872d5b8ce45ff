// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/study-engine/pkg/types"
)

// mockPageParser returns canned text per page index.
type mockPageParser struct {
	texts []string
	err   error
	calls int
}

func (m *mockPageParser) ParsePage(_ context.Context, _ []byte) (string, error) {
	i := m.calls
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if i < len(m.texts) {
		return m.texts[i], nil
	}
	return "", nil
}

// mockOCR returns canned OCR output.
type mockOCR struct {
	text   string
	err    error
	called bool
}

func (m *mockOCR) Convert(_ string) (string, error) {
	m.called = true
	return m.text, m.err
}

// fakeSplit installs a splitter producing n dummy pages, restoring the
// real one on cleanup.
func fakeSplit(t *testing.T, n int) {
	t.Helper()
	orig := splitPDF
	splitPDF = func(_ []byte) ([][]byte, error) {
		pages := make([][]byte, n)
		for i := range pages {
			pages[i] = []byte("%PDF page")
		}
		return pages, nil
	}
	t.Cleanup(func() { splitPDF = orig })
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func manyWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func TestProcessPlainText(t *testing.T) {
	text := manyWords(80)
	path := writeTestFile(t, "notes.txt", text)

	ext, err := Processor{}.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if ext.Status != types.ExtractionOK {
		t.Errorf("status = %q, want ok", ext.Status)
	}
	if ext.WordCount != 80 {
		t.Errorf("word count = %d, want 80", ext.WordCount)
	}
	if len(ext.MethodsUsed) != 1 || ext.MethodsUsed[0] != "text" {
		t.Errorf("methods = %v", ext.MethodsUsed)
	}
}

func TestProcessPlainTextThinIsWarning(t *testing.T) {
	path := writeTestFile(t, "notes.md", "just a few words here")

	ext, err := Processor{}.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if ext.Status != types.ExtractionWarning {
		t.Errorf("status = %q, want warning", ext.Status)
	}
	if ext.Message == "" {
		t.Error("warning should carry a message")
	}
}

func TestProcessEmptyFileIsError(t *testing.T) {
	path := writeTestFile(t, "empty.txt", "   \n ")

	ext, err := Processor{}.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if ext.Status != types.ExtractionError {
		t.Errorf("status = %q, want error", ext.Status)
	}
}

func TestProcessUnsupportedType(t *testing.T) {
	path := writeTestFile(t, "slides.pptx", "data")
	if _, err := (Processor{}).Process(context.Background(), path); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestProcessPDFTranscribesPages(t *testing.T) {
	fakeSplit(t, 2)
	parser := &mockPageParser{texts: []string{manyWords(40), manyWords(40)}}
	path := writeTestFile(t, "doc.pdf", "%PDF fake")

	ext, err := Processor{Pages: parser}.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if ext.Status != types.ExtractionOK {
		t.Errorf("status = %q, want ok", ext.Status)
	}
	if ext.PageCount != 2 || ext.ExtractedPages != 2 {
		t.Errorf("pages = %d/%d, want 2/2", ext.ExtractedPages, ext.PageCount)
	}
	if !strings.Contains(ext.Text, "<!-- page 1 -->") || !strings.Contains(ext.Text, "<!-- page 2 -->") {
		t.Error("page markers missing from text")
	}
	if parser.calls != 2 {
		t.Errorf("parser calls = %d, want 2", parser.calls)
	}
}

func TestProcessPDFCapsPages(t *testing.T) {
	fakeSplit(t, 30)
	parser := &mockPageParser{texts: []string{manyWords(60)}}
	path := writeTestFile(t, "doc.pdf", "%PDF fake")

	p := Processor{Pages: parser, Cfg: types.DocumentConfig{MaxPages: 5}}
	ext, err := p.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if ext.PageCount != 30 {
		t.Errorf("page count = %d, want 30 (full document)", ext.PageCount)
	}
	if parser.calls != 5 {
		t.Errorf("parser calls = %d, want 5 (capped)", parser.calls)
	}
}

func TestProcessPDFFallsBackToOCR(t *testing.T) {
	fakeSplit(t, 1)
	parser := &mockPageParser{texts: []string{""}}
	ocr := &mockOCR{text: manyWords(120)}
	path := writeTestFile(t, "scan.pdf", "%PDF fake")

	p := Processor{Pages: parser, OCR: ocr}
	ext, err := p.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !ocr.called {
		t.Fatal("OCR not attempted for empty transcription")
	}
	if ext.Status != types.ExtractionOK {
		t.Errorf("status = %q, want ok after OCR", ext.Status)
	}
	if len(ext.MethodsUsed) != 2 || ext.MethodsUsed[1] != "ocr" {
		t.Errorf("methods = %v, want pdf-pages then ocr", ext.MethodsUsed)
	}
}

func TestProcessPDFOCRFailureKeepsTranscription(t *testing.T) {
	fakeSplit(t, 1)
	parser := &mockPageParser{texts: []string{"a handful of words only"}}
	ocr := &mockOCR{err: errors.New("no container runtime")}
	path := writeTestFile(t, "scan.pdf", "%PDF fake")

	p := Processor{Pages: parser, OCR: ocr}
	ext, err := p.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if ext.Status != types.ExtractionWarning {
		t.Errorf("status = %q, want warning", ext.Status)
	}
	if !strings.Contains(ext.Text, "handful") {
		t.Error("transcribed text lost")
	}
}

func TestProcessPDFParserError(t *testing.T) {
	fakeSplit(t, 1)
	parser := &mockPageParser{err: errors.New("model unavailable")}
	path := writeTestFile(t, "doc.pdf", "%PDF fake")

	if _, err := (Processor{Pages: parser}).Process(context.Background(), path); err == nil {
		t.Fatal("expected error when page parsing fails")
	}
}
