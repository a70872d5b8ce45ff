// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractionStatus summarizes how much usable text a document yielded.
type ExtractionStatus string

const (
	ExtractionOK      ExtractionStatus = "ok"
	ExtractionWarning ExtractionStatus = "warning"
	ExtractionError   ExtractionStatus = "error"
)

// Extraction is the result of pulling text out of a document.
type Extraction struct {
	// Text is the assembled document text with per-page markers.
	Text string `json:"text" yaml:"text"`

	// PageCount is the total number of pages in the source document.
	PageCount int `json:"page_count" yaml:"page_count"`

	// ExtractedPages counts pages that yielded meaningful text.
	ExtractedPages int `json:"extracted_pages" yaml:"extracted_pages"`

	// WordCount is the whitespace-delimited word count of Text.
	WordCount int `json:"word_count" yaml:"word_count"`

	// MethodsUsed lists the extraction methods that contributed
	// (e.g. "text", "llm_parse", "ocr").
	MethodsUsed []string `json:"methods_used" yaml:"methods_used"`

	// Status is ok when the document yielded enough text for study
	// materials, warning when content is thin, error when nothing usable
	// came out.
	Status ExtractionStatus `json:"status" yaml:"status"`

	// Message is a human-readable account of what happened.
	Message string `json:"message" yaml:"message"`
}
