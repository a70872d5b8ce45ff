// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout (default 15s). One unreachable
	// source must not stall the whole pipeline.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "study-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call the text-generation API.
type AIConfig struct {
	// Model is the preferred model identifier.
	Model string `json:"model" yaml:"model"`

	// FallbackModels are tried in order when the preferred model is
	// rate-limited or unavailable.
	FallbackModels []string `json:"fallback_models,omitempty" yaml:"fallback_models,omitempty"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ScoringConfig carries the relevance-scoring constants. The defaults are
// empirically chosen, not derived; they are configuration, not hard truths.
type ScoringConfig struct {
	// WeightDecay is subtracted from 1.0 per keyword position (default 0.15).
	WeightDecay float64 `json:"weight_decay" yaml:"weight_decay"`

	// TitleMultiplier rewards a keyword appearing in the title (default 2.0).
	TitleMultiplier float64 `json:"title_multiplier" yaml:"title_multiplier"`

	// BodyMultiplier rewards a keyword appearing in the body (default 1.5).
	BodyMultiplier float64 `json:"body_multiplier" yaml:"body_multiplier"`

	// FragmentMultiplier rewards a fragment of a multi-word keyword
	// appearing anywhere (default 0.8).
	FragmentMultiplier float64 `json:"fragment_multiplier" yaml:"fragment_multiplier"`

	// MinFragmentLen is the minimum word length counted for fragment
	// credit (default 4).
	MinFragmentLen int `json:"min_fragment_len" yaml:"min_fragment_len"`

	// NeutralScore is returned when no keywords are supplied (default 0.5).
	NeutralScore float64 `json:"neutral_score" yaml:"neutral_score"`

	// Relevance label thresholds (defaults 0.8 / 0.6 / 0.4).
	HighlyRelevantMin float64 `json:"highly_relevant_min" yaml:"highly_relevant_min"`
	VeryRelevantMin   float64 `json:"very_relevant_min" yaml:"very_relevant_min"`
	RelevantMin       float64 `json:"relevant_min" yaml:"relevant_min"`
}

// DefaultScoring returns the scoring constants used when none are configured.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		WeightDecay:        0.15,
		TitleMultiplier:    2.0,
		BodyMultiplier:     1.5,
		FragmentMultiplier: 0.8,
		MinFragmentLen:     4,
		NeutralScore:       0.5,
		HighlyRelevantMin:  0.8,
		VeryRelevantMin:    0.6,
		RelevantMin:        0.4,
	}
}

// DiscoveryConfig holds settings for the discovery stage.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxPapers, MaxVideos, and MaxResources cap the ranked output per
	// collection (defaults 10, 10, 12).
	MaxPapers    int `json:"max_papers" yaml:"max_papers"`
	MaxVideos    int `json:"max_videos" yaml:"max_videos"`
	MaxResources int `json:"max_resources" yaml:"max_resources"`

	// StrategyDelay is the pause between successive strategy dispatches to
	// the same adapter type, a rate-limit courtesy (default 1s).
	StrategyDelay time.Duration `json:"strategy_delay" yaml:"strategy_delay"`

	// EnableArxiv controls whether the arXiv adapter is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableSemanticScholar controls whether the Semantic Scholar adapter is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// EnablePubMed controls whether the PubMed adapter may be used; the
	// adapter still only runs when the topic looks life-sciences related.
	EnablePubMed bool `json:"enable_pubmed" yaml:"enable_pubmed"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// NCBIAPIKey is an optional key for the PubMed E-utilities.
	NCBIAPIKey string `json:"ncbi_api_key,omitempty" yaml:"ncbi_api_key,omitempty"`

	// Scoring carries the relevance-scoring constants.
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`
}

// DocumentConfig holds settings for the document-processing stage.
type DocumentConfig struct {
	HTTPConfig `yaml:",inline"`
	AIConfig   `yaml:",inline"`

	// MaxPages bounds how many pages are processed per document (default 20).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// UploadsDir is where fetched and uploaded PDFs are stored.
	UploadsDir string `json:"uploads_dir" yaml:"uploads_dir"`

	// OCRImage is the container image piped PDFs through when text
	// extraction yields too little (default "ocr-tesseract:latest").
	OCRImage string `json:"ocr_image" yaml:"ocr_image"`

	// FetchDelay is the pause between consecutive PDF downloads (default 1s).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`
}

// StudyConfig holds settings for study-material generation.
type StudyConfig struct {
	AIConfig `yaml:",inline"`

	// MaxSummaryChars bounds the document prefix sent for summarization (default 8000).
	MaxSummaryChars int `json:"max_summary_chars" yaml:"max_summary_chars"`

	// MaxStudyChars bounds the prefix sent for flashcards, quizzes, and Q&A (default 6000).
	MaxStudyChars int `json:"max_study_chars" yaml:"max_study_chars"`

	// NumFlashcards is the default flashcard count (default 8).
	NumFlashcards int `json:"num_flashcards" yaml:"num_flashcards"`

	// NumQuizQuestions is the default quiz length (default 5).
	NumQuizQuestions int `json:"num_quiz_questions" yaml:"num_quiz_questions"`
}

// SessionConfig holds settings for the session store.
type SessionConfig struct {
	// DataDir is the directory holding the sessions database.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// BindAddr is the listen address (default ":8080").
	BindAddr string `json:"bind_addr" yaml:"bind_addr"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Document  DocumentConfig  `json:"document" yaml:"document"`
	Study     StudyConfig     `json:"study" yaml:"study"`
	Session   SessionConfig   `json:"session" yaml:"session"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
