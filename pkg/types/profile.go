// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// KeywordProfile is produced once per document and drives discovery.
// Order is significant in both keyword lists: index 0 is the most important
// term and scoring weight decays with position.
type KeywordProfile struct {
	// Topic is a short human-readable subject label.
	Topic string `json:"topic" yaml:"topic"`

	// ResearchKeywords holds up to 6 high-precision technical terms,
	// most important first.
	ResearchKeywords []string `json:"research_keywords" yaml:"research_keywords"`

	// AllKeywords holds up to 10 terms, a superset of ResearchKeywords
	// that adds broader conceptual terms.
	AllKeywords []string `json:"all_keywords" yaml:"all_keywords"`
}

// IsEmpty reports whether the profile carries no searchable terms.
// Discovery short-circuits to an empty result on an empty profile.
func (p KeywordProfile) IsEmpty() bool {
	return len(p.ResearchKeywords) == 0 && len(p.AllKeywords) == 0
}
