// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover queries heterogeneous external sources for study
// material related to a keyword profile, normalizes their responses into
// one record schema, scores each record for topical relevance, removes
// near-duplicates, and produces a ranked, capped list.
package discover

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/study-engine/pkg/types"
)

// Adapter integrates one external source. Each adapter is isolated so it
// can fail independently: a network or parse failure from one source must
// never abort the whole discovery call.
type Adapter interface {
	Name() string
	Collection() types.CollectionType
	Search(ctx context.Context, strategy Strategy, cfg types.DiscoveryConfig) ([]types.CandidateRecord, error)
}

// Gated is implemented by adapters that only apply to certain keyword
// profiles (e.g. the biomedical index only runs for life-sciences topics).
type Gated interface {
	Applicable(profile types.KeywordProfile) bool
}

// SourceErrorKind classifies adapter failures.
type SourceErrorKind string

const (
	// SourceUnavailable means the network call failed or returned a
	// non-success status.
	SourceUnavailable SourceErrorKind = "unavailable"

	// MalformedResponse means the payload could not be parsed into the
	// expected shape.
	MalformedResponse SourceErrorKind = "malformed"
)

// SourceError is the typed failure an adapter returns. The orchestrator
// folds these into warnings and zero records rather than propagating them.
type SourceError struct {
	Source string
	Kind   SourceErrorKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// unavailable wraps a network-level failure.
func unavailable(source string, err error) *SourceError {
	return &SourceError{Source: source, Kind: SourceUnavailable, Err: err}
}

// malformed wraps a payload that did not decode into the expected shape.
func malformed(source string, err error) *SourceError {
	return &SourceError{Source: source, Kind: MalformedResponse, Err: err}
}

// Strategy is a named query term list. The orchestrator runs several
// strategies of different breadth per collection to diversify results.
type Strategy struct {
	Name  string
	Terms []string
}

// QueryText joins the strategy terms into a single search string.
func (s Strategy) QueryText() string {
	return strings.Join(s.Terms, " ")
}

// IsEmpty reports whether the strategy carries no terms.
func (s Strategy) IsEmpty() bool {
	for _, t := range s.Terms {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}

// Strategies derives the query strategies from a keyword profile:
//
//   - "specific": the top 3 research keywords, the most precise terms.
//   - "conceptual": keywords 4-6 from the broader list, a wider net.
//   - "combined": the first word of the topic plus the top 2 research keywords.
//
// Strategies that end up empty are dropped.
func Strategies(profile types.KeywordProfile) []Strategy {
	var out []Strategy

	if s := (Strategy{Name: "specific", Terms: firstN(profile.ResearchKeywords, 3)}); !s.IsEmpty() {
		out = append(out, s)
	}

	if len(profile.AllKeywords) > 3 {
		terms := profile.AllKeywords[3:min(6, len(profile.AllKeywords))]
		if s := (Strategy{Name: "conceptual", Terms: terms}); !s.IsEmpty() {
			out = append(out, s)
		}
	}

	var combined []string
	if fields := strings.Fields(profile.Topic); len(fields) > 0 {
		combined = append(combined, fields[0])
	}
	combined = append(combined, firstN(profile.ResearchKeywords, 2)...)
	if s := (Strategy{Name: "combined", Terms: combined}); !s.IsEmpty() {
		out = append(out, s)
	}

	return out
}

func firstN(terms []string, n int) []string {
	if len(terms) < n {
		n = len(terms)
	}
	return terms[:n]
}

// lifeSciencesVocab is the fixed vocabulary used to decide whether the
// biomedical index applies. Substring matching against topic and keywords
// is a heuristic, not a classifier; misclassification is acceptable.
var lifeSciencesVocab = []string{
	"biolog", "biomed", "medicine", "medical", "clinical", "health",
	"gene", "genom", "protein", "enzyme", "cell", "physiolog",
	"disease", "cancer", "drug", "pharma", "neuro", "immun",
	"bacteria", "virus", "vaccine", "dna", "rna", "photosynthesis",
	"ecolog", "organism", "anatomy",
}

// LooksLifeSciences reports whether the profile's topic or keywords match
// the life-sciences vocabulary.
func LooksLifeSciences(profile types.KeywordProfile) bool {
	haystack := strings.ToLower(profile.Topic + " " + strings.Join(profile.AllKeywords, " ") +
		" " + strings.Join(profile.ResearchKeywords, " "))
	for _, term := range lifeSciencesVocab {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
