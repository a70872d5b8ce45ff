// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"math"
	"strings"

	"github.com/pdiddy/study-engine/pkg/types"
)

// Scorer computes normalized [0,1] relevance scores for candidate records.
// Earlier keywords weigh more than later ones, and title matches weigh
// more than body matches.
type Scorer struct {
	cfg types.ScoringConfig
}

// NewScorer returns a scorer using the given constants; zero-value fields
// fall back to the defaults.
func NewScorer(cfg types.ScoringConfig) Scorer {
	def := types.DefaultScoring()
	if cfg.WeightDecay == 0 {
		cfg.WeightDecay = def.WeightDecay
	}
	if cfg.TitleMultiplier == 0 {
		cfg.TitleMultiplier = def.TitleMultiplier
	}
	if cfg.BodyMultiplier == 0 {
		cfg.BodyMultiplier = def.BodyMultiplier
	}
	if cfg.FragmentMultiplier == 0 {
		cfg.FragmentMultiplier = def.FragmentMultiplier
	}
	if cfg.MinFragmentLen == 0 {
		cfg.MinFragmentLen = def.MinFragmentLen
	}
	if cfg.NeutralScore == 0 {
		cfg.NeutralScore = def.NeutralScore
	}
	if cfg.HighlyRelevantMin == 0 {
		cfg.HighlyRelevantMin = def.HighlyRelevantMin
	}
	if cfg.VeryRelevantMin == 0 {
		cfg.VeryRelevantMin = def.VeryRelevantMin
	}
	if cfg.RelevantMin == 0 {
		cfg.RelevantMin = def.RelevantMin
	}
	return Scorer{cfg: cfg}
}

// Score rates how well a title and body match the ordered keyword list.
//
// Keyword i carries weight max(0, 1 − decay·i). Per keyword, the first
// match wins: weight×2.0 for a title hit, weight×1.5 for a body hit, and
// weight×0.8 when any word (≥4 chars) of a multi-word keyword appears
// anywhere. The result is the awarded sum over the total weight, capped
// at 1.0. An empty keyword list returns the neutral score: absence of
// signal is not absence of relevance.
func (s Scorer) Score(title, body string, keywords []string) float64 {
	if len(keywords) == 0 {
		return s.cfg.NeutralScore
	}

	titleLower := strings.ToLower(title)
	bodyLower := strings.ToLower(body)
	combined := titleLower + " " + bodyLower

	var awarded, total float64
	for i, kw := range keywords {
		weight := 1.0 - s.cfg.WeightDecay*float64(i)
		if weight < 0 {
			weight = 0
		}
		total += weight

		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}

		switch {
		case strings.Contains(titleLower, k):
			awarded += weight * s.cfg.TitleMultiplier
		case strings.Contains(bodyLower, k):
			awarded += weight * s.cfg.BodyMultiplier
		case strings.Contains(k, " "):
			// Partial credit for fragments of compound terms keeps
			// recall up for paraphrased titles.
			for _, word := range strings.Fields(k) {
				if len(word) >= s.cfg.MinFragmentLen && strings.Contains(combined, word) {
					awarded += weight * s.cfg.FragmentMultiplier
					break
				}
			}
		}
	}

	if total == 0 {
		return 0.0
	}
	return math.Min(awarded/total, 1.0)
}

// Label maps a score to its human-readable relevance band.
func (s Scorer) Label(score float64) string {
	switch {
	case score >= s.cfg.HighlyRelevantMin:
		return "Highly Relevant"
	case score >= s.cfg.VeryRelevantMin:
		return "Very Relevant"
	case score >= s.cfg.RelevantMin:
		return "Relevant"
	default:
		return "Somewhat Relevant"
	}
}

// Annotate attaches relevance scores to every record in place. Papers also
// receive the human-readable label; videos and resources carry categorical
// tiers assigned by their adapters instead.
func (s Scorer) Annotate(records []types.CandidateRecord, keywords []string) {
	for i := range records {
		records[i].RelevanceScore = s.Score(records[i].Title, records[i].Description, keywords)
		if records[i].Collection == types.CollectionPaper {
			records[i].RelevanceLabel = s.Label(records[i].RelevanceScore)
		}
	}
}
