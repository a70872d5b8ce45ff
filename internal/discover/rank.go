// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/study-engine/pkg/types"
)

// topTierEducationalDomains are recognized curated learning platforms
// that earn the full source-trust bonus for resources.
var topTierEducationalDomains = []string{
	"khanacademy.org",
	"ocw.mit.edu",
	"coursera.org",
	"edx.org",
	"wikipedia.org",
	"britannica.com",
}

// Rank orders records by descending rank key. The sort is stable, so ties
// keep their first-seen order from deduplication. Capping must happen
// strictly after ranking so top results are never dropped before
// comparison.
func Rank(records []types.CandidateRecord, keywords []string) []types.CandidateRecord {
	ranked := make([]types.CandidateRecord, len(records))
	copy(ranked, records)

	keys := make([]float64, len(ranked))
	for i, r := range ranked {
		keys[i] = rankKey(r, keywords)
	}

	idx := make([]int, len(ranked))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] > keys[idx[b]]
	})

	out := make([]types.CandidateRecord, len(ranked))
	for i, j := range idx {
		out[i] = ranked[j]
	}
	return out
}

// Cap truncates a ranked list to at most n records.
func Cap(ranked []types.CandidateRecord, n int) []types.CandidateRecord {
	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}

// rankKey combines the relevance score with secondary signals that differ
// per collection: recency and citations for papers, educational tier and
// keyword hits for videos, quality tier and source trust for resources.
func rankKey(r types.CandidateRecord, keywords []string) float64 {
	switch r.Collection {
	case types.CollectionVideo:
		return videoRankKey(r, keywords)
	case types.CollectionResource:
		return resourceRankKey(r, keywords)
	default:
		return paperRankKey(r)
	}
}

func paperRankKey(r types.CandidateRecord) float64 {
	key := r.RelevanceScore

	if r.Year >= 2020 {
		bonus := float64(r.Year-2020) * 0.05
		if bonus > 0.2 {
			bonus = 0.2
		}
		if bonus < 0 {
			bonus = 0
		}
		key += bonus
	}

	switch {
	case r.Citations > 100:
		key += 0.1
	case r.Citations > 50:
		key += 0.05
	}
	return key
}

func videoRankKey(r types.CandidateRecord, keywords []string) float64 {
	var key float64
	switch r.EducationalTier {
	case types.TierExcellent:
		key = 4
	case types.TierVeryGood:
		key = 3
	case types.TierGood:
		key = 2
	default:
		key = 1
	}

	title := strings.ToLower(r.Title)
	for _, kw := range keywords {
		if k := strings.ToLower(strings.TrimSpace(kw)); k != "" && strings.Contains(title, k) {
			key += 0.5
		}
	}
	return key
}

func resourceRankKey(r types.CandidateRecord, keywords []string) float64 {
	var key float64
	switch r.QualityTier {
	case types.TierExcellent:
		key = 4
	case types.TierHigh:
		key = 3
	case types.TierGood:
		key = 2
	default:
		key = 1
	}

	key += float64(sourceTrustBonus(r))

	title := strings.ToLower(r.Title)
	desc := strings.ToLower(r.Description)
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		switch {
		case strings.Contains(title, k):
			key += 1.0
		case strings.Contains(desc, k):
			key += 0.5
		}
	}
	return key
}

// sourceTrustBonus grades the hosting domain: 2 for a recognized top-tier
// educational platform, 1 for a .edu or .org host, 0 otherwise.
func sourceTrustBonus(r types.CandidateRecord) int {
	host := recordHost(r)
	if host == "" {
		return 0
	}
	for _, d := range topTierEducationalDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return 2
		}
	}
	if strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".org") {
		return 1
	}
	return 0
}

func recordHost(r types.CandidateRecord) string {
	if r.URL != "" && r.URL != types.URLUnknown {
		if u, err := url.Parse(r.URL); err == nil && u.Host != "" {
			return strings.ToLower(strings.TrimPrefix(u.Host, "www."))
		}
	}
	return strings.ToLower(r.SourceName)
}
