// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/pdiddy/study-engine/pkg/types"
)

// titleSimilarityThreshold is the Jaccard word-set similarity above which
// two paper titles are considered the same work.
const titleSimilarityThreshold = 0.8

// Dedupe removes near-duplicate records, keeping the first-seen instance.
// Papers compare by normalized-title similarity, videos by platform video
// ID, resources by canonical URL. A record whose comparison key is
// unknown is always kept: unknowns are never collapsed together.
//
// The paper comparison is O(n²) over survivors, acceptable for the
// bounded fan-in of a discovery request.
func Dedupe(records []types.CandidateRecord) []types.CandidateRecord {
	var survivors []types.CandidateRecord
	seenVideos := make(map[string]bool)
	seenURLs := make(map[string]bool)

	for _, r := range records {
		switch r.Collection {
		case types.CollectionVideo:
			id := videoID(r.URL)
			if id != "" && seenVideos[id] {
				continue
			}
			if id != "" {
				seenVideos[id] = true
			}

		case types.CollectionResource:
			key := canonicalURL(r.URL)
			if key != "" && seenURLs[key] {
				continue
			}
			if key != "" {
				seenURLs[key] = true
			}

		default: // papers
			words := titleWords(r.Title)
			if len(words) > 0 && hasSimilarTitle(survivors, words) {
				continue
			}
		}

		survivors = append(survivors, r)
	}
	return survivors
}

func hasSimilarTitle(survivors []types.CandidateRecord, words map[string]bool) bool {
	for _, s := range survivors {
		if s.Collection != types.CollectionPaper && s.Collection != "" {
			continue
		}
		existing := titleWords(s.Title)
		if len(existing) == 0 {
			continue
		}
		if jaccard(words, existing) > titleSimilarityThreshold {
			return true
		}
	}
	return false
}

// titleWords lower-cases the title, strips punctuation, and returns the
// set of its words. An empty map means the title gives no basis for
// comparison.
func titleWords(title string) map[string]bool {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	words := make(map[string]bool)
	for _, w := range strings.Fields(b.String()) {
		words[w] = true
	}
	return words
}

// jaccard computes |a∩b| / |a∪b| for two word sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// videoID extracts the platform-native video identifier from a URL
// ("watch?v=..." or a youtu.be path). Empty when unknown.
func videoID(raw string) string {
	if raw == "" || raw == types.URLUnknown {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if strings.Contains(u.Host, "youtu.be") {
		return strings.Trim(u.Path, "/")
	}
	return ""
}

// canonicalURL strips the query string, fragment, and trailing slash and
// lower-cases the result. Empty when the URL is unknown.
func canonicalURL(raw string) string {
	if raw == "" || raw == types.URLUnknown {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(strings.TrimRight(raw, "/"))
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.ToLower(strings.TrimRight(u.String(), "/"))
}
