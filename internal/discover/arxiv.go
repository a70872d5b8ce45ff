// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/study-engine/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivAdapter queries the arXiv preprint index.
type ArxivAdapter struct {
	Client *http.Client
}

// Name returns the adapter identifier.
func (a *ArxivAdapter) Name() string { return "arxiv" }

// Collection returns the collection this adapter feeds.
func (a *ArxivAdapter) Collection() types.CollectionType { return types.CollectionPaper }

// Search queries the arXiv Atom feed for the strategy's terms.
func (a *ArxivAdapter) Search(ctx context.Context, strategy Strategy, cfg types.DiscoveryConfig) ([]types.CandidateRecord, error) {
	q := buildArxivQuery(strategy)
	if q == "" {
		return nil, nil
	}

	maxResults := cfg.MaxPapers
	if maxResults <= 0 {
		maxResults = 10
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, unavailable(a.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, unavailable(a.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(a.Name(), fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, malformed(a.Name(), err)
	}

	var records []types.CandidateRecord
	for _, entry := range feed.Entries {
		title := strings.Join(strings.Fields(entry.Title), " ")
		if title == "" {
			continue
		}

		r := types.CandidateRecord{
			Title:       title,
			SourceName:  "arxiv",
			URL:         strings.TrimSpace(entry.ID),
			Description: strings.TrimSpace(entry.Summary),
			Collection:  types.CollectionPaper,
		}

		for _, au := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(au.Name))
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			r.Year = t.Year()
		}

		records = append(records, r)
	}
	return records, nil
}

// buildArxivQuery constructs the search_query parameter: every term is an
// all-fields clause, terms joined with AND.
func buildArxivQuery(strategy Strategy) string {
	var parts []string
	for _, term := range strategy.Terms {
		words := strings.Fields(term)
		if len(words) == 0 {
			continue
		}
		parts = append(parts, "all:"+strings.Join(words, "+"))
	}
	return strings.Join(parts, "+AND+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
