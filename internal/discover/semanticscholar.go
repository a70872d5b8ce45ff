// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/study-engine/internal/httputil"
	"github.com/pdiddy/study-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,year,publicationDate,citationCount,externalIds,url"

// SemanticScholarAdapter queries the Semantic Scholar citation graph.
// Its citation counts feed the paper ranking bonus.
type SemanticScholarAdapter struct {
	Client *http.Client
	APIKey string
}

// Name returns the adapter identifier.
func (a *SemanticScholarAdapter) Name() string { return "semantic_scholar" }

// Collection returns the collection this adapter feeds.
func (a *SemanticScholarAdapter) Collection() types.CollectionType { return types.CollectionPaper }

// Search queries the Semantic Scholar API for the strategy's terms.
func (a *SemanticScholarAdapter) Search(ctx context.Context, strategy Strategy, cfg types.DiscoveryConfig) ([]types.CandidateRecord, error) {
	q := strategy.QueryText()
	if q == "" {
		return nil, nil
	}

	maxResults := cfg.MaxPapers
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{
		"query":  {q},
		"limit":  {fmt.Sprintf("%d", maxResults)},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, unavailable(a.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if a.APIKey != "" {
		req.Header.Set("x-api-key", a.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, unavailable(a.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(a.Name(), fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, malformed(a.Name(), err)
	}

	var records []types.CandidateRecord
	for _, paper := range sr.Data {
		if paper.Title == "" {
			continue
		}

		r := types.CandidateRecord{
			Title:       paper.Title,
			SourceName:  "semantic_scholar",
			URL:         paper.URL,
			Description: paper.Abstract,
			Collection:  types.CollectionPaper,
			Citations:   paper.CitationCount,
		}

		for _, au := range paper.Authors {
			r.Authors = append(r.Authors, au.Name)
		}

		if paper.PublicationDate != "" {
			if t, parseErr := time.Parse("2006-01-02", paper.PublicationDate); parseErr == nil {
				r.Year = t.Year()
			}
		}
		if r.Year == 0 && paper.Year > 0 {
			r.Year = paper.Year
		}

		if r.URL == "" && paper.ExternalIDs.DOI != "" {
			r.URL = "https://doi.org/" + paper.ExternalIDs.DOI
		}

		records = append(records, r)
	}
	return records, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Abstract        string              `json:"abstract"`
	Year            int                 `json:"year"`
	PublicationDate string              `json:"publicationDate"`
	CitationCount   int                 `json:"citationCount"`
	URL             string              `json:"url"`
	Authors         []semanticAuthor    `json:"authors"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
