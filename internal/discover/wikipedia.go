// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/pdiddy/study-engine/internal/httputil"
	"github.com/pdiddy/study-engine/pkg/types"
)

// wikipediaAPIBase is the MediaWiki action API endpoint. Declared as a
// var so tests can substitute an httptest server.
var wikipediaAPIBase = "https://en.wikipedia.org/w/api.php"

var wikiTagRe = regexp.MustCompile(`<[^>]+>`)

// WikipediaAdapter finds encyclopedia articles through the MediaWiki
// search API. Articles always grade Excellent: curated reference content
// outranks generic web hits.
type WikipediaAdapter struct {
	Client *http.Client
}

// Name returns the adapter identifier.
func (a *WikipediaAdapter) Name() string { return "wikipedia" }

// Collection returns the collection this adapter feeds.
func (a *WikipediaAdapter) Collection() types.CollectionType { return types.CollectionResource }

// Search queries the MediaWiki search API for the strategy's terms.
func (a *WikipediaAdapter) Search(ctx context.Context, strategy Strategy, cfg types.DiscoveryConfig) ([]types.CandidateRecord, error) {
	q := strategy.QueryText()
	if q == "" {
		return nil, nil
	}

	maxResults := cfg.MaxResources
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {q},
		"srlimit":  {strconv.Itoa(maxResults)},
		"format":   {"json"},
	}
	reqURL := wikipediaAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, unavailable(a.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, unavailable(a.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(a.Name(), fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var wr wikiResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, malformed(a.Name(), err)
	}

	var records []types.CandidateRecord
	for _, hit := range wr.Query.Search {
		if hit.Title == "" {
			continue
		}
		records = append(records, types.CandidateRecord{
			Title:        hit.Title,
			SourceName:   "wikipedia",
			URL:          "https://en.wikipedia.org/wiki/" + url.PathEscape(hit.Title),
			Description:  wikiTagRe.ReplaceAllString(hit.Snippet, ""),
			Collection:   types.CollectionResource,
			ResourceKind: "encyclopedia",
			QualityTier:  types.TierExcellent,
		})
	}
	return records, nil
}

// MediaWiki search API JSON structures.
type wikiResponse struct {
	Query struct {
		Search []wikiHit `json:"search"`
	} `json:"query"`
}

type wikiHit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
