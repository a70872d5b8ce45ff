// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/study-engine/internal/httputil"
	"github.com/pdiddy/study-engine/pkg/types"
)

// PubMed E-utilities endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	pubmedSearchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedSummaryBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

// PubMedAdapter queries the NCBI biomedical literature index. It only
// applies to profiles whose topic or keywords look life-sciences related.
type PubMedAdapter struct {
	Client *http.Client
	APIKey string
}

// Name returns the adapter identifier.
func (a *PubMedAdapter) Name() string { return "pubmed" }

// Collection returns the collection this adapter feeds.
func (a *PubMedAdapter) Collection() types.CollectionType { return types.CollectionPaper }

// Applicable gates the adapter on the life-sciences vocabulary.
func (a *PubMedAdapter) Applicable(profile types.KeywordProfile) bool {
	return LooksLifeSciences(profile)
}

// Search runs the two-step E-utilities flow: esearch resolves the query
// to article IDs, esummary fetches their metadata.
func (a *PubMedAdapter) Search(ctx context.Context, strategy Strategy, cfg types.DiscoveryConfig) ([]types.CandidateRecord, error) {
	q := strategy.QueryText()
	if q == "" {
		return nil, nil
	}

	maxResults := cfg.MaxPapers
	if maxResults <= 0 {
		maxResults = 10
	}

	ids, err := a.searchIDs(ctx, q, maxResults, cfg)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return a.fetchSummaries(ctx, ids, cfg)
}

func (a *PubMedAdapter) searchIDs(ctx context.Context, q string, maxResults int, cfg types.DiscoveryConfig) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {q},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(maxResults)},
	}
	if a.APIKey != "" {
		params.Set("api_key", a.APIKey)
	}

	body, err := a.get(ctx, pubmedSearchBase+"?"+params.Encode(), cfg)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sr pubmedSearchResponse
	if err := json.NewDecoder(body).Decode(&sr); err != nil {
		return nil, malformed(a.Name(), err)
	}
	return sr.ESearchResult.IDList, nil
}

func (a *PubMedAdapter) fetchSummaries(ctx context.Context, ids []string, cfg types.DiscoveryConfig) ([]types.CandidateRecord, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}
	if a.APIKey != "" {
		params.Set("api_key", a.APIKey)
	}

	body, err := a.get(ctx, pubmedSummaryBase+"?"+params.Encode(), cfg)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sr pubmedSummaryResponse
	if err := json.NewDecoder(body).Decode(&sr); err != nil {
		return nil, malformed(a.Name(), err)
	}

	var records []types.CandidateRecord
	for _, id := range sr.Result.UIDs {
		raw, ok := sr.Result.Docs[id]
		if !ok {
			continue
		}
		var doc pubmedDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, malformed(a.Name(), err)
		}
		if doc.Title == "" {
			continue
		}

		r := types.CandidateRecord{
			Title:       doc.Title,
			SourceName:  "pubmed",
			URL:         "https://pubmed.ncbi.nlm.nih.gov/" + id + "/",
			Description: doc.Source,
			Collection:  types.CollectionPaper,
			Year:        pubDateYear(doc.PubDate),
		}
		for _, au := range doc.Authors {
			r.Authors = append(r.Authors, au.Name)
		}
		records = append(records, r)
	}
	return records, nil
}

func (a *PubMedAdapter) get(ctx context.Context, reqURL string, cfg types.DiscoveryConfig) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, unavailable(a.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, a.Client, req, 0)
	if err != nil {
		return nil, unavailable(a.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, unavailable(a.Name(), fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	return resp.Body, nil
}

// pubDateYear pulls the year from PubMed's loose date strings
// (e.g. "2023 Mar 14", "2021 Nov-Dec").
func pubDateYear(pubDate string) int {
	fields := strings.Fields(pubDate)
	if len(fields) == 0 {
		return 0
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return year
}

// PubMed E-utilities JSON structures. The esummary result object keys
// documents by their UID, so docs decode lazily.
type pubmedSearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedSummaryResponse struct {
	Result pubmedResult `json:"result"`
}

type pubmedResult struct {
	UIDs []string `json:"uids"`
	Docs map[string]json.RawMessage
}

// UnmarshalJSON separates the "uids" array from the per-UID documents.
func (r *pubmedResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Docs = make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		if k == "uids" {
			if err := json.Unmarshal(v, &r.UIDs); err != nil {
				return err
			}
			continue
		}
		r.Docs[k] = v
	}
	return nil
}

type pubmedDoc struct {
	Title   string         `json:"title"`
	PubDate string         `json:"pubdate"`
	Source  string         `json:"source"`
	Authors []pubmedAuthor `json:"authors"`
}

type pubmedAuthor struct {
	Name string `json:"name"`
}
