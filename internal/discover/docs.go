// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/study-engine/pkg/types"
)

// webSearchBase is the HTML-only DuckDuckGo endpoint, which renders
// results server-side and needs no API key. Declared as a var so tests
// can substitute an httptest server.
var webSearchBase = "https://html.duckduckgo.com/html/"

// WebResourceAdapter finds tutorials, documentation, and articles on the
// open web through an HTML search results page.
type WebResourceAdapter struct {
	Client *http.Client
}

// Name returns the adapter identifier.
func (a *WebResourceAdapter) Name() string { return "web" }

// Collection returns the collection this adapter feeds.
func (a *WebResourceAdapter) Collection() types.CollectionType { return types.CollectionResource }

// Search scrapes the results page for the strategy's terms. The query is
// biased toward instructional material by appending "tutorial".
func (a *WebResourceAdapter) Search(ctx context.Context, strategy Strategy, cfg types.DiscoveryConfig) ([]types.CandidateRecord, error) {
	q := strategy.QueryText()
	if q == "" {
		return nil, nil
	}

	maxResults := cfg.MaxResources
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{"q": {q + " tutorial"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, webSearchBase+"?"+params.Encode(), nil)
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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, malformed(a.Name(), err)
	}

	var records []types.CandidateRecord
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		href = resolveRedirect(href)
		if title == "" || href == "" {
			return true
		}

		desc := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		records = append(records, types.CandidateRecord{
			Title:        title,
			SourceName:   "web",
			URL:          href,
			Description:  desc,
			Collection:   types.CollectionResource,
			ResourceKind: classifyResource(title, href),
			QualityTier:  resourceQuality(href),
		})
		return len(records) < maxResults
	})
	return records, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links to the
// destination URL. Direct links pass through unchanged.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if dest := u.Query().Get("uddg"); dest != "" {
		return dest
	}
	if u.Scheme == "" {
		return "https:" + href
	}
	return href
}

// classifyResource labels a web hit by the strongest signal in its title
// or URL path.
func classifyResource(title, href string) string {
	lt := strings.ToLower(title + " " + href)
	switch {
	case strings.Contains(lt, "docs.") || strings.Contains(lt, "/docs") || strings.Contains(lt, "documentation"):
		return "documentation"
	case strings.Contains(lt, "course") || strings.Contains(lt, "lecture"):
		return "course"
	case strings.Contains(lt, "tutorial") || strings.Contains(lt, "guide") || strings.Contains(lt, "how to"):
		return "tutorial"
	default:
		return "article"
	}
}

// resourceQuality grades a web hit by its hosting domain using the same
// trust ladder as ranking.
func resourceQuality(href string) types.Tier {
	r := types.CandidateRecord{URL: href}
	switch sourceTrustBonus(r) {
	case 2:
		return types.TierExcellent
	case 1:
		return types.TierHigh
	default:
		return types.TierGood
	}
}
