// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/study-engine/pkg/types"
)

// youtubeSearchBase is the YouTube results page. Declared as a var so
// tests can substitute an httptest server.
var youtubeSearchBase = "https://www.youtube.com/results"

// ytInitialDataMarker precedes the embedded JSON blob on the results page.
const ytInitialDataMarker = "var ytInitialData = "

// educationalChannels are channels known for curated teaching content.
// A match promotes the video to the top educational tier.
var educationalChannels = []string{
	"khan academy",
	"crashcourse",
	"crash course",
	"3blue1brown",
	"mit opencourseware",
	"ted-ed",
	"veritasium",
	"kurzgesagt",
	"scishow",
	"minutephysics",
	"stanford",
	"professor",
}

// educationalTitleWords suggest instructional framing in the video title.
var educationalTitleWords = []string{
	"explained", "tutorial", "lecture", "introduction", "intro to",
	"course", "lesson", "how to", "basics", "fundamentals", "crash course",
}

// YouTubeAdapter finds educational videos by scraping the public results
// page: the page embeds its full result set as a ytInitialData JSON blob,
// which avoids an API key requirement.
type YouTubeAdapter struct {
	Client *http.Client
}

// Name returns the adapter identifier.
func (a *YouTubeAdapter) Name() string { return "youtube" }

// Collection returns the collection this adapter feeds.
func (a *YouTubeAdapter) Collection() types.CollectionType { return types.CollectionVideo }

// Search scrapes the results page for the strategy's terms.
func (a *YouTubeAdapter) Search(ctx context.Context, strategy Strategy, cfg types.DiscoveryConfig) ([]types.CandidateRecord, error) {
	q := strategy.QueryText()
	if q == "" {
		return nil, nil
	}

	maxResults := cfg.MaxVideos
	if maxResults <= 0 {
		maxResults = 10
	}

	reqURL := youtubeSearchBase + "?search_query=" + url.QueryEscape(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, unavailable(a.Name(), fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, unavailable(a.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(a.Name(), fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	page, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, unavailable(a.Name(), err)
	}

	blob, err := extractInitialData(string(page))
	if err != nil {
		return nil, malformed(a.Name(), err)
	}

	var data ytInitialData
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, malformed(a.Name(), err)
	}

	var records []types.CandidateRecord
	for _, v := range data.videos() {
		if v.VideoID == "" || v.Title.text() == "" {
			continue
		}
		title := v.Title.text()
		channel := v.OwnerText.text()
		r := types.CandidateRecord{
			Title:           title,
			SourceName:      "youtube",
			URL:             "https://www.youtube.com/watch?v=" + v.VideoID,
			Description:     v.snippet(),
			Collection:      types.CollectionVideo,
			Channel:         channel,
			Duration:        v.LengthText.SimpleText,
			ViewCount:       v.ViewCountText.SimpleText,
			EducationalTier: educationalTier(title, channel),
		}
		records = append(records, r)
		if len(records) >= maxResults {
			break
		}
	}
	return records, nil
}

// extractInitialData pulls the ytInitialData JSON object out of the page
// source by brace matching from the marker.
func extractInitialData(page string) (string, error) {
	start := strings.Index(page, ytInitialDataMarker)
	if start < 0 {
		return "", fmt.Errorf("ytInitialData marker not found")
	}
	rest := page[start+len(ytInitialDataMarker):]
	if !strings.HasPrefix(rest, "{") {
		return "", fmt.Errorf("ytInitialData is not an object")
	}

	depth := 0
	inString := false
	escaped := false
	for i, c := range rest {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[:i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced ytInitialData object")
}

// educationalTier grades a video from its title and channel. A known
// educational channel is the strongest signal, instructional title words
// the next, view-of-nothing defaults to Fair.
func educationalTier(title, channel string) types.Tier {
	lt := strings.ToLower(title)
	lc := strings.ToLower(channel)

	for _, ch := range educationalChannels {
		if strings.Contains(lc, ch) {
			return types.TierExcellent
		}
	}

	hits := 0
	for _, w := range educationalTitleWords {
		if strings.Contains(lt, w) {
			hits++
		}
	}
	switch {
	case hits >= 2:
		return types.TierVeryGood
	case hits == 1:
		return types.TierGood
	default:
		return types.TierFair
	}
}

// ytInitialData mirrors only the path to videoRenderer entries; everything
// else on the page is ignored.
type ytInitialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []struct {
						ItemSectionRenderer struct {
							Contents []struct {
								VideoRenderer *ytVideoRenderer `json:"videoRenderer"`
							} `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

func (d *ytInitialData) videos() []*ytVideoRenderer {
	var out []*ytVideoRenderer
	sections := d.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents
	for _, s := range sections {
		for _, c := range s.ItemSectionRenderer.Contents {
			if c.VideoRenderer != nil {
				out = append(out, c.VideoRenderer)
			}
		}
	}
	return out
}

type ytVideoRenderer struct {
	VideoID    string `json:"videoId"`
	Title      ytText `json:"title"`
	OwnerText  ytText `json:"ownerText"`
	LengthText struct {
		SimpleText string `json:"simpleText"`
	} `json:"lengthText"`
	ViewCountText struct {
		SimpleText string `json:"simpleText"`
	} `json:"viewCountText"`
	DetailedMetadataSnippets []struct {
		SnippetText ytText `json:"snippetText"`
	} `json:"detailedMetadataSnippets"`
}

func (v *ytVideoRenderer) snippet() string {
	if len(v.DetailedMetadataSnippets) == 0 {
		return ""
	}
	return v.DetailedMetadataSnippets[0].SnippetText.text()
}

type ytText struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
	SimpleText string `json:"simpleText"`
}

func (t ytText) text() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var b strings.Builder
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
