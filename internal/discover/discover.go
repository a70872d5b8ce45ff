// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/study-engine/pkg/types"
)

// Output holds the ranked records plus run statistics.
type Output struct {
	Records       []types.CandidateRecord
	DupsRemoved   int
	AdapterErrors []string
}

// Discover runs every query strategy against every applicable adapter for
// the collection, pools the raw records, scores them against the research
// keywords, deduplicates across strategies, ranks, and caps to maxResults.
//
// Adapter failures are folded into warnings and contribute zero records;
// they never abort the call. An empty keyword profile short-circuits to an
// empty result with no adapter calls: "nothing found" is a valid outcome,
// not an error.
func Discover(ctx context.Context, profile types.KeywordProfile, collection types.CollectionType, adapters []Adapter, cfg types.DiscoveryConfig, maxResults int, w io.Writer) Output {
	if profile.IsEmpty() {
		return Output{}
	}

	var applicable []Adapter
	for _, a := range adapters {
		if a.Collection() != collection {
			continue
		}
		if g, ok := a.(Gated); ok && !g.Applicable(profile) {
			continue
		}
		applicable = append(applicable, a)
	}
	if len(applicable) == 0 {
		return Output{}
	}

	var pooled []types.CandidateRecord
	var adapterErrors []string

	for si, strat := range Strategies(profile) {
		if si > 0 && cfg.StrategyDelay > 0 {
			// Rate-limit courtesy between strategy dispatches.
			select {
			case <-ctx.Done():
			case <-time.After(cfg.StrategyDelay):
			}
		}
		if ctx.Err() != nil {
			break
		}

		for _, a := range applicable {
			records, err := a.Search(ctx, strat, cfg)
			if err != nil {
				msg := fmt.Sprintf("%s/%s: %v", a.Name(), strat.Name, err)
				adapterErrors = append(adapterErrors, msg)
				fmt.Fprintf(w, "warning: adapter %s failed on %s strategy: %v\n", a.Name(), strat.Name, err)
				continue
			}
			for _, r := range records {
				// Records without a title give ranking nothing to
				// work with.
				if strings.TrimSpace(r.Title) == "" {
					continue
				}
				if r.URL == "" {
					r.URL = types.URLUnknown
				}
				r.Collection = collection
				pooled = append(pooled, r)
			}
		}
	}

	scorer := NewScorer(cfg.Scoring)
	scorer.Annotate(pooled, profile.ResearchKeywords)

	// Dedup runs once over the whole pool so cross-strategy duplicates
	// merge, not just within-strategy ones.
	deduped := Dedupe(pooled)
	ranked := Rank(deduped, profile.ResearchKeywords)

	return Output{
		Records:       Cap(ranked, maxResults),
		DupsRemoved:   len(pooled) - len(deduped),
		AdapterErrors: adapterErrors,
	}
}

// FormatTable writes records as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-16s  %-6s  %s\n", "Rank", "Title", "Source", "Score", "Detail")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	for i, r := range out.Records {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-16s  %-6.2f  %s\n",
			i+1, title, r.SourceName, r.RelevanceScore, recordDetail(r))
	}

	fmt.Fprintf(w, "\n%d results", len(out.Records))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

func recordDetail(r types.CandidateRecord) string {
	switch r.Collection {
	case types.CollectionVideo:
		return fmt.Sprintf("%s %s", r.EducationalTier, r.Channel)
	case types.CollectionResource:
		return fmt.Sprintf("%s %s", r.QualityTier, r.ResourceKind)
	default:
		detail := r.RelevanceLabel
		if r.Year > 0 {
			detail = fmt.Sprintf("%s (%d)", detail, r.Year)
		}
		return detail
	}
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Records)
}
