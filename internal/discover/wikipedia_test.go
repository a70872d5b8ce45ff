// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/study-engine/pkg/types"
)

const wikiFixture = `{
  "query": {
    "search": [
      {"title": "Photosynthesis", "snippet": "<span class=\"searchmatch\">Photosynthesis</span> is a process used by plants"},
      {"title": "C4 carbon fixation", "snippet": "A pathway in some plants"}
    ]
  }
}`

func TestWikipediaSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("srsearch")
		fmt.Fprint(w, wikiFixture)
	}))
	defer srv.Close()

	orig := wikipediaAPIBase
	wikipediaAPIBase = srv.URL
	defer func() { wikipediaAPIBase = orig }()

	a := &WikipediaAdapter{Client: srv.Client()}
	records, err := a.Search(context.Background(), Strategy{Terms: []string{"photosynthesis"}}, testDiscoveryCfg())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "photosynthesis" {
		t.Errorf("srsearch = %q", gotQuery)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	first := records[0]
	if first.URL != "https://en.wikipedia.org/wiki/Photosynthesis" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Description != "Photosynthesis is a process used by plants" {
		t.Errorf("description = %q, HTML not stripped", first.Description)
	}
	if first.QualityTier != types.TierExcellent {
		t.Errorf("quality = %q, want Excellent", first.QualityTier)
	}
	if first.ResourceKind != "encyclopedia" {
		t.Errorf("kind = %q", first.ResourceKind)
	}
	if first.Collection != types.CollectionResource {
		t.Errorf("collection = %q", first.Collection)
	}

	// Titles with spaces escape into the article path.
	if records[1].URL != "https://en.wikipedia.org/wiki/C4%20carbon%20fixation" {
		t.Errorf("escaped url = %q", records[1].URL)
	}
}

func TestWikipediaUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	orig := wikipediaAPIBase
	wikipediaAPIBase = srv.URL
	defer func() { wikipediaAPIBase = orig }()

	a := &WikipediaAdapter{Client: srv.Client()}
	_, err := a.Search(context.Background(), Strategy{Terms: []string{"x"}}, testDiscoveryCfg())

	var srcErr *SourceError
	if !errors.As(err, &srcErr) || srcErr.Kind != SourceUnavailable {
		t.Errorf("err = %v, want SourceError with kind unavailable", err)
	}
}
