// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/study-engine/pkg/types"
)

const webFixture = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.khanacademy.org%2Fscience%2Fphotosynthesis&rut=x">Photosynthesis course | Khan Academy</a>
  <a class="result__snippet">Learn the light reactions step by step.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/photosynthesis-tutorial">Photosynthesis tutorial for beginners</a>
  <a class="result__snippet">A gentle guide.</a>
</div>
<div class="result">
  <a class="result__a" href="https://plantdocs.example.com/docs/pigments">Pigment documentation</a>
  <a class="result__snippet">Reference pages.</a>
</div>
</body></html>`

func TestWebResourceSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, webFixture)
	}))
	defer srv.Close()

	orig := webSearchBase
	webSearchBase = srv.URL
	defer func() { webSearchBase = orig }()

	a := &WebResourceAdapter{Client: srv.Client()}
	records, err := a.Search(context.Background(), Strategy{Terms: []string{"photosynthesis"}}, testDiscoveryCfg())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	first := records[0]
	if first.URL != "https://www.khanacademy.org/science/photosynthesis" {
		t.Errorf("redirect not unwrapped: %q", first.URL)
	}
	if first.ResourceKind != "course" {
		t.Errorf("kind = %q, want course", first.ResourceKind)
	}
	if first.QualityTier != types.TierExcellent {
		t.Errorf("quality = %q, want Excellent for a top-tier domain", first.QualityTier)
	}
	if first.Description != "Learn the light reactions step by step." {
		t.Errorf("description = %q", first.Description)
	}

	if records[1].ResourceKind != "tutorial" {
		t.Errorf("kind = %q, want tutorial", records[1].ResourceKind)
	}
	if records[1].QualityTier != types.TierGood {
		t.Errorf("quality = %q, want Good for an unknown domain", records[1].QualityTier)
	}
	if records[2].ResourceKind != "documentation" {
		t.Errorf("kind = %q, want documentation", records[2].ResourceKind)
	}
}

func TestWebResourceMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, webFixture)
	}))
	defer srv.Close()

	orig := webSearchBase
	webSearchBase = srv.URL
	defer func() { webSearchBase = orig }()

	cfg := testDiscoveryCfg()
	cfg.MaxResources = 1

	a := &WebResourceAdapter{Client: srv.Client()}
	records, err := a.Search(context.Background(), Strategy{Terms: []string{"photosynthesis"}}, cfg)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, want 1", len(records))
	}
}

func TestResolveRedirect(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa", "https://example.com/a"},
		{"https://example.com/direct", "https://example.com/direct"},
		{"//example.com/protocol-relative", "https://example.com/protocol-relative"},
	}
	for _, tt := range tests {
		if got := resolveRedirect(tt.href); got != tt.want {
			t.Errorf("resolveRedirect(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestClassifyResource(t *testing.T) {
	tests := []struct {
		title string
		href  string
		want  string
	}{
		{"API documentation", "https://example.com/ref", "documentation"},
		{"Full course on biology", "https://example.com/c", "course"},
		{"A beginner guide", "https://example.com/g", "tutorial"},
		{"Some blog post", "https://example.com/p", "article"},
	}
	for _, tt := range tests {
		if got := classifyResource(tt.title, tt.href); got != tt.want {
			t.Errorf("classifyResource(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
