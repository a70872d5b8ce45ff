// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"reflect"
	"testing"

	"github.com/pdiddy/study-engine/pkg/types"
)

func paper(title, source string) types.CandidateRecord {
	return types.CandidateRecord{Title: title, SourceName: source, Collection: types.CollectionPaper}
}

func TestDedupePapersByTitleSimilarity(t *testing.T) {
	records := []types.CandidateRecord{
		paper("Attention Is All You Need", "arxiv"),
		paper("attention is all you need!", "semantic_scholar"),
		paper("A Completely Different Survey of Transformers", "arxiv"),
	}

	got := Dedupe(records)
	if len(got) != 2 {
		t.Fatalf("len(Dedupe()) = %d, want 2", len(got))
	}
	// First-seen instance wins.
	if got[0].SourceName != "arxiv" {
		t.Errorf("survivor source = %q, want arxiv", got[0].SourceName)
	}
}

func TestDedupePapersLowOverlapKept(t *testing.T) {
	records := []types.CandidateRecord{
		paper("Deep Learning for Protein Structure Prediction Methods", "arxiv"),
		paper("Shallow Methods in Classical Statistics for Economists", "arxiv"),
	}
	if got := Dedupe(records); len(got) != 2 {
		t.Errorf("len(Dedupe()) = %d, want 2", len(got))
	}
}

func TestDedupeVideosByPlatformID(t *testing.T) {
	records := []types.CandidateRecord{
		{Title: "A", URL: "https://www.youtube.com/watch?v=abc123", Collection: types.CollectionVideo},
		{Title: "B", URL: "https://youtu.be/abc123", Collection: types.CollectionVideo},
		{Title: "C", URL: "https://www.youtube.com/watch?v=xyz789", Collection: types.CollectionVideo},
	}
	got := Dedupe(records)
	if len(got) != 2 {
		t.Fatalf("len(Dedupe()) = %d, want 2", len(got))
	}
	if got[0].Title != "A" || got[1].Title != "C" {
		t.Errorf("survivors = %q, %q; want A, C", got[0].Title, got[1].Title)
	}
}

func TestDedupeVideosUnknownURLNeverCollapsed(t *testing.T) {
	records := []types.CandidateRecord{
		{Title: "A", URL: types.URLUnknown, Collection: types.CollectionVideo},
		{Title: "B", URL: types.URLUnknown, Collection: types.CollectionVideo},
	}
	if got := Dedupe(records); len(got) != 2 {
		t.Errorf("len(Dedupe()) = %d, want 2", len(got))
	}
}

func TestDedupeResourcesByCanonicalURL(t *testing.T) {
	records := []types.CandidateRecord{
		{Title: "A", URL: "https://en.wikipedia.org/wiki/Photosynthesis", Collection: types.CollectionResource},
		{Title: "B", URL: "https://en.wikipedia.org/wiki/Photosynthesis/?utm_source=x#History", Collection: types.CollectionResource},
		{Title: "C", URL: "https://EN.Wikipedia.org/wiki/photosynthesis", Collection: types.CollectionResource},
		{Title: "D", URL: "https://ocw.mit.edu/biology", Collection: types.CollectionResource},
	}
	got := Dedupe(records)
	if len(got) != 2 {
		t.Fatalf("len(Dedupe()) = %d, want 2", len(got))
	}
	if got[0].Title != "A" || got[1].Title != "D" {
		t.Errorf("survivors = %q, %q; want A, D", got[0].Title, got[1].Title)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	records := []types.CandidateRecord{
		paper("Attention Is All You Need", "arxiv"),
		paper("attention is all you need!", "semantic_scholar"),
		paper("A Completely Different Survey of Transformers", "arxiv"),
		{Title: "A", URL: "https://www.youtube.com/watch?v=abc123", Collection: types.CollectionVideo},
		{Title: "B", URL: "https://youtu.be/abc123", Collection: types.CollectionVideo},
		{Title: "C", URL: types.URLUnknown, Collection: types.CollectionVideo},
		{Title: "D", URL: "https://en.wikipedia.org/wiki/Photosynthesis", Collection: types.CollectionResource},
		{Title: "E", URL: "https://en.wikipedia.org/wiki/Photosynthesis/#History", Collection: types.CollectionResource},
	}

	once := Dedupe(records)
	twice := Dedupe(once)

	if len(twice) != len(once) {
		t.Fatalf("second pass removed records: %d -> %d", len(once), len(twice))
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass altered records:\n%+v\nvs\n%+v", once, twice)
	}
}

func TestVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123"},
		{"https://youtu.be/abc123", "abc123"},
		{"https://example.com/video", ""},
		{types.URLUnknown, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := videoID(tt.url); got != tt.want {
			t.Errorf("videoID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://Example.com/Path/?q=1#frag", "https://example.com/path"},
		{"https://example.com/path/", "https://example.com/path"},
		{types.URLUnknown, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := canonicalURL(tt.url); got != tt.want {
			t.Errorf("canonicalURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
