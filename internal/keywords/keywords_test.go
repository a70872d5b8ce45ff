// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockClient returns a canned response or error.
type mockClient struct {
	response string
	err      error
	prompts  []string
}

func (m *mockClient) GenerateText(_ context.Context, prompt string, _ int) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

const sampleText = `Photosynthesis converts light energy into chemical energy. ` +
	`The process happens in the chloroplast, where the Calvin Cycle fixes carbon. ` +
	`Chlorophyll pigments absorb photons and drive the light reactions. ` +
	`Photosynthesis sustains nearly all life on Earth.`

func TestExtractUsesAIResponse(t *testing.T) {
	m := &mockClient{response: `{"topic": "Photosynthesis", "research_keywords": ["photosynthesis", "calvin cycle"], "all_keywords": ["photosynthesis", "calvin cycle", "chlorophyll"]}`}
	e := Extractor{LLM: m}

	profile := e.Extract(context.Background(), sampleText)

	if profile.Topic != "Photosynthesis" {
		t.Errorf("topic = %q", profile.Topic)
	}
	if len(profile.ResearchKeywords) != 2 {
		t.Errorf("research keywords = %v", profile.ResearchKeywords)
	}
	if len(profile.AllKeywords) != 3 {
		t.Errorf("all keywords = %v", profile.AllKeywords)
	}
	if len(m.prompts) != 1 || !strings.Contains(m.prompts[0], "Photosynthesis converts") {
		t.Error("prompt did not include the document excerpt")
	}
}

func TestExtractStripsCodeFence(t *testing.T) {
	m := &mockClient{response: "```json\n{\"topic\": \"Photosynthesis\", \"research_keywords\": [\"photosynthesis\"]}\n```"}
	e := Extractor{LLM: m}

	profile := e.Extract(context.Background(), sampleText)
	if profile.Topic != "Photosynthesis" {
		t.Errorf("topic = %q, fence not stripped", profile.Topic)
	}
	// all_keywords backfills from research keywords when absent.
	if len(profile.AllKeywords) != 1 {
		t.Errorf("all keywords = %v", profile.AllKeywords)
	}
}

func TestExtractFallsBackOnAIError(t *testing.T) {
	m := &mockClient{err: errors.New("service down")}
	e := Extractor{LLM: m}

	profile := e.Extract(context.Background(), sampleText)
	if profile.IsEmpty() {
		t.Fatal("expected heuristic fallback profile, got empty")
	}
	if !containsFold(profile.AllKeywords, "photosynthesis") {
		t.Errorf("heuristic keywords = %v, want photosynthesis", profile.AllKeywords)
	}
}

func TestExtractFallsBackOnBadJSON(t *testing.T) {
	m := &mockClient{response: "I cannot produce JSON today."}
	e := Extractor{LLM: m}

	profile := e.Extract(context.Background(), sampleText)
	if profile.IsEmpty() {
		t.Fatal("expected heuristic fallback profile, got empty")
	}
}

func TestExtractNilClientUsesHeuristic(t *testing.T) {
	e := Extractor{}
	profile := e.Extract(context.Background(), sampleText)
	if profile.IsEmpty() {
		t.Fatal("expected heuristic profile, got empty")
	}
	if profile.Topic == "" {
		t.Error("heuristic topic is empty")
	}
}

func TestExtractBlankTextIsEmptyProfile(t *testing.T) {
	m := &mockClient{response: "{}"}
	e := Extractor{LLM: m}

	profile := e.Extract(context.Background(), "   \n\t ")
	if !profile.IsEmpty() {
		t.Errorf("profile = %+v, want empty", profile)
	}
	if len(m.prompts) != 0 {
		t.Error("AI called for blank text")
	}
}

func TestHeuristicProfile(t *testing.T) {
	profile := HeuristicProfile(sampleText)

	if !strings.Contains(profile.Topic, "Photosynthesis converts light energy") {
		t.Errorf("topic = %q, want first sentence", profile.Topic)
	}
	if !containsFold(profile.ResearchKeywords, "Calvin Cycle") {
		t.Errorf("research keywords = %v, want capitalized phrase Calvin Cycle", profile.ResearchKeywords)
	}
	// "photosynthesis" appears twice; frequency should surface it.
	if !containsFold(profile.AllKeywords, "photosynthesis") {
		t.Errorf("all keywords = %v, want photosynthesis", profile.AllKeywords)
	}
}

func TestHeuristicProfileGenericFallback(t *testing.T) {
	// Short words only: no capitalized phrases, nothing survives the
	// frequency filter. Extraction must still produce a usable profile.
	profile := HeuristicProfile("the cat sat on a mat. it was so big. we all ran far.")

	if profile.IsEmpty() {
		t.Fatal("expected generic fallback profile, got empty")
	}
	if profile.Topic == "" {
		t.Error("generic topic is empty")
	}
	if !containsFold(profile.ResearchKeywords, "study skills") {
		t.Errorf("research keywords = %v, want generic study terms", profile.ResearchKeywords)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  ```json\n{}\n```  ", "{}"},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanKeywordsDedupAndCap(t *testing.T) {
	in := []string{"A", "a", " b ", "", "c", "d", "e", "f", "g", "h", "i", "j"}
	got := cleanKeywords(in)
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
	if got[0] != "A" || got[1] != "b" {
		t.Errorf("got = %v", got)
	}
}

func containsFold(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}
