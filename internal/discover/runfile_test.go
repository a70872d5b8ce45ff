// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/study-engine/pkg/types"
)

func TestRunFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	profile := testProfile()
	out := Output{
		Records: []types.CandidateRecord{
			{
				Title:          "Photosynthesis Advances",
				SourceName:     "arxiv",
				URL:            "https://arxiv.org/abs/2301.07041",
				Collection:     types.CollectionPaper,
				RelevanceScore: 0.9,
				RelevanceLabel: "Highly Relevant",
				Year:           2023,
			},
		},
		DupsRemoved:   2,
		AdapterErrors: []string{"semantic_scholar/specific: unavailable"},
	}

	if err := WriteRunFile(path, profile, types.CollectionPaper, 10, out); err != nil {
		t.Fatalf("WriteRunFile() error = %v", err)
	}

	rf, err := ReadRunFile(path)
	if err != nil {
		t.Fatalf("ReadRunFile() error = %v", err)
	}

	if rf.Collection != types.CollectionPaper {
		t.Errorf("collection = %q", rf.Collection)
	}
	if rf.Config.MaxResults != 10 {
		t.Errorf("max_results = %d, want 10", rf.Config.MaxResults)
	}
	if len(rf.Records) != 1 || rf.Records[0].Title != "Photosynthesis Advances" {
		t.Errorf("records = %+v", rf.Records)
	}
	if rf.Summary.Total != 1 || rf.Summary.DuplicatesRemoved != 2 {
		t.Errorf("summary = %+v", rf.Summary)
	}
	if len(rf.Summary.AdapterErrors) != 1 {
		t.Errorf("adapter errors = %v", rf.Summary.AdapterErrors)
	}
	if rf.Summary.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	got := rf.Profile.ToProfile()
	if got.Topic != profile.Topic || len(got.ResearchKeywords) != len(profile.ResearchKeywords) {
		t.Errorf("profile round trip = %+v", got)
	}
}

func TestReadRunFileMissing(t *testing.T) {
	if _, err := ReadRunFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadRunFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("\t: not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRunFile(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
