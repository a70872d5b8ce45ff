// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/study-engine/pkg/types"
)

// RunFile is the on-disk representation of a discovery run and its
// results. A run can be saved and reloaded later without re-querying the
// external sources.
type RunFile struct {
	Profile    RunProfile              `yaml:"profile"`
	Collection types.CollectionType    `yaml:"collection"`
	Config     RunConfig               `yaml:"config"`
	Records    []types.CandidateRecord `yaml:"records"`
	Summary    RunSummary              `yaml:"summary"`
}

// RunProfile stores the keyword profile the run was driven by.
type RunProfile struct {
	Topic            string   `yaml:"topic"`
	ResearchKeywords []string `yaml:"research_keywords,omitempty"`
	AllKeywords      []string `yaml:"all_keywords,omitempty"`
}

// RunConfig stores the settings that produced the records.
type RunConfig struct {
	MaxResults int `yaml:"max_results"`
}

// RunSummary stores run statistics and a timestamp.
type RunSummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	AdapterErrors     []string  `yaml:"adapter_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteRunFile saves a discovery run to a YAML file.
func WriteRunFile(path string, profile types.KeywordProfile, collection types.CollectionType, maxResults int, out Output) error {
	rf := RunFile{
		Profile: RunProfile{
			Topic:            profile.Topic,
			ResearchKeywords: profile.ResearchKeywords,
			AllKeywords:      profile.AllKeywords,
		},
		Collection: collection,
		Config:     RunConfig{MaxResults: maxResults},
		Records:    out.Records,
		Summary: RunSummary{
			Total:             len(out.Records),
			DuplicatesRemoved: out.DupsRemoved,
			AdapterErrors:     out.AdapterErrors,
			Timestamp:         time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling run file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadRunFile loads a previously saved discovery run from disk.
func ReadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing run file: %w", err)
	}
	return &rf, nil
}

// ToProfile converts the stored profile back into a KeywordProfile.
func (p RunProfile) ToProfile() types.KeywordProfile {
	return types.KeywordProfile{
		Topic:            p.Topic,
		ResearchKeywords: p.ResearchKeywords,
		AllKeywords:      p.AllKeywords,
	}
}
