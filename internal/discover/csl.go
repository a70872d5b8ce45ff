// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/study-engine/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	URL      string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes the paper records from a discovery run as a CSL-YAML
// list to w. Non-paper records are skipped.
func FormatCSL(out Output, w io.Writer) error {
	var items []CSLItem
	for i, r := range out.Records {
		if r.Collection != types.CollectionPaper {
			continue
		}
		items = append(items, toCSLItem(r, i+1))
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a paper record to a CSLItem.
func toCSLItem(r types.CandidateRecord, seq int) CSLItem {
	item := CSLItem{
		ID:       fmt.Sprintf("%s-%d", r.SourceName, seq),
		Type:     "article",
		Title:    r.Title,
		Abstract: r.Description,
	}

	for _, a := range r.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	if r.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{r.Year}}}
	}

	if r.URL != "" && r.URL != types.URLUnknown {
		item.URL = r.URL
	}

	return item
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
