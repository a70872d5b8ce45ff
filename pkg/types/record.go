// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the study-engine pipeline:
// keyword profiles, discovery candidate records, study materials, and the
// per-stage configuration structs.
package types

// CollectionType is the category of a discovered item.
type CollectionType string

const (
	CollectionPaper    CollectionType = "paper"
	CollectionVideo    CollectionType = "video"
	CollectionResource CollectionType = "resource"
)

// URLUnknown is the sentinel stored when a source gives no usable link.
const URLUnknown = "#"

// Tier is a coarse categorical quality grade assigned by an adapter.
// Videos use Excellent/VeryGood/Good/Fair; resources use Excellent/High/Good/Fair.
type Tier string

const (
	TierExcellent Tier = "Excellent"
	TierVeryGood  Tier = "Very Good"
	TierHigh      Tier = "High"
	TierGood      Tier = "Good"
	TierFair      Tier = "Fair"
)

// CandidateRecord is one discovered item (paper, video, or web resource)
// prior to ranking. Records are created transiently per discovery request
// and discarded after formatting; they are never shared across requests.
type CandidateRecord struct {
	// Title is the item title. Records without a title are discarded.
	Title string `json:"title" yaml:"title"`

	// SourceName identifies the backend that found this record
	// (e.g. "arxiv", "semantic_scholar", "pubmed", "youtube", "wikipedia").
	SourceName string `json:"source" yaml:"source"`

	// URL links to the item, or URLUnknown when the source gave none.
	URL string `json:"url" yaml:"url"`

	// Description holds the abstract, snippet, or summary; may be empty.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Collection is the category this record belongs to.
	Collection CollectionType `json:"collection" yaml:"collection"`

	// RelevanceScore is the normalized [0,1] keyword-match score attached
	// before ranking. Defaults to 0.5 when the source gives no basis.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// RelevanceLabel is the human-readable band for the score (papers only).
	RelevanceLabel string `json:"relevance_label,omitempty" yaml:"relevance_label,omitempty"`

	// Paper fields.
	Authors   []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year      int      `json:"year,omitempty" yaml:"year,omitempty"`
	Citations int      `json:"citations,omitempty" yaml:"citations,omitempty"`

	// Video fields.
	Channel         string `json:"channel,omitempty" yaml:"channel,omitempty"`
	Duration        string `json:"duration,omitempty" yaml:"duration,omitempty"`
	ViewCount       string `json:"view_count,omitempty" yaml:"view_count,omitempty"`
	EducationalTier Tier   `json:"educational_tier,omitempty" yaml:"educational_tier,omitempty"`

	// Resource fields.
	ResourceKind string `json:"resource_kind,omitempty" yaml:"resource_kind,omitempty"`
	QualityTier  Tier   `json:"quality_tier,omitempty" yaml:"quality_tier,omitempty"`
}
