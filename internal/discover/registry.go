// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"net/http"

	"github.com/pdiddy/study-engine/pkg/types"
)

// AdaptersFor builds the adapter set serving a collection. Paper sources
// honor the per-source enable flags; PubMed additionally gates itself on
// the topic at query time.
func AdaptersFor(collection types.CollectionType, client *http.Client, cfg types.DiscoveryConfig) []Adapter {
	switch collection {
	case types.CollectionPaper:
		var adapters []Adapter
		if cfg.EnableArxiv {
			adapters = append(adapters, &ArxivAdapter{Client: client})
		}
		if cfg.EnableSemanticScholar {
			adapters = append(adapters, &SemanticScholarAdapter{Client: client, APIKey: cfg.SemanticScholarAPIKey})
		}
		if cfg.EnablePubMed {
			adapters = append(adapters, &PubMedAdapter{Client: client, APIKey: cfg.NCBIAPIKey})
		}
		return adapters
	case types.CollectionVideo:
		return []Adapter{&YouTubeAdapter{Client: client}}
	case types.CollectionResource:
		return []Adapter{&WikipediaAdapter{Client: client}, &WebResourceAdapter{Client: client}}
	}
	return nil
}
