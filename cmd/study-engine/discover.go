package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/study-engine/internal/discover"
	"github.com/pdiddy/study-engine/internal/session"
	"github.com/pdiddy/study-engine/pkg/types"
)

var discoverCollections = map[string]types.CollectionType{
	"papers":    types.CollectionPaper,
	"videos":    types.CollectionVideo,
	"resources": types.CollectionResource,
}

var discoverCmd = &cobra.Command{
	Use:   "discover [papers|videos|resources]",
	Short: "Find related papers, videos, or learning resources",
	Long: `Discover queries external sources for material related to a document's
keyword profile. Papers come from arXiv, Semantic Scholar, and (for
life-sciences topics) PubMed; videos from YouTube; resources from
Wikipedia and web search. Results are scored for relevance, deduplicated
across sources and strategies, and ranked.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().String("session", session.DefaultID, "session whose profile drives the queries")
	discoverCmd.Flags().String("topic", "", "ad-hoc topic (skips the session profile)")
	discoverCmd.Flags().String("keywords", "", "ad-hoc keywords, comma-separated (with --topic)")
	discoverCmd.Flags().Int("max", 0, "maximum results (defaults 10 papers, 10 videos, 12 resources)")
	discoverCmd.Flags().Bool("json", false, "output results as JSON")
	discoverCmd.Flags().Bool("csl", false, "output papers as CSL-YAML for citation managers")
	discoverCmd.Flags().String("out", "", "write a run file (YAML) to this path")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	collection, ok := discoverCollections[args[0]]
	if !ok {
		return fmt.Errorf("unknown collection %q (use papers, videos, or resources)", args[0])
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")
	savePath, _ := cmd.Flags().GetString("out")
	if asCSL && collection != types.CollectionPaper {
		return fmt.Errorf("--csl only applies to papers")
	}

	profile, err := discoverProfile(cmd)
	if err != nil {
		return err
	}
	if profile.IsEmpty() {
		return fmt.Errorf("no keyword profile available; process a document or pass --topic")
	}

	cfg := discoveryConfig()
	maxResults, _ := cmd.Flags().GetInt("max")
	if maxResults <= 0 {
		switch collection {
		case types.CollectionVideo:
			maxResults = cfg.MaxVideos
		case types.CollectionResource:
			maxResults = cfg.MaxResources
		default:
			maxResults = cfg.MaxPapers
		}
	}

	adapters := discover.AdaptersFor(collection, httpClient(), cfg)
	out := discover.Discover(cmd.Context(), profile, collection, adapters, cfg, maxResults, os.Stderr)

	if savePath != "" {
		if err := discover.WriteRunFile(savePath, profile, collection, maxResults, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run saved to %s\n", savePath)
	}

	switch {
	case asCSL:
		return discover.FormatCSL(out, os.Stdout)
	case asJSON:
		return discover.FormatJSON(out, os.Stdout)
	default:
		discover.FormatTable(out, os.Stdout)
	}
	return nil
}

// discoverProfile resolves the keyword profile: --topic builds an ad-hoc
// one, otherwise the session's stored profile is used.
func discoverProfile(cmd *cobra.Command) (types.KeywordProfile, error) {
	topic, _ := cmd.Flags().GetString("topic")
	if topic != "" {
		rawKeywords, _ := cmd.Flags().GetString("keywords")
		var kws []string
		for _, kw := range strings.Split(rawKeywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			kws = []string{strings.ToLower(topic)}
		}
		return types.KeywordProfile{
			Topic:            topic,
			ResearchKeywords: kws,
			AllKeywords:      kws,
		}, nil
	}

	sessionID, _ := cmd.Flags().GetString("session")
	store, err := sessionStore()
	if err != nil {
		return types.KeywordProfile{}, err
	}
	defer store.Close()

	sess, err := store.Get(cmd.Context(), sessionID)
	if err != nil {
		return types.KeywordProfile{}, err
	}
	return sess.Profile, nil
}

// discoveryConfig assembles discovery settings from config and secrets.
func discoveryConfig() types.DiscoveryConfig {
	cfg := types.DiscoveryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: defaultUserAgent,
		},
		MaxPapers:             viper.GetInt("discovery.max_papers"),
		MaxVideos:             viper.GetInt("discovery.max_videos"),
		MaxResources:          viper.GetInt("discovery.max_resources"),
		StrategyDelay:         viper.GetDuration("discovery.strategy_delay"),
		EnableArxiv:           true,
		EnableSemanticScholar: true,
		EnablePubMed:          true,
		SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("discovery.semantic_scholar_api_key")),
		NCBIAPIKey:            secretDefault("ncbi-api-key", viper.GetString("discovery.ncbi_api_key")),
		Scoring:               types.DefaultScoring(),
	}

	if viper.IsSet("discovery.enable_arxiv") {
		cfg.EnableArxiv = viper.GetBool("discovery.enable_arxiv")
	}
	if viper.IsSet("discovery.enable_semantic_scholar") {
		cfg.EnableSemanticScholar = viper.GetBool("discovery.enable_semantic_scholar")
	}
	if viper.IsSet("discovery.enable_pubmed") {
		cfg.EnablePubMed = viper.GetBool("discovery.enable_pubmed")
	}

	if cfg.MaxPapers <= 0 {
		cfg.MaxPapers = 10
	}
	if cfg.MaxVideos <= 0 {
		cfg.MaxVideos = 10
	}
	if cfg.MaxResources <= 0 {
		cfg.MaxResources = 12
	}
	if cfg.StrategyDelay == 0 {
		cfg.StrategyDelay = time.Second
	}
	return cfg
}
