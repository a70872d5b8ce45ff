package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/study-engine/internal/session"
	"github.com/pdiddy/study-engine/pkg/types"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords [file]",
	Short: "Show the keyword profile of a session or text file",
	Long: `Keywords prints the topic and keyword profile extracted from a processed
document. With a file argument the profile is derived on the spot from
the file's text; otherwise the stored session profile is shown. The
profile drives the discover command's query strategies.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKeywords,
}

func init() {
	keywordsCmd.Flags().String("session", session.DefaultID, "session to inspect")
	keywordsCmd.Flags().Bool("json", false, "output the profile as JSON")

	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	profile, err := keywordsProfile(cmd, args)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}

	fmt.Printf("Topic: %s\n", profile.Topic)
	fmt.Println("Research keywords:")
	for _, kw := range profile.ResearchKeywords {
		fmt.Printf("  - %s\n", kw)
	}
	fmt.Println("All keywords:")
	for _, kw := range profile.AllKeywords {
		fmt.Printf("  - %s\n", kw)
	}
	return nil
}

// keywordsProfile extracts a profile from the given file, or loads the
// stored session profile when no file is named.
func keywordsProfile(cmd *cobra.Command, args []string) (types.KeywordProfile, error) {
	if len(args) == 1 {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return types.KeywordProfile{}, err
		}
		return keywordExtractor().Extract(cmd.Context(), string(raw)), nil
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
