package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/study-engine/internal/discover"
	"github.com/pdiddy/study-engine/internal/document"
	"github.com/pdiddy/study-engine/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [urls...]",
	Short: "Download PDFs from URLs or a discovery run file",
	Long: `Fetch downloads PDFs into the uploads directory. URLs can be given
directly or taken from a saved discovery run file, in which case every
paper record with a usable link is fetched.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("from-run", "", "read paper URLs from a discovery run file")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	fetchCmd.Flags().String("uploads-dir", "", "directory to store PDFs (default uploads)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	runPath, _ := cmd.Flags().GetString("from-run")
	delay, _ := cmd.Flags().GetDuration("delay")
	uploadsDir, _ := cmd.Flags().GetString("uploads-dir")

	urls := args
	if runPath != "" {
		run, err := discover.ReadRunFile(runPath)
		if err != nil {
			return err
		}
		for _, r := range run.Records {
			if r.Collection == types.CollectionPaper && r.URL != types.URLUnknown {
				urls = append(urls, r.URL)
			}
		}
	}
	if len(urls) == 0 {
		return fmt.Errorf("provide PDF URLs or --from-run with paper records")
	}

	if delay == 0 {
		delay = time.Second
	}
	if uploadsDir == "" {
		uploadsDir = viper.GetString("document.uploads_dir")
	}

	cfg := types.DocumentConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: defaultUserAgent},
		UploadsDir: uploadsDir,
		FetchDelay: delay,
	}

	result := document.FetchBatch(cmd.Context(), httpClient(), urls, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d download(s) failed", result.Failed)
	}
	return nil
}
