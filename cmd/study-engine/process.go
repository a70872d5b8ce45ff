package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/study-engine/internal/container"
	"github.com/pdiddy/study-engine/internal/document"
	"github.com/pdiddy/study-engine/internal/keywords"
	"github.com/pdiddy/study-engine/internal/llm"
	"github.com/pdiddy/study-engine/internal/ocr"
	"github.com/pdiddy/study-engine/internal/session"
	"github.com/pdiddy/study-engine/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Extract text and keywords from a document",
	Long: `Process extracts text from a PDF, .txt, or .md file, derives a keyword
profile from it, and stores both in a session for later study and
discovery commands. PDFs are transcribed page by page; scans that
transcribe poorly fall back to OCR when a container runtime is
available.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("session", session.DefaultID, "session to store the document under")
	processCmd.Flags().Int("max-pages", 0, "maximum PDF pages to transcribe (default 20)")
	processCmd.Flags().Bool("no-ocr", false, "disable the OCR fallback for scanned PDFs")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	noOCR, _ := cmd.Flags().GetBool("no-ocr")

	docCfg := types.DocumentConfig{
		AIConfig: aiConfig(),
		MaxPages: maxPages,
	}

	proc := document.Processor{
		Pages: document.NewOpenAIPageParser(docCfg.AIConfig),
		Cfg:   docCfg,
	}
	if !noOCR {
		if rt, err := container.DetectRuntime(); err == nil {
			image := viper.GetString("document.ocr_image")
			if image == "" {
				image = ocr.DefaultImage
			}
			if conv, err := ocr.NewConverter(rt, image); err == nil {
				proc.OCR = conv
			} else {
				fmt.Fprintf(os.Stderr, "OCR disabled: %v\n", err)
			}
		}
	}

	ext, err := proc.Process(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	profile := keywordExtractor().Extract(cmd.Context(), ext.Text)

	store, err := sessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sess := session.Session{
		ID:         sessionID,
		FileName:   args[0],
		FilePath:   args[0],
		Extraction: ext,
		Profile:    profile,
	}
	if err := store.Save(cmd.Context(), sess); err != nil {
		return err
	}

	fmt.Printf("Processed %s\n", args[0])
	fmt.Printf("  status:  %s\n", ext.Status)
	if ext.Message != "" {
		fmt.Printf("  note:    %s\n", ext.Message)
	}
	fmt.Printf("  words:   %d\n", ext.WordCount)
	fmt.Printf("  pages:   %d extracted of %d\n", ext.ExtractedPages, ext.PageCount)
	fmt.Printf("  methods: %v\n", ext.MethodsUsed)
	fmt.Printf("  topic:   %s\n", profile.Topic)
	fmt.Printf("  session: %s\n", sessionID)

	if ext.Status == types.ExtractionError {
		return fmt.Errorf("no usable text extracted from %s", args[0])
	}
	return nil
}

// keywordExtractor builds the profile extractor, falling back to
// heuristics when no API key is configured.
func keywordExtractor() keywords.Extractor {
	aiCfg := aiConfig()
	if aiCfg.APIKey == "" {
		return keywords.Extractor{}
	}
	return keywords.Extractor{LLM: llm.NewOpenAIClient(aiCfg)}
}

// sessionStore opens the configured session database.
func sessionStore() (*session.Store, error) {
	return session.NewStore(types.SessionConfig{
		DataDir: viper.GetString("session.data_dir"),
	})
}
