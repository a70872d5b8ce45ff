package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/study-engine/internal/document"
	"github.com/pdiddy/study-engine/internal/llm"
	"github.com/pdiddy/study-engine/internal/logger"
	"github.com/pdiddy/study-engine/internal/server"
	"github.com/pdiddy/study-engine/internal/study"
	"github.com/pdiddy/study-engine/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes the study pipeline over HTTP: upload a PDF, then generate
summaries, flashcards, and quizzes, ask questions, or discover related
papers, videos, and resources.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.New("api")

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = viper.GetString("server.bind_addr")
	}
	if addr == "" {
		addr = ":8080"
	}

	aiCfg := aiConfig()
	discCfg := discoveryConfig()
	docCfg := types.DocumentConfig{
		AIConfig:   aiCfg,
		MaxPages:   viper.GetInt("document.max_pages"),
		UploadsDir: viper.GetString("document.uploads_dir"),
	}

	store, err := sessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &server.Server{
		Log:      log,
		Sessions: store,
		Proc: document.Processor{
			Pages: document.NewOpenAIPageParser(aiCfg),
			Cfg:   docCfg,
		},
		Keywords: keywordExtractor(),
		Study: study.Generator{
			LLM: llm.NewOpenAIClient(aiCfg),
			Cfg: studyConfig(aiCfg),
		},
		Discover: server.LiveDiscover(httpClient(), discCfg),
		Cfg: types.PipelineConfig{
			Discovery: discCfg,
			Document:  docCfg,
		},
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
		return err
	}
	return nil
}
