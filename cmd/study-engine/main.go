// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the study-engine CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/study-engine/internal/secrets"
	"github.com/pdiddy/study-engine/pkg/types"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "study-engine/0.1"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the study-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "study-engine",
	Short: "Turn documents into study material and curated sources",
	Long: `study-engine turns an uploaded document into study material. It extracts
text from PDFs, derives a keyword profile, and from there generates summaries,
flashcards, and quizzes, or discovers related papers, videos, and learning
resources across academic and web sources.

Each pipeline stage is a subcommand: process, keywords, study, discover,
fetch, and session. serve exposes the same pipeline over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./study-engine.yaml or ~/.config/study-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("study-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "study-engine"))
		}
	}

	viper.SetEnvPrefix("STUDY_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// httpClient builds the shared HTTP client with the configured timeout.
func httpClient() *http.Client {
	timeout := viper.GetDuration("http.timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// aiConfig assembles AI settings from config and secrets.
func aiConfig() types.AIConfig {
	return types.AIConfig{
		Model:          viper.GetString("ai.model"),
		FallbackModels: viper.GetStringSlice("ai.fallback_models"),
		APIKey:         secretDefault("openai-api-key", viper.GetString("ai.api_key")),
		MaxRetries:     viper.GetInt("ai.max_retries"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
