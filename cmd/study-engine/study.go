package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/study-engine/internal/llm"
	"github.com/pdiddy/study-engine/internal/session"
	"github.com/pdiddy/study-engine/internal/study"
	"github.com/pdiddy/study-engine/pkg/types"
)

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Generate study material from a processed document",
	Long: `Study generates learning material from a session's stored document text:
a structured summary, flashcards, a multiple choice quiz, or an answer
to a free-form question.`,
}

var studySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Generate a structured summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessionText(cmd, func(ctx context.Context, g study.Generator, text string) error {
			summary, err := g.Summary(ctx, text)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		})
	},
}

var studyFlashcardsCmd = &cobra.Command{
	Use:   "flashcards",
	Short: "Generate study flashcards",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		return withSessionText(cmd, func(ctx context.Context, g study.Generator, text string) error {
			cards, err := g.Flashcards(ctx, text, count)
			if err != nil {
				return err
			}
			for i, card := range cards {
				fmt.Printf("Card %d [%s]\n", i+1, card.Difficulty)
				fmt.Printf("  Q: %s\n", card.Question)
				fmt.Printf("  A: %s\n\n", card.Answer)
			}
			return nil
		})
	},
}

var studyQuizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a multiple choice quiz",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		showAnswers, _ := cmd.Flags().GetBool("answers")
		return withSessionText(cmd, func(ctx context.Context, g study.Generator, text string) error {
			questions, err := g.Quiz(ctx, text, count)
			if err != nil {
				return err
			}
			for i, q := range questions {
				fmt.Printf("Question %d: %s\n", i+1, q.Question)
				for j, opt := range q.Options {
					fmt.Printf("  %c) %s\n", 'A'+j, opt)
				}
				if showAnswers {
					fmt.Printf("  Answer: %s", q.CorrectAnswer)
					if q.Explanation != "" {
						fmt.Printf(" (%s)", q.Explanation)
					}
					fmt.Println()
				}
				fmt.Println()
			}
			return nil
		})
	},
}

var studyAskCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question about the document",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		return withSessionText(cmd, func(ctx context.Context, g study.Generator, text string) error {
			answer, err := g.Answer(ctx, text, question)
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		})
	},
}

func init() {
	studyCmd.PersistentFlags().String("session", session.DefaultID, "session holding the document")
	studyFlashcardsCmd.Flags().Int("count", 0, "number of flashcards (default 8)")
	studyQuizCmd.Flags().Int("count", 0, "number of questions (default 5)")
	studyQuizCmd.Flags().Bool("answers", false, "show correct answers and explanations")

	studyCmd.AddCommand(studySummaryCmd, studyFlashcardsCmd, studyQuizCmd, studyAskCmd)
	rootCmd.AddCommand(studyCmd)
}

// withSessionText loads the session text, builds the generator, and runs fn.
func withSessionText(cmd *cobra.Command, fn func(context.Context, study.Generator, string) error) error {
	aiCfg := aiConfig()
	if aiCfg.APIKey == "" {
		return fmt.Errorf("no AI API key configured (set ai.api_key or .secrets/openai-api-key)")
	}

	sessionID, _ := cmd.Flags().GetString("session")
	store, err := sessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := store.Get(cmd.Context(), sessionID)
	if err != nil {
		return err
	}

	g := study.Generator{
		LLM: llm.NewOpenAIClient(aiCfg),
		Cfg: studyConfig(aiCfg),
	}
	return fn(cmd.Context(), g, sess.Extraction.Text)
}

func studyConfig(aiCfg types.AIConfig) types.StudyConfig {
	return types.StudyConfig{
		AIConfig:         aiCfg,
		MaxSummaryChars:  viper.GetInt("study.max_summary_chars"),
		MaxStudyChars:    viper.GetInt("study.max_study_chars"),
		NumFlashcards:    viper.GetInt("study.num_flashcards"),
		NumQuizQuestions: viper.GetInt("study.num_quiz_questions"),
	}
}
