// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package study generates study material (summaries, flashcards,
// quizzes, answers) from extracted document text.
package study

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/study-engine/internal/llm"
	"github.com/pdiddy/study-engine/pkg/types"
)

const (
	defaultMaxSummaryChars = 8000
	defaultMaxStudyChars   = 6000
	defaultNumFlashcards   = 8
	defaultNumQuestions    = 5

	// Minimum word counts below which generation is refused. A two-line
	// document cannot yield a meaningful quiz.
	minSummaryWords   = 10
	minFlashcardWords = 20
	minQuizWords      = 30
)

// ErrNoContent means the document text is empty.
var ErrNoContent = errors.New("no content available")

// ErrTooShort means the document is below the minimum for the requested
// material.
var ErrTooShort = errors.New("content too short")

var summaryPromptTmpl = template.Must(template.New("summary").Parse(`Please create a well-structured summary of the following academic content:

**Instructions:**
1. MAIN TOPIC: Identify the primary subject
2. KEY CONCEPTS: List 5-8 important concepts with brief explanations
3. DETAILED SUMMARY: Provide a comprehensive overview in paragraphs
4. IMPORTANT DEFINITIONS: Define technical terms mentioned
5. KEY TAKEAWAYS: List 3-5 main points students should remember

**Content to summarize:**
{{.Text}}
`))

var flashcardPromptTmpl = template.Must(template.New("flashcards").Parse(`Create {{.Count}} study flashcards based on the following content. Mix different difficulty levels.

**Format for each card:**
CARD [NUMBER]:
Q: [Clear, specific question]
A: [Comprehensive answer]
DIFFICULTY: [Basic/Intermediate/Advanced]
---

**Guidelines:**
- Include definitions, concepts, processes, and applications
- Make questions specific and clear
- Provide complete answers
- Mix difficulty levels appropriately

**Content:**
{{.Text}}
`))

var quizPromptTmpl = template.Must(template.New("quiz").Parse(`Create a {{.Count}}-question multiple choice quiz based on the following content.

**Format for each question:**
QUESTION [NUMBER]: [Clear question text]
A) [Option A]
B) [Option B]
C) [Option C]
D) [Option D]
CORRECT ANSWER: [Letter]
EXPLANATION: [Why this answer is correct and others are wrong]
---

**Guidelines:**
- Questions should test understanding, not just memorization
- Make incorrect options plausible but clearly wrong
- Include variety: definitions, applications, comparisons
- Provide clear explanations

**Content:**
{{.Text}}
`))

var answerPromptTmpl = template.Must(template.New("answer").Parse(`Based on the following document content, please answer the question comprehensively and accurately.

Document Content:
{{.Text}}

Question: {{.Question}}

Instructions:
- Provide a detailed, accurate answer based on the document
- If the information isn't in the document, say so clearly
- Use specific examples from the document when possible
- Keep the answer well-structured and easy to understand
`))

// Generator produces study material through the text-generation API.
type Generator struct {
	LLM llm.Client
	Cfg types.StudyConfig
}

// Summary generates a structured summary of the document text.
func (g Generator) Summary(ctx context.Context, text string) (string, error) {
	if err := checkLength(text, minSummaryWords); err != nil {
		return "", err
	}

	maxChars := g.Cfg.MaxSummaryChars
	if maxChars <= 0 {
		maxChars = defaultMaxSummaryChars
	}

	prompt, err := render(summaryPromptTmpl, promptData{Text: truncate(text, maxChars)})
	if err != nil {
		return "", err
	}
	return g.LLM.GenerateText(ctx, prompt, 1200)
}

// Flashcards generates n flashcards from the document text. A zero n
// uses the configured default.
func (g Generator) Flashcards(ctx context.Context, text string, n int) ([]types.Flashcard, error) {
	if err := checkLength(text, minFlashcardWords); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = g.Cfg.NumFlashcards
	}
	if n <= 0 {
		n = defaultNumFlashcards
	}

	prompt, err := render(flashcardPromptTmpl, promptData{Count: n, Text: truncate(text, g.studyChars())})
	if err != nil {
		return nil, err
	}

	raw, err := g.LLM.GenerateText(ctx, prompt, 1500)
	if err != nil {
		return nil, err
	}

	cards := ParseFlashcards(raw)
	if len(cards) == 0 {
		return nil, fmt.Errorf("no flashcards found in model output")
	}
	return cards, nil
}

// Quiz generates an n-question multiple choice quiz. A zero n uses the
// configured default.
func (g Generator) Quiz(ctx context.Context, text string, n int) ([]types.QuizQuestion, error) {
	if err := checkLength(text, minQuizWords); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = g.Cfg.NumQuizQuestions
	}
	if n <= 0 {
		n = defaultNumQuestions
	}

	prompt, err := render(quizPromptTmpl, promptData{Count: n, Text: truncate(text, g.studyChars())})
	if err != nil {
		return nil, err
	}

	raw, err := g.LLM.GenerateText(ctx, prompt, 2000)
	if err != nil {
		return nil, err
	}

	questions := ParseQuiz(raw)
	if len(questions) == 0 {
		return nil, fmt.Errorf("no quiz questions found in model output")
	}
	return questions, nil
}

// Answer answers a free-form question about the document.
func (g Generator) Answer(ctx context.Context, text, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question cannot be empty")
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}

	prompt, err := render(answerPromptTmpl, promptData{
		Text:     truncate(text, g.studyChars()),
		Question: question,
	})
	if err != nil {
		return "", err
	}
	return g.LLM.GenerateText(ctx, prompt, 800)
}

func (g Generator) studyChars() int {
	if g.Cfg.MaxStudyChars > 0 {
		return g.Cfg.MaxStudyChars
	}
	return defaultMaxStudyChars
}

type promptData struct {
	Count    int
	Text     string
	Question string
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

func checkLength(text string, minWords int) error {
	if strings.TrimSpace(text) == "" {
		return ErrNoContent
	}
	if len(strings.Fields(text)) < minWords {
		return fmt.Errorf("%w: need at least %d words", ErrTooShort, minWords)
	}
	return nil
}

func truncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "..."
}
