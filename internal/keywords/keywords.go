// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords derives a keyword profile from document text. The
// profile drives discovery, so extraction must always produce something
// usable: the AI path is preferred, a frequency heuristic covers AI
// failures, and a blank document yields an empty profile rather than an
// error.
package keywords

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/pdiddy/study-engine/internal/llm"
	"github.com/pdiddy/study-engine/pkg/types"
)

// maxPromptChars bounds the document prefix sent to the AI. Keyword
// signal concentrates early in a document; the tail adds cost, not
// precision.
const maxPromptChars = 6000

// maxKeywords caps both keyword lists.
const maxKeywords = 8

var keywordPromptTmpl = template.Must(template.New("keywords").Parse(`You are an academic study assistant. Analyze the following document excerpt and identify its core topic and keywords.

Respond with a JSON object only, no text outside it:
{"topic": "short phrase naming the subject", "research_keywords": ["..."], "all_keywords": ["..."]}

Rules:
- research_keywords: up to {{.Max}} precise technical terms ordered from most to least central, suitable for searching academic databases
- all_keywords: up to {{.Max}} terms including the research keywords plus broader related concepts
- prefer domain terminology over generic filler words like "introduction", "chapter", "overview", "important"
- keep multi-word terms intact (e.g. "light reactions", not "light" and "reactions")

Document excerpt:
{{.Text}}
`))

// Extractor derives keyword profiles. A nil LLM skips straight to the
// heuristic path.
type Extractor struct {
	LLM llm.Client
}

// Extract returns the keyword profile for the document text. It never
// returns an error: AI failures degrade to the heuristic extractor, and
// a blank document yields an empty profile.
func (e Extractor) Extract(ctx context.Context, text string) types.KeywordProfile {
	if strings.TrimSpace(text) == "" {
		return types.KeywordProfile{}
	}

	if e.LLM != nil {
		if profile, err := e.extractWithAI(ctx, text); err == nil && !profile.IsEmpty() {
			return profile
		}
	}
	return HeuristicProfile(text)
}

func (e Extractor) extractWithAI(ctx context.Context, text string) (types.KeywordProfile, error) {
	excerpt := text
	if len(excerpt) > maxPromptChars {
		excerpt = excerpt[:maxPromptChars]
	}

	var buf bytes.Buffer
	err := keywordPromptTmpl.Execute(&buf, struct {
		Max  int
		Text string
	}{Max: maxKeywords, Text: excerpt})
	if err != nil {
		return types.KeywordProfile{}, fmt.Errorf("rendering prompt: %w", err)
	}

	raw, err := e.LLM.GenerateText(ctx, buf.String(), 1024)
	if err != nil {
		return types.KeywordProfile{}, err
	}

	return parseProfileJSON(raw)
}

// parseProfileJSON decodes the AI response, tolerating a Markdown code
// fence around the JSON object.
func parseProfileJSON(raw string) (types.KeywordProfile, error) {
	cleaned := stripCodeFence(raw)

	var parsed struct {
		Topic            string   `json:"topic"`
		ResearchKeywords []string `json:"research_keywords"`
		AllKeywords      []string `json:"all_keywords"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return types.KeywordProfile{}, fmt.Errorf("parsing keyword JSON: %w", err)
	}

	profile := types.KeywordProfile{
		Topic:            strings.TrimSpace(parsed.Topic),
		ResearchKeywords: cleanKeywords(parsed.ResearchKeywords),
		AllKeywords:      cleanKeywords(parsed.AllKeywords),
	}
	if len(profile.AllKeywords) == 0 {
		profile.AllKeywords = profile.ResearchKeywords
	}
	return profile, nil
}

// stripCodeFence removes a surrounding ```json ... ``` fence if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func cleanKeywords(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, kw := range raw {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// heuristicStopwords are excluded from frequency-based keyword selection.
var heuristicStopwords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"been": true, "were": true, "which": true, "their": true, "there": true,
	"these": true, "those": true, "about": true, "into": true, "also": true,
	"more": true, "most": true, "other": true, "some": true, "such": true,
	"than": true, "then": true, "them": true, "they": true, "will": true,
	"would": true, "could": true, "should": true, "where": true, "when": true,
	"what": true, "while": true, "because": true, "between": true,
	"through": true, "during": true, "each": true, "both": true, "very": true,
	"chapter": true, "section": true, "figure": true, "table": true,
	"introduction": true, "overview": true, "example": true, "important": true,
	"however": true, "therefore": true, "following": true, "using": true,
	"used": true, "many": true, "first": true, "second": true, "page": true,
}

// HeuristicProfile builds a keyword profile without the AI: capitalized
// multi-word phrases are taken as research keywords, frequent long words
// fill the broader list, and the first sentence supplies the topic. When
// the text yields no keywords at all, a fixed generic profile is
// returned so discovery degrades in quality, not correctness.
func HeuristicProfile(text string) types.KeywordProfile {
	phrases := capitalizedPhrases(text)
	frequent := frequentWords(text)

	research := cleanKeywords(append(phrases, frequent...))
	if len(research) == 0 {
		return genericProfile()
	}
	all := cleanKeywords(append(append([]string{}, research...), frequent...))

	return types.KeywordProfile{
		Topic:            firstSentence(text),
		ResearchKeywords: research,
		AllKeywords:      all,
	}
}

// genericProfile is the last-resort profile when no keywords can be
// derived from the text.
func genericProfile() types.KeywordProfile {
	return types.KeywordProfile{
		Topic:            "General academic study",
		ResearchKeywords: []string{"study skills", "learning strategies", "academic research"},
		AllKeywords:      []string{"study skills", "learning strategies", "academic research", "education"},
	}
}

// firstSentence returns the first sentence of the text, truncated to a
// topic-sized phrase.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i, r := range text {
		if r == '.' || r == '\n' || r == '!' || r == '?' {
			text = text[:i]
			break
		}
	}
	words := strings.Fields(text)
	if len(words) > 12 {
		words = words[:12]
	}
	return strings.Join(words, " ")
}

// capitalizedPhrases finds runs of two or more capitalized words past the
// start of a sentence, a cheap proxy for named concepts and proper terms.
func capitalizedPhrases(text string) []string {
	words := strings.Fields(text)
	var phrases []string
	var run []string

	flush := func() {
		if len(run) >= 2 {
			phrases = append(phrases, strings.Join(run, " "))
		}
		run = nil
	}

	sentenceStart := true
	for _, w := range words {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		endsSentence := strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?")

		if trimmed == "" {
			flush()
			sentenceStart = endsSentence || sentenceStart
			continue
		}

		first := []rune(trimmed)[0]
		if unicode.IsUpper(first) && !sentenceStart {
			run = append(run, trimmed)
		} else if unicode.IsUpper(first) && len(run) > 0 {
			run = append(run, trimmed)
		} else {
			flush()
		}

		sentenceStart = endsSentence
		if endsSentence {
			flush()
		}
	}
	flush()
	return phrases
}

// frequentWords returns long non-stopword words ordered by frequency.
func frequentWords(text string) []string {
	counts := make(map[string]int)
	order := make(map[string]int)
	i := 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(w) < 4 || heuristicStopwords[w] {
			continue
		}
		if counts[w] == 0 {
			order[w] = i
			i++
		}
		counts[w]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	// Frequency descending, first appearance breaking ties.
	sort.SliceStable(words, func(a, b int) bool {
		if counts[words[a]] != counts[words[b]] {
			return counts[words[a]] > counts[words[b]]
		}
		return order[words[a]] < order[words[b]]
	})

	if len(words) > maxKeywords {
		words = words[:maxKeywords]
	}
	return words
}
