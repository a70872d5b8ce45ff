// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package study

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pdiddy/study-engine/pkg/types"
)

var (
	cardHeaderRe     = regexp.MustCompile(`(?mi)^CARD\s+\d+\s*:`)
	questionHeaderRe = regexp.MustCompile(`(?mi)^QUESTION\s+\d+\s*:`)
	optionRe         = regexp.MustCompile(`(?m)^\s*([A-D])\)\s*(.+)$`)
)

// ParseFlashcards parses model output into flashcards. Models sometimes
// answer in JSON despite the prompted text format, so that is tried
// first; otherwise the CARD block format applies. Blocks missing a
// question or answer are skipped.
func ParseFlashcards(raw string) []types.Flashcard {
	if cards := parseFlashcardJSON(raw); len(cards) > 0 {
		return cards
	}

	var cards []types.Flashcard
	for _, block := range splitBlocks(raw, cardHeaderRe) {
		card := types.Flashcard{
			Question:   fieldAfter(block, "Q:"),
			Answer:     fieldAfter(block, "A:"),
			Difficulty: fieldAfter(block, "DIFFICULTY:"),
		}
		if card.Question == "" || card.Answer == "" {
			continue
		}
		if card.Difficulty == "" {
			card.Difficulty = "Intermediate"
		}
		cards = append(cards, card)
	}
	return cards
}

// ParseQuiz parses model output into quiz questions, trying JSON first
// and then the QUESTION block format. A question needs all four options
// and a correct answer to be kept.
func ParseQuiz(raw string) []types.QuizQuestion {
	if questions := parseQuizJSON(raw); len(questions) > 0 {
		return questions
	}

	var questions []types.QuizQuestion
	for _, block := range splitBlocks(raw, questionHeaderRe) {
		q := types.QuizQuestion{
			Question:    headerRemainder(block, questionHeaderRe),
			Explanation: fieldAfter(block, "EXPLANATION:"),
		}

		options := map[string]string{}
		for _, m := range optionRe.FindAllStringSubmatch(block, -1) {
			options[m[1]] = strings.TrimSpace(m[2])
		}
		for _, letter := range []string{"A", "B", "C", "D"} {
			if opt, ok := options[letter]; ok {
				q.Options = append(q.Options, opt)
			}
		}

		answer := fieldAfter(block, "CORRECT ANSWER:")
		answer = strings.ToUpper(strings.Trim(answer, "[] ."))
		if len(answer) > 1 {
			answer = answer[:1]
		}
		q.CorrectAnswer = answer

		if q.Question == "" || len(q.Options) != 4 || q.CorrectAnswer == "" {
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func parseFlashcardJSON(raw string) []types.Flashcard {
	var decoded []struct {
		Question   string `json:"question"`
		Answer     string `json:"answer"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.Unmarshal([]byte(stripFence(raw)), &decoded); err != nil {
		return nil
	}

	var cards []types.Flashcard
	for _, d := range decoded {
		if d.Question == "" || d.Answer == "" {
			continue
		}
		if d.Difficulty == "" {
			d.Difficulty = "Intermediate"
		}
		cards = append(cards, types.Flashcard{
			Question:   d.Question,
			Answer:     d.Answer,
			Difficulty: d.Difficulty,
		})
	}
	return cards
}

func parseQuizJSON(raw string) []types.QuizQuestion {
	var decoded []struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
		Explanation   string   `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(stripFence(raw)), &decoded); err != nil {
		return nil
	}

	var questions []types.QuizQuestion
	for _, d := range decoded {
		answer := strings.ToUpper(strings.Trim(d.CorrectAnswer, "[] ."))
		if len(answer) > 1 {
			answer = answer[:1]
		}
		if d.Question == "" || len(d.Options) != 4 || answer == "" {
			continue
		}
		questions = append(questions, types.QuizQuestion{
			Question:      d.Question,
			Options:       d.Options,
			CorrectAnswer: answer,
			Explanation:   d.Explanation,
		})
	}
	return questions
}

// stripFence removes a surrounding Markdown code fence, if any.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// splitBlocks cuts raw into blocks, each starting at a header match.
// Text before the first header (preamble like "Here are your cards")
// is dropped.
func splitBlocks(raw string, header *regexp.Regexp) []string {
	locs := header.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return nil
	}

	var blocks []string
	for i, loc := range locs {
		end := len(raw)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := raw[loc[0]:end]
		block = strings.TrimSuffix(strings.TrimSpace(block), "---")
		blocks = append(blocks, strings.TrimSpace(block))
	}
	return blocks
}

// fieldAfter returns the text following the first line that starts with
// prefix, joined with any continuation lines up to the next labelled
// line or separator.
func fieldAfter(block, prefix string) string {
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(trimmed), strings.ToUpper(prefix)) {
			continue
		}

		parts := []string{strings.TrimSpace(trimmed[len(prefix):])}
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" || next == "---" || looksLabelled(next) {
				break
			}
			parts = append(parts, next)
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	}
	return ""
}

// headerRemainder returns the text after the header on its line, e.g.
// the question text after "QUESTION 3:".
func headerRemainder(block string, header *regexp.Regexp) string {
	firstLine := block
	if i := strings.IndexByte(block, '\n'); i >= 0 {
		firstLine = block[:i]
	}
	loc := header.FindStringIndex(firstLine)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(firstLine[loc[1]:])
}

// looksLabelled reports whether a line starts a new labelled field
// (Q:, A:, DIFFICULTY:, A)-D) options, CORRECT ANSWER:, EXPLANATION:).
func looksLabelled(line string) bool {
	upper := strings.ToUpper(line)
	for _, p := range []string{"Q:", "A:", "DIFFICULTY:", "CORRECT ANSWER:", "EXPLANATION:"} {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return optionRe.MatchString(line) || cardHeaderRe.MatchString(line) || questionHeaderRe.MatchString(line)
}
