// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Flashcard is one study card.
type Flashcard struct {
	Question   string `json:"question" yaml:"question"`
	Answer     string `json:"answer" yaml:"answer"`
	Difficulty string `json:"difficulty" yaml:"difficulty"` // Basic, Intermediate, Advanced
}

// QuizQuestion is one multiple-choice question. Options are the four
// answer texts in A-D order; CorrectAnswer is the letter.
type QuizQuestion struct {
	Question      string   `json:"question" yaml:"question"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correct_answer" yaml:"correct_answer"`
	Explanation   string   `json:"explanation" yaml:"explanation"`
}
