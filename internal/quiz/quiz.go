// Package quiz implements quiz generation from notes and one-shot grading.
package quiz

import (
	"time"
)

// Question is a single multiple-choice question. The id is generated at
// creation time so two questions with identical text stay distinguishable.
type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   string   `json:"answer"`
}

// Quiz is a generated set of multiple-choice questions tied to a source
// note. A quiz with no completion timestamp is pending; once completed it
// is terminal and cannot be graded again.
type Quiz struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	NoteID          string            `json:"noteId"`
	Topic           string            `json:"topic"`
	Questions       []Question        `json:"questions"`
	CreatedAt       time.Time         `json:"createdAt"`
	CompletedAt     *time.Time        `json:"completedAt,omitempty"`
	Score           *float64          `json:"score,omitempty"`
	SelectedAnswers map[string]string `json:"selectedAnswers,omitempty"`
}

// Completed reports whether the quiz has been graded.
func (quiz Quiz) Completed() bool {
	return quiz.CompletedAt != nil
}
