package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fendylo/study-snap/internal/docstore"
)

var (
	// ErrAlreadyCompleted is returned when grading a quiz that has already
	// been completed.
	ErrAlreadyCompleted = errors.New("quiz has already been completed")
	// ErrIncompleteAnswers is returned when not every question has a
	// selected answer.
	ErrIncompleteAnswers = errors.New("every question needs a selected answer")
)

// Grader applies the one-shot Pending -> Completed transition.
type Grader struct {
	store *docstore.Store
}

func NewGrader(store *docstore.Store) *Grader {
	return &Grader{store: store}
}

// Submit grades the selected answers against the stored correct answers and
// persists the completion as a partial-field merge, so concurrent edits to
// other fields are untouched. The raw score fraction is persisted; rounding
// is a display concern. Selected answers are persisted with the completion
// so results stay reviewable later.
func (grader *Grader) Submit(ctx context.Context, target Quiz, selected map[string]string) (Quiz, error) {
	if target.Completed() {
		return Quiz{}, fmt.Errorf("quiz %s: %w", target.ID, ErrAlreadyCompleted)
	}
	if len(target.Questions) == 0 {
		return Quiz{}, fmt.Errorf("quiz %s has no questions", target.ID)
	}
	for _, question := range target.Questions {
		if _, ok := selected[question.ID]; !ok {
			return Quiz{}, fmt.Errorf("quiz %s question %s: %w", target.ID, question.ID, ErrIncompleteAnswers)
		}
	}

	correctCount := 0
	for _, question := range target.Questions {
		if selected[question.ID] == question.Answer {
			correctCount++
		}
	}
	score := float64(correctCount) / float64(len(target.Questions))
	completedAt := time.Now()

	err := grader.store.MergeFields(ctx, docstore.CollectionQuizzes, target.ID, map[string]any{
		"score":           score,
		"completedAt":     completedAt,
		"selectedAnswers": selected,
	})
	if err != nil {
		return Quiz{}, fmt.Errorf("store.MergeFields > %w", err)
	}

	target.Score = &score
	target.CompletedAt = &completedAt
	target.SelectedAnswers = selected
	return target, nil
}
