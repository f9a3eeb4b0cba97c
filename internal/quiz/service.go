package quiz

import (
	"context"
	"fmt"

	"github.com/fendylo/study-snap/internal/docstore"
)

// Service provides read access to stored quizzes.
type Service struct {
	store *docstore.Store
}

func NewService(store *docstore.Store) *Service {
	return &Service{store: store}
}

// List returns the user's quizzes, optionally scoped to a source note.
func (service *Service) List(ctx context.Context, userID, noteID string) ([]Quiz, error) {
	filters := map[string]string{
		"userId": userID,
	}
	if noteID != "" {
		filters["noteId"] = noteID
	}

	quizzes, err := docstore.Query[Quiz](ctx, service.store, docstore.CollectionQuizzes, filters)
	if err != nil {
		return nil, fmt.Errorf("query quizzes > %w", err)
	}
	return quizzes, nil
}

// Get returns a single quiz by id.
func (service *Service) Get(ctx context.Context, id string) (Quiz, error) {
	stored, err := docstore.Get[Quiz](ctx, service.store, docstore.CollectionQuizzes, id)
	if err != nil {
		return Quiz{}, fmt.Errorf("docstore.Get > %w", err)
	}
	return stored, nil
}
