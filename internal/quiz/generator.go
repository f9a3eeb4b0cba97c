package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fendylo/study-snap/internal/config"
	"github.com/fendylo/study-snap/internal/docstore"
	"github.com/fendylo/study-snap/internal/inference"
	"github.com/fendylo/study-snap/internal/note"
)

// ErrInsufficientContent is returned when a note does not carry enough text
// to generate a quiz from.
var ErrInsufficientContent = errors.New("not enough text content to generate a quiz")

const generateSystemPromptFormat = `You are a smart quiz generator.

Based on the following context, you must generate:

1. A **short main topic** title (e.g., "Basics of Flutter", "Photosynthesis Overview").
2. A list of %d multiple choice questions with %d answer options each.

Respond ONLY in this JSON format example:

{
  "topic": "Your Generated Topic Here",
  "questions": [
    {
      "question": "What is Flutter used for?",
      "choices": ["Mobile development", "Backend", "AI research", "Embedded systems"],
      "answer": "Mobile development"
    }
  ]
}

Context:
%s`

type generatedQuestion struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   string   `json:"answer"`
}

type generatedQuizResponse struct {
	Topic     string              `json:"topic"`
	Questions []generatedQuestion `json:"questions"`
}

// Generator builds quizzes from notes through the completion client and
// persists them in the document store.
type Generator struct {
	store  *docstore.Store
	client inference.Client
	cfg    config.QuizConfig
}

func NewGenerator(store *docstore.Store, client inference.Client, cfg config.QuizConfig) *Generator {
	return &Generator{
		store:  store,
		client: client,
		cfg:    cfg,
	}
}

// Generate creates a quiz from the note's text content and persists it.
// Notes below the minimum word count fail with ErrInsufficientContent
// before any completion call, and nothing is persisted on any failure.
func (generator *Generator) Generate(ctx context.Context, userID string, source note.Note) (Quiz, error) {
	texts := source.TextContent()

	wordCount := len(strings.Fields(strings.Join(texts, " ")))
	if wordCount < generator.cfg.MinContentWords {
		return Quiz{}, fmt.Errorf("note %s has %d words, need %d: %w",
			source.ID, wordCount, generator.cfg.MinContentWords, ErrInsufficientContent)
	}

	promptContext := strings.Join(texts, "\n")
	response, err := generator.client.Complete(ctx, inference.CompleteRequest{
		SystemPrompt: fmt.Sprintf(generateSystemPromptFormat,
			generator.cfg.QuestionCount, generator.cfg.ChoiceCount, promptContext),
		UserPrompt: "",
	})
	if err != nil {
		return Quiz{}, fmt.Errorf("client.Complete > %w", err)
	}

	var decoded generatedQuizResponse
	if err := json.Unmarshal([]byte(response.Content), &decoded); err != nil {
		return Quiz{}, fmt.Errorf("json.Unmarshal(%s) > %w", response.Content, err)
	}

	questions := make([]Question, 0, len(decoded.Questions))
	for _, q := range decoded.Questions {
		questions = append(questions, Question{
			ID:       uuid.NewString(),
			Question: q.Question,
			Choices:  q.Choices,
			Answer:   q.Answer,
		})
	}

	generated := Quiz{
		ID:        uuid.NewString(),
		UserID:    userID,
		NoteID:    source.ID,
		Topic:     decoded.Topic,
		Questions: questions,
		CreatedAt: time.Now(),
	}
	if _, err := generator.store.Put(ctx, docstore.CollectionQuizzes, generated.ID, generated); err != nil {
		return Quiz{}, fmt.Errorf("store.Put > %w", err)
	}
	return generated, nil
}
