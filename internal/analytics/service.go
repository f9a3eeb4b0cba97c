package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/fendylo/study-snap/internal/docstore"
	"github.com/fendylo/study-snap/internal/inference"
	"github.com/fendylo/study-snap/internal/quiz"
)

const (
	noQuizzesMessage        = "You haven't taken any quizzes yet. Generate a quiz from one of your notes to get started."
	noQuizzesForNoteMessage = "No quizzes have been generated for this note yet."

	// fallbackFeedback is used when the completion gateway fails; analytics
	// never propagates a feedback error to the caller.
	fallbackFeedback = "Keep up the good work! Every quiz you take helps you learn a little more."

	feedbackSystemPromptFormat = `You are an encouraging study coach.
A student's overall average quiz score is %d%%.
Write a short, friendly feedback message of two or three sentences about
their performance and one concrete suggestion to improve. Plain text only.`
)

// Service computes analytics reports from stored quizzes and asks the
// completion client for a feedback message.
type Service struct {
	store  *docstore.Store
	client inference.Client
}

func NewService(store *docstore.Store, client inference.Client) *Service {
	return &Service{
		store:  store,
		client: client,
	}
}

// Report aggregates the user's quizzes, optionally scoped to a note.
// Topics are grouped case-sensitively in first-seen order, which keeps the
// order of equal means deterministic after the descending sort.
func (service *Service) Report(ctx context.Context, userID, noteID string) (Report, error) {
	filters := map[string]string{
		"userId": userID,
	}
	if noteID != "" {
		filters["noteId"] = noteID
	}

	quizzes, err := docstore.Query[quiz.Quiz](ctx, service.store, docstore.CollectionQuizzes, filters)
	if err != nil {
		return Report{}, fmt.Errorf("query quizzes > %w", err)
	}

	if len(quizzes) == 0 {
		message := noQuizzesMessage
		if noteID != "" {
			message = noQuizzesForNoteMessage
		}
		return Report{IsEmpty: true, Message: message}, nil
	}

	topicScores, overall := aggregate(quizzes)

	return Report{
		TopicScores:    topicScores,
		OverallAverage: overall,
		Feedback:       service.feedback(ctx, overall),
	}, nil
}

func aggregate(quizzes []quiz.Quiz) ([]TopicScore, float64) {
	type topicGroup struct {
		sum   float64
		count int
	}

	var topicOrder []string
	groups := make(map[string]*topicGroup)
	overallSum := 0.0
	overallCount := 0

	for _, q := range quizzes {
		group, ok := groups[q.Topic]
		if !ok {
			group = &topicGroup{}
			groups[q.Topic] = group
			topicOrder = append(topicOrder, q.Topic)
		}
		if q.Score == nil {
			continue
		}
		group.sum += *q.Score
		group.count++
		overallSum += *q.Score
		overallCount++
	}

	topicScores := make([]TopicScore, 0, len(topicOrder))
	for _, topic := range topicOrder {
		group := groups[topic]
		mean := 0.0
		if group.count > 0 {
			mean = group.sum / float64(group.count)
		}
		topicScores = append(topicScores, TopicScore{Topic: topic, AverageScore: mean})
	}
	sort.SliceStable(topicScores, func(i, j int) bool {
		return topicScores[i].AverageScore > topicScores[j].AverageScore
	})

	overall := 0.0
	if overallCount > 0 {
		overall = overallSum / float64(overallCount)
	}
	return topicScores, overall
}

// feedback asks the completion client for a short message about the overall
// average. A gateway failure degrades to a fixed encouragement instead of
// failing the report.
func (service *Service) feedback(ctx context.Context, overall float64) string {
	percent := int(math.Round(overall * 100))
	response, err := service.client.Complete(ctx, inference.CompleteRequest{
		SystemPrompt: fmt.Sprintf(feedbackSystemPromptFormat, percent),
		UserPrompt:   "",
	})
	if err != nil {
		slog.Default().Warn("falling back to generic analytics feedback", "error", err)
		return fallbackFeedback
	}
	return response.Content
}
