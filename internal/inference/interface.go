package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client is the boundary around the hosted chat completion API.
// The caller supplies a single-turn system + user prompt pair and receives
// the first choice's message text.
type Client interface {
	Complete(ctx context.Context, params CompleteRequest) (CompleteResponse, error)
}

// CompleteRequest holds a single-turn prompt exchange.
type CompleteRequest struct {
	SystemPrompt string
	UserPrompt   string
}

type CompleteResponse struct {
	Content string
}
