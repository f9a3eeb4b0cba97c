// Package groq implements the inference client against the Groq
// OpenAI-compatible chat completion endpoint.
package groq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"resty.dev/v3"

	"github.com/fendylo/study-snap/internal/config"
	"github.com/fendylo/study-snap/internal/inference"
)

type Client struct {
	httpClient  *resty.Client
	model       string
	temperature float32
}

// NewClient creates a chat completion client. Requests are never retried;
// a failure surfaces to the caller.
func NewClient(cfg config.GroqConfig) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	return &Client{
		httpClient:  client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete implements the inference.Client interface.
func (client *Client) Complete(
	ctx context.Context,
	params inference.CompleteRequest,
) (inference.CompleteResponse, error) {
	requestBody := ChatCompletionRequest{
		Model:       client.model,
		Temperature: client.temperature,
		Messages: []Message{
			{Role: RoleSystem, Content: params.SystemPrompt},
			{Role: RoleUser, Content: params.UserPrompt},
		},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.CompleteResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.CompleteResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.CompleteResponse{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return inference.CompleteResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("groq response content",
		"model", responseBody.Model,
		"totalTokens", responseBody.Usage.TotalTokens,
	)

	return inference.CompleteResponse{Content: content}, nil
}
