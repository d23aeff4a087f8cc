package sentiment

import (
	"context"
	"fmt"
	"go-reviewlens/types"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a sentiment analysis assistant."

// ChatCompleter is the part of *openai.Client the analyzer needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Analyzer struct {
	client ChatCompleter
	model  string
}

// NewClient builds an OpenAI client for the given key. An empty key returns nil,
// which leaves the analyzer disabled.
func NewClient(apiKey, baseURL string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// NewAnalyzer wraps client. A nil client yields an analyzer whose every call
// fails with ErrMissingAPIKey before anything is sent.
func NewAnalyzer(client ChatCompleter, model string) *Analyzer {
	if model == "" {
		model = openai.GPT4
	}
	a := &Analyzer{model: model}
	if c, ok := client.(*openai.Client); ok && c == nil {
		return a
	}
	a.client = client
	return a
}

func (a *Analyzer) Enabled() bool {
	return a != nil && a.client != nil
}

// BuildPrompt returns the user instruction sent for a review.
func BuildPrompt(review string, category types.Category) string {
	return fmt.Sprintf("Analyze the sentiment of the following %s review and provide sentiment contributions for each word (percentage):\n\nReview: %s", category, review)
}

// Analyze asks the model for a sentiment narrative of review.
// Every error it returns is a *Failure.
func (a *Analyzer) Analyze(ctx context.Context, review string, category types.Category) (string, error) {
	if !a.Enabled() {
		return "", &Failure{Kind: KindConfig, Err: ErrMissingAPIKey}
	}
	if types.IsBlankReview(review) {
		return "", &Failure{Kind: KindInvalid, Err: ErrEmptyReview}
	}
	if !category.Valid() {
		return "", &Failure{Kind: KindInvalid, Err: fmt.Errorf("%w %q", ErrUnknownCategory, category)}
	}

	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: BuildPrompt(review, category),
				},
			},
		},
	)
	if err != nil {
		log.Printf("Sentiment request failed: %v", err)
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &Failure{Kind: KindEmpty, Err: ErrEmptyResponse}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &Failure{Kind: KindEmpty, Err: ErrEmptyResponse}
	}

	return content, nil
}
