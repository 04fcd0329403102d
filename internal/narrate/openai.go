package narrate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
	"github.com/sashabaranov/go-openai"
)

const systemMessage = "You are an engineering analytics assistant. Answer in plain prose for engineering leadership."

// OpenAINarrator generates text with an OpenAI-compatible chat completion API.
type OpenAINarrator struct {
	*Templates
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	retries     int
}

var _ contract.Narrator = &OpenAINarrator{} // Compile-time check

// NewOpenAINarrator creates a narrator from the LLM settings in cfg.
func NewOpenAINarrator(cfg *contract.Config) *OpenAINarrator {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.LLMBaseURL != "" {
		config.BaseURL = strings.TrimSuffix(cfg.LLMBaseURL, "/")
	}
	return &OpenAINarrator{
		Templates:   NewTemplates(),
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.LLMTimeout,
		retries:     cfg.Retries,
	}
}

// Generate implements the Narrator interface.
func (n *OpenAINarrator) Generate(ctx context.Context, pc schema.PromptContext) (string, error) {
	prompt, err := n.RenderPrompt(pc)
	if err != nil {
		return "", err
	}
	req := openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(n.temperature),
		MaxTokens:   n.maxTokens,
	}

	var text string
	err = contract.Retry(ctx, n.retries, func() error {
		callCtx, cancel := withTimeout(ctx, n.timeout)
		defer cancel()

		resp, err := n.client.CreateChatCompletion(callCtx, req)
		if err != nil {
			if retryableOpenAI(err) {
				return err
			}
			return contract.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return contract.Permanent(errors.New("openai returned no choices"))
		}
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("openai %s: %w", pc.Kind, err)
	}
	return text, nil
}

func retryableOpenAI(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// withTimeout bounds one generation call. A non-positive timeout only
// propagates cancellation.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
