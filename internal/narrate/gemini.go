package narrate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/huangsam/devpulse/internal/contract"
	"github.com/huangsam/devpulse/schema"
)

// DefaultGeminiBaseURL is the public Generative Language API endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiNarrator generates text with the Gemini generateContent REST API.
type GeminiNarrator struct {
	*Templates
	client      *resty.Client
	model       string
	temperature float64
	maxTokens   int
}

var _ contract.Narrator = &GeminiNarrator{} // Compile-time check

// NewGeminiNarrator creates a narrator from the LLM settings in cfg.
func NewGeminiNarrator(cfg *contract.Config) *GeminiNarrator {
	baseURL := cfg.LLMBaseURL
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("x-goog-api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(max(cfg.Retries, 0)).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled)
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.LLMTimeout > 0 {
		client.SetTimeout(cfg.LLMTimeout)
	}
	return &GeminiNarrator{
		Templates:   NewTemplates(),
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate implements the Narrator interface.
func (n *GeminiNarrator) Generate(ctx context.Context, pc schema.PromptContext) (string, error) {
	prompt, err := n.RenderPrompt(pc)
	if err != nil {
		return "", err
	}
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     n.temperature,
			MaxOutputTokens: n.maxTokens,
		},
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetPathParam("model", n.model).
		SetBody(body).
		SetResult(&geminiResponse{}).
		SetError(&geminiError{}).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", pc.Kind, err)
	}
	if !resp.IsSuccess() {
		if apiErr, ok := resp.Error().(*geminiError); ok && apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini %s: status %d: %s", pc.Kind, resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini %s: status %d", pc.Kind, resp.StatusCode())
	}

	result := resp.Result().(*geminiResponse)
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini %s: empty response", pc.Kind)
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
