package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deep-research/config"
	"deep-research/internal/core/prompt"
	"deep-research/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrModelCall covers every way a completion can fail: timeout, auth, rate limit, bad response.
var ErrModelCall = errors.New("model call failed")

// ModelConfig is the static description of the model a pipeline talks to.
type ModelConfig struct {
	Name              string
	ContextLength     int
	MaxTokensPerChunk int
	Temperature       float64
	Timeout           time.Duration
}

// CompletionOptions tune a single completion call.
type CompletionOptions struct {
	MaxOutputTokens int
	Temperature     float64
	Timeout         time.Duration
}

// Options derives per-call options from the model configuration.
func (m ModelConfig) Options() CompletionOptions {
	return CompletionOptions{
		MaxOutputTokens: m.MaxTokensPerChunk,
		Temperature:     m.Temperature,
		Timeout:         m.Timeout,
	}
}

// Client completes one system/user message pair.
type Client interface {
	Complete(ctx context.Context, msgs prompt.Messages, opts CompletionOptions) (string, error)
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient builds a client for baseURL. Automatic retries are disabled; the
// pipeline treats a failed call as a skipped chunk.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/"))
	}
	return &OpenAIClient{client: openai.NewClient(opts...), model: model}
}

func (c *OpenAIClient) Complete(ctx context.Context, msgs prompt.Messages, opts CompletionOptions) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(msgs.System),
			openai.UserMessage(msgs.User),
		},
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxOutputTokens))
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCall, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrModelCall)
	}

	logger.WithModule(config.ModuleLLM).WithFields(map[string]interface{}{
		"model":             c.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"elapsed_ms":        time.Since(start).Milliseconds(),
	}).Debug("completion done")

	return resp.Choices[0].Message.Content, nil
}
