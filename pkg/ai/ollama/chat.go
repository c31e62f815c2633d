package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/tagexplorer/backend/pkg/ai"
)

const (
	defaultContext = 4096
	contextReserve = 200
)

// GenerateCompletion sends a single-turn prompt and returns assistant text.
func (c *OllamaClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.3,
	}, opts...)

	req := c.newRequest(options, api.Message{Role: "user", Content: prompt})
	return c.chat(ctx, req, options)
}

// GenerateCompletionWithFormat enforces a JSON schema and unmarshals into out.
func (c *OllamaClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) error {
	rv := reflect.ValueOf(out)
	if out == nil || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("out must be a non-nil pointer")
	}

	format, err := json.Marshal(ai.GenerateSchema(out))
	if err != nil {
		return err
	}

	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.chatModel,
		Temperature: 0.1,
	}, opts...)

	req := c.newRequest(options, api.Message{Role: "user", Content: prompt})
	req.Format = json.RawMessage(format)

	content, err := c.chat(ctx, req, options)
	if err != nil {
		return err
	}
	return ai.UnmarshalFlexible(content, out)
}

func (c *OllamaClient) newRequest(options ai.GenerateOptions, user api.Message) *api.ChatRequest {
	msgs := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sp})
	}
	msgs = append(msgs, user)

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": options.Temperature},
	}
	if options.MaxTokens > 0 {
		req.Options["num_predict"] = options.MaxTokens
	}
	if options.Thinking != "" {
		req.Think = &api.ThinkValue{
			Value: options.Thinking,
		}
	}

	if n := contextSize(msgs, options.MaxTokens); n > defaultContext {
		req.Options["num_ctx"] = n
	}
	return req
}

// contextSize estimates the context window needed for msgs plus the answer.
func contextSize(msgs []api.Message, maxTokens int) int {
	tokens := contextReserve + maxTokens
	for _, m := range msgs {
		tokens += ai.CountTokens(m.Content)
	}
	return tokens
}

func (c *OllamaClient) chat(ctx context.Context, req *api.ChatRequest, options ai.GenerateOptions) (string, error) {
	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	start := time.Now()
	var final api.ChatResponse
	if err := c.Client.Chat(rCtx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return "", err
	}

	c.metrics.Add(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
		WallClockMs:  time.Since(start).Milliseconds(),
	}, options)

	return final.Message.Content, nil
}
