// Package aiclient builds the AI adapter selected by AI_ADAPTER.
package aiclient

import (
	"fmt"
	"time"

	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/ai"
	oai "github.com/tagexplorer/backend/pkg/ai/ollama"
	gai "github.com/tagexplorer/backend/pkg/ai/openai"
)

const (
	AdapterOpenAI = "openai"
	AdapterOllama = "ollama"
)

// Config is the AI configuration read from the environment.
type Config struct {
	Adapter string

	ChatURL, ChatKey, ChatModel    string
	ImageURL, ImageKey, ImageModel string
	EmbedURL, EmbedKey, EmbedModel string
	EmbedDim                       int

	ParallelRequests int64
	Timeout          time.Duration
}

// ConfigFromEnv reads the AI_* variables.
func ConfigFromEnv() Config {
	return Config{
		Adapter: util.GetEnvString("AI_ADAPTER", AdapterOpenAI),

		ChatURL:   util.GetEnv("AI_CHAT_URL"),
		ChatKey:   util.GetEnv("AI_CHAT_KEY"),
		ChatModel: util.GetEnv("AI_CHAT_MODEL"),

		ImageURL:   util.GetEnv("AI_IMAGE_URL"),
		ImageKey:   util.GetEnv("AI_IMAGE_KEY"),
		ImageModel: util.GetEnv("AI_IMAGE_MODEL"),

		EmbedURL:   util.GetEnv("AI_EMBED_URL"),
		EmbedKey:   util.GetEnv("AI_EMBED_KEY"),
		EmbedModel: util.GetEnv("AI_EMBED_MODEL"),
		EmbedDim:   int(util.GetEnvNumeric("AI_EMBED_DIM", 0)),

		ParallelRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		Timeout:          time.Duration(util.GetEnvNumeric("AI_TIMEOUT_MIN", 2)) * time.Minute,
	}
}

// Configured reports whether enough is set to reach a model. The OpenAI
// adapter needs a chat key, Ollama a chat model.
func (c Config) Configured() bool {
	switch c.Adapter {
	case AdapterOllama:
		return c.ChatModel != ""
	default:
		return c.ChatKey != ""
	}
}

// New builds the adapter. It returns a nil client when the configuration is
// incomplete, so callers fall back to default tags.
func New(c Config) (ai.Client, error) {
	if !c.Configured() {
		return nil, nil
	}

	switch c.Adapter {
	case AdapterOllama:
		client, err := oai.NewOllamaClient(oai.NewOllamaClientParams{
			ChatModel:      c.ChatModel,
			ImageModel:     c.ImageModel,
			EmbeddingModel: c.EmbedModel,
			EmbeddingDim:   c.EmbedDim,

			BaseURL: c.ChatURL,
			ApiKey:  c.ChatKey,

			MaxConcurrentRequests: c.ParallelRequests,
			Timeout:               c.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create Ollama client: %w", err)
		}
		return client, nil
	case AdapterOpenAI:
		return gai.NewOpenAIClient(gai.NewOpenAIClientParams{
			ChatModel:      c.ChatModel,
			ImageModel:     c.ImageModel,
			EmbeddingModel: c.EmbedModel,
			EmbeddingDim:   c.EmbedDim,

			ChatURL:      c.ChatURL,
			ChatKey:      c.ChatKey,
			ImageURL:     c.ImageURL,
			ImageKey:     c.ImageKey,
			EmbeddingURL: c.EmbedURL,
			EmbeddingKey: c.EmbedKey,

			MaxConcurrentRequests: c.ParallelRequests,
			Timeout:               c.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q", c.Adapter)
	}
}
