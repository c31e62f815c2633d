package openai

import (
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"

	"github.com/tagexplorer/backend/pkg/ai"
)

// OpenAIClient implements ai.Client against any OpenAI compatible API. Chat,
// vision and embedding requests may target different endpoints.
//
// An OpenAIClient should be created using NewOpenAIClient.
type OpenAIClient struct {
	chatModel      string
	imageModel     string
	embeddingModel string
	embeddingDim   int

	timeout time.Duration
	reqLock *semaphore.Weighted
	metrics ai.MetricsTracker

	ChatClient      *openai.Client
	ImageClient     *openai.Client
	EmbeddingClient *openai.Client
}

var _ ai.Client = (*OpenAIClient)(nil)

// NewOpenAIClientParams configures NewOpenAIClient. The image endpoint falls
// back to the chat endpoint when ImageKey is empty. EmbeddingDim truncates or
// zero-pads vectors when set.
type NewOpenAIClientParams struct {
	ChatModel      string
	ImageModel     string
	EmbeddingModel string
	EmbeddingDim   int

	ChatURL      string
	ChatKey      string
	ImageURL     string
	ImageKey     string
	EmbeddingURL string
	EmbeddingKey string

	MaxConcurrentRequests int64
	Timeout               time.Duration

	// RequestOptions are appended to every underlying client.
	RequestOptions []option.RequestOption
}

// NewOpenAIClient creates a client. Endpoints without a key stay nil and the
// matching methods return ai.ErrNotConfigured.
//
// Example:
//
//	client := openai.NewOpenAIClient(openai.NewOpenAIClientParams{
//		ChatModel:      "gpt-4o-mini",
//		EmbeddingModel: "text-embedding-3-small",
//		ChatKey:        os.Getenv("AI_CHAT_KEY"),
//		EmbeddingKey:   os.Getenv("AI_EMBED_KEY"),
//	})
func NewOpenAIClient(params NewOpenAIClientParams) *OpenAIClient {
	imageURL, imageKey := params.ImageURL, params.ImageKey
	if imageKey == "" {
		imageURL, imageKey = params.ChatURL, params.ChatKey
	}
	imageModel := params.ImageModel
	if imageModel == "" {
		imageModel = params.ChatModel
	}

	parallel := params.MaxConcurrentRequests
	if parallel <= 0 {
		parallel = 4
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &OpenAIClient{
		chatModel:      params.ChatModel,
		imageModel:     imageModel,
		embeddingModel: params.EmbeddingModel,
		embeddingDim:   params.EmbeddingDim,

		timeout: timeout,
		reqLock: semaphore.NewWeighted(parallel),

		ChatClient:      newOpenaiClient(params.ChatURL, params.ChatKey, params.RequestOptions),
		ImageClient:     newOpenaiClient(imageURL, imageKey, params.RequestOptions),
		EmbeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey, params.RequestOptions),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
	extra []option.RequestOption,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	options = append(options, extra...)

	client := openai.NewClient(options...)

	return &client
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *OpenAIClient) ResetMetrics() {
	c.metrics.Reset()
}

// GetMetrics returns the accumulated metrics since the last reset.
func (c *OpenAIClient) GetMetrics() ai.ModelMetrics {
	return c.metrics.Get()
}
