package ollama

import (
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"

	"github.com/tagexplorer/backend/pkg/ai"
)

// OllamaClient implements ai.Client using Ollama as the backend.
// It supports text generation, embeddings and image prompts via
// locally-hosted models.
type OllamaClient struct {
	chatModel      string
	imageModel     string
	embeddingModel string
	embeddingDim   int

	timeout time.Duration
	reqLock *semaphore.Weighted
	metrics ai.MetricsTracker

	Client *api.Client
}

var _ ai.Client = (*OllamaClient)(nil)

// NewOllamaClientParams contains configuration options for creating a new OllamaClient.
type NewOllamaClientParams struct {
	ChatModel      string
	ImageModel     string
	EmbeddingModel string
	EmbeddingDim   int

	BaseURL string
	ApiKey  string

	MaxConcurrentRequests int64
	Timeout               time.Duration
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewOllamaClient creates a new Ollama-based AI client. It connects to the
// server at BaseURL, or to the address in OLLAMA_HOST when BaseURL is empty.
func NewOllamaClient(params NewOllamaClientParams) (*OllamaClient, error) {
	var (
		cli *api.Client
		err error
	)

	headers := map[string]string{}
	if params.ApiKey != "" {
		headers["Authorization"] = "Bearer " + params.ApiKey
	}
	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: headers,
			rt:      http.DefaultTransport,
		},
	}

	if params.BaseURL != "" {
		u, perr := url.Parse(params.BaseURL)
		if perr != nil {
			return nil, perr
		}
		cli = api.NewClient(u, httpClient)
	} else {
		cli, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	imageModel := params.ImageModel
	if imageModel == "" {
		imageModel = params.ChatModel
	}
	parallel := params.MaxConcurrentRequests
	if parallel <= 0 {
		parallel = 1
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &OllamaClient{
		chatModel:      params.ChatModel,
		imageModel:     imageModel,
		embeddingModel: params.EmbeddingModel,
		embeddingDim:   params.EmbeddingDim,

		timeout: timeout,
		reqLock: semaphore.NewWeighted(parallel),

		Client: cli,
	}, nil
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *OllamaClient) ResetMetrics() {
	c.metrics.Reset()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *OllamaClient) GetMetrics() ai.ModelMetrics {
	return c.metrics.Get()
}
