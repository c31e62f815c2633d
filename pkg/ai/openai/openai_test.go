package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3/option"

	"github.com/tagexplorer/backend/pkg/ai"
	"github.com/tagexplorer/backend/pkg/loader"
)

const chatResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "test-model",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": %q}
	}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20}
}`

func newTestServer(t *testing.T, content string, requests *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		*requests = append(*requests, body)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			_, _ = w.Write([]byte(strings.Replace(chatResponse, "%q", mustQuote(content), 1)))
		case strings.HasSuffix(r.URL.Path, "/embeddings"):
			_, _ = w.Write([]byte(`{"object":"list","model":"embed","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25,0.125]}],"usage":{"prompt_tokens":3,"total_tokens":3}}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestClient(url string) *OpenAIClient {
	return NewOpenAIClient(NewOpenAIClientParams{
		ChatModel:      "test-model",
		EmbeddingModel: "embed",
		EmbeddingDim:   4,
		ChatURL:        url,
		ChatKey:        "key",
		EmbeddingURL:   url,
		EmbeddingKey:   "key",
		RequestOptions: []option.RequestOption{option.WithMaxRetries(0)},
	})
}

func TestGenerateCompletion(t *testing.T) {
	var requests []map[string]any
	srv := newTestServer(t, "hello", &requests)
	defer srv.Close()

	c := newTestClient(srv.URL)
	var m ai.ModelMetrics
	got, err := c.GenerateCompletion(context.Background(), "say hello",
		ai.WithMaxTokens(500), ai.WithMetrics(&m), ai.WithSystemPrompts("be brief"))
	if err != nil {
		t.Fatalf("GenerateCompletion() err = %v", err)
	}
	if got != "hello" {
		t.Fatalf("GenerateCompletion() = %q, want hello", got)
	}
	if m.InputTokens != 12 || m.OutputTokens != 8 || m.TotalTokens != 20 {
		t.Fatalf("metrics = %+v", m)
	}
	if c.GetMetrics().TotalTokens != 20 {
		t.Fatalf("GetMetrics() = %+v", c.GetMetrics())
	}
	c.ResetMetrics()
	if c.GetMetrics().TotalTokens != 0 {
		t.Fatal("ResetMetrics() did not clear totals")
	}

	if len(requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(requests))
	}
	req := requests[0]
	if req["model"] != "test-model" {
		t.Fatalf("model = %v", req["model"])
	}
	if req["max_tokens"] != float64(500) {
		t.Fatalf("max_tokens = %v", req["max_tokens"])
	}
	if msgs, _ := req["messages"].([]any); len(msgs) != 2 {
		t.Fatalf("messages = %v", req["messages"])
	}
}

func TestGenerateImageCompletion(t *testing.T) {
	var requests []map[string]any
	srv := newTestServer(t, `{"existingTags":[],"newTags":["beach"],"suggestedName":null}`, &requests)
	defer srv.Close()

	c := newTestClient(srv.URL)
	img := loader.EncodeBase64([]byte("img"), "image/png")
	got, err := c.GenerateImageCompletion(context.Background(), "tag this", img)
	if err != nil {
		t.Fatalf("GenerateImageCompletion() err = %v", err)
	}
	if !strings.Contains(got, "beach") {
		t.Fatalf("GenerateImageCompletion() = %q", got)
	}

	raw, _ := json.Marshal(requests[0]["messages"])
	for _, want := range []string{`"type":"text"`, `"type":"image_url"`, img.DataURL()} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("messages %s missing %s", raw, want)
		}
	}
}

func TestGenerateCompletionWithFormat(t *testing.T) {
	var requests []map[string]any
	srv := newTestServer(t, `{"existingTags":["work"],"newTags":["report"],"suggestedName":""}`, &requests)
	defer srv.Close()

	c := newTestClient(srv.URL)
	var out ai.TagSuggestion
	if err := c.GenerateCompletionWithFormat(context.Background(), "tags", "tag suggestion", "tag this", &out); err != nil {
		t.Fatalf("GenerateCompletionWithFormat() err = %v", err)
	}
	if len(out.ExistingTags) != 1 || out.ExistingTags[0] != "work" {
		t.Fatalf("out = %+v", out)
	}
	format, _ := requests[0]["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("response_format = %v", requests[0]["response_format"])
	}

	if err := c.GenerateCompletionWithFormat(context.Background(), "tags", "", "x", out); err == nil {
		t.Fatal("expected error for non-pointer out")
	}
}

func TestGenerateEmbeddings(t *testing.T) {
	var requests []map[string]any
	srv := newTestServer(t, "", &requests)
	defer srv.Close()

	c := newTestClient(srv.URL)
	got, err := c.GenerateEmbeddings(context.Background(), [][]byte{[]byte("  "), []byte("tag: work")})
	if err != nil {
		t.Fatalf("GenerateEmbeddings() err = %v", err)
	}
	want := [][]float32{{0, 0, 0, 0}, {0.5, 0.25, 0.125, 0}}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("GenerateEmbeddings() = %v, want %v", got, want)
			}
		}
	}
	if len(requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(requests))
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewOpenAIClient(NewOpenAIClientParams{ChatModel: "m"})
	ctx := context.Background()

	if _, err := c.GenerateCompletion(ctx, "x"); !errors.Is(err, ai.ErrNotConfigured) {
		t.Fatalf("GenerateCompletion() err = %v", err)
	}
	if _, err := c.GenerateImageCompletion(ctx, "x", loader.GraphBase64{}); !errors.Is(err, ai.ErrNotConfigured) {
		t.Fatalf("GenerateImageCompletion() err = %v", err)
	}
	if _, err := c.GenerateEmbedding(ctx, []byte("x")); !errors.Is(err, ai.ErrNotConfigured) {
		t.Fatalf("GenerateEmbedding() err = %v", err)
	}
}

func TestFitDimensions(t *testing.T) {
	if got := fitDimensions([]float64{1, 2, 3}, 2); len(got) != 2 || got[1] != 2 {
		t.Fatalf("truncate = %v", got)
	}
	if got := fitDimensions([]float64{1}, 3); len(got) != 3 || got[2] != 0 {
		t.Fatalf("pad = %v", got)
	}
	if got := fitDimensions([]float64{1, 2}, 0); len(got) != 2 {
		t.Fatalf("keep = %v", got)
	}
}
