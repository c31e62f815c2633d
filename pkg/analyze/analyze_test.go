package analyze

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagexplorer/backend/pkg/ai"
	"github.com/tagexplorer/backend/pkg/loader"
	loaderio "github.com/tagexplorer/backend/pkg/loader/io"
)

type fakeClient struct {
	answer string
	err    error

	prompts    []string
	images     []loader.GraphBase64
	structured int
	options    ai.GenerateOptions
}

func (f *fakeClient) record(prompt string, opts []ai.GenerateOption) {
	f.prompts = append(f.prompts, prompt)
	f.options = ai.ApplyOptions(ai.GenerateOptions{}, opts...)
	if f.options.Metrics != nil && f.err == nil {
		*f.options.Metrics = ai.ModelMetrics{InputTokens: 100, OutputTokens: 20, TotalTokens: 120, DurationMs: 300}
	}
}

func (f *fakeClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	f.record(prompt, opts)
	return f.answer, f.err
}

func (f *fakeClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	f.structured++
	f.record(prompt, opts)
	if f.err != nil {
		return f.err
	}
	return ai.UnmarshalFlexible(f.answer, out)
}

func (f *fakeClient) GenerateImageCompletion(ctx context.Context, prompt string, image loader.GraphBase64, opts ...ai.GenerateOption) (string, error) {
	f.images = append(f.images, image)
	f.record(prompt, opts)
	return f.answer, f.err
}

func (f *fakeClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return nil, ai.ErrNotConfigured
}

func (f *fakeClient) ResetMetrics()               {}
func (f *fakeClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

type fakeRecorder struct {
	models  []string
	metrics []ai.ModelMetrics
}

func (r *fakeRecorder) RecordAnalysis(ctx context.Context, model string, m ai.ModelMetrics) error {
	r.models = append(r.models, model)
	r.metrics = append(r.metrics, m)
	return nil
}

func file(data, mimeType string) loader.GraphFile {
	return loader.NewGraphFile(loader.NewGraphFileParams{
		ID:       "f1",
		FilePath: "uploads/f1",
		MimeType: mimeType,
		Loader:   loaderio.NewBytesGraphFileLoader([]byte(data)),
	})
}

func TestAnalyze_NoClientReturnsFallback(t *testing.T) {
	a := New(nil, Options{})
	res := a.Analyze(context.Background(), Input{File: file("x", "image/png"), FileName: "IMG_1.png"})

	assert.True(t, res.Fallback)
	assert.Equal(t, []string{}, res.ExistingTags)
	assert.Equal(t, []string{ai.FallbackTag}, res.NewTags)
	assert.Nil(t, res.SuggestedName)
	assert.False(t, a.Configured())
}

func TestAnalyze_ImageSplitsTags(t *testing.T) {
	client := &fakeClient{answer: "Sure!\n```json\n{\"existingTags\":[\"Beach\"],\"newTags\":[\" Sunset \",\"\"],\"suggestedName\":\"beach-sunset.jpg\"}\n```"}
	rec := &fakeRecorder{}
	a := New(client, Options{Recorder: rec})

	res := a.Analyze(context.Background(), Input{
		File:         file("jpeg-bytes", "application/octet-stream"),
		FileName:     "IMG_20240301.jpg",
		ExistingTags: []string{"beach", "work"},
	})

	require.False(t, res.Fallback)
	assert.Equal(t, []string{"beach"}, res.ExistingTags)
	assert.Equal(t, []string{"sunset"}, res.NewTags)
	require.NotNil(t, res.SuggestedName)
	assert.Equal(t, "beach-sunset.jpg", *res.SuggestedName)

	require.Len(t, client.images, 1)
	assert.Equal(t, "data:image/jpeg;base64,", client.images[0].FileType)
	assert.Contains(t, client.prompts[0], `Existing tags in the system: ["beach", "work"]`)
	assert.Contains(t, client.prompts[0], `"IMG_20240301.jpg"`)
	assert.Equal(t, DefaultModel, client.options.Model)
	assert.Equal(t, MaxAnswerTokens, client.options.MaxTokens)
	assert.Equal(t, []string{ai.TaggingSystemPrompt}, client.options.SystemPrompts)
	assert.Equal(t, Temperature, client.options.Temperature)
	assert.Empty(t, client.options.Thinking)

	require.Len(t, rec.models, 1)
	assert.Equal(t, DefaultModel, rec.models[0])
	assert.Equal(t, 120, rec.metrics[0].TotalTokens)
}

func TestAnalyze_LegacyArrayAnswer(t *testing.T) {
	client := &fakeClient{answer: `["work", "Invoice"]`}
	a := New(client, Options{})

	res := a.Analyze(context.Background(), Input{
		File:         file("png", "image/png"),
		FileName:     "scan.png",
		ExistingTags: []string{"work"},
	})
	assert.Equal(t, []string{"work"}, res.ExistingTags)
	assert.Equal(t, []string{"invoice"}, res.NewTags)
	assert.Nil(t, res.SuggestedName)
}

func TestAnalyze_FailuresFallBack(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{name: "transport error", client: &fakeClient{err: errors.New("connection refused")}},
		{name: "not configured", client: &fakeClient{err: ai.ErrNotConfigured}},
		{name: "prose answer", client: &fakeClient{answer: "I cannot help with that."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			res := New(tt.client, Options{Recorder: rec}).Analyze(context.Background(), Input{File: file("x", "image/png")})
			assert.True(t, res.Fallback)
			assert.Equal(t, []string{ai.FallbackTag}, res.NewTags)
		})
	}
}

func TestAnalyze_TextDocumentIsTruncated(t *testing.T) {
	client := &fakeClient{answer: `{"existingTags":[],"newTags":["notes"],"suggestedName":null}`}
	a := New(client, Options{})

	body := strings.Repeat("meeting notes about the harbor project ", 300)
	res := a.Analyze(context.Background(), Input{File: file(body, "text/plain"), FileName: "notes.txt"})

	require.False(t, res.Fallback)
	assert.Equal(t, []string{"notes"}, res.NewTags)

	prompt := client.prompts[0]
	idx := strings.Index(prompt, "Document text:\n")
	require.NotEqual(t, -1, idx)
	sent := prompt[idx+len("Document text:\n"):]
	assert.LessOrEqual(t, len([]rune(sent)), MaxDocumentChars)
	assert.True(t, strings.HasPrefix(sent, "meeting notes"))
	assert.Empty(t, client.images)
}

func TestAnalyze_ShortDocumentUsesNote(t *testing.T) {
	client := &fakeClient{answer: `{"existingTags":[],"newTags":["scan"],"suggestedName":null}`}
	a := New(client, Options{})

	a.Analyze(context.Background(), Input{File: file("tiny", "text/plain"), FileName: "a.txt"})
	assert.True(t, strings.HasSuffix(client.prompts[0], ai.MinimalPDFTextNote))
}

func TestAnalyze_BrokenPDFUsesNote(t *testing.T) {
	client := &fakeClient{answer: `{"existingTags":[],"newTags":["scan"],"suggestedName":null}`}
	a := New(client, Options{})

	res := a.Analyze(context.Background(), Input{File: file("not a pdf", loader.MimePDF), FileName: "doc(3).pdf"})
	assert.False(t, res.Fallback)
	assert.True(t, strings.HasSuffix(client.prompts[0], ai.MinimalPDFTextNote))
}

func TestAnalyze_StructuredMode(t *testing.T) {
	client := &fakeClient{answer: `{"existingTags":["Work"],"newTags":[],"suggestedName":"  "}`}
	a := New(client, Options{Structured: true, Model: "gpt-4o-mini", Thinking: "low"})

	body := strings.Repeat("quarterly revenue grew in every region ", 10)
	res := a.Analyze(context.Background(), Input{File: file(body, "text/plain"), FileName: "q3.txt"})

	assert.Equal(t, 1, client.structured)
	assert.Equal(t, "gpt-4o-mini", client.options.Model)
	assert.Equal(t, "low", client.options.Thinking)
	assert.Equal(t, []string{"work"}, res.ExistingTags)
	assert.Equal(t, []string{}, res.NewTags)
	assert.Nil(t, res.SuggestedName)
}

func TestAnalyze_MissingLoaderFallsBack(t *testing.T) {
	client := &fakeClient{answer: `["x"]`}
	res := New(client, Options{}).Analyze(context.Background(), Input{File: loader.GraphFile{ID: "x"}})
	assert.True(t, res.Fallback)
	assert.Empty(t, client.prompts)
}

func TestTruncateDocument(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, TruncateDocument(short))

	long := strings.Repeat("ä", MaxDocumentChars+50)
	got := TruncateDocument(long)
	assert.LessOrEqual(t, len([]rune(got)), MaxDocumentChars)
	assert.True(t, strings.HasPrefix(long, got))
}
