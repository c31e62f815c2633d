// Package analyze asks the AI for tags and a better file name for an
// uploaded file. Analysis never fails: every problem yields the fallback
// suggestion.
package analyze

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/ai"
	"github.com/tagexplorer/backend/pkg/loader"
	"github.com/tagexplorer/backend/pkg/loader/doc"
	"github.com/tagexplorer/backend/pkg/loader/image"
	"github.com/tagexplorer/backend/pkg/loader/pdf"
	"github.com/tagexplorer/backend/pkg/loader/web"
	"github.com/tagexplorer/backend/pkg/logger"
)

const (
	DefaultModel   = "google/gemini-2.5-flash-lite"
	DefaultTimeout = 60 * time.Second

	// MaxAnswerTokens bounds the model's answer.
	MaxAnswerTokens = 500
	// Temperature keeps tag suggestions close to the file content.
	Temperature = 0.3
	// MaxDocumentChars and MaxDocumentTokens bound the document text sent
	// with the prompt. Both limits apply.
	MaxDocumentChars  = 4000
	MaxDocumentTokens = 1500
	// MinDocumentChars is the least amount of extracted PDF text considered
	// meaningful. Shorter text is replaced by ai.MinimalPDFTextNote.
	MinDocumentChars = 100

	suggestionSchemaName = "tag_suggestion"
	suggestionSchemaDesc = "Tags and an optional better file name for a file"
)

// Recorder persists the metrics of each analysis that reached the model.
type Recorder interface {
	RecordAnalysis(ctx context.Context, model string, metrics ai.ModelMetrics) error
}

// Input describes one file to analyse. ExistingTags are the normalized names
// of all tags known to the store.
type Input struct {
	File         loader.GraphFile
	FileName     string
	ExistingTags []string
}

// Result is the suggestion together with how it was obtained.
type Result struct {
	ai.TagSuggestion

	// Fallback is set when the suggestion is ai.FallbackSuggestion because
	// the model could not be used.
	Fallback bool            `json:"-"`
	Metrics  ai.ModelMetrics `json:"-"`
}

// Options configures an Analyzer.
type Options struct {
	Model      string
	Timeout    time.Duration
	Structured bool
	// Thinking is the reasoning effort passed to reasoning models, e.g. "low".
	Thinking   string
	Recorder   Recorder
}

type Analyzer struct {
	client     ai.Client
	model      string
	timeout    time.Duration
	structured bool
	thinking   string
	recorder   Recorder
}

// New returns an Analyzer. A nil client makes every analysis return the
// fallback suggestion.
func New(client ai.Client, opts Options) *Analyzer {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Analyzer{
		client:     client,
		model:      opts.Model,
		timeout:    opts.Timeout,
		structured: opts.Structured,
		thinking:   opts.Thinking,
		recorder:   opts.Recorder,
	}
}

// Configured reports whether an AI client is available.
func (a *Analyzer) Configured() bool {
	return a != nil && a.client != nil
}

// Analyze returns tag suggestions for in.File.
func (a *Analyzer) Analyze(ctx context.Context, in Input) Result {
	if !a.Configured() {
		logger.Debug("[Analyze] no AI client configured", "file", in.FileName)
		return fallback()
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var metrics ai.ModelMetrics
	opts := []ai.GenerateOption{
		ai.WithModel(a.model),
		ai.WithSystemPrompts(ai.TaggingSystemPrompt),
		ai.WithTemperature(Temperature),
		ai.WithMaxTokens(MaxAnswerTokens),
		ai.WithMetrics(&metrics),
	}
	if a.thinking != "" {
		opts = append(opts, ai.WithThinking(a.thinking))
	}

	start := time.Now()
	suggestion, err := a.suggest(ctx, in, opts)
	if metrics.WallClockMs == 0 {
		metrics.WallClockMs = time.Since(start).Milliseconds()
	}
	if metrics.TotalTokens > 0 && a.recorder != nil {
		if rerr := a.recorder.RecordAnalysis(context.WithoutCancel(ctx), a.model, metrics); rerr != nil {
			logger.Warn("[Analyze] failed to record usage", "err", rerr)
		}
	}
	if err != nil {
		logger.Warn("[Analyze] falling back to default tags", "file", in.FileName, "err", err)
		return fallback()
	}

	logger.Debug("[Analyze] analysis finished",
		"file", in.FileName,
		"existing", len(suggestion.ExistingTags),
		"new", len(suggestion.NewTags),
		"duration_ms", metrics.WallClockMs,
	)
	return Result{TagSuggestion: suggestion, Metrics: metrics}
}

var errUnparseable = errors.New("model answer contains no tag suggestion")

func (a *Analyzer) suggest(ctx context.Context, in Input, opts []ai.GenerateOption) (ai.TagSuggestion, error) {
	if in.File.Loader == nil {
		return ai.TagSuggestion{}, errors.New("file has no loader")
	}

	switch in.File.FileType {
	case loader.GraphFileTypeDocument, loader.GraphFileTypeText:
		text := a.documentText(ctx, in.File)
		prompt := ai.TaggingPrompt(ai.ContentDocument, in.ExistingTags, in.FileName) + text

		if a.structured {
			var out ai.TagSuggestion
			err := a.client.GenerateCompletionWithFormat(ctx, suggestionSchemaName, suggestionSchemaDesc, prompt, &out, opts...)
			if err != nil {
				return ai.TagSuggestion{}, err
			}
			return out.Normalize(), nil
		}

		answer, err := a.client.GenerateCompletion(ctx, prompt, opts...)
		if err != nil {
			return ai.TagSuggestion{}, err
		}
		return parse(answer, in.ExistingTags)

	default:
		b64, err := image.NewImageGraphLoader(in.File.Loader).GetBase64(ctx, in.File)
		if err != nil {
			return ai.TagSuggestion{}, err
		}
		prompt := ai.TaggingPrompt(ai.ContentImage, in.ExistingTags, in.FileName)
		answer, err := a.client.GenerateImageCompletion(ctx, prompt, b64, opts...)
		if err != nil {
			return ai.TagSuggestion{}, err
		}
		return parse(answer, in.ExistingTags)
	}
}

func parse(answer string, known []string) (ai.TagSuggestion, error) {
	s, ok := ai.ParseTagSuggestion(answer, known)
	if !ok {
		return ai.TagSuggestion{}, errUnparseable
	}
	return s, nil
}

// documentText extracts and truncates the text sent with a document prompt.
// Extraction failures degrade to the minimal text note.
func (a *Analyzer) documentText(ctx context.Context, file loader.GraphFile) string {
	raw, err := extractText(ctx, file)
	if err != nil {
		logger.Warn("[Analyze] text extraction failed", "file", file.ID, "err", err)
		return ai.MinimalPDFTextNote
	}

	text := strings.TrimSpace(string(raw))
	if len([]rune(text)) < MinDocumentChars {
		return ai.MinimalPDFTextNote
	}
	return TruncateDocument(text)
}

func extractText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	mimeType := strings.ToLower(file.MimeType)
	switch {
	case strings.HasPrefix(mimeType, loader.MimePDF):
		return pdf.NewPDFGraphLoader(file.Loader).GetFileText(ctx, file)
	case strings.HasPrefix(mimeType, loader.MimeDocx):
		return doc.NewDocGraphLoader(file.Loader).GetFileText(ctx, file)
	case strings.HasPrefix(mimeType, loader.MimeHTML):
		raw, err := file.GetText(ctx)
		if err != nil {
			return nil, err
		}
		return web.ExtractText(strings.NewReader(string(raw)), nil)
	default:
		return file.GetText(ctx)
	}
}

// TruncateDocument cuts text to MaxDocumentChars runes and MaxDocumentTokens
// tokens.
func TruncateDocument(text string) string {
	return ai.TruncateTokens(util.TruncateRunes(text, MaxDocumentChars), MaxDocumentTokens)
}

func fallback() Result {
	return Result{TagSuggestion: ai.FallbackSuggestion(), Fallback: true}
}
