package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/common"
)

const (
	// MaxAttempts bounds the tries of the upload pipeline.
	MaxAttempts       = 3
	InitialRetryDelay = time.Second
)

type ErrorCode string

const (
	CodeUploadFailed   ErrorCode = "UPLOAD_FAILED"
	CodeAnalysisFailed ErrorCode = "AI_ANALYSIS_FAILED"
	CodeUnknown        ErrorCode = "UNKNOWN_ERROR"
)

var messages = map[ErrorCode]string{
	CodeUploadFailed:   "Uploading the file failed. Check your connection.",
	CodeAnalysisFailed: "AI analysis failed. Try again or add tags manually.",
	CodeUnknown:        "An unexpected error occurred. Please try again.",
}

// PipelineError tags a failed pipeline step with a user facing code.
type PipelineError struct {
	Code ErrorCode
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Message returns the user facing text for err.
func Message(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		if m, ok := messages[pe.Code]; ok {
			return m
		}
	}
	return messages[CodeUnknown]
}

// Upload is a local file ready to be sent.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Uploaded is a stored but not yet saved file with its analysis.
type Uploaded struct {
	Upload
	StorageKey string
	Analysis   Analysis
}

// UploadAndAnalyze requests an upload URL, stores the bytes and asks for
// tag suggestions. The whole sequence is retried with exponential backoff.
func (c *Client) UploadAndAnalyze(ctx context.Context, up Upload) (Uploaded, error) {
	res, err := util.RetryWithBackoff(ctx, MaxAttempts-1, c.retryDelay, func(ctx context.Context) (Uploaded, error) {
		target, err := c.UploadURL(ctx, up.Name, up.ContentType)
		if err != nil {
			return Uploaded{}, &PipelineError{Code: CodeUploadFailed, Err: err}
		}
		if err := c.PutObject(ctx, target.UploadURL, up.ContentType, up.Data); err != nil {
			return Uploaded{}, &PipelineError{Code: CodeUploadFailed, Err: err}
		}

		analysis, err := c.Analyze(ctx, AnalyzeRequest{
			StorageKey: target.StorageKey,
			FileType:   up.ContentType,
			FileName:   up.Name,
		})
		if err != nil {
			return Uploaded{}, &PipelineError{Code: CodeAnalysisFailed, Err: err}
		}
		return Uploaded{Upload: up, StorageKey: target.StorageKey, Analysis: analysis}, nil
	})
	if err != nil {
		var pe *PipelineError
		if !errors.As(err, &pe) {
			err = &PipelineError{Code: CodeUnknown, Err: err}
		}
		return Uploaded{}, err
	}
	return res, nil
}

// Confirmation is the user's decision on an analysed upload. A nil Tags
// accepts every suggested tag; Name overrides the suggested name.
type Confirmation struct {
	Name string
	Tags []string
}

// Confirm saves the uploaded file and links the selected tags. The name is
// the explicit one, else the suggestion, else the original file name.
func (c *Client) Confirm(ctx context.Context, up Uploaded, conf Confirmation) (common.FileWithTags, error) {
	name := strings.TrimSpace(conf.Name)
	if name == "" && up.Analysis.SuggestedName != nil {
		name = strings.TrimSpace(*up.Analysis.SuggestedName)
	}
	if name == "" {
		name = up.Name
	}

	tags := conf.Tags
	if tags == nil {
		tags = up.Analysis.Tags()
	}

	size := int64(len(up.Data))
	return c.SaveFile(ctx, SaveFileRequest{
		StorageKey: up.StorageKey,
		Name:       name,
		Type:       up.ContentType,
		Size:       &size,
		Tags:       tags,
	})
}
