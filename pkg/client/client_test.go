package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagexplorer/backend/pkg/export"
)

type fakeServer struct {
	*httptest.Server

	putFailures     atomic.Int32
	analyzeFailures atomic.Int32
	puts            atomic.Int32
	analyses        atomic.Int32

	stored []byte
	saved  SaveFileRequest
	auth   string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/files/upload-url", func(w http.ResponseWriter, r *http.Request) {
		fs.auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(UploadTarget{
			UploadURL:  fs.URL + "/blob/uploads/k1.png",
			StorageKey: "uploads/k1.png",
		})
	})
	mux.HandleFunc("PUT /blob/", func(w http.ResponseWriter, r *http.Request) {
		fs.puts.Add(1)
		if fs.putFailures.Add(-1) >= 0 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fs.stored, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /api/files/analyze", func(w http.ResponseWriter, r *http.Request) {
		fs.analyses.Add(1)
		if fs.analyzeFailures.Add(-1) >= 0 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"Internal server error"}`))
			return
		}
		name := "sunset-beach.png"
		_ = json.NewEncoder(w).Encode(Analysis{
			ExistingTags:  []string{"travel"},
			NewTags:       []string{"beach"},
			SuggestedName: &name,
		})
	})
	mux.HandleFunc("POST /api/files", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&fs.saved)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"f1","name":"` + fs.saved.Name + `","tags":[]}`))
	})
	mux.HandleFunc("GET /api/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="tagexplorer-export-2024-03-01.`+r.URL.Query().Get("format")+`"`)
		_, _ = w.Write([]byte("name,type,size,createdAt,tags\n"))
	})
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) client() *Client {
	return New(Options{BaseURL: fs.URL + "/", Token: "tok", RetryDelay: time.Millisecond})
}

func pngUpload() Upload {
	return Upload{Name: "IMG_0001.png", ContentType: "image/png", Data: []byte("png-bytes")}
}

func TestUploadAndAnalyze_Success(t *testing.T) {
	fs := newFakeServer(t)

	up, err := fs.client().UploadAndAnalyze(context.Background(), pngUpload())
	require.NoError(t, err)
	assert.Equal(t, "uploads/k1.png", up.StorageKey)
	assert.Equal(t, []string{"travel", "beach"}, up.Analysis.Tags())
	assert.Equal(t, []byte("png-bytes"), fs.stored)
	assert.Equal(t, "Bearer tok", fs.auth)
}

func TestUploadAndAnalyze_RetriesTransientFailures(t *testing.T) {
	fs := newFakeServer(t)
	fs.putFailures.Store(1)
	fs.analyzeFailures.Store(1)

	_, err := fs.client().UploadAndAnalyze(context.Background(), pngUpload())
	require.NoError(t, err)
	assert.Equal(t, int32(3), fs.puts.Load())
	assert.Equal(t, int32(2), fs.analyses.Load())
}

func TestUploadAndAnalyze_GivesUpAfterMaxAttempts(t *testing.T) {
	fs := newFakeServer(t)
	fs.analyzeFailures.Store(100)

	_, err := fs.client().UploadAndAnalyze(context.Background(), pngUpload())
	require.Error(t, err)

	var pe *PipelineError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, CodeAnalysisFailed, pe.Code)
	assert.Equal(t, int32(MaxAttempts), fs.analyses.Load())
	assert.Equal(t, messages[CodeAnalysisFailed], Message(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Internal server error", apiErr.Message)
}

func TestUploadAndAnalyze_UploadFailureCode(t *testing.T) {
	fs := newFakeServer(t)
	fs.putFailures.Store(100)

	_, err := fs.client().UploadAndAnalyze(context.Background(), pngUpload())
	assert.Equal(t, messages[CodeUploadFailed], Message(err))
	assert.Equal(t, int32(0), fs.analyses.Load())
}

func TestUploadAndAnalyze_Unreachable(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1", RetryDelay: time.Millisecond})
	_, err := c.UploadAndAnalyze(context.Background(), pngUpload())
	assert.Equal(t, messages[CodeUploadFailed], Message(err))
}

func TestMessage_Unknown(t *testing.T) {
	assert.Equal(t, messages[CodeUnknown], Message(errors.New("boom")))
	assert.Equal(t, messages[CodeUnknown], Message(&PipelineError{Code: "RATE_LIMITED"}))
}

func TestConfirm(t *testing.T) {
	fs := newFakeServer(t)
	c := fs.client()
	suggested := "sunset-beach.png"
	up := Uploaded{
		Upload:     pngUpload(),
		StorageKey: "uploads/k1.png",
		Analysis:   Analysis{ExistingTags: []string{"travel"}, NewTags: []string{"beach"}, SuggestedName: &suggested},
	}

	tests := []struct {
		name     string
		conf     Confirmation
		analysis func(a *Analysis)
		wantName string
		wantTags []string
	}{
		{name: "suggestion", wantName: "sunset-beach.png", wantTags: []string{"travel", "beach"}},
		{name: "custom name", conf: Confirmation{Name: "holiday.png"}, wantName: "holiday.png", wantTags: []string{"travel", "beach"}},
		{name: "selected tags", conf: Confirmation{Tags: []string{"travel"}}, wantName: "sunset-beach.png", wantTags: []string{"travel"}},
		{name: "no tags", conf: Confirmation{Tags: []string{}}, wantName: "sunset-beach.png", wantTags: []string{}},
		{
			name:     "original name",
			analysis: func(a *Analysis) { a.SuggestedName = nil },
			wantName: "IMG_0001.png",
			wantTags: []string{"travel", "beach"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := up
			if tt.analysis != nil {
				tt.analysis(&u.Analysis)
			}
			f, err := c.Confirm(context.Background(), u, tt.conf)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, f.Name)
			assert.Equal(t, tt.wantName, fs.saved.Name)
			assert.Equal(t, tt.wantTags, fs.saved.Tags)
			assert.Equal(t, "image/png", fs.saved.Type)
			require.NotNil(t, fs.saved.Size)
			assert.Equal(t, int64(9), *fs.saved.Size)
		})
	}
}

func TestExport(t *testing.T) {
	fs := newFakeServer(t)

	var buf bytes.Buffer
	name, err := fs.client().Export(context.Background(), export.FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, "tagexplorer-export-2024-03-01.csv", name)
	assert.True(t, strings.HasPrefix(buf.String(), "name,type"))
}

func TestAPIError_UsesErrorField(t *testing.T) {
	fs := newFakeServer(t)

	_, err := fs.client().ListTags(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthorized", apiErr.Message)
}
