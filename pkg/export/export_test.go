package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagexplorer/backend/pkg/common"
)

func sample() Data {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	size := int64(2048)
	return New(
		[]common.File{
			{ID: "f1", Name: "report, final.pdf", Type: "application/pdf", Size: &size, CreatedAt: created},
			{ID: "f2", Name: `say "hi".png`, Type: "image/png", CreatedAt: created},
		},
		[]common.Tag{
			{ID: "t1", Name: "work"},
			{ID: "t2", Name: "2024"},
		},
		[]common.FileTag{
			{FileID: "f1", TagID: "t2"},
			{FileID: "f1", TagID: "t1"},
			{FileID: "f2", TagID: "gone"},
			{FileID: "trashed", TagID: "t1"},
		},
		created,
	)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSON},
		{in: "json", want: FormatJSON},
		{in: " CSV ", want: FormatCSV},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "tagexplorer-export-2024-03-05.json", FileName(FormatJSON, now))
	assert.Equal(t, "tagexplorer-export-2024-03-05.csv", FileName(FormatCSV, now))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sample()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,type,size,createdAt,tags", lines[0])
	assert.Equal(t, `"report, final.pdf",application/pdf,2048,2024-03-01T09:30:00.000Z,2024; work`, lines[1])
	assert.Equal(t, `"say ""hi"".png",image/png,,2024-03-01T09:30:00.000Z,`, lines[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sample()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2024-03-01T09:30:00Z", got["exportedAt"])
	assert.Len(t, got["files"], 2)
	assert.Len(t, got["tags"], 2)
	assert.Len(t, got["fileTags"], 3)
	assert.Contains(t, buf.String(), "\n  \"files\"")
}

func TestNew_EmptyListsStayArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, New(nil, nil, nil, time.Now())))
	assert.Contains(t, buf.String(), `"files": []`)
	assert.Contains(t, buf.String(), `"fileTags": []`)
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), Data{}))
}
