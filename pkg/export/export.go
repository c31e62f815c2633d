// Package export writes the library of files, tags and links as a JSON
// backup or as a CSV sheet with one row per file.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tagexplorer/backend/pkg/common"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// TagSeparator joins the tag names of one file in a CSV row.
const TagSeparator = "; "

// isoMillis matches the ISO-8601 form with milliseconds used for exported
// timestamps.
const isoMillis = "2006-01-02T15:04:05.000Z"

var csvHeader = []string{"name", "type", "size", "createdAt", "tags"}

// ParseFormat validates a format name. An empty name selects JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// FileName returns the download name, e.g. tagexplorer-export-2024-03-01.csv.
func FileName(f Format, now time.Time) string {
	return fmt.Sprintf("tagexplorer-export-%s.%s", now.Format("2006-01-02"), f)
}

// Data is the complete export document.
type Data struct {
	ExportedAt time.Time        `json:"exportedAt"`
	Files      []common.File    `json:"files"`
	Tags       []common.Tag     `json:"tags"`
	FileTags   []common.FileTag `json:"fileTags"`
}

// New bundles the records. Links of files that are not exported are dropped
// and nil slices become empty so JSON shows empty lists.
func New(files []common.File, tags []common.Tag, links []common.FileTag, now time.Time) Data {
	if files == nil {
		files = []common.File{}
	}
	if tags == nil {
		tags = []common.Tag{}
	}

	exported := make(map[string]struct{}, len(files))
	for _, f := range files {
		exported[f.ID] = struct{}{}
	}
	kept := make([]common.FileTag, 0, len(links))
	for _, l := range links {
		if _, ok := exported[l.FileID]; ok {
			kept = append(kept, l)
		}
	}

	return Data{
		ExportedAt: now.UTC(),
		Files:      files,
		Tags:       tags,
		FileTags:   kept,
	}
}

func Write(w io.Writer, f Format, d Data) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, d)
	case FormatCSV:
		return WriteCSV(w, d)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func WriteJSON(w io.Writer, d Data) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteCSV writes one row per file. Tags follow the link order and links to
// unknown tags are skipped. Files without a size get an empty cell.
func WriteCSV(w io.Writer, d Data) error {
	names := make(map[string]string, len(d.Tags))
	for _, t := range d.Tags {
		names[t.ID] = t.Name
	}
	byFile := make(map[string][]string, len(d.Files))
	for _, l := range d.FileTags {
		if name := names[l.TagID]; name != "" {
			byFile[l.FileID] = append(byFile[l.FileID], name)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, f := range d.Files {
		size := ""
		if f.Size != nil {
			size = strconv.FormatInt(*f.Size, 10)
		}
		row := []string{
			f.Name,
			f.Type,
			size,
			f.CreatedAt.UTC().Format(isoMillis),
			strings.Join(byFile[f.ID], TagSeparator),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
