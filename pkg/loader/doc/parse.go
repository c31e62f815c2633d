package doc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tagexplorer/backend/pkg/loader"
)

const documentPart = "word/document.xml"

// docxWriter collects run text of a WordprocessingML body. Deleted runs of
// tracked changes are skipped and table cells are separated by tabs.
type docxWriter struct {
	sb       strings.Builder
	inText   bool
	delDepth int
	cellIdx  int
}

func (w *docxWriter) live() bool {
	return w.delDepth == 0
}

func (w *docxWriter) newline() {
	if w.sb.Len() > 0 && !strings.HasSuffix(w.sb.String(), "\n") {
		w.sb.WriteByte('\n')
	}
}

func (w *docxWriter) start(name string) {
	switch name {
	case "del":
		w.delDepth++
	case "t":
		w.inText = true
	case "tab":
		if w.live() {
			w.sb.WriteByte('\t')
		}
	case "br", "cr":
		if w.live() {
			w.sb.WriteByte('\n')
		}
	case "noBreakHyphen":
		if w.live() {
			w.sb.WriteByte('-')
		}
	case "tbl":
		w.newline()
	case "tr":
		w.cellIdx = 0
	case "tc":
		if w.live() {
			if w.cellIdx > 0 {
				w.sb.WriteByte('\t')
			}
			w.cellIdx++
		}
	}
}

func (w *docxWriter) end(name string) {
	switch name {
	case "t":
		w.inText = false
	case "p", "tr", "tbl":
		if w.live() {
			w.sb.WriteByte('\n')
		}
	case "del":
		if w.delDepth > 0 {
			w.delDepth--
		}
	}
}

func (w *docxWriter) text(data []byte) {
	if w.inText && w.live() {
		w.sb.Write(data)
	}
}

func parseDocx(content []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("%s not found in docx", documentPart)
	}
	if part.UncompressedSize64 > docXMLMax {
		return nil, fmt.Errorf("%s too large: %d bytes", documentPart, part.UncompressedSize64)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", documentPart, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(io.LimitReader(rc, docXMLMax))
	var w docxWriter
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			w.start(t.Name.Local)
		case xml.EndElement:
			w.end(t.Name.Local)
		case xml.CharData:
			w.text(t)
		}
	}

	return []byte(loader.CleanText(w.sb.String())), nil
}
