// Package web turns HTML documents into readable plain text.
package web

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"

	"github.com/tagexplorer/backend/pkg/loader"
)

// ExtractText runs readability over an HTML document and renders the main
// article as plain text. pageURL resolves relative links and may be nil.
func ExtractText(r io.Reader, pageURL *url.URL) ([]byte, error) {
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(r, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return nil, fmt.Errorf("failed to render article text: %w", err)
	}
	return []byte(loader.CleanText(builder.String())), nil
}
