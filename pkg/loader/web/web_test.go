package web

import (
	"bytes"
	"strings"
	"testing"
)

const page = `<!doctype html><html><head><title>Harbor notes</title></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Harbor notes</h1>
<p>The fishing boats leave the harbor before sunrise and return in the early afternoon with their catch.
Visitors gather along the pier to watch the crews unload crates of fish and mend their nets.</p>
<p>In summer the small town hosts a festival celebrating the maritime traditions of the coast.</p>
</article></body></html>`

func TestExtractText(t *testing.T) {
	text, err := ExtractText(strings.NewReader(page), nil)
	if err != nil {
		t.Fatalf("ExtractText() err = %v", err)
	}
	if !bytes.Contains(text, []byte("fishing boats")) {
		t.Fatalf("ExtractText() = %q, want article body", text)
	}
	if bytes.Contains(text, []byte("<p>")) {
		t.Fatalf("ExtractText() = %q, contains markup", text)
	}
}
