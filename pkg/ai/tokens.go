package ai

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const tokenEncoding = "o200k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding(tokenEncoding)
		if err == nil {
			enc = e
		}
	})
	return enc
}

// CountTokens returns the number of o200k tokens in text. When the encoding
// cannot be loaded it estimates four bytes per token.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if e := encoding(); e != nil {
		return len(e.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

// TruncateTokens cuts text to at most maxTokens tokens. A non-positive
// limit returns text unchanged.
func TruncateTokens(text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	e := encoding()
	if e == nil {
		if limit := maxTokens * 4; len(text) > limit {
			return validPrefix(text, limit)
		}
		return text
	}
	tokens := e.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	out := e.Decode(tokens[:maxTokens])
	// a token boundary may split a multi-byte rune
	for !utf8.ValidString(out) && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out
}

// validPrefix returns the longest prefix of s with at most n bytes that
// does not split a rune.
func validPrefix(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
