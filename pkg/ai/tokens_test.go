package ai

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCountTokens(t *testing.T) {
	if got := CountTokens(""); got != 0 {
		t.Fatalf("CountTokens(\"\") = %d, want 0", got)
	}
	short := CountTokens("hello world")
	long := CountTokens(strings.Repeat("hello world ", 50))
	if short <= 0 || long <= short {
		t.Fatalf("CountTokens() short=%d long=%d", short, long)
	}
}

func TestTruncateTokens(t *testing.T) {
	text := strings.Repeat("harbor boats ", 200)

	if got := TruncateTokens(text, 0); got != text {
		t.Fatal("TruncateTokens(0) changed text")
	}
	if got := TruncateTokens("tiny", 100); got != "tiny" {
		t.Fatalf("TruncateTokens() = %q, want tiny", got)
	}

	got := TruncateTokens(text, 20)
	if len(got) >= len(text) {
		t.Fatalf("TruncateTokens() did not shorten text")
	}
	if !strings.HasPrefix(text, got) {
		t.Fatalf("TruncateTokens() = %q, not a prefix", got)
	}
	if n := CountTokens(got); n > 20 {
		t.Fatalf("CountTokens(truncated) = %d, want <= 20", n)
	}
}

func TestValidPrefix(t *testing.T) {
	s := "aé€"
	for n := 0; n <= len(s); n++ {
		if p := validPrefix(s, n); !utf8.ValidString(p) {
			t.Fatalf("validPrefix(%d) = %q is not valid UTF-8", n, p)
		}
	}
	if got := validPrefix(s, 2); got != "a" {
		t.Fatalf("validPrefix(2) = %q, want a", got)
	}
}
