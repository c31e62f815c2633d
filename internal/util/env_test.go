package util

import (
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TAGEXPLORER_TEST_STRING", "value")
	t.Setenv("TAGEXPLORER_TEST_EMPTY", "")
	t.Setenv("TAGEXPLORER_TEST_NUMBER", "15")
	t.Setenv("TAGEXPLORER_TEST_FLOAT", "0.002")
	t.Setenv("TAGEXPLORER_TEST_BOOL", "true")
	t.Setenv("TAGEXPLORER_TEST_BAD_BOOL", "yes")
	t.Setenv("TAGEXPLORER_TEST_DURATION", "90s")

	if got := GetEnv("TAGEXPLORER_TEST_STRING"); got != "value" {
		t.Fatalf("GetEnv() = %q, want %q", got, "value")
	}
	if got := GetEnv("TAGEXPLORER_TEST_MISSING"); got != "" {
		t.Fatalf("GetEnv() = %q, want empty", got)
	}
	if got := GetEnvString("TAGEXPLORER_TEST_EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("GetEnvString() = %q, want %q", got, "fallback")
	}
	if got := GetEnvNumeric("TAGEXPLORER_TEST_NUMBER", 3); got != 15 {
		t.Fatalf("GetEnvNumeric() = %v, want 15", got)
	}
	if got := GetEnvNumeric("TAGEXPLORER_TEST_STRING", 3); got != 3 {
		t.Fatalf("GetEnvNumeric() = %v, want 3", got)
	}
	if got := GetEnvFloat("TAGEXPLORER_TEST_FLOAT", 0.001); got != 0.002 {
		t.Fatalf("GetEnvFloat() = %v, want 0.002", got)
	}
	if got := GetEnvBool("TAGEXPLORER_TEST_BOOL", false); !got {
		t.Fatalf("GetEnvBool() = %v, want true", got)
	}
	if got := GetEnvBool("TAGEXPLORER_TEST_BAD_BOOL", false); got {
		t.Fatalf("GetEnvBool() = %v, want false", got)
	}
	if got := GetEnvDuration("TAGEXPLORER_TEST_DURATION", time.Second); got != 90*time.Second {
		t.Fatalf("GetEnvDuration() = %v, want 90s", got)
	}
	if got := GetEnvDuration("TAGEXPLORER_TEST_STRING", time.Second); got != time.Second {
		t.Fatalf("GetEnvDuration() = %v, want 1s", got)
	}
}
