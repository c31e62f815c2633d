package common

import (
	"reflect"
	"testing"
)

func TestNormalizeTagName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Work", "work"},
		{"  Travel Photos ", "travel photos"},
		{"   ", ""},
		{"2024", "2024"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeTagName(tt.in); got != tt.want {
				t.Fatalf("NormalizeTagName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTagNames(t *testing.T) {
	got := NormalizeTagNames([]string{"Work", " work ", "", "  ", "Invoice", "WORK"})
	want := []string{"work", "invoice"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeTagNames() = %v, want %v", got, want)
	}

	if got := NormalizeTagNames(nil); got != nil {
		t.Fatalf("NormalizeTagNames(nil) = %v, want nil", got)
	}
}
