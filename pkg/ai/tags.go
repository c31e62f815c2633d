package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FallbackTag is suggested when analysis is impossible or yields nothing usable.
const FallbackTag = "untagged"

// TagSuggestion is the model's answer to a tagging prompt.
type TagSuggestion struct {
	ExistingTags  []string `json:"existingTags" jsonschema:"description=Tags picked from the existing tags list"`
	NewTags       []string `json:"newTags" jsonschema:"description=New tags not in the existing list"`
	SuggestedName *string  `json:"suggestedName" jsonschema:"description=A better file name or null if the current name is good"`
}

// FallbackSuggestion is returned whenever the AI cannot be used.
func FallbackSuggestion() TagSuggestion {
	return TagSuggestion{
		ExistingTags: []string{},
		NewTags:      []string{FallbackTag},
	}
}

// Normalize lowercases and trims every tag, dropping blanks. An empty
// suggested name becomes nil.
func (s TagSuggestion) Normalize() TagSuggestion {
	out := TagSuggestion{
		ExistingTags: normalizeTagList(s.ExistingTags),
		NewTags:      normalizeTagList(s.NewTags),
	}
	if s.SuggestedName != nil {
		if name := strings.TrimSpace(*s.SuggestedName); name != "" {
			out.SuggestedName = &name
		}
	}
	return out
}

// rawSuggestion accepts any JSON value per tag, matching lenient model output.
type rawSuggestion struct {
	ExistingTags  []any `json:"existingTags"`
	NewTags       []any `json:"newTags"`
	SuggestedName any   `json:"suggestedName"`
}

// ParseTagSuggestion extracts a suggestion from free model output. The first
// JSON object in the text is preferred; a bare JSON array of tags is split
// into existing and new ones using knownTags. ok is false when neither form
// can be parsed.
func ParseTagSuggestion(content string, knownTags []string) (TagSuggestion, bool) {
	if obj, found := ExtractJSONObject(content); found {
		var raw rawSuggestion
		if err := UnmarshalFlexible(obj, &raw); err != nil {
			return TagSuggestion{}, false
		}
		out := TagSuggestion{
			ExistingTags: normalizeTagList(stringify(raw.ExistingTags)),
			NewTags:      normalizeTagList(stringify(raw.NewTags)),
		}
		if name, isString := raw.SuggestedName.(string); isString {
			if name = strings.TrimSpace(name); name != "" {
				out.SuggestedName = &name
			}
		}
		return out, true
	}

	if arr, found := ExtractJSONArray(content); found {
		var raw []any
		if err := json.Unmarshal([]byte(arr), &raw); err != nil {
			return TagSuggestion{}, false
		}
		known := make(map[string]struct{}, len(knownTags))
		for _, t := range knownTags {
			known[t] = struct{}{}
		}
		out := TagSuggestion{ExistingTags: []string{}, NewTags: []string{}}
		for _, t := range normalizeTagList(stringify(raw)) {
			if _, ok := known[t]; ok {
				out.ExistingTags = append(out.ExistingTags, t)
			} else {
				out.NewTags = append(out.NewTags, t)
			}
		}
		return out, true
	}

	return TagSuggestion{}, false
}

func stringify(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			out = append(out, t)
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out
}

func normalizeTagList(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
