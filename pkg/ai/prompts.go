package ai

import "strings"

// ContentKind selects the prompt variant for a file.
type ContentKind string

const (
	ContentImage    ContentKind = "image"
	ContentDocument ContentKind = "text"
)

// TaggingSystemPrompt frames every tagging request.
const TaggingSystemPrompt = "You are a file organization assistant. You answer with JSON only."

const imageTaggingIntro = `Analyze this image and suggest relevant tags for organizing it in a personal file system.
Include: subject matter, setting, mood, colors, objects, people, activities.`

const documentTaggingIntro = `Analyze this document text and suggest relevant tags for organizing it in a personal file system.
Include: topic, domain, type of document, key themes.`

const taggingRules = `
Rules:
- Return 3-8 tags maximum
- Tags should be single words or short phrases (2-3 words max)
- Use lowercase
- Be specific but not too granular
- Do NOT include: file metadata, technical details, quality assessments
- If the current filename is not descriptive (e.g. "IMG_20240301.jpg", "document(3).pdf", random characters), suggest a better name

Return ONLY a JSON object with this exact format, no explanation:
{
  "existingTags": ["tag1", "tag2"],
  "newTags": ["tag3", "tag4"],
  "suggestedName": "better-name.ext"
}

- "existingTags": tags picked from the existing tags list above
- "newTags": new tags not in the existing list
- "suggestedName": a suggested filename, or null if the current name is already good
`

// MinimalPDFTextNote replaces the document text of PDFs that yield almost no
// extractable text.
const MinimalPDFTextNote = "(PDF with minimal text content - likely a scanned document or image-based PDF)"

// TaggingPrompt builds the instruction asking the model for tags and an
// optional better file name. Document prompts end with a "Document text:"
// header so the caller can append the extracted text directly.
func TaggingPrompt(kind ContentKind, existingTags []string, fileName string) string {
	var b strings.Builder

	if kind == ContentImage {
		b.WriteString(imageTaggingIntro)
	} else {
		b.WriteString(documentTaggingIntro)
	}

	b.WriteString("\n\nThe file is currently named: \"")
	b.WriteString(fileName)
	b.WriteString("\"\n")

	if len(existingTags) > 0 {
		quoted := make([]string, len(existingTags))
		for i, t := range existingTags {
			quoted[i] = "\"" + t + "\""
		}
		b.WriteString("\nExisting tags in the system: [")
		b.WriteString(strings.Join(quoted, ", "))
		b.WriteString("]\nPrefer reusing existing tags when relevant, but you can propose new ones if needed.\n")
	}

	b.WriteString(taggingRules)

	if kind != ContentImage {
		b.WriteString("\nDocument text:\n")
	}
	return b.String()
}

// EmbeddingInput is the text embedded for a tag.
func EmbeddingInput(tagName string) []byte {
	return []byte("tag: " + strings.TrimSpace(tagName))
}
