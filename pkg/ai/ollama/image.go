package ollama

import (
	"context"
	"encoding/base64"

	"github.com/ollama/ollama/api"

	"github.com/tagexplorer/backend/pkg/ai"
	"github.com/tagexplorer/backend/pkg/loader"
)

// GenerateImageCompletion sends prompt and a base64 image in one user
// message to the vision model.
func (c *OllamaClient) GenerateImageCompletion(
	ctx context.Context,
	prompt string,
	image loader.GraphBase64,
	opts ...ai.GenerateOption,
) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(image.Base64)
	if err != nil {
		return "", err
	}

	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.imageModel,
		Temperature: 0.3,
	}, opts...)

	req := c.newRequest(options, api.Message{
		Role:    "user",
		Content: prompt,
		Images:  []api.ImageData{raw},
	})
	return c.chat(ctx, req, options)
}
