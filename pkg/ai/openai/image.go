package openai

import (
	"context"

	"github.com/openai/openai-go/v3"

	"github.com/tagexplorer/backend/pkg/ai"
	"github.com/tagexplorer/backend/pkg/loader"
)

// GenerateImageCompletion sends the prompt and a base64 image as one user
// message to the vision model.
func (c *OpenAIClient) GenerateImageCompletion(
	ctx context.Context,
	prompt string,
	image loader.GraphBase64,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.imageModel,
		Temperature: 0.3,
	}, opts...)

	msgs := systemMessages(options)
	msgs = append(msgs, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: image.DataURL(),
		}),
	}))

	body := c.newParams(options, msgs)
	return c.complete(ctx, c.ImageClient, body, options)
}
