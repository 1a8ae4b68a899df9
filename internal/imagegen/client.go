package imagegen

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client wraps the image-generation provider. It exists so customers can
// produce the artwork that later rides through checkout metadata into
// fulfillment; the pipeline itself never calls it.
type Client struct {
	api openai.Client
}

func NewClient(apiKey string) *Client {
	return &Client{api: openai.NewClient(option.WithAPIKey(apiKey))}
}

// Generate returns a hosted URL for one 1024x1024 image of the prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := c.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("Generate: %w", err)
	}
	if len(res.Data) == 0 || res.Data[0].URL == "" {
		return "", errors.New("Generate: provider returned no image")
	}
	return res.Data[0].URL, nil
}
