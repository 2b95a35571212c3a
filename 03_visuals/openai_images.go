package visuals

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	xdraw "golang.org/x/image/draw"
)

// OpenAIImages generates backgrounds with the OpenAI Images API
type OpenAIImages struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIImages creates the backend; baseURL may be empty
func NewOpenAIImages(apiKey, baseURL, model string) *OpenAIImages {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(openai.ImageModelDallE3)
	}
	return &OpenAIImages{model: model, opts: opts}
}

// Generate asks for the closest supported size and scales the result to width×height
func (o *OpenAIImages) Generate(ctx context.Context, prompt string, width, height int) (image.Image, error) {
	client := openai.NewClient(o.opts...)

	log.Printf("[visuals] OpenAI %s: %q", o.model, truncate(prompt, 60))

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         enhancePrompt(prompt),
		Model:          openai.ImageModel(o.model),
		N:              openai.Int(1),
		Size:           openaiSize(width, height),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai images: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("openai images: empty response")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai images: decode: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("openai images: decode: %w", err)
	}

	return scaleTo(src, width, height), nil
}

func openaiSize(width, height int) openai.ImageGenerateParamsSize {
	switch {
	case height > width:
		return openai.ImageGenerateParamsSize1024x1792
	case width > height:
		return openai.ImageGenerateParamsSize1792x1024
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}

// scaleTo resamples src to exactly width×height
func scaleTo(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		xdraw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, xdraw.Src)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
