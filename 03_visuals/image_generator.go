package visuals

import (
	"context"
	"fmt"
	"image"
	"math/rand"
	"os"
	"time"

	"quote-shorts-pipeline/config"
)

// ImageGenerator renders a still image for a text prompt
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, width, height int) (image.Image, error)
}

// NewImageGenerator builds the backend named in config. It is called once per
// process and the result is shared by every slide.
func NewImageGenerator(cfg *config.Config) (ImageGenerator, error) {
	timeout := time.Duration(cfg.Visuals.TimeoutSec) * time.Second

	switch cfg.Visuals.Backend {
	case "", "sdwebui":
		return NewSDWebUI(cfg.Visuals.SDWebUIURL, cfg.Visuals.Model, cfg.Visuals.Steps, cfg.Visuals.GuidanceScale, timeout), nil
	case "pollinations":
		return NewPollinationsFetcher(timeout), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return NewOpenAIImages(apiKey, os.Getenv("OPENAI_BASE_URL"), cfg.Visuals.OpenAIModel), nil
	case "library":
		lib, err := NewAssetLibrary(cfg.Visuals.LibraryDir, cfg.Visuals.LibraryTags, rand.New(rand.NewSource(time.Now().UnixNano())))
		if err != nil {
			return nil, err
		}
		return lib, nil
	default:
		return nil, fmt.Errorf("unknown image backend %q", cfg.Visuals.Backend)
	}
}
