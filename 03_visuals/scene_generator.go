package visuals

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/image/font"

	"quote-shorts-pipeline/05_metadata"
	"quote-shorts-pipeline/config"
	"quote-shorts-pipeline/types"
)

const (
	textTop     = 60
	textBottom  = 60
	lineSpacing = 12
)

// CommandRunner runs an external program to completion
type CommandRunner func(ctx context.Context, name string, args ...string) error

// RunCommand runs name with stderr passed through, like the rest of the ffmpeg calls
func RunCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// SceneGenerator turns a quote into a held-image slide video. Build it once
// with NewSceneGenerator and reuse it for every quote in the run.
type SceneGenerator struct {
	cfg    *config.Config
	images ImageGenerator
	style  TextStyle
	rng    *rand.Rand
	run    CommandRunner
}

// NewSceneGenerator loads the image backend and caption font
func NewSceneGenerator(cfg *config.Config) (*SceneGenerator, error) {
	images, err := NewImageGenerator(cfg)
	if err != nil {
		return nil, err
	}
	face, err := LoadFace(cfg.Visuals.Font, cfg.Visuals.FontSize)
	if err != nil {
		return nil, err
	}
	return newSceneGenerator(cfg, images, face, rand.New(rand.NewSource(time.Now().UnixNano())), RunCommand), nil
}

func newSceneGenerator(cfg *config.Config, images ImageGenerator, face font.Face, rng *rand.Rand, run CommandRunner) *SceneGenerator {
	return &SceneGenerator{
		cfg:    cfg,
		images: images,
		style:  CaptionStyle(face, cfg.Visuals.StrokeWidth),
		rng:    rng,
		run:    run,
	}
}

// PickPrompt chooses one background prompt uniformly at random
func (g *SceneGenerator) PickPrompt() string {
	prompts := g.cfg.Visuals.Prompts
	return prompts[g.rng.Intn(len(prompts))]
}

// GenerateSlide renders the captioned background for q and encodes it as a
// silent video of fixed length at outFile.
func (g *SceneGenerator) GenerateSlide(ctx context.Context, q types.Quote, index int, outFile string) error {
	v := g.cfg.Visuals
	prompt := g.PickPrompt()
	log.Printf("[visuals] Slide %d: background %q", index, prompt)

	bg, err := g.images.Generate(ctx, prompt, v.Width, v.Height)
	if err != nil {
		return fmt.Errorf("generate background: %w", err)
	}

	canvas := ToRGBA(bg)
	if canvas.Bounds().Dx() != v.Width || canvas.Bounds().Dy() != v.Height {
		canvas = scaleTo(canvas, v.Width, v.Height)
	}

	lines := WrapText(metadata.QuoteText(q), v.WrapColumns)
	drawn := DrawLines(canvas, lines, g.style, textTop, lineSpacing, v.Height-textBottom)
	if drawn < len(lines) {
		log.Printf("[visuals] ⚠️  Slide %d: caption cut to %d of %d lines", index, drawn, len(lines))
	}

	framePath := filepath.Join(filepath.Dir(outFile), fmt.Sprintf("serenity_%d.png", index))
	if err := savePNG(framePath, canvas); err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	defer os.Remove(framePath)

	if err := g.run(ctx, "ffmpeg", SlideArgs(framePath, outFile, v.SlideDurationSec, v.SlideFPS)...); err != nil {
		return fmt.Errorf("ffmpeg slide: %w", err)
	}

	log.Printf("[visuals] ✅ Slide %d ready: %s", index, outFile)
	return nil
}

// SlideArgs holds a still frame for durationSec seconds with no audio track
func SlideArgs(framePath, outFile string, durationSec, fps int) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-i", framePath,
		"-t", strconv.Itoa(durationSec),
		"-r", strconv.Itoa(fps),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	}
}

func savePNG(path string, img *image.RGBA) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
