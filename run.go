package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"quote-shorts-pipeline/05_metadata"
	"quote-shorts-pipeline/06_upload"
	"quote-shorts-pipeline/config"
	"quote-shorts-pipeline/types"
)

type quoteSource interface {
	Fetch(ctx context.Context, max int) ([]types.Quote, error)
}

type synthesizer interface {
	Synthesize(ctx context.Context, text, outFile string) error
}

type slideMaker interface {
	GenerateSlide(ctx context.Context, q types.Quote, index int, outFile string) error
}

type assembler interface {
	Assemble(ctx context.Context, voiceFile, slideFile, outFile string) error
	Thumbnail(title, templatePath, outFile string) error
}

type publisher interface {
	Upload(ctx context.Context, videoFile string, metadata *types.VideoMetadata) (*types.UploadResult, error)
	SetThumbnail(ctx context.Context, videoID, thumbFile string) error
}

// Pipeline holds the handles shared by every quote in a run
type Pipeline struct {
	cfg      *config.Config
	quotes   quoteSource
	tts      synthesizer
	slides   slideMaker
	renderer assembler
	meta     *metadata.Generator
	uploader publisher
	now      func() time.Time
}

// Run fetches up to n quotes and publishes one short per quote, in order.
// The report is written to the logs directory whether or not the run succeeds.
func (p *Pipeline) Run(ctx context.Context, n int) (*types.RunReport, error) {
	report := &types.RunReport{
		RunID:     uuid.NewString()[:8],
		StartedAt: p.now().UTC().Format(time.RFC3339),
	}
	log.Printf("🎬 Quote Shorts run starting — Run ID: %s", report.RunID)

	err := p.run(ctx, n, report)

	report.CompletedAt = p.now().UTC().Format(time.RFC3339)
	if err != nil {
		report.Error = err.Error()
	}
	saveJSON(filepath.Join(p.cfg.Paths.Logs, fmt.Sprintf("run_%s.json", report.RunID)), report)
	return report, err
}

func (p *Pipeline) run(ctx context.Context, n int, report *types.RunReport) error {
	log.Println("\n━━━ Fetching quotes ━━━")
	quotes, err := p.quotes.Fetch(ctx, n)
	if err != nil {
		return fmt.Errorf("fetch quotes: %w", err)
	}
	log.Printf("[quotes] ✅ %d quote(s) to publish", len(quotes))

	base := p.meta.BaseTime(p.now())
	for i, q := range quotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("\n━━━ Short %d/%d: %s ━━━", i+1, len(quotes), q.Author)

		item := types.ItemReport{Index: i, Quote: q}
		err := p.processItem(ctx, i, q, base, &item)
		report.Items = append(report.Items, item)
		if err != nil {
			return fmt.Errorf("short %d: %w", i, err)
		}
	}
	return nil
}

// Artifacts returns the per-index transient file names inside dir
func Artifacts(dir string, i int) types.Artifacts {
	return types.Artifacts{
		Voice:     filepath.Join(dir, fmt.Sprintf("voice_%d.mp3", i)),
		Slide:     filepath.Join(dir, fmt.Sprintf("slide_%d.mp4", i)),
		Video:     filepath.Join(dir, fmt.Sprintf("video_%d.mp4", i)),
		Thumbnail: filepath.Join(dir, fmt.Sprintf("thumb_%d.png", i)),
	}
}

func (p *Pipeline) processItem(ctx context.Context, i int, q types.Quote, base time.Time, item *types.ItemReport) error {
	arts := Artifacts(p.cfg.Paths.Output, i)
	defer upload.Cleanup(arts.Paths()...)

	meta := p.meta.Build(q, i, base)
	item.Metadata = meta

	if err := p.tts.Synthesize(ctx, metadata.QuoteText(q), arts.Voice); err != nil {
		return fmt.Errorf("synthesize voice: %w", err)
	}
	if err := p.slides.GenerateSlide(ctx, q, i, arts.Slide); err != nil {
		return fmt.Errorf("generate slide: %w", err)
	}
	if err := p.renderer.Assemble(ctx, arts.Voice, arts.Slide, arts.Video); err != nil {
		return fmt.Errorf("assemble video: %w", err)
	}
	if err := p.renderer.Thumbnail(meta.Title, p.cfg.Paths.ThumbnailTemplate, arts.Thumbnail); err != nil {
		return fmt.Errorf("render thumbnail: %w", err)
	}

	res, err := p.uploader.Upload(ctx, arts.Video, meta)
	item.Result = res
	if err != nil {
		return err
	}
	if res.Skipped {
		log.Printf("⚠️  Short %d was not uploaded — continuing", i)
		return nil
	}

	if _, err := upload.LogUpload(p.cfg.Paths.Logs, arts.Video, res, meta); err != nil {
		log.Printf("⚠️  Could not write upload log: %v", err)
	}
	if p.cfg.Upload.SetThumbnail {
		if err := p.uploader.SetThumbnail(ctx, res.VideoID, arts.Thumbnail); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.Printf("⚠️  Thumbnail upload failed: %v — video stays with the auto thumbnail", err)
		}
	}
	return nil
}

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}
