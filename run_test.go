package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quote-shorts-pipeline/05_metadata"
	"quote-shorts-pipeline/06_upload"
	"quote-shorts-pipeline/config"
	"quote-shorts-pipeline/types"
)

type stubQuotes struct {
	quotes []types.Quote
	err    error
	gotMax int
}

func (s *stubQuotes) Fetch(ctx context.Context, max int) ([]types.Quote, error) {
	s.gotMax = max
	if s.err != nil {
		return nil, s.err
	}
	if len(s.quotes) > max {
		return s.quotes[:max], nil
	}
	return s.quotes, nil
}

// touch stands in for every media step: it just creates the output file
func touch(path string) error {
	return os.WriteFile(path, []byte("x"), 0644)
}

type stubTTS struct{ texts []string }

func (s *stubTTS) Synthesize(ctx context.Context, text, outFile string) error {
	s.texts = append(s.texts, text)
	return touch(outFile)
}

type stubSlides struct{ failAt int }

func (s *stubSlides) GenerateSlide(ctx context.Context, q types.Quote, index int, outFile string) error {
	if index == s.failAt {
		return errors.New("image backend down")
	}
	return touch(outFile)
}

type stubRenderer struct{}

func (stubRenderer) Assemble(ctx context.Context, voiceFile, slideFile, outFile string) error {
	return touch(outFile)
}

func (stubRenderer) Thumbnail(title, templatePath, outFile string) error {
	return touch(outFile)
}

type stubUploader struct {
	uploads    []*types.VideoMetadata
	thumbnails []string
	forbidden  map[int]bool
	failErr    error
}

func (s *stubUploader) Upload(ctx context.Context, videoFile string, meta *types.VideoMetadata) (*types.UploadResult, error) {
	i := len(s.uploads)
	s.uploads = append(s.uploads, meta)
	if _, err := os.Stat(videoFile); err != nil {
		return nil, err
	}
	if s.forbidden[i] {
		if s.failErr != nil {
			return &types.UploadResult{Skipped: true}, s.failErr
		}
		return &types.UploadResult{Skipped: true}, nil
	}
	return &types.UploadResult{VideoID: "vid" + string(rune('A'+i))}, nil
}

func (s *stubUploader) SetThumbnail(ctx context.Context, videoID, thumbFile string) error {
	s.thumbnails = append(s.thumbnails, videoID)
	return nil
}

func testPipeline(t *testing.T, q *stubQuotes, slides *stubSlides, up *stubUploader) (*Pipeline, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Output = t.TempDir()
	cfg.Paths.Logs = t.TempDir()
	fixed := time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)
	return &Pipeline{
		cfg:      cfg,
		quotes:   q,
		tts:      &stubTTS{},
		slides:   slides,
		renderer: stubRenderer{},
		meta:     metadata.New(cfg),
		uploader: up,
		now:      func() time.Time { return fixed },
	}, cfg
}

func sampleQuotes(n int) []types.Quote {
	var qs []types.Quote
	for i := 0; i < n; i++ {
		qs = append(qs, types.Quote{Text: "Quote " + string(rune('a'+i)), Author: "Author " + string(rune('A'+i))})
	}
	return qs
}

func assertNoArtifacts(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		t.Errorf("Expected artifacts cleaned up, found %s", e.Name())
	}
}

func TestRunPublishesEachQuoteOnSchedule(t *testing.T) {
	up := &stubUploader{}
	src := &stubQuotes{quotes: sampleQuotes(12)}
	p, cfg := testPipeline(t, src, &stubSlides{failAt: -1}, up)
	cfg.Upload.SetThumbnail = true

	report, err := p.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if src.gotMax != 10 {
		t.Errorf("Expected fetch of 10, got %d", src.gotMax)
	}
	if len(up.uploads) != 10 || len(report.Items) != 10 {
		t.Fatalf("Expected 10 uploads and items, got %d and %d", len(up.uploads), len(report.Items))
	}
	if got := up.uploads[0].ScheduledTimeUTC; got != "2024-03-15T09:00:00Z" {
		t.Errorf("Expected first slot 2024-03-15T09:00:00Z, got %s", got)
	}
	if got := up.uploads[4].ScheduledTimeUTC; got != "2024-03-15T17:00:00Z" {
		t.Errorf("Expected fifth slot 2024-03-15T17:00:00Z, got %s", got)
	}
	if got := up.uploads[5].ScheduledTimeUTC; got != "2024-03-16T09:00:00Z" {
		t.Errorf("Expected sixth slot on the next day, got %s", got)
	}
	if len(up.thumbnails) != 10 {
		t.Errorf("Expected 10 thumbnails set, got %d", len(up.thumbnails))
	}
	assertNoArtifacts(t, cfg.Paths.Output)

	if _, err := os.Stat(filepath.Join(cfg.Paths.Logs, "run_"+report.RunID+".json")); err != nil {
		t.Errorf("Expected run report in logs: %v", err)
	}
}

func TestRunSpeaksQuoteText(t *testing.T) {
	p, _ := testPipeline(t, &stubQuotes{quotes: []types.Quote{{Text: "Be water.", Author: "Bruce Lee"}}}, &stubSlides{failAt: -1}, &stubUploader{})
	tts := p.tts.(*stubTTS)

	if _, err := p.Run(context.Background(), 10); err != nil {
		t.Fatal(err)
	}
	if len(tts.texts) != 1 || tts.texts[0] != "\"Be water.\" — Bruce Lee" {
		t.Errorf("Expected spoken quote text, got %q", tts.texts)
	}
}

func TestRunSkipsForbiddenUploads(t *testing.T) {
	up := &stubUploader{forbidden: map[int]bool{1: true}}
	p, cfg := testPipeline(t, &stubQuotes{quotes: sampleQuotes(3)}, &stubSlides{failAt: -1}, up)

	report, err := p.Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("Expected run to continue past a refused upload, got %v", err)
	}
	if len(up.uploads) != 3 {
		t.Errorf("Expected all 3 uploads attempted, got %d", len(up.uploads))
	}
	if !report.Items[1].Result.Skipped {
		t.Errorf("Expected item 1 marked skipped")
	}
	assertNoArtifacts(t, cfg.Paths.Output)
}

func TestRunStopsOnForbiddenWhenConfigured(t *testing.T) {
	up := &stubUploader{forbidden: map[int]bool{0: true}, failErr: upload.ErrForbidden}
	p, _ := testPipeline(t, &stubQuotes{quotes: sampleQuotes(3)}, &stubSlides{failAt: -1}, up)

	report, err := p.Run(context.Background(), 3)
	if !errors.Is(err, upload.ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
	if len(up.uploads) != 1 {
		t.Errorf("Expected run to stop after the first upload, got %d", len(up.uploads))
	}
	if report.Error == "" {
		t.Error("Expected error recorded in the report")
	}
}

func TestRunAbortsAndCleansUpOnStageFailure(t *testing.T) {
	up := &stubUploader{}
	p, cfg := testPipeline(t, &stubQuotes{quotes: sampleQuotes(4)}, &stubSlides{failAt: 2}, up)

	report, err := p.Run(context.Background(), 4)
	if err == nil || !strings.Contains(err.Error(), "image backend down") {
		t.Fatalf("Expected slide failure to abort the run, got %v", err)
	}
	if len(up.uploads) != 2 {
		t.Errorf("Expected 2 uploads before the failure, got %d", len(up.uploads))
	}
	if len(report.Items) != 3 {
		t.Errorf("Expected the failing item in the report, got %d items", len(report.Items))
	}
	// voice_2.mp3 was written before the slide failed and must still be removed
	assertNoArtifacts(t, cfg.Paths.Output)
}

func TestRunFetchFailure(t *testing.T) {
	up := &stubUploader{}
	p, _ := testPipeline(t, &stubQuotes{err: errors.New("HTTP 429")}, &stubSlides{failAt: -1}, up)

	if _, err := p.Run(context.Background(), 10); err == nil {
		t.Fatal("Expected fetch error, got nil")
	}
	if len(up.uploads) != 0 {
		t.Errorf("Expected no uploads, got %d", len(up.uploads))
	}
}

func TestRunCancelled(t *testing.T) {
	up := &stubUploader{}
	p, _ := testPipeline(t, &stubQuotes{quotes: sampleQuotes(3)}, &stubSlides{failAt: -1}, up)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(up.uploads) != 0 {
		t.Errorf("Expected no uploads after cancellation, got %d", len(up.uploads))
	}
}

func TestArtifacts(t *testing.T) {
	a := Artifacts("temp", 7)
	want := types.Artifacts{
		Voice:     filepath.Join("temp", "voice_7.mp3"),
		Slide:     filepath.Join("temp", "slide_7.mp4"),
		Video:     filepath.Join("temp", "video_7.mp4"),
		Thumbnail: filepath.Join("temp", "thumb_7.png"),
	}
	if a != want {
		t.Errorf("Expected %+v, got %+v", want, a)
	}
}
