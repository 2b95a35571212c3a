package render

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/xfrr/goffmpeg/transcoder"

	visuals "quote-shorts-pipeline/03_visuals"
	"quote-shorts-pipeline/config"
)

// DurationProbe reports the length of a media file in seconds
type DurationProbe func(path string) (float64, error)

// Renderer assembles the final clip from the slide and the narration
type Renderer struct {
	cfg   *config.Config
	probe DurationProbe
	run   visuals.CommandRunner
}

// New creates a new Renderer
func New(cfg *config.Config) *Renderer {
	return &Renderer{cfg: cfg, probe: ProbeDuration, run: visuals.RunCommand}
}

// Assemble loops the slide under the voice track and cuts the result to the
// voice's exact length, so the clip ends when the narration does.
func (r *Renderer) Assemble(ctx context.Context, voiceFile, slideFile, outFile string) error {
	duration, err := r.probe(voiceFile)
	if err != nil {
		return fmt.Errorf("probe audio: %w", err)
	}
	log.Printf("[render] Narration is %.2fs — assembling %s", duration, outFile)

	args := AssembleArgs(slideFile, voiceFile, outFile, duration, r.cfg.Render.FPS, r.cfg.Render.VideoCodec, r.cfg.Render.AudioCodec)
	if err := r.run(ctx, "ffmpeg", args...); err != nil {
		return fmt.Errorf("ffmpeg assemble: %w", err)
	}

	log.Printf("[render] ✅ Video ready: %s", outFile)
	return nil
}

// AssembleArgs builds the mux command. The slide input is looped forever and
// -t cuts the output at the audio length.
func AssembleArgs(slideFile, voiceFile, outFile string, durationSec float64, fps int, videoCodec, audioCodec string) []string {
	return []string{
		"-y",
		"-stream_loop", "-1",
		"-i", slideFile,
		"-i", voiceFile,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-t", strconv.FormatFloat(durationSec, 'f', 3, 64),
		"-r", strconv.Itoa(fps),
		"-c:v", videoCodec,
		"-pix_fmt", "yuv420p",
		"-c:a", audioCodec,
		"-movflags", "+faststart",
		outFile,
	}
}

// ProbeDuration reads the container duration with ffprobe
func ProbeDuration(path string) (float64, error) {
	trans := new(transcoder.Transcoder)
	if err := trans.Initialize(path, ""); err != nil {
		return 0, fmt.Errorf("failed to initialize transcoder for %s: %w", path, err)
	}
	return parseDuration(trans.MediaFile().Metadata().Format.Duration)
}

func parseDuration(durationStr string) (float64, error) {
	if durationStr == "" {
		return 0, fmt.Errorf("empty duration in media metadata")
	}
	seconds, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration '%s': %w", durationStr, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("invalid or zero duration: %f seconds", seconds)
	}
	return seconds, nil
}
