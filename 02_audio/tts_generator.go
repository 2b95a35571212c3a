package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"quote-shorts-pipeline/config"
)

// googleTTSURL is the endpoint behind Google Translate's speak button
const googleTTSURL = "https://translate.google.com/translate_tts"

// maxChunkChars is the longest text the Translate endpoint accepts per request
const maxChunkChars = 200

// Synthesizer turns text into an MP3 file at outFile
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outFile string) error
}

// New picks the TTS engine named in config
func New(cfg *config.Config) (Synthesizer, error) {
	switch cfg.Audio.Engine {
	case "", "google":
		return NewGoogleTTS(cfg.Audio.Language, time.Duration(cfg.Audio.TimeoutSec)*time.Second), nil
	case "command":
		tts, err := NewCommandTTS(os.Getenv("TTS_COMMAND"), cfg.Audio.Voice)
		if err != nil {
			return nil, err
		}
		return tts, nil
	default:
		return nil, fmt.Errorf("unknown TTS engine %q", cfg.Audio.Engine)
	}
}

// GoogleTTS speaks text with the Google Translate voice for a fixed language.
// There is no rate or pitch control.
type GoogleTTS struct {
	endpoint   string
	lang       string
	httpClient *http.Client
}

// NewGoogleTTS creates a synthesizer for lang (e.g. "en")
func NewGoogleTTS(lang string, timeout time.Duration) *GoogleTTS {
	if lang == "" {
		lang = "en"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GoogleTTS{
		endpoint:   googleTTSURL,
		lang:       lang,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Synthesize requests each chunk in order and concatenates the MP3 frames
func (g *GoogleTTS) Synthesize(ctx context.Context, text, outFile string) error {
	chunks := SplitText(text, maxChunkChars)
	if len(chunks) == 0 {
		return fmt.Errorf("nothing to speak")
	}

	log.Printf("[audio] Synthesizing %d chunk(s) → %s", len(chunks), outFile)

	var buf bytes.Buffer
	for i, chunk := range chunks {
		data, err := g.fetchChunk(ctx, chunk, i, len(chunks))
		if err != nil {
			return fmt.Errorf("tts chunk %d: %w", i, err)
		}
		buf.Write(data)
	}

	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(outFile, buf.Bytes(), 0644)
}

func (g *GoogleTTS) fetchChunk(ctx context.Context, text string, idx, total int) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", g.lang)
	params.Set("q", text)
	params.Set("total", strconv.Itoa(total))
	params.Set("idx", strconv.Itoa(idx))
	params.Set("textlen", strconv.Itoa(len([]rune(text))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; QuoteShortsPipeline/1.0)")
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from TTS endpoint", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}
	return data, nil
}

// CommandTTS calls an external TTS binary or script via shell.
// TTS_COMMAND must accept: --text "..." --output path/to/file.mp3
// If TTS_COMMAND is not set, it falls back to edge-tts.
type CommandTTS struct {
	command string
	voice   string
}

// NewCommandTTS resolves the command to run, preferring ttsCmd over edge-tts
func NewCommandTTS(ttsCmd, voice string) (*CommandTTS, error) {
	ttsCmd = strings.TrimSpace(ttsCmd)
	if ttsCmd == "" {
		if _, err := exec.LookPath("edge-tts"); err != nil {
			return nil, fmt.Errorf("no TTS engine found. Set TTS_COMMAND in .env or install edge-tts: pip install edge-tts")
		}
		ttsCmd = "edge-tts"
		log.Println("[audio] Using edge-tts as TTS engine (fallback)")
	}
	return &CommandTTS{command: ttsCmd, voice: voice}, nil
}

func (c *CommandTTS) Synthesize(ctx context.Context, text, outFile string) error {
	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, c.command, c.args(text, outFile)...)
	if strings.HasSuffix(c.command, ".py") {
		cmd = exec.CommandContext(ctx, "python3", append([]string{c.command}, c.args(text, outFile)...)...)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", c.command, err)
	}
	return nil
}

func (c *CommandTTS) args(text, outFile string) []string {
	if c.command == "edge-tts" {
		return []string{"--voice", c.voice, "--text", text, "--write-media", outFile}
	}
	return []string{"--text", text, "--output", outFile}
}

var sentenceRe = regexp.MustCompile(`[^.!?;:,]+[.!?;:,]*`)

// SplitText breaks text into chunks of at most max runes, preferring
// punctuation boundaries, then word boundaries.
func SplitText(text string, max int) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}
	if len([]rune(text)) <= max {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	add := func(piece string) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			return
		}
		if cur.Len() > 0 && len([]rune(cur.String()))+1+len([]rune(piece)) > max {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(piece)
	}

	for _, sentence := range sentenceRe.FindAllString(text, -1) {
		if len([]rune(strings.TrimSpace(sentence))) <= max {
			add(sentence)
			continue
		}
		for _, word := range strings.Fields(sentence) {
			r := []rune(word)
			for len(r) > max {
				flush()
				chunks = append(chunks, string(r[:max]))
				r = r[max:]
			}
			add(string(r))
		}
	}
	flush()
	return chunks
}
