package visuals

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// PollinationsFetcher generates AI images via Pollinations.ai (free, no key needed)
type PollinationsFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewPollinationsFetcher creates a new fetcher
func NewPollinationsFetcher(timeout time.Duration) *PollinationsFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PollinationsFetcher{
		baseURL:    "https://image.pollinations.ai",
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate requests the prompt at the exact slide size
func (p *PollinationsFetcher) Generate(ctx context.Context, prompt string, width, height int) (image.Image, error) {
	// Format: https://image.pollinations.ai/prompt/{encoded_prompt}?params
	imageURL := fmt.Sprintf(
		"%s/prompt/%s?width=%d&height=%d&nologo=true&model=flux",
		p.baseURL, url.PathEscape(enhancePrompt(prompt)), width, height,
	)

	log.Printf("[visuals] Pollinations: %q", truncate(prompt, 60))

	data, err := p.download(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("pollinations: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pollinations: decode image: %w", err)
	}
	return img, nil
}

func (p *PollinationsFetcher) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; QuoteShortsPipeline/1.0)")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from Pollinations", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Validate it's actually an image (not an error HTML page)
	if len(data) < 100 {
		return nil, fmt.Errorf("response too small (%d bytes) — likely an error", len(data))
	}
	return data, nil
}

// enhancePrompt adds the calm, text-free style every background shares
func enhancePrompt(base string) string {
	return fmt.Sprintf("%s, serene, soft natural light, photorealistic, vertical composition, no text, no watermark", base)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
