package visuals

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// SDWebUI drives a Stable Diffusion web UI through its txt2img API.
// Steps, guidance and checkpoint are fixed for the life of the process.
type SDWebUI struct {
	baseURL    string
	model      string
	steps      int
	guidance   float64
	httpClient *http.Client
}

// NewSDWebUI creates a Stable Diffusion backend
func NewSDWebUI(baseURL, model string, steps int, guidance float64, timeout time.Duration) *SDWebUI {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &SDWebUI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		steps:      steps,
		guidance:   guidance,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type txt2imgRequest struct {
	Prompt           string            `json:"prompt"`
	NegativePrompt   string            `json:"negative_prompt"`
	Width            int               `json:"width"`
	Height           int               `json:"height"`
	Steps            int               `json:"steps"`
	CFGScale         float64           `json:"cfg_scale"`
	BatchSize        int               `json:"batch_size"`
	OverrideSettings map[string]string `json:"override_settings,omitempty"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
	Error  string   `json:"error"`
	Detail any      `json:"detail"`
}

func (s *SDWebUI) Generate(ctx context.Context, prompt string, width, height int) (image.Image, error) {
	body := txt2imgRequest{
		Prompt:         prompt,
		NegativePrompt: "text, watermark, signature, people",
		Width:          width,
		Height:         height,
		Steps:          s.steps,
		CFGScale:       s.guidance,
		BatchSize:      1,
	}
	if s.model != "" {
		body.OverrideSettings = map[string]string{"sd_model_checkpoint": s.model}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	log.Printf("[visuals] Stable Diffusion: %q (%dx%d, %d steps, cfg %.1f)", prompt, width, height, s.steps, s.guidance)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("txt2img request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("txt2img HTTP %d: %s", resp.StatusCode, truncate(string(respBytes), 200))
	}

	var out txt2imgResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, fmt.Errorf("parse txt2img response: %w", err)
	}
	if len(out.Images) == 0 {
		return nil, fmt.Errorf("txt2img returned no images")
	}

	raw := out.Images[0]
	if i := strings.Index(raw, ","); i != -1 && strings.HasPrefix(raw, "data:") {
		raw = raw[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode txt2img image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode txt2img image: %w", err)
	}
	return img, nil
}
