package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Quotes   QuotesConfig   `yaml:"quotes"`
	Audio    AudioConfig    `yaml:"audio"`
	Visuals  VisualsConfig  `yaml:"visuals"`
	Render   RenderConfig   `yaml:"render"`
	Metadata MetadataConfig `yaml:"metadata"`
	Upload   UploadConfig   `yaml:"upload"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Paths    PathsConfig    `yaml:"paths"`
}

type QuotesConfig struct {
	Source          string `yaml:"source"` // zenquotes | reddit
	URL             string `yaml:"url"`
	MaxEntries      int    `yaml:"max_entries"`
	TimeoutSec      int    `yaml:"timeout_sec"`
	Subreddit       string `yaml:"subreddit"`
	RedditTimeframe string `yaml:"reddit_timeframe"`
}

type AudioConfig struct {
	Engine     string `yaml:"engine"` // google | command
	Language   string `yaml:"language"`
	Voice      string `yaml:"voice"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type VisualsConfig struct {
	Backend          string   `yaml:"backend"` // sdwebui | pollinations | openai | library
	SDWebUIURL       string   `yaml:"sdwebui_url"`
	Model            string   `yaml:"model"` // web UI checkpoint title; empty keeps the loaded one
	OpenAIModel      string   `yaml:"openai_model"`
	Width            int      `yaml:"width"`
	Height           int      `yaml:"height"`
	Steps            int      `yaml:"steps"`
	GuidanceScale    float64  `yaml:"guidance_scale"`
	SlideDurationSec int      `yaml:"slide_duration_sec"`
	SlideFPS         int      `yaml:"slide_fps"`
	Font             string   `yaml:"font"`
	FontSize         float64  `yaml:"font_size"`
	StrokeWidth      int      `yaml:"stroke_width"`
	WrapColumns      int      `yaml:"wrap_columns"`
	Prompts          []string `yaml:"prompts"`
	TimeoutSec       int      `yaml:"timeout_sec"`
	LibraryDir       string   `yaml:"library_dir"`
	LibraryTags      string   `yaml:"library_tags"`
}

type RenderConfig struct {
	FPS                int     `yaml:"fps"`
	VideoCodec         string  `yaml:"video_codec"`
	AudioCodec         string  `yaml:"audio_codec"`
	ThumbnailFontSize  float64 `yaml:"thumbnail_font_size"`
	ThumbnailPaddingPx int     `yaml:"thumbnail_padding_px"`
}

type MetadataConfig struct {
	TitlePrefix       string   `yaml:"title_prefix"`
	BaseHashtags      []string `yaml:"base_hashtags"`
	YouTubeCategoryID string   `yaml:"youtube_category_id"`
}

type UploadConfig struct {
	ChannelID         string `yaml:"channel_id"`
	Visibility        string `yaml:"visibility"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	SetThumbnail      bool   `yaml:"set_thumbnail"`
	FailOnForbidden   bool   `yaml:"fail_on_forbidden"`
	ClientSecretsFile string `yaml:"client_secrets_file"`
	TokenFile         string `yaml:"token_file"`
}

type ScheduleConfig struct {
	StartHourUTC  int    `yaml:"start_hour_utc"`
	PerDay        int    `yaml:"per_day"`
	IntervalHours int    `yaml:"interval_hours"`
	Cron          string `yaml:"cron"`
}

type PathsConfig struct {
	Output            string `yaml:"output"`
	Logs              string `yaml:"logs"`
	ThumbnailTemplate string `yaml:"thumbnail_template"`
}

// SerenityPrompts are the background prompts a slide is picked from.
var SerenityPrompts = []string{
	"tranquil lake at sunrise with misty mountains",
	"zen garden with raked sand and soft morning light",
	"forest path at dawn with gentle fog and sunbeams",
	"mountains bathed in golden hour light over a calm valley",
	"secluded waterfall surrounded by lush greenery",
}

// Default returns the configuration the pipeline runs with when config.yaml
// leaves a field unset.
func Default() *Config {
	return &Config{
		Quotes: QuotesConfig{
			Source:          "zenquotes",
			URL:             "https://zenquotes.io/api/quotes",
			MaxEntries:      10,
			TimeoutSec:      10,
			Subreddit:       "quotes",
			RedditTimeframe: "day",
		},
		Audio: AudioConfig{
			Engine:     "google",
			Language:   "en",
			Voice:      "en-US-GuyNeural",
			TimeoutSec: 30,
		},
		Visuals: VisualsConfig{
			Backend:          "sdwebui",
			SDWebUIURL:       "http://127.0.0.1:7860",
			Model:            "",
			OpenAIModel:      "dall-e-3",
			Width:            720,
			Height:           1280,
			Steps:            30,
			GuidanceScale:    7.5,
			SlideDurationSec: 8,
			SlideFPS:         1,
			Font:             "arial.ttf",
			FontSize:         40,
			StrokeWidth:      2,
			WrapColumns:      30,
			Prompts:          append([]string(nil), SerenityPrompts...),
			TimeoutSec:       600,
			LibraryDir:       "resources/backgrounds",
			LibraryTags:      "resources/backgrounds/tags.json",
		},
		Render: RenderConfig{
			FPS:                24,
			VideoCodec:         "libx264",
			AudioCodec:         "aac",
			ThumbnailFontSize:  52,
			ThumbnailPaddingPx: 50,
		},
		Metadata: MetadataConfig{
			TitlePrefix:  "Inspiration",
			BaseHashtags: []string{"Inspiration", "Motivation", "DailyQuote", "Viral", "Shorts"},
		},
		Upload: UploadConfig{
			Visibility:        "private",
			ClientSecretsFile: "client_secrets.json",
			TokenFile:         "token.json",
		},
		Schedule: ScheduleConfig{
			StartHourUTC:  9,
			PerDay:        5,
			IntervalHours: 2,
		},
		Paths: PathsConfig{
			Output:            "temp",
			Logs:              "logs",
			ThumbnailTemplate: "resources/templates/thumbnail.png",
		},
	}
}

// Load reads config.yaml over the defaults and applies environment overrides.
// A missing file is not an error: the defaults are used as-is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("YOUTUBE_CHANNEL_ID"); v != "" {
		c.Upload.ChannelID = v
	}
	if v := os.Getenv("SD_WEBUI_URL"); v != "" {
		c.Visuals.SDWebUIURL = v
	}
	if v := os.Getenv("QUOTES_SOURCE"); v != "" {
		c.Quotes.Source = v
	}
	if v := os.Getenv("IMAGE_BACKEND"); v != "" {
		c.Visuals.Backend = v
	}
}

// Validate rejects settings that would make the schedule or the slide math meaningless.
func (c *Config) Validate() error {
	if c.Quotes.MaxEntries <= 0 {
		return fmt.Errorf("quotes.max_entries must be positive, got %d", c.Quotes.MaxEntries)
	}
	if c.Schedule.PerDay <= 0 {
		return fmt.Errorf("schedule.per_day must be positive, got %d", c.Schedule.PerDay)
	}
	if c.Schedule.StartHourUTC < 0 || c.Schedule.StartHourUTC > 23 {
		return fmt.Errorf("schedule.start_hour_utc out of range: %d", c.Schedule.StartHourUTC)
	}
	if c.Visuals.Width <= 0 || c.Visuals.Height <= 0 {
		return fmt.Errorf("visuals size must be positive, got %dx%d", c.Visuals.Width, c.Visuals.Height)
	}
	if len(c.Visuals.Prompts) == 0 {
		return fmt.Errorf("visuals.prompts is empty")
	}
	return nil
}
