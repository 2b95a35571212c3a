package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"quote-shorts-pipeline/01_quotes"
	"quote-shorts-pipeline/02_audio"
	"quote-shorts-pipeline/03_visuals"
	"quote-shorts-pipeline/04_render"
	"quote-shorts-pipeline/05_metadata"
	"quote-shorts-pipeline/06_upload"
	"quote-shorts-pipeline/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	daemon := flag.Bool("daemon", false, "Stay running and start a batch on schedule.cron")
	count := flag.Int("n", 0, "Number of quotes to publish (overrides quotes.max_entries)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load .env (local dev only)
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *count > 0 {
		cfg.Quotes.MaxEntries = *count
	}

	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.Logs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create dir %s: %v", dir, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Setup failed: %v", err)
	}

	if *daemon {
		if err := runDaemon(ctx, p, cfg); err != nil {
			log.Fatalf("❌ %v", err)
		}
		return
	}

	report, err := p.Run(ctx, cfg.Quotes.MaxEntries)
	if err != nil {
		log.Printf("❌ Pipeline failed: %v", err)
		stop()
		os.Exit(1)
	}
	log.Printf("✅ Pipeline complete! %d short(s) processed", len(report.Items))
}

// newPipeline builds every long-lived handle once: the quote source, the
// speech engine, the image backend and font, and the authorized YouTube client.
func newPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	source, err := quotes.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("quote source: %w", err)
	}
	tts, err := audio.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("speech engine: %w", err)
	}
	scenes, err := visuals.NewSceneGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("scene generator: %w", err)
	}

	log.Println("[upload] Authenticating with YouTube API...")
	conf, err := upload.ClientConfig(cfg.Upload.ClientSecretsFile)
	if err != nil {
		return nil, err
	}
	creds := upload.NewCredentialProvider(conf, upload.NewTokenStore(cfg.Upload.TokenFile), &upload.LocalServerAuthorizer{})
	httpClient, err := creds.HTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("youtube auth: %w", err)
	}
	uploader, err := upload.NewUploader(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		quotes:   source,
		tts:      tts,
		slides:   scenes,
		renderer: render.New(cfg),
		meta:     metadata.New(cfg),
		uploader: uploader,
		now:      time.Now,
	}, nil
}

// runDaemon starts a batch on every tick of schedule.cron (UTC) until ctx is
// cancelled. A tick that fires while a batch is still running is skipped.
func runDaemon(ctx context.Context, p *Pipeline, cfg *config.Config) error {
	if cfg.Schedule.Cron == "" {
		return fmt.Errorf("-daemon requires schedule.cron in config")
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	_, err := c.AddFunc(cfg.Schedule.Cron, func() {
		if _, err := p.Run(ctx, cfg.Quotes.MaxEntries); err != nil {
			log.Printf("❌ Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule.cron %q: %w", cfg.Schedule.Cron, err)
	}

	c.Start()
	log.Printf("⏰ Scheduler started (%s UTC), waiting for next run...", cfg.Schedule.Cron)

	<-ctx.Done()
	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	return nil
}
