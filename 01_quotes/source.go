package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"quote-shorts-pipeline/config"
	"quote-shorts-pipeline/types"
)

// Source returns at most max quotes in the order the remote service lists them
type Source interface {
	Fetch(ctx context.Context, max int) ([]types.Quote, error)
}

// New picks the quote source named in config
func New(cfg *config.Config) (Source, error) {
	switch cfg.Quotes.Source {
	case "", "zenquotes":
		return NewZenQuotes(cfg.Quotes.URL, time.Duration(cfg.Quotes.TimeoutSec)*time.Second), nil
	case "reddit":
		src, err := NewReddit(cfg.Quotes.Subreddit, cfg.Quotes.RedditTimeframe)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown quote source %q", cfg.Quotes.Source)
	}
}

// ZenQuotes fetches quotes from a JSON endpoint shaped like zenquotes.io
type ZenQuotes struct {
	url        string
	httpClient *http.Client
}

// NewZenQuotes creates a source with a fixed request timeout
func NewZenQuotes(url string, timeout time.Duration) *ZenQuotes {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ZenQuotes{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type zenQuote struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// Fetch does a single GET. There is no retry: a failed call fails the run.
func (z *ZenQuotes) Fetch(ctx context.Context, max int) ([]types.Quote, error) {
	if max <= 0 {
		return nil, nil
	}
	log.Printf("[quotes] Fetching up to %d quotes from %s", max, z.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, z.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := z.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quotes request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("quotes endpoint returned HTTP %d: %s", resp.StatusCode, body)
	}

	var raw []zenQuote
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse quotes response: %w", err)
	}

	quotes := make([]types.Quote, 0, min(max, len(raw)))
	for _, item := range raw {
		if len(quotes) == max {
			break
		}
		quotes = append(quotes, types.Quote{Text: item.Q, Author: item.A})
	}

	log.Printf("[quotes] ✅ Got %d quotes", len(quotes))
	return quotes, nil
}
