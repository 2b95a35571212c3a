package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"quote-shorts-pipeline/config"
)

func zenServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	items := make([]map[string]string, n)
	for i := range items {
		items[i] = map[string]string{
			"q": fmt.Sprintf("quote %d", i),
			"a": fmt.Sprintf("Author %d", i),
			"h": "<blockquote>ignored</blockquote>",
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestZenQuotesFetchTruncatesInOrder(t *testing.T) {
	srv := zenServer(t, 50)
	src := NewZenQuotes(srv.URL, time.Second)

	quotes, err := src.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(quotes) != 10 {
		t.Fatalf("Expected 10 quotes, got %d", len(quotes))
	}
	for i, q := range quotes {
		if q.Text != fmt.Sprintf("quote %d", i) {
			t.Errorf("Expected quote %d at position %d, got %q", i, i, q.Text)
		}
		if q.Author != fmt.Sprintf("Author %d", i) {
			t.Errorf("Expected Author %d at position %d, got %q", i, i, q.Author)
		}
	}
}

func TestZenQuotesFetchShortResponse(t *testing.T) {
	srv := zenServer(t, 3)
	src := NewZenQuotes(srv.URL, time.Second)

	quotes, err := src.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(quotes) != 3 {
		t.Errorf("Expected 3 quotes, got %d", len(quotes))
	}
}

func TestFetchNonPositiveMax(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected no request when nothing is wanted")
	}))
	defer srv.Close()

	zen := NewZenQuotes(srv.URL, time.Second)
	red, err := NewReddit("quotes", "day", reddit.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}

	for _, max := range []int{0, -1} {
		for _, src := range []Source{zen, red} {
			quotes, err := src.Fetch(context.Background(), max)
			if err != nil {
				t.Errorf("Fetch(%d) with %T: unexpected error %v", max, src, err)
			}
			if len(quotes) != 0 {
				t.Errorf("Fetch(%d) with %T: expected no quotes, got %d", max, src, len(quotes))
			}
		}
	}
}

func TestZenQuotesFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewZenQuotes(srv.URL, time.Second).Fetch(context.Background(), 10)
	if err == nil {
		t.Fatal("Expected error for HTTP 429")
	}
}

func TestZenQuotesFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	_, err := NewZenQuotes(srv.URL, 20*time.Millisecond).Fetch(context.Background(), 10)
	if err == nil {
		t.Fatal("Expected timeout error")
	}
}

func TestZenQuotesFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := NewZenQuotes(srv.URL, time.Second).Fetch(context.Background(), 10)
	if err == nil {
		t.Fatal("Expected decode error")
	}
}

func TestNewPicksSource(t *testing.T) {
	cfg := config.Default()

	src, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := src.(*ZenQuotes); !ok {
		t.Errorf("Expected *ZenQuotes by default, got %T", src)
	}

	cfg.Quotes.Source = "reddit"
	src, err = New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := src.(*Reddit); !ok {
		t.Errorf("Expected *Reddit, got %T", src)
	}

	cfg.Quotes.Source = "fortune-cookie"
	if _, err := New(cfg); err == nil {
		t.Error("Expected error for unknown source")
	}
}
