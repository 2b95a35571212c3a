package quotes

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"quote-shorts-pipeline/types"
)

// Reddit reads quotes from the titles of a subreddit's top posts
type Reddit struct {
	client    *reddit.Client
	subreddit string
	timeframe string
}

// NewReddit creates a read-only Reddit source; no credentials are needed
func NewReddit(subreddit, timeframe string, opts ...reddit.Opt) (*Reddit, error) {
	client, err := reddit.NewReadonlyClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	if subreddit == "" {
		subreddit = "quotes"
	}
	if timeframe == "" {
		timeframe = "day"
	}
	return &Reddit{client: client, subreddit: subreddit, timeframe: timeframe}, nil
}

// Fetch keeps listing order and drops posts whose title is not a quote
func (r *Reddit) Fetch(ctx context.Context, max int) ([]types.Quote, error) {
	if max <= 0 {
		return nil, nil
	}
	log.Printf("[quotes] Fetching top posts from r/%s (%s)", r.subreddit, r.timeframe)

	posts, _, err := r.client.Subreddit.TopPosts(ctx, r.subreddit, &reddit.ListPostOptions{
		ListOptions: reddit.ListOptions{Limit: 100},
		Time:        r.timeframe,
	})
	if err != nil {
		return nil, fmt.Errorf("reddit r/%s: %w", r.subreddit, err)
	}

	var quotes []types.Quote
	for _, post := range posts {
		if len(quotes) == max {
			break
		}
		q, ok := ParseQuoteTitle(post.Title)
		if !ok {
			continue
		}
		quotes = append(quotes, q)
	}

	log.Printf("[quotes] ✅ Got %d quotes from %d posts", len(quotes), len(posts))
	return quotes, nil
}

var (
	bracketTag  = regexp.MustCompile(`\s*[\[(][^\])]*[\])]\s*$`)
	attribution = regexp.MustCompile(`^(.+)\s+(?:-|–|—|―|~)\s*(.+)$`)
)

const quoteMarks = "\"'“”‘’«» "

// ParseQuoteTitle splits a post title like `"Stay hungry." - Steve Jobs`
// into its quote and author.
func ParseQuoteTitle(title string) (types.Quote, bool) {
	title = strings.TrimSpace(title)
	for bracketTag.MatchString(title) {
		title = bracketTag.ReplaceAllString(title, "")
	}

	m := attribution.FindStringSubmatch(title)
	if m == nil {
		return types.Quote{}, false
	}

	text := strings.Trim(strings.TrimSpace(m[1]), quoteMarks)
	author := strings.TrimSpace(m[2])
	if text == "" || author == "" || len(author) > 60 {
		return types.Quote{}, false
	}
	return types.Quote{Text: text, Author: author}, true
}
