package metadata

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"quote-shorts-pipeline/config"
	"quote-shorts-pipeline/types"
)

// Generator derives YouTube metadata and publish slots for quotes
type Generator struct {
	cfg *config.Config
}

// New creates a new metadata Generator
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Build assembles the metadata for the quote at index i of a run whose
// schedule starts at base.
func (g *Generator) Build(q types.Quote, i int, base time.Time) *types.VideoMetadata {
	hashtags := Hashtags(g.cfg.Metadata.BaseHashtags, q.Author)

	meta := &types.VideoMetadata{
		Title:            Title(g.cfg.Metadata.TitlePrefix, q.Author),
		Description:      Description(QuoteText(q), hashtags),
		Tags:             Tags(hashtags),
		CategoryID:       g.cfg.Metadata.YouTubeCategoryID,
		Visibility:       g.cfg.Upload.Visibility,
		ScheduledTimeUTC: PublishSlot(base, i, g.cfg.Schedule.PerDay, g.cfg.Schedule.IntervalHours),
	}

	log.Printf("[metadata] %d: %q at %s", i, meta.Title, meta.ScheduledTimeUTC)
	return meta
}

// BaseTime is today at startHour:00:00 UTC
func (g *Generator) BaseTime(now time.Time) time.Time {
	return BaseTime(now, g.cfg.Schedule.StartHourUTC)
}

// QuoteText is the spoken and displayed form of a quote
func QuoteText(q types.Quote) string {
	return fmt.Sprintf("\"%s\" — %s", q.Text, q.Author)
}

// Title is "<prefix>: <author>"
func Title(prefix, author string) string {
	return fmt.Sprintf("%s: %s", prefix, author)
}

// Hashtags prefixes every base tag with '#' and appends the author with all
// whitespace removed. No author tag is added when the author is blank.
func Hashtags(base []string, author string) []string {
	tags := make([]string, 0, len(base)+1)
	for _, t := range base {
		tags = append(tags, "#"+strings.TrimPrefix(t, "#"))
	}
	authorTag := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, author)
	if authorTag != "" {
		tags = append(tags, "#"+authorTag)
	}
	return tags
}

// Description is the quote, a blank line, then the hashtags separated by spaces
func Description(quoteText string, hashtags []string) string {
	return quoteText + "\n\n" + strings.Join(hashtags, " ")
}

// Tags strips the '#' from each hashtag for the platform's tag field
func Tags(hashtags []string) []string {
	tags := make([]string, len(hashtags))
	for i, h := range hashtags {
		tags[i] = strings.TrimLeft(h, "#")
	}
	return tags
}

// BaseTime truncates now to the current UTC day and sets the hour to startHour
func BaseTime(now time.Time, startHour int) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), startHour, 0, 0, 0, time.UTC)
}

// PublishSlot spreads items perDay to a day, intervalHours apart, starting at
// base: slot(i) = base + (i / perDay) days + (i % perDay) * interval.
// The result is RFC 3339 in UTC.
func PublishSlot(base time.Time, i, perDay, intervalHours int) string {
	if perDay <= 0 {
		perDay = 1
	}
	day := i / perDay
	slot := i % perDay
	t := base.AddDate(0, 0, day).Add(time.Duration(slot*intervalHours) * time.Hour)
	return t.UTC().Format(time.RFC3339)
}
