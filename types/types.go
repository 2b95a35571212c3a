package types

// Quote is one fetched quote. It is never modified after the source returns it.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Artifacts are the transient files produced for one quote, named by index
type Artifacts struct {
	Voice     string `json:"voice"`
	Slide     string `json:"slide"`
	Video     string `json:"video"`
	Thumbnail string `json:"thumbnail"`
}

// Paths lists every artifact path in cleanup order
func (a Artifacts) Paths() []string {
	return []string{a.Voice, a.Slide, a.Video, a.Thumbnail}
}

// VideoMetadata holds all YouTube upload metadata
type VideoMetadata struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	CategoryID       string   `json:"category_id"`
	Visibility       string   `json:"visibility"`
	ScheduledTimeUTC string   `json:"scheduled_time_utc"`
}

// UploadResult is what the publisher reports for one item.
// Skipped is set when the platform refused the upload and the item was left behind.
type UploadResult struct {
	VideoID  string `json:"video_id"`
	VideoURL string `json:"video_url"`
	Skipped  bool   `json:"skipped"`
}

// ItemReport records the outcome of one quote within a run
type ItemReport struct {
	Index    int            `json:"index"`
	Quote    Quote          `json:"quote"`
	Metadata *VideoMetadata `json:"metadata"`
	Result   *UploadResult  `json:"result,omitempty"`
}

// RunReport tracks the full state of one pipeline run
type RunReport struct {
	RunID       string       `json:"run_id"`
	StartedAt   string       `json:"started_at"`
	CompletedAt string       `json:"completed_at"`
	Items       []ItemReport `json:"items"`
	Error       string       `json:"error,omitempty"`
}
