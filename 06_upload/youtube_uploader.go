package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"quote-shorts-pipeline/config"
	"quote-shorts-pipeline/types"
)

// ErrForbidden is reported when YouTube refuses an upload with HTTP 403,
// usually because the Data API is not enabled for the project.
var ErrForbidden = errors.New("youtube upload forbidden")

const forbiddenHint = "YouTube Data API not enabled or quota exhausted.\n" +
	"→ Enable at: https://console.developers.google.com/apis/api/youtube.googleapis.com/overview?project=YOUR_PROJECT_ID"

// Uploader handles YouTube video upload via Data API v3. Build it once per
// process; the underlying service is reused for every video.
type Uploader struct {
	cfg *config.Config
	svc *youtube.Service
}

// NewUploader creates the YouTube service on top of an authorized client
func NewUploader(ctx context.Context, cfg *config.Config, httpClient *http.Client, opts ...option.ClientOption) (*Uploader, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &Uploader{cfg: cfg, svc: svc}, nil
}

// Upload sends videoFile as a scheduled private video. On HTTP 403 the video
// is skipped; ErrForbidden is returned only when upload.fail_on_forbidden is set.
func (u *Uploader) Upload(ctx context.Context, videoFile string, metadata *types.VideoMetadata) (*types.UploadResult, error) {
	log.Printf("[upload] Uploading: %q", metadata.Title)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			ChannelId:   u.cfg.Upload.ChannelID,
			Title:       metadata.Title,
			Description: metadata.Description,
			Tags:        metadata.Tags,
			CategoryId:  metadata.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           metadata.Visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	if metadata.ScheduledTimeUTC != "" {
		video.Status.PrivacyStatus = "private" // must be private to schedule
		video.Status.PublishAt = metadata.ScheduledTimeUTC
		log.Printf("[upload] Scheduled for: %s UTC", metadata.ScheduledTimeUTC)
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat video file: %w", err)
	}
	size := fi.Size()
	log.Printf("[upload] File size: %.1f MB", float64(size)/1024/1024)

	// Media() falls back to a single multipart request when the file fits in
	// one chunk, which is every short clip. Always open a resumable session.
	call := u.svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.ResumableMedia(ctx, f, size, "video/mp4")
	call.ProgressUpdater(func(current, total int64) {
		if total > 0 {
			log.Printf("[upload] Progress: %.0f%%", float64(current)/float64(total)*100)
		}
	})

	uploaded, err := call.Do()
	if err != nil {
		if isForbidden(err) {
			log.Printf("[upload] ❌ %s\n%s", err, forbiddenHint)
			res := &types.UploadResult{Skipped: true}
			if u.cfg.Upload.FailOnForbidden {
				return res, fmt.Errorf("%w: %v", ErrForbidden, err)
			}
			return res, nil
		}
		return nil, fmt.Errorf("youtube upload: %w", err)
	}

	res := &types.UploadResult{
		VideoID:  uploaded.Id,
		VideoURL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", uploaded.Id),
	}
	log.Printf("[upload] ✅ Uploaded video ID: %s", res.VideoID)
	log.Printf("[upload] Video URL: %s", res.VideoURL)
	return res, nil
}

// SetThumbnail attaches a custom thumbnail to an uploaded video
func (u *Uploader) SetThumbnail(ctx context.Context, videoID, thumbFile string) error {
	f, err := os.Open(thumbFile)
	if err != nil {
		return fmt.Errorf("open thumbnail: %w", err)
	}
	defer f.Close()

	if _, err := u.svc.Thumbnails.Set(videoID).Media(f).Context(ctx).Do(); err != nil {
		return fmt.Errorf("set thumbnail: %w", err)
	}
	log.Printf("[upload] ✅ Thumbnail set for %s", videoID)
	return nil
}

func isForbidden(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusForbidden
}

// LogUpload saves the upload result to the logs directory
func LogUpload(logsDir, videoFile string, result *types.UploadResult, metadata *types.VideoMetadata) (string, error) {
	logEntry := map[string]interface{}{
		"video_id":      result.VideoID,
		"video_url":     result.VideoURL,
		"skipped":       result.Skipped,
		"title":         metadata.Title,
		"scheduled_utc": metadata.ScheduledTimeUTC,
		"uploaded_at":   time.Now().UTC().Format(time.RFC3339),
		"video_file":    videoFile,
	}

	name := fmt.Sprintf("upload_%s_%s.json", time.Now().Format("20060102_150405"), filepath.Base(videoFile))
	logFile := filepath.Join(logsDir, name)
	data, _ := json.MarshalIndent(logEntry, "", "  ")
	if err := os.WriteFile(logFile, data, 0644); err != nil {
		return "", err
	}

	log.Printf("[upload] Upload log saved: %s", logFile)
	return logFile, nil
}
