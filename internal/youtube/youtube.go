// Package youtube provides video search and download for JekleTube.
//
// Search talks to YouTube's innertube search endpoint; downloads go
// through the kkdai/youtube stream client, picking the best progressive
// MP4 stream that fits the Messenger attachment limit.
package youtube

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	ytdl "github.com/kkdai/youtube/v2"

	"github.com/djmontana/jekletube/internal/models"
)

// Constants for YouTube client configuration
const (
	// DefaultSearchBaseURL is the innertube API root used for search.
	DefaultSearchBaseURL = "https://www.youtube.com"
	// innertubeClientVersion identifies the web client to the search endpoint.
	innertubeClientVersion = "2.20240101.00.00"
	// minThumbnailWidth is the preferred minimum thumbnail width in pixels.
	minThumbnailWidth = 320
)

// Searcher is an interface for keyword video search (for production and testing).
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// Downloader is an interface for fetching a video to local storage
// (for production and testing).
type Downloader interface {
	Download(ctx context.Context, videoID string) (string, float64, error)
}

// Opts holds configuration options for the YouTube client.
type Opts struct {
	SearchBaseURL string       // innertube API root (overridden in tests)
	HTTPClient    *http.Client // HTTP client for search and stream calls
	TempDir       string       // directory for downloaded files
	MaxSizeMB     float64      // stream selection budget in MB
}

// Option defines a configuration option for the YouTube client.
type Option func(*Opts)

// WithSearchBaseURL overrides the innertube API root.
func WithSearchBaseURL(url string) Option {
	return func(o *Opts) {
		o.SearchBaseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for all calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Opts) {
		o.HTTPClient = client
	}
}

// WithTempDir sets the directory downloaded videos are staged in.
func WithTempDir(dir string) Option {
	return func(o *Opts) {
		o.TempDir = dir
	}
}

// WithMaxSizeMB sets the stream selection size budget.
func WithMaxSizeMB(mb float64) Option {
	return func(o *Opts) {
		o.MaxSizeMB = mb
	}
}

// Client performs video search and download.
type Client struct {
	searchBaseURL string
	httpClient    *http.Client
	tempDir       string
	maxSizeMB     float64
	streams       *ytdl.Client
}

// NewClient creates a new YouTube client, applying any provided options.
func NewClient(opts ...Option) *Client {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.SearchBaseURL == "" {
		cfg.SearchBaseURL = DefaultSearchBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = models.MaxAttachmentSizeMB
	}
	slog.Debug("YouTube NewClient options set", "searchBaseURL", cfg.SearchBaseURL, "tempDir", cfg.TempDir, "maxSizeMB", cfg.MaxSizeMB)
	return &Client{
		searchBaseURL: cfg.SearchBaseURL,
		httpClient:    cfg.HTTPClient,
		tempDir:       cfg.TempDir,
		maxSizeMB:     cfg.MaxSizeMB,
		streams:       &ytdl.Client{HTTPClient: cfg.HTTPClient},
	}
}

// Download fetches a video as progressive MP4 into the temp directory and
// returns the file path and its size in MB. Streams are tried smallest
// fitting first: the largest stream within the size budget wins, falling
// back to the smallest available when none fits.
//
// The output path is derived from the video id, so concurrent downloads
// of the same id collide on it.
func (c *Client) Download(ctx context.Context, videoID string) (string, float64, error) {
	slog.Debug("YouTube Download", "videoID", videoID)

	video, err := c.streams.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load video metadata: %w", err)
	}

	format, err := selectFormat(video.Formats, c.maxSizeMB)
	if err != nil {
		return "", 0, err
	}
	slog.Debug("YouTube Download stream selected", "videoID", videoID, "quality", format.QualityLabel, "contentLength", format.ContentLength)

	stream, _, err := c.streams.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open video stream: %w", err)
	}
	defer stream.Close()

	outputPath := filepath.Join(c.tempDir, videoID+".mp4")
	out, err := os.Create(outputPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := io.Copy(out, stream); err != nil {
		out.Close()
		os.Remove(outputPath)
		return "", 0, fmt.Errorf("failed to write video stream: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close output file: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat downloaded file: %w", err)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)
	slog.Info("YouTube download finished", "videoID", videoID, "path", outputPath, "sizeMB", sizeMB)
	return outputPath, sizeMB, nil
}

// selectFormat picks a progressive MP4 stream: the largest one within the
// size budget, or the smallest available if none fits.
func selectFormat(formats ytdl.FormatList, maxSizeMB float64) (*ytdl.Format, error) {
	progressive := formats.Type("video/mp4").WithAudioChannels()
	if len(progressive) == 0 {
		return nil, fmt.Errorf("no progressive MP4 stream available")
	}

	sort.SliceStable(progressive, func(i, j int) bool {
		return progressive[i].ContentLength < progressive[j].ContentLength
	})

	budget := int64(maxSizeMB * 1024 * 1024)
	selected := &progressive[0]
	for i := range progressive {
		// Formats with unknown length sort first and are never preferred.
		if progressive[i].ContentLength > 0 && progressive[i].ContentLength <= budget {
			selected = &progressive[i]
		}
	}
	return selected, nil
}
