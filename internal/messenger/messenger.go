// Package messenger wraps the Facebook Messenger Send API for JekleTube.
//
// It provides text delivery with chunking, generic template delivery for
// search results, and multipart video attachment upload with local size
// enforcement.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/djmontana/jekletube/internal/models"
)

// Constants for Messenger client configuration
const (
	// DefaultBaseURL is the Graph API root used for the Send API.
	DefaultBaseURL = "https://graph.facebook.com/v13.0"
	// PlaceholderThumbnailURL is shown when a search result has no thumbnail.
	PlaceholderThumbnailURL = "https://via.placeholder.com/320x180?text=No+thumbnail"
)

// ErrAttachmentTooLarge is returned when an attachment exceeds the
// platform size limit before any network call is made.
var ErrAttachmentTooLarge = errors.New("attachment exceeds the 25 MB limit")

// APIError is a structured error object returned by the platform.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("messenger API error (code %d): %s", e.Code, e.Message)
}

// Opts holds configuration options for the Messenger client.
type Opts struct {
	AccessToken string       // page access token for the Send API
	BaseURL     string       // Graph API base URL (overridden in tests)
	HTTPClient  *http.Client // HTTP client used for all calls
}

// Option defines a configuration option for the Messenger client.
type Option func(*Opts)

// WithAccessToken sets the page access token.
func WithAccessToken(token string) Option {
	return func(o *Opts) {
		o.AccessToken = token
	}
}

// WithBaseURL overrides the Graph API base URL.
func WithBaseURL(url string) Option {
	return func(o *Opts) {
		o.BaseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for Send API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Opts) {
		o.HTTPClient = client
	}
}

// Client talks to the Messenger Send API.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewClient creates a new Messenger client, applying any provided options.
func NewClient(opts ...Option) *Client {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	slog.Debug("Messenger NewClient options set", "baseURL", cfg.BaseURL, "accessToken_set", cfg.AccessToken != "")
	return &Client{
		accessToken: cfg.AccessToken,
		baseURL:     cfg.BaseURL,
		httpClient:  cfg.HTTPClient,
	}
}

// Wire shapes for the Send API.
type sendRequest struct {
	Recipient recipient   `json:"recipient"`
	Message   sendMessage `json:"message"`
}

type recipient struct {
	ID string `json:"id"`
}

type sendMessage struct {
	Text       string      `json:"text,omitempty"`
	Attachment *attachment `json:"attachment,omitempty"`
}

type attachment struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type templatePayload struct {
	TemplateType string            `json:"template_type"`
	Elements     []templateElement `json:"elements"`
}

type templateElement struct {
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle,omitempty"`
	ImageURL string           `json:"image_url,omitempty"`
	Buttons  []templateButton `json:"buttons,omitempty"`
}

type templateButton struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Payload string `json:"payload,omitempty"`
	URL     string `json:"url,omitempty"`
}

type sendResponse struct {
	MessageID   string     `json:"message_id,omitempty"`
	RecipientID string     `json:"recipient_id,omitempty"`
	Error       *sendError `json:"error,omitempty"`
}

type sendError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SendText delivers text to a user, splitting it into chunks of at most
// models.MaxTextChunkLength characters sent in order. A failed chunk
// aborts the remainder; chunks already sent are not rolled back.
func (c *Client) SendText(ctx context.Context, to string, text string) error {
	chunks := chunkText(text, models.MaxTextChunkLength)
	slog.Debug("Messenger SendText", "to", to, "length", len(text), "chunks", len(chunks))

	for i, chunk := range chunks {
		payload := sendRequest{
			Recipient: recipient{ID: to},
			Message:   sendMessage{Text: chunk},
		}
		if err := c.callSendAPI(ctx, payload); err != nil {
			slog.Error("Messenger SendText chunk failed", "to", to, "chunk", i, "error", err)
			return fmt.Errorf("failed to send text chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

// SendSearchResults delivers search results as a single generic template
// with at most limit elements, each carrying a watch postback and an
// external link button.
func (c *Client) SendSearchResults(ctx context.Context, to string, results []models.SearchResult, limit int) error {
	if limit <= 0 {
		limit = models.DefaultSearchLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	slog.Debug("Messenger SendSearchResults", "to", to, "count", len(results))

	elements := make([]templateElement, 0, len(results))
	for _, r := range results {
		title := r.Title
		if runes := []rune(title); len(runes) > models.MaxTitleLength {
			title = string(runes[:models.MaxTitleLength])
		}
		thumbnail := r.Thumbnail
		if thumbnail == "" {
			thumbnail = PlaceholderThumbnailURL
		}
		elements = append(elements, templateElement{
			Title:    title,
			Subtitle: fmt.Sprintf("Channel: %s | Duration: %s", r.Channel, r.Duration),
			ImageURL: thumbnail,
			Buttons: []templateButton{
				{Type: "postback", Title: "Watch", Payload: models.WatchPayloadPrefix + r.ID},
				{Type: "web_url", Title: "View on YouTube", URL: r.URL},
			},
		})
	}

	tpl, err := json.Marshal(templatePayload{TemplateType: "generic", Elements: elements})
	if err != nil {
		return fmt.Errorf("failed to encode template payload: %w", err)
	}
	payload := sendRequest{
		Recipient: recipient{ID: to},
		Message:   sendMessage{Attachment: &attachment{Type: "template", Payload: tpl}},
	}
	if err := c.callSendAPI(ctx, payload); err != nil {
		slog.Error("Messenger SendSearchResults failed", "to", to, "error", err)
		return fmt.Errorf("failed to send search results: %w", err)
	}
	return nil
}

// SendVideoAttachment uploads a local video file as a message attachment.
// The file size is re-validated against the platform limit before any
// network call; callers are expected to have checked it already.
func (c *Client) SendVideoAttachment(ctx context.Context, to string, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat video file: %w", err)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)
	if sizeMB > models.MaxAttachmentSizeMB {
		slog.Error("Messenger SendVideoAttachment rejected oversized file", "to", to, "path", path, "sizeMB", sizeMB)
		return fmt.Errorf("%w: %.2f MB", ErrAttachmentTooLarge, sizeMB)
	}
	slog.Debug("Messenger SendVideoAttachment", "to", to, "path", path, "sizeMB", sizeMB)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open video file: %w", err)
	}
	defer f.Close()

	recipientJSON, err := json.Marshal(recipient{ID: to})
	if err != nil {
		return fmt.Errorf("failed to encode recipient: %w", err)
	}
	messageJSON, err := json.Marshal(sendMessage{
		Attachment: &attachment{Type: "video", Payload: json.RawMessage(`{}`)},
	})
	if err != nil {
		return fmt.Errorf("failed to encode attachment message: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("recipient", string(recipientJSON)); err != nil {
		return fmt.Errorf("failed to write recipient field: %w", err)
	}
	if err := writer.WriteField("message", string(messageJSON)); err != nil {
		return fmt.Errorf("failed to write message field: %w", err)
	}
	part, err := writer.CreateFormFile("filedata", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy video data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL(), &body)
	if err != nil {
		return fmt.Errorf("failed to build attachment request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Send API: %w", err)
	}
	defer resp.Body.Close()

	if err := decodeSendResponse(resp); err != nil {
		slog.Error("Messenger SendVideoAttachment failed", "to", to, "error", err)
		return err
	}
	slog.Info("Messenger video attachment sent", "to", to, "sizeMB", sizeMB)
	return nil
}

func (c *Client) sendURL() string {
	return fmt.Sprintf("%s/me/messages?access_token=%s", c.baseURL, c.accessToken)
}

// callSendAPI posts one JSON message to the Send API and surfaces
// platform error objects as *APIError.
func (c *Client) callSendAPI(ctx context.Context, payload sendRequest) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL(), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Send API: %w", err)
	}
	defer resp.Body.Close()

	return decodeSendResponse(resp)
}

// decodeSendResponse maps a Send API response to nil or a typed error.
// An error object in the body wins over the status code so the platform
// message is preserved.
func decodeSendResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Send API response: %w", err)
	}

	var parsed sendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &APIError{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode Send API response: %w", err)
	}
	if parsed.Error != nil {
		return &APIError{Code: parsed.Error.Code, Message: parsed.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// chunkText slices text into consecutive pieces of at most size
// characters. Slicing is fixed-width, not word-aware, and never splits a
// rune. Empty input yields no chunks.
func chunkText(text string, size int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var chunks []string
	for len(runes) > size {
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
	}
	return append(chunks, string(runes))
}
