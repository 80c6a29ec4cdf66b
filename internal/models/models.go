// Package models defines the core data structures for JekleTube.
//
// It includes conversation state types, search results, and the webhook
// event shapes shared across modules.
package models

import (
	"fmt"
	"time"
)

// StateMode identifies where a user is in the conversation flow.
type StateMode string

const (
	// ModeNormal is the default mode: free text goes to the language model.
	ModeNormal StateMode = "normal"
	// ModeAwaitingSearchQuery means the next text message is a video search query.
	ModeAwaitingSearchQuery StateMode = "awaiting_search_query"
)

// Delivery and display limits imposed by the Messenger platform.
const (
	// MaxTextChunkLength is the maximum length of a single text message.
	MaxTextChunkLength = 2000
	// MaxAttachmentSizeMB is the largest attachment Messenger accepts.
	MaxAttachmentSizeMB = 25.0
	// MaxTitleLength is the element title limit in generic templates.
	MaxTitleLength = 80
	// MaxReplyLength is the cap applied to language model replies before sending.
	MaxReplyLength = 4000
	// DefaultSearchLimit is the number of search results shown per query.
	DefaultSearchLimit = 5
	// StateTTL is how long a conversation state record stays valid.
	StateTTL = 30 * time.Minute
)

// WatchPayloadPrefix prefixes the postback payload of a "watch" button;
// the video id follows the prefix.
const WatchPayloadPrefix = "watch:"

// UserState captures the current conversation state for one user.
type UserState struct {
	UserID    string            `json:"user_id"`
	Mode      StateMode         `json:"mode"`
	Data      map[string]string `json:"data,omitempty"` // reserved for per-mode parameters
	UpdatedAt time.Time         `json:"updated_at"`
}

// SearchResult is one video returned by a search query.
type SearchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnail,omitempty"`
	URL       string `json:"url"`
}

// WatchURL builds the canonical watch page URL for a video id.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

// WebhookBody is the top-level POST payload delivered by the platform.
type WebhookBody struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry groups the messaging events of one page entry.
type WebhookEntry struct {
	ID        string           `json:"id,omitempty"`
	Time      int64            `json:"time,omitempty"`
	Messaging []MessagingEvent `json:"messaging"`
}

// MessagingEvent is one inbound event: a text message or a button postback.
type MessagingEvent struct {
	Sender    Participant `json:"sender"`
	Recipient Participant `json:"recipient,omitempty"`
	Timestamp int64       `json:"timestamp,omitempty"`
	Message   *Message    `json:"message,omitempty"`
	Postback  *Postback   `json:"postback,omitempty"`
}

// Participant identifies a messaging endpoint (user or page).
type Participant struct {
	ID string `json:"id"`
}

// Message carries the free-text portion of a messaging event.
type Message struct {
	MID  string `json:"mid,omitempty"`
	Text string `json:"text,omitempty"`
}

// Postback carries the payload of a button click.
type Postback struct {
	Title   string `json:"title,omitempty"`
	Payload string `json:"payload"`
}
