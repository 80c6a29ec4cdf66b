package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/djmontana/jekletube/internal/genai"
	"github.com/djmontana/jekletube/internal/models"
	"github.com/djmontana/jekletube/internal/store"
	"github.com/djmontana/jekletube/internal/youtube"
)

// User-facing reply texts.
const (
	msgCancelled     = "Command cancelled. How can I help you?"
	msgSearchPrompt  = "Welcome to JekleTube! Give me keywords to search for a video."
	msgNoResults     = "No results found for this search."
	msgSearchError   = "Sorry, something went wrong during the video search."
	msgTimeout       = "Sorry, generating the reply took too long. Please try again with a shorter or simpler question."
	msgModelError    = "I'm sorry, but I can't respond right now. Please try again later."
	msgDownloading   = "Downloading the video... This may take a moment."
	msgTextOnly      = "Sorry, I can only handle text messages."
	msgGenericError  = "Sorry, I ran into an error handling your message. Please try again later."
	truncationMarker = "... (reply truncated)"
)

// Sender delivers outbound messages to a user.
type Sender interface {
	SendText(ctx context.Context, to string, text string) error
	SendSearchResults(ctx context.Context, to string, results []models.SearchResult, limit int) error
	SendVideoAttachment(ctx context.Context, to string, path string) error
}

// Conversation orchestrates one inbound event at a time: it reads state,
// routes the message, invokes collaborators, writes state, and delivers
// the reply.
type Conversation struct {
	store      store.Store
	completer  genai.Completer
	searcher   youtube.Searcher
	downloader youtube.Downloader
	sender     Sender
}

// NewConversation creates a conversation orchestrator with its collaborators.
func NewConversation(st store.Store, completer genai.Completer, searcher youtube.Searcher, downloader youtube.Downloader, sender Sender) *Conversation {
	return &Conversation{
		store:      st,
		completer:  completer,
		searcher:   searcher,
		downloader: downloader,
		sender:     sender,
	}
}

// HandleEvent drives one inbound messaging event to completion. Failures
// with a specific user-facing mapping are handled in place; anything else
// is caught here and answered with a single generic apology.
func (c *Conversation) HandleEvent(ctx context.Context, event models.MessagingEvent) {
	senderID := event.Sender.ID
	if senderID == "" {
		slog.Warn("Conversation.HandleEvent: event without sender id dropped")
		return
	}
	mode, _ := c.store.GetUserState(senderID)
	slog.Debug("Conversation.HandleEvent", "senderID", senderID, "mode", mode, "hasText", event.Message != nil, "hasPostback", event.Postback != nil)

	var err error
	switch {
	case event.Message != nil && event.Message.Text != "":
		err = c.handleText(ctx, senderID, mode, event.Message.Text)
	case event.Postback != nil:
		err = c.handlePostback(ctx, senderID, event.Postback.Payload)
	default:
		err = c.sender.SendText(ctx, senderID, msgTextOnly)
	}

	if err != nil {
		slog.Error("Conversation.HandleEvent failed", "senderID", senderID, "error", err)
		if sendErr := c.sender.SendText(ctx, senderID, msgGenericError); sendErr != nil {
			slog.Error("Conversation.HandleEvent apology send failed", "senderID", senderID, "error", sendErr)
		}
	}
}

func (c *Conversation) handleText(ctx context.Context, senderID string, mode models.StateMode, text string) error {
	action := Classify(mode, text)
	slog.Debug("Conversation.handleText routed", "senderID", senderID, "action", action.Type)

	switch action.Type {
	case ActionCancel:
		c.store.ClearUserState(senderID)
		return c.sender.SendText(ctx, senderID, msgCancelled)
	case ActionStartSearch:
		c.store.SetUserState(senderID, models.ModeAwaitingSearchQuery, nil)
		return c.sender.SendText(ctx, senderID, msgSearchPrompt)
	case ActionSearchQuery:
		return c.handleSearchQuery(ctx, senderID, action.Query)
	default:
		return c.handleChat(ctx, senderID, action.Query)
	}
}

// handleSearchQuery runs one search flow iteration. The flow is
// single-shot: state returns to normal after one query whether or not
// the user acts on the results.
func (c *Conversation) handleSearchQuery(ctx context.Context, senderID, query string) error {
	if err := c.sender.SendText(ctx, senderID, fmt.Sprintf("Searching videos for: %s...", query)); err != nil {
		return fmt.Errorf("failed to send search acknowledgement: %w", err)
	}

	results, err := c.searcher.Search(ctx, query, models.DefaultSearchLimit)
	if err != nil {
		slog.Error("Conversation search failed", "senderID", senderID, "query", query, "error", err)
		c.store.ClearUserState(senderID)
		return c.sender.SendText(ctx, senderID, msgSearchError)
	}
	if len(results) == 0 {
		c.store.ClearUserState(senderID)
		return c.sender.SendText(ctx, senderID, msgNoResults)
	}

	if err := c.sender.SendSearchResults(ctx, senderID, results, models.DefaultSearchLimit); err != nil {
		slog.Error("Conversation search result delivery failed", "senderID", senderID, "error", err)
		c.store.ClearUserState(senderID)
		return c.sender.SendText(ctx, senderID, msgSearchError)
	}
	c.store.ClearUserState(senderID)
	return nil
}

// handleChat answers free text, short-circuiting creator questions to the
// fixed attribution reply without calling the language model.
func (c *Conversation) handleChat(ctx context.Context, senderID, text string) error {
	if genai.IsCreatorQuestion(text) {
		slog.Debug("Conversation creator question detected", "senderID", senderID)
		return c.sender.SendText(ctx, senderID, genai.CreatorResponse)
	}

	reply, err := c.completer.Generate(ctx, text)
	if err != nil {
		if errors.Is(err, genai.ErrTimeout) {
			return c.sender.SendText(ctx, senderID, msgTimeout)
		}
		slog.Error("Conversation completion failed", "senderID", senderID, "error", err)
		return c.sender.SendText(ctx, senderID, msgModelError)
	}

	// The cap counts characters, not bytes, so multi-byte replies survive.
	if runes := []rune(reply); len(runes) > models.MaxReplyLength {
		reply = string(runes[:models.MaxReplyLength]) + truncationMarker
	}
	return c.sender.SendText(ctx, senderID, reply)
}

// handlePostback routes button clicks. Unrecognized payload shapes are
// logged and dropped without a reply or state change.
func (c *Conversation) handlePostback(ctx context.Context, senderID, payload string) error {
	if !strings.HasPrefix(payload, models.WatchPayloadPrefix) {
		slog.Info("Conversation unrecognized postback dropped", "senderID", senderID, "payload", payload)
		return nil
	}
	videoID := strings.TrimPrefix(payload, models.WatchPayloadPrefix)
	return c.handleWatch(ctx, senderID, videoID)
}

// handleWatch downloads a video and delivers it as an attachment, falling
// back to the watch page link when the video is too large or anything in
// the download/delivery path fails.
func (c *Conversation) handleWatch(ctx context.Context, senderID, videoID string) error {
	if err := c.sender.SendText(ctx, senderID, msgDownloading); err != nil {
		return fmt.Errorf("failed to send download acknowledgement: %w", err)
	}

	path, sizeMB, err := c.downloader.Download(ctx, videoID)
	if err != nil {
		slog.Error("Conversation video download failed", "senderID", senderID, "videoID", videoID, "error", err)
		return c.sendWatchFallback(ctx, senderID, videoID)
	}

	if sizeMB > models.MaxAttachmentSizeMB {
		slog.Info("Conversation video over attachment limit", "senderID", senderID, "videoID", videoID, "sizeMB", sizeMB)
		return c.sender.SendText(ctx, senderID, fmt.Sprintf(
			"Sorry, the video is too large (%.1f MB) to send over Messenger (25 MB limit). Here is the YouTube link: %s",
			sizeMB, models.WatchURL(videoID)))
	}

	if err := c.sender.SendVideoAttachment(ctx, senderID, path); err != nil {
		slog.Error("Conversation video delivery failed", "senderID", senderID, "videoID", videoID, "error", err)
		return c.sendWatchFallback(ctx, senderID, videoID)
	}

	if err := os.Remove(path); err != nil {
		slog.Warn("Conversation temp file cleanup failed", "path", path, "error", err)
	} else {
		slog.Debug("Conversation temp file removed", "path", path)
	}
	return nil
}

func (c *Conversation) sendWatchFallback(ctx context.Context, senderID, videoID string) error {
	return c.sender.SendText(ctx, senderID, fmt.Sprintf(
		"Sorry, something went wrong while downloading the video. Here is the YouTube link: %s",
		models.WatchURL(videoID)))
}
