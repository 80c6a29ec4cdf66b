// Package api provides the webhook HTTP boundary for JekleTube.
//
// It exposes the Messenger verification handshake and the event delivery
// endpoint, dispatching each messaging item to the conversation flow.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/djmontana/jekletube/internal/models"
)

// WebhookPath is the route Messenger calls for both verification and events.
const WebhookPath = "/api/webhook"

// EventHandler processes one inbound messaging event.
type EventHandler interface {
	HandleEvent(ctx context.Context, event models.MessagingEvent)
}

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string // listen address
	VerifyToken string // shared secret for the webhook handshake
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithVerifyToken sets the webhook verification token.
func WithVerifyToken(token string) Option {
	return func(o *Opts) {
		o.VerifyToken = token
	}
}

// Server handles webhook traffic and hands events to the conversation flow.
type Server struct {
	addr        string
	verifyToken string
	handler     EventHandler
}

// NewServer creates a webhook server, applying any provided options.
func NewServer(handler EventHandler, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}
	slog.Debug("API NewServer options set", "addr", cfg.Addr, "verifyToken_set", cfg.VerifyToken != "")
	return &Server{addr: cfg.Addr, verifyToken: cfg.VerifyToken, handler: handler}
}

// VerifyWebhook implements the GET verification handshake. It returns the
// challenge with 200 on a valid subscribe request, 403 when mode or token
// is wrong, and 400 when either parameter is missing.
func VerifyWebhook(mode, token, challenge, expectedToken string) (string, int) {
	if mode == "" || token == "" {
		return "", http.StatusBadRequest
	}
	if mode == "subscribe" && token == expectedToken {
		return challenge, http.StatusOK
	}
	return "", http.StatusForbidden
}

// Handler returns the HTTP handler serving the webhook routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(WebhookPath, s.handleWebhook)
	return mux
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	slog.Info("JekleTube webhook server running", "addr", s.addr)
	if err := http.ListenAndServe(s.addr, s.Handler()); err != nil {
		return fmt.Errorf("failed to serve webhook API: %w", err)
	}
	return nil
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleVerification(w, r)
	case http.MethodPost:
		s.handleEvents(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")
	slog.Info("Webhook verification request", "mode", mode, "token_set", token != "")

	body, status := VerifyWebhook(mode, token, challenge, s.verifyToken)
	if status == http.StatusOK {
		slog.Info("Webhook verified")
	} else {
		slog.Warn("Webhook verification rejected", "status", status)
	}
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// handleEvents acknowledges every well-formed page event with 200
// regardless of per-item processing outcomes; items are handled
// concurrently and failures stay internal.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var body models.WebhookBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.Warn("Webhook event body decode failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if body.Object != "page" {
		slog.Info("Webhook event for unrecognized object", "object", body.Object)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	for _, entry := range body.Entry {
		if len(entry.Messaging) == 0 {
			slog.Warn("Webhook entry without messaging items", "entryID", entry.ID)
			continue
		}
		for _, event := range entry.Messaging {
			slog.Debug("Webhook dispatching event", "senderID", event.Sender.ID)
			// Detached from the request context: the ack must not wait on
			// processing, and processing must outlive the request.
			go s.handler.HandleEvent(context.Background(), event)
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("EVENT_RECEIVED"))
}
