// Package flow implements the per-user conversation flow for JekleTube.
//
// It contains the command router that classifies inbound text against the
// current conversation mode, and the orchestrator that drives one inbound
// event to completion.
package flow

import (
	"strings"

	"github.com/djmontana/jekletube/internal/models"
)

// Command literals recognized by the router.
const (
	// CancelCommand aborts the current flow from any mode.
	CancelCommand = "/cancel"
	// SearchCommand starts (or restarts) the video search flow.
	SearchCommand = "/yt"
)

// ActionType classifies an inbound text message.
type ActionType string

const (
	// ActionCancel aborts the current flow.
	ActionCancel ActionType = "cancel"
	// ActionStartSearch enters the search flow and prompts for keywords.
	ActionStartSearch ActionType = "start_search"
	// ActionSearchQuery consumes the text as a search query.
	ActionSearchQuery ActionType = "search_query"
	// ActionChat forwards the text to the language model.
	ActionChat ActionType = "chat"
)

// Action is the router's decision for one text message.
type Action struct {
	Type  ActionType
	Query string // search query for ActionSearchQuery, raw text for ActionChat
}

// Classify maps the current mode and an inbound text to exactly one
// action. Command literals are matched case-insensitively on trimmed
// text and take priority over an in-progress search flow; any other text
// while awaiting a query is consumed verbatim as the query.
func Classify(mode models.StateMode, text string) Action {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch {
	case lower == CancelCommand:
		return Action{Type: ActionCancel}
	case lower == SearchCommand:
		return Action{Type: ActionStartSearch}
	case mode == models.ModeAwaitingSearchQuery:
		return Action{Type: ActionSearchQuery, Query: trimmed}
	default:
		return Action{Type: ActionChat, Query: trimmed}
	}
}
