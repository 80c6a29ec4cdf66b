package flow

import (
	"testing"

	"github.com/djmontana/jekletube/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		mode     models.StateMode
		text     string
		expected Action
	}{
		{
			name:     "cancel in normal mode",
			mode:     models.ModeNormal,
			text:     "/cancel",
			expected: Action{Type: ActionCancel},
		},
		{
			name:     "cancel with case and padding",
			mode:     models.ModeNormal,
			text:     "  /CANCEL  ",
			expected: Action{Type: ActionCancel},
		},
		{
			name:     "cancel escapes search flow",
			mode:     models.ModeAwaitingSearchQuery,
			text:     "/cancel",
			expected: Action{Type: ActionCancel},
		},
		{
			name:     "search trigger in normal mode",
			mode:     models.ModeNormal,
			text:     "/yt",
			expected: Action{Type: ActionStartSearch},
		},
		{
			name:     "search trigger restarts in-progress flow",
			mode:     models.ModeAwaitingSearchQuery,
			text:     "/yt",
			expected: Action{Type: ActionStartSearch},
		},
		{
			name:     "query while awaiting",
			mode:     models.ModeAwaitingSearchQuery,
			text:     "lofi beats",
			expected: Action{Type: ActionSearchQuery, Query: "lofi beats"},
		},
		{
			name:     "command-looking query is still a query",
			mode:     models.ModeAwaitingSearchQuery,
			text:     "/help",
			expected: Action{Type: ActionSearchQuery, Query: "/help"},
		},
		{
			name:     "plain message in normal mode",
			mode:     models.ModeNormal,
			text:     "hello there",
			expected: Action{Type: ActionChat, Query: "hello there"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.mode, tt.text)
			if got != tt.expected {
				t.Errorf("Classify(%q, %q) = %+v, expected %+v", tt.mode, tt.text, got, tt.expected)
			}
		})
	}
}
