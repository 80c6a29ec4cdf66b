package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

const searchResponseFixture = `{
	"contents": {
		"twoColumnSearchResultsRenderer": {
			"primaryContents": {
				"sectionListRenderer": {
					"contents": [
						{
							"itemSectionRenderer": {
								"contents": [
									{
										"videoRenderer": {
											"videoId": "abc123",
											"title": {"runs": [{"text": "lofi hip hop radio"}]},
											"ownerText": {"runs": [{"text": "Lofi Girl"}]},
											"lengthText": {"simpleText": "1:23:45"},
											"thumbnail": {"thumbnails": [
												{"url": "https://img.example/small.jpg", "width": 168, "height": 94},
												{"url": "https://img.example/medium.jpg", "width": 360, "height": 202}
											]}
										}
									},
									{"shelfRenderer": {"title": "People also watched"}},
									{
										"videoRenderer": {
											"videoId": "def456",
											"title": {"runs": [{"text": "beats to "}, {"text": "relax to"}]},
											"ownerText": {"runs": [{"text": "ChilledCow"}]},
											"lengthText": {"simpleText": "2:01"},
											"thumbnail": {"thumbnails": []}
										}
									},
									{
										"videoRenderer": {
											"videoId": "ghi789",
											"title": {"runs": [{"text": "third result"}]},
											"ownerText": {"runs": [{"text": "Someone"}]},
											"lengthText": {"simpleText": "0:30"},
											"thumbnail": {"thumbnails": [{"url": "https://img.example/t.jpg", "width": 480, "height": 270}]}
										}
									}
								]
							}
						}
					]
				}
			}
		}
	}
}`

func TestSearch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Query string `json:"query"`
		}
		json.Unmarshal(body, &req)
		gotQuery = req.Query
		w.Write([]byte(searchResponseFixture))
	}))
	defer server.Close()

	client := NewClient(WithSearchBaseURL(server.URL))
	results, err := client.Search(context.Background(), "lofi beats", 5)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if gotQuery != "lofi beats" {
		t.Errorf("expected query %q to reach the endpoint, got %q", "lofi beats", gotQuery)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	first := results[0]
	if first.ID != "abc123" {
		t.Errorf("expected id abc123, got %q", first.ID)
	}
	if first.Title != "lofi hip hop radio" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Channel != "Lofi Girl" {
		t.Errorf("unexpected channel %q", first.Channel)
	}
	if first.Duration != "1:23:45" {
		t.Errorf("unexpected duration %q", first.Duration)
	}
	if first.Thumbnail != "https://img.example/medium.jpg" {
		t.Errorf("expected the >=320px thumbnail, got %q", first.Thumbnail)
	}
	if first.URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("unexpected URL %q", first.URL)
	}

	// Multi-run titles are joined; missing thumbnails stay empty.
	if results[1].Title != "beats to relax to" {
		t.Errorf("expected joined title, got %q", results[1].Title)
	}
	if results[1].Thumbnail != "" {
		t.Errorf("expected empty thumbnail, got %q", results[1].Thumbnail)
	}
}

func TestSearchLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchResponseFixture))
	}))
	defer server.Close()

	client := NewClient(WithSearchBaseURL(server.URL))
	results, err := client.Search(context.Background(), "lofi", 2)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected limit to cap results at 2, got %d", len(results))
	}
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(WithSearchBaseURL(server.URL))
	if _, err := client.Search(context.Background(), "lofi", 5); err == nil {
		t.Fatal("expected error for non-200 search response")
	}
}

func TestBestThumbnail(t *testing.T) {
	tests := []struct {
		name     string
		input    []thumbnail
		expected string
	}{
		{name: "empty", input: nil, expected: ""},
		{
			name:     "prefers first wide enough",
			input:    []thumbnail{{URL: "a", Width: 120}, {URL: "b", Width: 320}, {URL: "c", Width: 640}},
			expected: "b",
		},
		{
			name:     "falls back to largest",
			input:    []thumbnail{{URL: "a", Width: 120}, {URL: "b", Width: 168}},
			expected: "b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bestThumbnail(tt.input); got != tt.expected {
				t.Errorf("bestThumbnail() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
