package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/djmontana/jekletube/internal/models"
)

// Innertube search request/response shapes. Only the fields the result
// mapping needs are declared; everything else in the (very large)
// response is ignored by the decoder.
type searchRequest struct {
	Context searchContext `json:"context"`
	Query   string        `json:"query"`
}

type searchContext struct {
	Client searchClient `json:"client"`
}

type searchClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

type searchResponse struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []struct {
						ItemSectionRenderer struct {
							Contents []struct {
								VideoRenderer *videoRenderer `json:"videoRenderer"`
							} `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

type videoRenderer struct {
	VideoID string `json:"videoId"`
	Title   struct {
		Runs []textRun `json:"runs"`
	} `json:"title"`
	OwnerText struct {
		Runs []textRun `json:"runs"`
	} `json:"ownerText"`
	LengthText struct {
		SimpleText string `json:"simpleText"`
	} `json:"lengthText"`
	Thumbnail struct {
		Thumbnails []thumbnail `json:"thumbnails"`
	} `json:"thumbnail"`
}

type textRun struct {
	Text string `json:"text"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Search queries the innertube search endpoint and returns up to limit
// video results in ranking order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = models.DefaultSearchLimit
	}
	slog.Debug("YouTube Search", "query", query, "limit", limit)

	reqBody, err := json.Marshal(searchRequest{
		Context: searchContext{Client: searchClient{ClientName: "WEB", ClientVersion: innertubeClientVersion}},
		Query:   query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	url := c.searchBaseURL + "/youtubei/v1/search?prettyPrint=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call search endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := collectResults(&parsed, limit)
	slog.Debug("YouTube Search finished", "query", query, "results", len(results))
	return results, nil
}

// collectResults walks the renderer tree and maps video entries to
// search results, skipping non-video entries (ads, shelves, continuations).
func collectResults(parsed *searchResponse, limit int) []models.SearchResult {
	var results []models.SearchResult
	sections := parsed.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents
	for _, section := range sections {
		for _, item := range section.ItemSectionRenderer.Contents {
			vr := item.VideoRenderer
			if vr == nil || vr.VideoID == "" {
				continue
			}
			results = append(results, models.SearchResult{
				ID:        vr.VideoID,
				Title:     joinRuns(vr.Title.Runs),
				Channel:   joinRuns(vr.OwnerText.Runs),
				Duration:  vr.LengthText.SimpleText,
				Thumbnail: bestThumbnail(vr.Thumbnail.Thumbnails),
				URL:       models.WatchURL(vr.VideoID),
			})
			if len(results) >= limit {
				return results
			}
		}
	}
	return results
}

func joinRuns(runs []textRun) string {
	var out string
	for _, r := range runs {
		out += r.Text
	}
	return out
}

// bestThumbnail returns the first thumbnail at least minThumbnailWidth
// wide, or the largest available when none qualifies.
func bestThumbnail(thumbnails []thumbnail) string {
	if len(thumbnails) == 0 {
		return ""
	}
	best := thumbnails[0].URL
	for _, t := range thumbnails {
		best = t.URL
		if t.Width >= minThumbnailWidth {
			break
		}
	}
	return best
}
