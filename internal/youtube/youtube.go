package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3/playlistItems"

// pageSize is the YouTube Data API maximum for playlistItems.
const pageSize = 50

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// PlaylistItem is one entry of a playlist as the API reports it.
type PlaylistItem struct {
	Position int
	Title    string
	Channel  string
	VideoID  string
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Position     int    `json:"position"`
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// PlaylistItems fetches every item of a playlist, following nextPageToken
// until the API reports no further page.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	var out []PlaylistItem
	pageToken := ""

	for {
		val := url.Values{}
		val.Set("part", "snippet,contentDetails")
		val.Set("playlistId", playlistID)
		val.Set("maxResults", fmt.Sprint(pageSize))
		val.Set("key", c.apiKey)
		if pageToken != "" {
			val.Set("pageToken", pageToken)
		}

		reqURL := c.baseURL + "?" + val.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("youtube status %d", resp.StatusCode)
		}

		var body playlistItemsResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			resp.Body.Close()
			return nil, err
		}
		resp.Body.Close()

		for _, it := range body.Items {
			out = append(out, PlaylistItem{
				Position: it.Snippet.Position,
				Title:    it.Snippet.Title,
				Channel:  it.Snippet.ChannelTitle,
				VideoID:  it.ContentDetails.VideoID,
			})
		}

		pageToken = body.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return out, nil
}

// WatchURL builds the public watch link for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
