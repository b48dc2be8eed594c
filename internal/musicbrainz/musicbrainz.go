package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://musicbrainz.org/ws/2"

// ArtistCredit is one credited artist and the phrase joining it to the next.
type ArtistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
}

// Release is the best search match for a free-text title query.
type Release struct {
	ID          string
	Title       string
	Date        string
	PrimaryType string
	Score       float64
	Artists     []ArtistCredit
}

// Client talks to the MusicBrainz web service. MusicBrainz enforces a
// one-request-per-second policy for anonymous clients and requires an
// identifying User-Agent, so every call waits on the limiter first.
type Client struct {
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	http      *http.Client
}

func NewClient(baseURL, userAgent string, minInterval time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if minInterval <= 0 {
		minInterval = time.Second
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type releaseSearchResponse struct {
	Releases []struct {
		ID           string  `json:"id"`
		Score        float64 `json:"score"`
		Title        string  `json:"title"`
		Date         string  `json:"date"`
		ReleaseGroup struct {
			PrimaryType string `json:"primary-type"`
		} `json:"release-group"`
		ArtistCredit []ArtistCredit `json:"artist-credit"`
	} `json:"releases"`
}

// SearchRelease returns the highest-ranked release for the query, or
// (nil, nil) when the search matched nothing.
func (c *Client) SearchRelease(ctx context.Context, query string) (*Release, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	val := url.Values{}
	val.Set("query", query)
	val.Set("limit", "1")
	val.Set("fmt", "json")

	reqURL := c.baseURL + "/release?" + val.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("musicbrainz status %d", resp.StatusCode)
	}

	var body releaseSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Releases) == 0 {
		return nil, nil
	}

	best := body.Releases[0]
	return &Release{
		ID:          best.ID,
		Title:       best.Title,
		Date:        best.Date,
		PrimaryType: best.ReleaseGroup.PrimaryType,
		Score:       best.Score,
		Artists:     best.ArtistCredit,
	}, nil
}
