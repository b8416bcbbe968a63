package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultITunesBaseURL = "https://itunes.apple.com"
	itunesTimeout        = 10 * time.Second
)

// ITunesClient ищет обложки через iTunes Search API
type ITunesClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewITunesClient() *ITunesClient {
	return &ITunesClient{
		httpClient: &http.Client{Timeout: itunesTimeout},
		baseURL:    defaultITunesBaseURL,
	}
}

type itunesSearchResponse struct {
	Results []struct {
		ArtworkURL100 string `json:"artworkUrl100"`
	} `json:"results"`
}

// FindArtworkURL ищет обложку по исполнителю и названию. Промах или
// любой сбой поиска — пустая строка без ошибки.
func (c *ITunesClient) FindArtworkURL(ctx context.Context, artist, title string) string {
	term := strings.TrimSpace(artist + " " + title)
	if term == "" {
		return ""
	}

	q := url.Values{}
	q.Set("term", term)
	q.Set("entity", "song")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var parsed itunesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ""
	}

	if len(parsed.Results) == 0 || parsed.Results[0].ArtworkURL100 == "" {
		return ""
	}

	// iTunes отдаёт миниатюру 100x100; просим вариант покрупнее
	return strings.Replace(parsed.Results[0].ArtworkURL100, "100x100bb.jpg", "512x512bb.jpg", 1)
}
