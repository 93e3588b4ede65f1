package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultYouTubeBaseURL is the YouTube Data API v3 endpoint.
const DefaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// Search provider failures the handlers care to distinguish.
var (
	ErrSearchNotConfigured = errors.New("search provider API key not configured")
	ErrSearchQuota         = errors.New("search provider quota exceeded or key invalid")
)

// SearchResult is one candidate video returned to guests.
type SearchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Thumbnail string `json:"thumbnail"`
	Duration  *int   `json:"duration"`
	Source    string `json:"source"`
	URL       string `json:"url"`
}

// YouTubeClient proxies search queries to the YouTube Data API.
type YouTubeClient struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
	Log     *logrus.Logger
}

// NewYouTubeClient builds a client against the public API endpoint.
func NewYouTubeClient(apiKey string, log *logrus.Logger) *YouTubeClient {
	return &YouTubeClient{
		APIKey:  apiKey,
		BaseURL: DefaultYouTubeBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Log:     log,
	}
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Search queries the video search provider for music-category candidates,
// attaching durations from a second details call.
func (c *YouTubeClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if c.APIKey == "" {
		return nil, ErrSearchNotConfigured
	}

	params := url.Values{
		"part":            {"snippet"},
		"q":               {query},
		"type":            {"video"},
		"videoCategoryId": {"10"}, // music category
		"maxResults":      {"10"},
		"key":             {c.APIKey},
	}

	var search youtubeSearchResponse
	if err := c.get(ctx, "/search", params, &search); err != nil {
		return nil, err
	}

	videoIDs := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			videoIDs = append(videoIDs, item.ID.VideoID)
		}
	}

	durations := map[string]int{}
	if len(videoIDs) > 0 {
		detailParams := url.Values{
			"part": {"contentDetails"},
			"id":   {strings.Join(videoIDs, ",")},
			"key":  {c.APIKey},
		}
		var details youtubeVideosResponse
		if err := c.get(ctx, "/videos", detailParams, &details); err != nil {
			return nil, err
		}
		for _, item := range details.Items {
			if secs, ok := parseISODuration(item.ContentDetails.Duration); ok {
				durations[item.ID] = secs
			}
		}
	}

	results := make([]SearchResult, 0, len(search.Items))
	for _, item := range search.Items {
		thumbnail := item.Snippet.Thumbnails.Medium.URL
		if thumbnail == "" {
			thumbnail = item.Snippet.Thumbnails.Default.URL
		}

		result := SearchResult{
			ID:        item.ID.VideoID,
			Title:     html.UnescapeString(item.Snippet.Title),
			Artist:    html.UnescapeString(item.Snippet.ChannelTitle),
			Thumbnail: thumbnail,
			Source:    "youtube",
			URL:       "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		}
		if secs, ok := durations[item.ID.VideoID]; ok {
			result.Duration = &secs
		}
		results = append(results, result)
	}

	return results, nil
}

// get performs one API request and decodes the JSON body into out.
func (c *YouTubeClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ErrSearchQuota
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search provider returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

var isoDurationRe = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// parseISODuration converts an ISO-8601 duration like "PT3M45S" to seconds.
func parseISODuration(iso string) (int, bool) {
	m := isoDurationRe.FindStringSubmatch(iso)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(zeroDefault(m[1]))
	minutes, _ := strconv.Atoi(zeroDefault(m[2]))
	seconds, _ := strconv.Atoi(zeroDefault(m[3]))
	return hours*3600 + minutes*60 + seconds, true
}

func zeroDefault(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
