package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		iso  string
		want int
		ok   bool
	}{
		{"PT3M45S", 225, true},
		{"PT1H2M3S", 3723, true},
		{"PT45S", 45, true},
		{"PT2M", 120, true},
		{"garbage", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseISODuration(tc.iso)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseISODuration(%q) = (%d, %v), want (%d, %v)",
				tc.iso, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSearchNotConfigured(t *testing.T) {
	client := NewYouTubeClient("", quietLogger())
	if _, err := client.Search(context.Background(), "queen"); !errors.Is(err, ErrSearchNotConfigured) {
		t.Errorf("expected ErrSearchNotConfigured, got %v", err)
	}
}

func TestSearchMapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			if r.URL.Query().Get("videoCategoryId") != "10" {
				t.Error("search should be restricted to the music category")
			}
			_, _ = w.Write([]byte(`{"items": [
				{"id": {"videoId": "vid1"},
				 "snippet": {"title": "Song &amp; Title", "channelTitle": "The Artist",
				  "thumbnails": {"medium": {"url": "https://img/medium.jpg"}}}}
			]}`))
		case "/videos":
			_, _ = w.Write([]byte(`{"items": [
				{"id": "vid1", "contentDetails": {"duration": "PT3M45S"}}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewYouTubeClient("test-key", quietLogger())
	client.BaseURL = server.URL

	results, err := client.Search(context.Background(), "song")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.Title != "Song & Title" {
		t.Errorf("HTML entities should be unescaped, got %q", r.Title)
	}
	if r.Artist != "The Artist" {
		t.Errorf("channel title becomes the artist, got %q", r.Artist)
	}
	if r.Duration == nil || *r.Duration != 225 {
		t.Errorf("expected duration 225, got %v", r.Duration)
	}
	if r.URL != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("unexpected watch URL %q", r.URL)
	}
	if r.Source != "youtube" {
		t.Errorf("unexpected source %q", r.Source)
	}
}

func TestSearchQuotaExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewYouTubeClient("test-key", quietLogger())
	client.BaseURL = server.URL

	if _, err := client.Search(context.Background(), "song"); !errors.Is(err, ErrSearchQuota) {
		t.Errorf("expected ErrSearchQuota, got %v", err)
	}
}
