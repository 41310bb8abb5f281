package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"newsroom/internal/features/news/models"
)

func TestFaviconLink(t *testing.T) {
	feedWithImage := models.Feed{
		URL:      "https://news.example.org/rss",
		ImageURL: "https://news.example.org/logo.png",
	}
	feedWithoutImage := models.Feed{
		URL: "https://news.example.org/rss",
	}

	tests := []struct {
		name string
		item models.FeedItem
		feed models.Feed
		want string
	}{
		{
			name: "own host uses feed image",
			item: models.FeedItem{Link: "https://news.example.org/story"},
			feed: feedWithImage,
			want: "https://news.example.org/logo.png",
		},
		{
			name: "own host without feed image falls back to convention",
			item: models.FeedItem{Link: "https://news.example.org/story"},
			feed: feedWithoutImage,
			want: "https://news.example.org/favicon.ico",
		},
		{
			name: "foreign host with override",
			item: models.FeedItem{Link: "https://www.sikkom.nl/artikel"},
			feed: feedWithImage,
			want: "https://www.sikkom.nl/wp-content/themes/sikkom-v3/img/favicon.ico",
		},
		{
			name: "foreign host without override uses convention",
			item: models.FeedItem{Link: "https://other.example.com/story"},
			feed: feedWithImage,
			want: "https://other.example.com/favicon.ico",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FaviconLink(tt.item, tt.feed))
		})
	}
}
