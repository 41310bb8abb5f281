package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
)

// maxDescriptionLength caps stored descriptions. Some feeds ship whole
// articles in the description element.
const maxDescriptionLength = 1400

// Fetcher downloads and parses feed documents (RSS 1.0/RDF, RSS 2.0,
// Atom) into the common model the reconciler works on.
type Fetcher struct {
	parser *gofeed.Parser
	logger *core.Logger
}

// NewFetcher creates a new fetch adapter.
func NewFetcher(logger *core.Logger, config *models.FetcherConfig) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = config.UserAgent
	parser.Client = &http.Client{Timeout: config.Timeout}

	return &Fetcher{
		parser: parser,
		logger: logger,
	}
}

// Fetch downloads the document at feedURL and converts it. Network and
// parse errors come back wrapped as fetch errors so the caller can treat
// the refresh as a local no-op.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (models.ParsedFeed, []models.FeedItem, error) {
	doc, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return models.ParsedFeed{}, nil, core.NewFetchError(fmt.Sprintf("failed to fetch feed %s", feedURL), err)
	}

	parsed := models.ParsedFeed{
		URL:         normalizeFeedURL(feedURL),
		Title:       doc.Title,
		Description: truncateDescription(doc.Description),
		Link:        doc.Link,
		SourceType:  sourceTypeOf(doc),
	}
	if len(doc.Categories) > 0 {
		parsed.Category = doc.Categories[0]
	}
	if doc.Image != nil {
		parsed.ImageURL = doc.Image.URL
		parsed.ImageTitle = doc.Image.Title
	}

	items := make([]models.FeedItem, 0, len(doc.Items))
	for _, entry := range doc.Items {
		title := strings.TrimSpace(entry.Title)
		link := sanitizeLink(entry.Link)
		if title == "" || link == "" {
			continue
		}

		item := models.FeedItem{
			Title:       title,
			Link:        link,
			Description: truncateDescription(entry.Description),
			Published:   entry.PublishedParsed,
		}
		if item.Published == nil {
			item.Published = entry.UpdatedParsed
		}
		items = append(items, item)
	}

	f.logger.Info("Fetched feed", "url", feedURL, "type", parsed.SourceType, "items", len(items))
	return parsed, items, nil
}

// sourceTypeOf maps the parser's detected format. RSS 1.0 is the
// RDF-based dialect.
func sourceTypeOf(doc *gofeed.Feed) models.SourceType {
	switch doc.FeedType {
	case "atom":
		return models.SourceAtom
	case "rss":
		if doc.FeedVersion == "1.0" {
			return models.SourceRDF
		}
		return models.SourceRSS
	default:
		return models.SourceRSS
	}
}

// normalizeFeedURL strips whitespace and trailing slashes so a feed
// registered with and without a trailing slash resolves to the same row.
func normalizeFeedURL(feedURL string) string {
	return strings.TrimRight(strings.TrimSpace(feedURL), "/")
}

func sanitizeLink(link string) string {
	return strings.TrimSpace(strings.ReplaceAll(link, "\n", ""))
}

func truncateDescription(description string) string {
	runes := []rune(description)
	if len(runes) > maxDescriptionLength {
		return string(runes[:maxDescriptionLength])
	}
	return description
}
