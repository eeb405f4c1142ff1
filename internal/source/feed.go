package source

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"llmsecbot/internal/normalize"
)

// FeedSource fetches one RSS/Atom feed and emits an item per entry.
// Covers both the news-aggregator search feeds and arXiv.
type FeedSource struct {
	name           string
	url            string
	unwrapRedirect bool
	parser         *gofeed.Parser
}

// NewFeed builds a feed source. When template is non-empty it must contain
// one %s verb, which gets the escaped query substituted in; otherwise
// rawURL is used as is.
func NewFeed(name, rawURL, template, query string, unwrapRedirect bool, timeout time.Duration) *FeedSource {
	feedURL := rawURL
	if template != "" {
		feedURL = fmt.Sprintf(template, url.QueryEscape(query))
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	return &FeedSource{
		name:           name,
		url:            feedURL,
		unwrapRedirect: unwrapRedirect,
		parser:         parser,
	}
}

func (s *FeedSource) Name() string { return s.name }

// Fetch downloads and parses the feed. Entries without a title or link are
// dropped; everything else comes back in feed order.
func (s *FeedSource) Fetch(ctx context.Context) ([]Item, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.url, err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		title := normalize.Collapse(entry.Title)
		link := entry.Link
		if s.unwrapRedirect {
			link = normalize.UnwrapRedirect(link)
		}
		if title == "" || link == "" {
			log.Printf("Skipping feed entry without title/link from %s", s.name)
			continue
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}

		items = append(items, Item{
			Title:    title,
			Summary:  normalize.CleanHTML(summary),
			Link:     link,
			Category: s.name,
		})
	}
	return items, nil
}
