package source

import (
	"context"
	"fmt"
	"strings"

	"llmsecbot/internal/normalize"
	"llmsecbot/internal/reddit"
)

// redditAPI is the slice of the Reddit client the search source needs.
type redditAPI interface {
	Search(ctx context.Context, query, timeFilter string, limit int) ([]reddit.SearchPost, error)
}

// RedditSearchSource emits recent posts matching a keyword query,
// skipping posts from excluded subreddits (typically the bot's own
// destination, so it doesn't repost itself).
type RedditSearchSource struct {
	name       string
	client     redditAPI
	query      string
	timeFilter string
	limit      int
	excluded   map[string]struct{}
}

func NewRedditSearch(name string, client redditAPI, query, timeFilter string, limit int, excludeSubreddits []string) *RedditSearchSource {
	excluded := make(map[string]struct{}, len(excludeSubreddits))
	for _, sub := range excludeSubreddits {
		excluded[strings.ToLower(sub)] = struct{}{}
	}
	return &RedditSearchSource{
		name:       name,
		client:     client,
		query:      query,
		timeFilter: timeFilter,
		limit:      limit,
		excluded:   excluded,
	}
}

func (s *RedditSearchSource) Name() string { return s.name }

func (s *RedditSearchSource) Fetch(ctx context.Context) ([]Item, error) {
	posts, err := s.client.Search(ctx, s.query, s.timeFilter, s.limit)
	if err != nil {
		return nil, fmt.Errorf("reddit search %q: %w", s.query, err)
	}

	items := make([]Item, 0, len(posts))
	for _, post := range posts {
		if _, skip := s.excluded[strings.ToLower(post.Subreddit)]; skip {
			continue
		}

		title := normalize.Collapse(post.Title)
		if title == "" || post.Permalink == "" {
			continue
		}

		// Link posts have no self-text; fall back to the title so the
		// summarizer always has something to chew on.
		summary := normalize.CleanHTML(post.SelfText)
		if summary == "" {
			summary = title
		}

		items = append(items, Item{
			Title:    title,
			Summary:  summary,
			Link:     reddit.PermalinkURL(post.Permalink),
			Category: s.name,
		})
	}
	return items, nil
}
