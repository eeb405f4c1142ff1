package source

import (
	"context"
	"errors"
	"testing"

	"llmsecbot/internal/reddit"
)

type fakeRedditAPI struct {
	posts []reddit.SearchPost
	err   error

	gotQuery      string
	gotTimeFilter string
	gotLimit      int
}

func (f *fakeRedditAPI) Search(ctx context.Context, query, timeFilter string, limit int) ([]reddit.SearchPost, error) {
	f.gotQuery, f.gotTimeFilter, f.gotLimit = query, timeFilter, limit
	return f.posts, f.err
}

func TestRedditSearchSource_Fetch(t *testing.T) {
	api := &fakeRedditAPI{posts: []reddit.SearchPost{
		{Title: "Prompt injection writeup", SelfText: "Some <b>body</b> text", Permalink: "/r/netsec/comments/abc/x/", Subreddit: "netsec"},
		{Title: "Self promo", SelfText: "spam", Permalink: "/r/llmsecurity/comments/def/y/", Subreddit: "LLMSecurity"},
		{Title: "Link post", SelfText: "", Permalink: "/r/ml/comments/ghi/z/", Subreddit: "ml"},
	}}

	src := NewRedditSearch("community", api, "LLM security", "day", 10, []string{"llmsecurity"})
	items, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if api.gotQuery != "LLM security" || api.gotTimeFilter != "day" || api.gotLimit != 10 {
		t.Errorf("search called with %q %q %d", api.gotQuery, api.gotTimeFilter, api.gotLimit)
	}

	// Excluded subreddit filtered case-insensitively.
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	first := items[0]
	if first.Summary != "Some body text" {
		t.Errorf("summary = %q, want cleaned self-text", first.Summary)
	}
	if first.Link != "https://www.reddit.com/r/netsec/comments/abc/x/" {
		t.Errorf("link = %q, want canonical permalink URL", first.Link)
	}
	if first.Category != "community" {
		t.Errorf("category = %q, want source name", first.Category)
	}

	// Post without self-text falls back to its title.
	if items[1].Summary != "Link post" {
		t.Errorf("summary = %q, want title fallback", items[1].Summary)
	}
}

func TestRedditSearchSource_PropagatesError(t *testing.T) {
	api := &fakeRedditAPI{err: errors.New("boom")}
	src := NewRedditSearch("community", api, "q", "day", 10, nil)
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
