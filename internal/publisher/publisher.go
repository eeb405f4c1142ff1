// Package publisher turns a candidate item into a Reddit self-text post:
// summarize, render, submit, then best-effort flair.
package publisher

import (
	"context"
	"fmt"
	"log"

	"llmsecbot/internal/ai"
	"llmsecbot/internal/metrics"
	"llmsecbot/internal/reddit"
	"llmsecbot/internal/source"
)

// RedditAPI is the slice of the Reddit client the publisher needs; tests
// swap in a fake.
type RedditAPI interface {
	SubmitSelfPost(ctx context.Context, subreddit, title, body string) (string, error)
	LinkFlairTemplates(ctx context.Context, subreddit string) ([]reddit.FlairTemplate, error)
	SelectFlair(ctx context.Context, subreddit, fullname, templateID string) error
}

type Publisher struct {
	api        RedditAPI
	summarizer ai.Summarizer // nil disables summarization
	subreddit  string
	flairMap   map[string]string
	disclaimer string
}

func New(api RedditAPI, summarizer ai.Summarizer, subreddit string, flairMap map[string]string, disclaimer string) *Publisher {
	return &Publisher{
		api:        api,
		summarizer: summarizer,
		subreddit:  subreddit,
		flairMap:   flairMap,
		disclaimer: disclaimer,
	}
}

// Publish creates one post. A summarization failure falls back to the
// item's original summary and is never an error; a submit failure is. A
// missing or failing flair never fails an already-created post.
func (p *Publisher) Publish(ctx context.Context, item source.Item) error {
	summary := item.Summary
	if p.summarizer != nil {
		out, err := p.summarizer.Summarize(ctx, item.Summary)
		if err != nil {
			log.Printf("Summarize failed for %q, using original text: %v", item.Title, err)
			metrics.Global.IncrementSummariesFailed()
		} else {
			summary = out
		}
	}

	body := renderBody(item.Link, summary, p.disclaimer)
	fullname, err := p.api.SubmitSelfPost(ctx, p.subreddit, item.Title, body)
	if err != nil {
		return fmt.Errorf("submit %q to r/%s: %w", item.Title, p.subreddit, err)
	}

	p.applyFlair(ctx, fullname, item.Category)
	return nil
}

func renderBody(link, summary, disclaimer string) string {
	return fmt.Sprintf("[Read the article here](%s)\n\n%s\n\n%s", link, summary, disclaimer)
}

// applyFlair looks the item's category up in the flair map and attaches
// the matching template by exact text match. No match, no flair, no error.
func (p *Publisher) applyFlair(ctx context.Context, fullname, category string) {
	flairText, ok := p.flairMap[category]
	if !ok {
		return
	}

	templates, err := p.api.LinkFlairTemplates(ctx, p.subreddit)
	if err != nil {
		log.Printf("Can't list flair templates for r/%s: %v", p.subreddit, err)
		return
	}

	for _, tmpl := range templates {
		if tmpl.Text == flairText {
			if err := p.api.SelectFlair(ctx, p.subreddit, fullname, tmpl.ID); err != nil {
				log.Printf("Can't set flair %q on %s: %v", flairText, fullname, err)
			}
			return
		}
	}
	log.Printf("No flair template %q in r/%s, posting without flair", flairText, p.subreddit)
}
