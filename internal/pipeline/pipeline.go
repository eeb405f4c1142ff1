// Package pipeline is the single-pass run driver:
// fetch → dedupe → truncate → publish, with skip-and-continue at every
// stage so one bad source or one rejected post never kills the run.
package pipeline

import (
	"context"
	"log"
	"strings"
	"time"

	"llmsecbot/internal/metrics"
	"llmsecbot/internal/source"
)

// Publisher posts one item to the destination.
type Publisher interface {
	Publish(ctx context.Context, item source.Item) error
}

type Pipeline struct {
	sources   []source.Source
	publisher Publisher
	maxPosts  int
}

// Stats is the run summary reported at the end.
type Stats struct {
	Fetched   int
	Unique    int
	Published int
	Failed    int
}

func New(sources []source.Source, publisher Publisher, maxPosts int) *Pipeline {
	return &Pipeline{
		sources:   sources,
		publisher: publisher,
		maxPosts:  maxPosts,
	}
}

// Run executes one pass over all configured sources. A failing source is
// logged and skipped; a failing publish is logged and the next item tried.
// Only successful posts count as published.
func (p *Pipeline) Run(ctx context.Context) Stats {
	start := time.Now()
	defer func() {
		metrics.Global.RecordRunDuration(time.Since(start))
		metrics.Global.SetLastRun()
	}()

	var all []source.Item
	for _, src := range p.sources {
		items, err := src.Fetch(ctx)
		if err != nil {
			log.Printf("Source %s failed, skipping: %v", src.Name(), err)
			metrics.Global.IncrementSourceFailures()
			continue
		}
		log.Printf("Source %s: %d items", src.Name(), len(items))
		all = append(all, items...)
	}
	metrics.Global.AddItemsFetched(len(all))

	unique := Dedupe(all)

	stats := Stats{Fetched: len(all), Unique: len(unique)}

	if p.maxPosts > 0 && len(unique) > p.maxPosts {
		unique = unique[:p.maxPosts]
	}

	for _, item := range unique {
		if err := p.publisher.Publish(ctx, item); err != nil {
			log.Printf("Publish failed, skipping: %v", err)
			metrics.Global.IncrementPublishFailures()
			stats.Failed++
			continue
		}
		log.Printf("Posted: %s", item.Title)
		metrics.Global.IncrementPostsPublished()
		stats.Published++
	}

	return stats
}

// Dedupe collapses items sharing a case-insensitive, trimmed title. First
// occurrence wins; relative order is preserved.
func Dedupe(items []source.Item) []source.Item {
	seen := make(map[string]struct{}, len(items))
	unique := make([]source.Item, 0, len(items))

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Title))
		if _, dup := seen[key]; dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}
