package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"llmsecbot/internal/source"
)

type stubSource struct {
	name  string
	items []source.Item
	err   error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) ([]source.Item, error) {
	return s.items, s.err
}

type recordingPublisher struct {
	published []source.Item
	failOn    map[string]bool
}

func (p *recordingPublisher) Publish(ctx context.Context, item source.Item) error {
	if p.failOn[item.Title] {
		return errors.New("submission rejected")
	}
	p.published = append(p.published, item)
	return nil
}

func item(title string) source.Item {
	return source.Item{Title: title, Summary: "summary of " + title, Link: "https://x.example/" + title, Category: "news"}
}

func TestDedupe_FirstOccurrenceWins(t *testing.T) {
	a := source.Item{Title: "A new LLM jailbreak", Summary: "first", Link: "https://a.example", Category: "news"}
	b := source.Item{Title: "a new llm jailbreak ", Summary: "second", Link: "https://b.example", Category: "research"}
	c := source.Item{Title: "Unrelated paper", Summary: "third", Link: "https://c.example", Category: "research"}

	got := Dedupe([]source.Item{a, b, c})
	want := []source.Item{a, c}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe = %+v, want %+v", got, want)
	}

	// Survivor keeps its original field values untouched.
	if got[0].Summary != "first" || got[0].Link != "https://a.example" {
		t.Errorf("surviving item was modified: %+v", got[0])
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	in := []source.Item{item("One"), item("one"), item("Two"), item("ONE "), item("Three")}
	once := Dedupe(in)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe not idempotent: %+v != %+v", once, twice)
	}
}

func TestDedupe_Empty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("Dedupe(nil) = %+v, want empty", got)
	}
}

func TestRun_DeduplicatesAcrossSources(t *testing.T) {
	feedA := &stubSource{name: "news", items: []source.Item{
		{Title: "A new LLM jailbreak", Summary: "s1", Link: "https://a.example", Category: "news"},
		{Title: "a new llm jailbreak ", Summary: "s2", Link: "https://b.example", Category: "news"},
	}}
	feedB := &stubSource{name: "research", items: []source.Item{
		{Title: "Unrelated paper", Summary: "s3", Link: "https://c.example", Category: "research"},
	}}
	pub := &recordingPublisher{}

	stats := New([]source.Source{feedA, feedB}, pub, 3).Run(context.Background())

	if stats.Fetched != 3 || stats.Unique != 2 || stats.Published != 2 {
		t.Errorf("stats = %+v, want fetched=3 unique=2 published=2", stats)
	}
	if len(pub.published) != 2 {
		t.Fatalf("published %d items, want 2", len(pub.published))
	}
	if pub.published[0].Title != "A new LLM jailbreak" || pub.published[1].Title != "Unrelated paper" {
		t.Errorf("published order wrong: %q, %q", pub.published[0].Title, pub.published[1].Title)
	}
}

func TestRun_TruncatesToMaxPosts(t *testing.T) {
	src := &stubSource{name: "news", items: []source.Item{
		item("one"), item("two"), item("three"), item("four"), item("five"),
	}}
	pub := &recordingPublisher{}

	stats := New([]source.Source{src}, pub, 1).Run(context.Background())

	if stats.Published != 1 {
		t.Errorf("published = %d, want 1", stats.Published)
	}
	if len(pub.published) != 1 || pub.published[0].Title != "one" {
		t.Errorf("published = %+v, want only the first candidate", pub.published)
	}
}

func TestRun_SkipsFailingSource(t *testing.T) {
	bad := &stubSource{name: "broken", err: errors.New("connection refused")}
	good := &stubSource{name: "news", items: []source.Item{item("survivor")}}
	pub := &recordingPublisher{}

	stats := New([]source.Source{bad, good}, pub, 3).Run(context.Background())

	if stats.Fetched != 1 || stats.Published != 1 {
		t.Errorf("stats = %+v, want fetched=1 published=1", stats)
	}
}

func TestRun_ContinuesAfterPublishFailure(t *testing.T) {
	src := &stubSource{name: "news", items: []source.Item{
		item("first"), item("second"), item("third"),
	}}
	pub := &recordingPublisher{failOn: map[string]bool{"second": true}}

	stats := New([]source.Source{src}, pub, 3).Run(context.Background())

	if stats.Published != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v, want published=2 failed=1", stats)
	}
	if len(pub.published) != 2 || pub.published[1].Title != "third" {
		t.Errorf("publisher did not continue past the failure: %+v", pub.published)
	}
}
