// Package source turns configured origins (syndication feeds, Reddit
// keyword search) into candidate items for the pipeline.
package source

import "context"

// Item is a single candidate story. Title and Link are never empty;
// Summary has already been through the normalizer. Items are plain
// values, nothing holds onto them after the run.
type Item struct {
	Title    string
	Summary  string
	Link     string
	Category string
}

// Source produces candidate items from one configured origin, in the
// origin's natural order.
type Source interface {
	// Name returns the configured display name, used as Item.Category.
	Name() string

	// Fetch returns the current items. A fetch or parse failure is
	// reported as an error; the caller decides whether the run survives.
	Fetch(ctx context.Context) ([]Item, error)
}
