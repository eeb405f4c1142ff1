// Package normalize holds the pure text helpers the pipeline runs every
// title, summary and link through before anything else sees them.
package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	entityRe = regexp.MustCompile(`&#?[a-zA-Z0-9]+;`)
)

// Replacements for the handful of entities worth keeping as text.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
)

// Collapse squashes all runs of whitespace (including embedded newlines)
// into single spaces and trims both ends.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripMarkup removes every <...> span, decodes the small entity set above,
// drops any remaining &word; sequences and collapses whitespace. Idempotent.
func StripMarkup(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = entityReplacer.Replace(s)
	s = entityRe.ReplaceAllString(s, " ")
	return Collapse(s)
}

// CleanHTML is the fuller variant for real HTML fragments (feed summaries,
// self-text). It parses the fragment and extracts the text content, which
// also decodes entities properly. Falls back to StripMarkup if the
// fragment doesn't parse.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return StripMarkup(s)
	}
	return Collapse(doc.Text())
}

// UnwrapRedirect extracts the real destination from a tracking link that
// carries it in a "url" query parameter (Google News style). Purely a
// string operation, the link is never fetched. Anything without the
// parameter passes through unchanged.
func UnwrapRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if dest := u.Query().Get("url"); dest != "" {
		return dest
	}
	return raw
}
