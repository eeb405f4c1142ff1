// Package ai rewrites article text into short post summaries through a
// language-model completion endpoint. Two providers are available, picked
// by configuration; both honor the same contract: one user-role prompt,
// bounded output tokens, low temperature, and an error (never a panic or
// a mangled string) when the endpoint misbehaves. Callers fall back to
// the original text on error.
package ai

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Placeholder substituted with the article body when rendering the prompt.
const Placeholder = "{content}"

// maxBodyRunes caps how much article text goes into a single prompt.
const maxBodyRunes = 6000

// Summarizer rewrites body text into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, body string) (string, error)
}

// RenderPrompt substitutes the body into the template's {content}
// placeholder. A template without the placeholder gets the body appended,
// so a plain instruction string still works.
func RenderPrompt(template, body string) string {
	body = prepareBody(body)
	if strings.Contains(template, Placeholder) {
		return strings.ReplaceAll(template, Placeholder, body)
	}
	return template + "\n\n" + body
}

// prepareBody collapses whitespace and cuts over-long content on a rune
// boundary, preferring to end at a sentence.
func prepareBody(body string) string {
	body = strings.ReplaceAll(body, "\r", "")
	body = strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(body) <= maxBodyRunes {
		return body
	}
	runes := []rune(body)
	trimmed := string(runes[:maxBodyRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}
