// Package crawler discovers, renders and downloads resolution documents.
package crawler

import (
	"context"
	"net/url"
	"strings"

	"regdocs/internal/models"
)

// Discoverer lists the candidate documents currently published by a source.
// Implementations never fail: errors are logged and yield an empty slice,
// so an empty result means either "nothing listed" or "discovery failed".
type Discoverer interface {
	Discover(ctx context.Context) []models.CandidateDocument
}

// finalizeCandidates drops duplicate locators (first wins) and keeps at
// most limit entries; limit 0 keeps everything.
func finalizeCandidates(docs []models.CandidateDocument, limit int) []models.CandidateDocument {
	out := make([]models.CandidateDocument, 0, len(docs))
	seen := make(map[string]bool, len(docs))

	for _, d := range docs {
		if d.Locator == "" || seen[d.Locator] {
			continue
		}

		seen[d.Locator] = true
		out = append(out, d)

		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out
}

// resolveLocator makes href absolute against base when both parse.
func resolveLocator(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}
