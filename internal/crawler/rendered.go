package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"regdocs/internal/config"
	"regdocs/internal/logger"
	"regdocs/internal/models"
)

const pdfSuffix = ".pdf"

// RenderedDiscoverer collects PDF links from a JavaScript-rendered listing
// using a browser session owned by the caller.
type RenderedDiscoverer struct {
	renderer Renderer
	source   config.SourceConfig
	log      *logger.Logger
}

// NewRenderedDiscoverer creates a discoverer bound to an acquired session.
func NewRenderedDiscoverer(renderer Renderer, source config.SourceConfig, log *logger.Logger) *RenderedDiscoverer {
	return &RenderedDiscoverer{
		renderer: renderer,
		source:   source,
		log:      log.With("source", source.ID, "discovery", config.DiscoveryRendered),
	}
}

// Discover renders the listing and keeps anchors whose target ends in .pdf.
func (d *RenderedDiscoverer) Discover(ctx context.Context) []models.CandidateDocument {
	anchors, err := d.renderer.CollectLinks(ctx, d.source.URL, d.source.Selector)
	if err != nil {
		d.log.Error("❌ Error extracting PDF links", "url", d.source.URL, "error", err)

		return []models.CandidateDocument{}
	}

	base, err := url.Parse(d.source.URL)
	if err != nil {
		base = nil
	}

	docs := finalizeCandidates(FilterPDFAnchors(anchors, base), d.source.MaxDocuments)
	d.log.Info(fmt.Sprintf("🔎 Found %d PDF links", len(docs)))

	return docs
}

// FilterPDFAnchors keeps anchors whose target ends with .pdf (any case).
func FilterPDFAnchors(anchors []Anchor, base *url.URL) []models.CandidateDocument {
	docs := []models.CandidateDocument{}

	for _, a := range anchors {
		href := strings.TrimSpace(a.Href)
		if !strings.HasSuffix(strings.ToLower(href), pdfSuffix) {
			continue
		}

		docs = append(docs, models.CandidateDocument{
			Title:   strings.TrimSpace(a.Text),
			Locator: resolveLocator(base, href),
		})
	}

	return docs
}
