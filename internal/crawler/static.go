package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"regdocs/internal/config"
	"regdocs/internal/logger"
	"regdocs/internal/models"
)

// StaticDiscoverer scrapes a server-rendered listing page for download links.
type StaticDiscoverer struct {
	scraper *Scraper
	source  config.SourceConfig
	log     *logger.Logger
}

// NewStaticDiscoverer creates a discoverer for a static-HTML source.
func NewStaticDiscoverer(scraper *Scraper, source config.SourceConfig, log *logger.Logger) *StaticDiscoverer {
	return &StaticDiscoverer{
		scraper: scraper,
		source:  source,
		log:     log.With("source", source.ID, "discovery", config.DiscoveryStatic),
	}
}

// Discover fetches the listing once and returns the download links on it.
func (d *StaticDiscoverer) Discover(ctx context.Context) []models.CandidateDocument {
	docs, err := d.discover(ctx)
	if err != nil {
		d.log.Error("❌ Error detecting file links", "url", d.source.URL, "error", err)

		return []models.CandidateDocument{}
	}

	d.log.Info(fmt.Sprintf("🔎 Found %d candidate documents", len(docs)))

	return docs
}

func (d *StaticDiscoverer) discover(ctx context.Context) ([]models.CandidateDocument, error) {
	body, err := d.scraper.Fetch(ctx, d.source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	base, err := url.Parse(d.source.URL)
	if err != nil {
		base = nil
	}

	docs, err := ParseListing(bytes.NewReader(body), base, d.source.LinkMarker)
	if err != nil {
		return nil, err
	}

	return finalizeCandidates(docs, d.source.MaxDocuments), nil
}

// ParseListing selects the anchors whose target contains marker
// (case-insensitive) and maps them to candidates in page order.
func ParseListing(r io.Reader, base *url.URL, marker string) ([]models.CandidateDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	marker = strings.ToLower(marker)
	docs := []models.CandidateDocument{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(strings.ToLower(href), marker) {
			return
		}

		docs = append(docs, models.CandidateDocument{
			Title:   strings.TrimSpace(s.Text()),
			Locator: resolveLocator(base, href),
		})
	})

	return docs, nil
}
