package ingest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLListParser extracts opportunities from a source listing page using
// the CSS selectors declared in the source registry.
type HTMLListParser struct {
	Source SourceConfig
}

func NewHTMLListParser(src SourceConfig) *HTMLListParser {
	return &HTMLListParser{Source: src}
}

// Parse implements the Parser interface.
func (p *HTMLListParser) Parse(ctx context.Context, r io.Reader, baseURL string) ([]RawOpportunity, error) {
	sel := p.Source.Selectors
	if sel.Container == "" {
		return nil, fmt.Errorf("source %s: selector 'container' is required", p.Source.ID)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var raws []RawOpportunity
	doc.Find(sel.Container).Each(func(_ int, item *goquery.Selection) {
		title := childText(item, sel.Title)
		link := childAttr(item, sel.Link, "href")
		if title == "" || link == "" {
			return
		}

		raw := RawOpportunity{
			Title:       title,
			Description: childText(item, sel.Content),
			SourceURL:   resolveURL(base, link),
			SourceName:  p.Source.Name,
			RawAmount:   childText(item, sel.Amount),
			RawCurrency: p.Source.Currency,
			RawDeadline: childText(item, sel.Deadline),
			Country:     p.Source.Country,
			Sector:      p.Source.Sector,
		}
		raws = append(raws, raw)
	})

	return raws, nil
}

func childText(s *goquery.Selection, selector string) string {
	if selector == "" || selector == "." {
		return normalizeSpace(s.Text())
	}
	return normalizeSpace(s.Find(selector).First().Text())
}

func childAttr(s *goquery.Selection, selector, attr string) string {
	if selector == "" || selector == "." {
		v, _ := s.Attr(attr)
		return strings.TrimSpace(v)
	}
	v, _ := s.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

func resolveURL(base *url.URL, link string) string {
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}
