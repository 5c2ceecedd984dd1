package ingest

import (
	"context"
	"strings"
	"testing"
)

const listingHTML = `
<html><body>
  <article class="post">
    <h2 class="entry-title"><a href="/grants/health-fund">Community Health Fund</a></h2>
    <div class="entry-summary">Grants up to $50,000 for clinics.</div>
    <span class="amount">$10,000 - $50,000</span>
    <span class="deadline">2026-06-15</span>
  </article>
  <article class="post">
    <h2 class="entry-title"><a href="https://other.org/edu">Education Initiative</a></h2>
    <div class="entry-summary">School infrastructure grants.</div>
  </article>
  <article class="post">
    <h2 class="entry-title"></h2>
  </article>
</body></html>`

func TestHTMLListParser(t *testing.T) {
	src := SourceConfig{
		ID:       "test_source",
		Name:     "Test Source",
		Country:  "Kenya",
		Currency: "USD",
		Selectors: SelectorConfig{
			Container: "article.post",
			Link:      "h2.entry-title a",
			Title:     "h2.entry-title a",
			Content:   "div.entry-summary",
			Amount:    "span.amount",
			Deadline:  "span.deadline",
		},
	}

	parser := NewHTMLListParser(src)
	raws, err := parser.Parse(context.Background(), strings.NewReader(listingHTML), "https://example.org/funding/")
	if err != nil {
		t.Fatal(err)
	}

	// The third article has no title or link and must be skipped.
	if len(raws) != 2 {
		t.Fatalf("len(raws) = %d, want 2", len(raws))
	}

	first := raws[0]
	if first.Title != "Community Health Fund" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.SourceURL != "https://example.org/grants/health-fund" {
		t.Errorf("SourceURL = %q, want relative link resolved against base", first.SourceURL)
	}
	if first.RawAmount != "$10,000 - $50,000" {
		t.Errorf("RawAmount = %q", first.RawAmount)
	}
	if first.RawDeadline != "2026-06-15" {
		t.Errorf("RawDeadline = %q", first.RawDeadline)
	}
	if first.Country != "Kenya" || first.SourceName != "Test Source" {
		t.Errorf("source fields = %q/%q", first.Country, first.SourceName)
	}

	if raws[1].SourceURL != "https://other.org/edu" {
		t.Errorf("absolute link rewritten: %q", raws[1].SourceURL)
	}
}

func TestHTMLListParserRequiresContainer(t *testing.T) {
	parser := NewHTMLListParser(SourceConfig{ID: "bad"})
	_, err := parser.Parse(context.Background(), strings.NewReader(listingHTML), "https://example.org")
	if err == nil {
		t.Fatal("expected error for missing container selector")
	}
}
