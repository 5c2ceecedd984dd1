package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/granada/granada-os/internal/models"
)

var strictPolicy = bluemonday.StrictPolicy()

// normalizeSpace collapses runs of whitespace and trims the string.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HTMLToText strips markup and collapses whitespace. Sanitization runs
// first so script and style bodies never leak into the text.
func HTMLToText(html string) string {
	sanitized := strictPolicy.Sanitize(html)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitized))
	if err != nil {
		return normalizeSpace(sanitized)
	}
	return normalizeSpace(doc.Text())
}

// sectorAliases maps phrases seen in source text to the canonical sector
// vocabulary used by matching. Order matters: the first match wins, so the
// more specific sectors come before the catch-all community bucket.
var sectorAliases = []struct {
	alias     string
	canonical string
}{
	{"health", "Health"},
	{"medical", "Health"},
	{"education", "Education"},
	{"school", "Education"},
	{"scholarship", "Education"},
	{"agriculture", "Agriculture"},
	{"farming", "Agriculture"},
	{"food security", "Agriculture"},
	{"environment", "Environment"},
	{"climate", "Environment"},
	{"conservation", "Environment"},
	{"water", "Environment"},
	{"technology", "Technology"},
	{"digital", "Technology"},
	{"innovation", "Technology"},
	{"community", "Community Development"},
	{"development", "Community Development"},
	{"livelihood", "Community Development"},
	{"women", "Community Development"},
	{"youth", "Community Development"},
}

// NormalizeSector maps free text onto the canonical sector list, or
// returns "Other" when nothing matches.
func NormalizeSector(text string) string {
	lower := strings.ToLower(normalizeSpace(text))
	if lower == "" {
		return ""
	}
	for _, canonical := range []string{"Health", "Education", "Community Development", "Environment", "Agriculture", "Technology"} {
		if strings.EqualFold(lower, canonical) {
			return canonical
		}
	}
	for _, a := range sectorAliases {
		if strings.Contains(lower, a.alias) {
			return a.canonical
		}
	}
	return "Other"
}

var numberRegex = regexp.MustCompile(`[\d,\.]+`)

// parseAmount extracts min/max amounts and a currency from free text.
// A single figure is treated as a maximum unless the text says minimum.
func parseAmount(text, defaultCurrency string) (minAmt, maxAmt float64, currency string) {
	textLower := strings.ToLower(text)

	currency = defaultCurrency
	if currency == "" {
		currency = "USD"
	}
	switch {
	case strings.Contains(textLower, "£") || strings.Contains(textLower, "gbp"):
		currency = "GBP"
	case strings.Contains(textLower, "€") || strings.Contains(textLower, "eur"):
		currency = "EUR"
	case strings.Contains(textLower, "$") || strings.Contains(textLower, "usd"):
		currency = "USD"
	case strings.Contains(textLower, "kes") || strings.Contains(textLower, "ksh"):
		currency = "KES"
	}

	var amounts []float64
	for _, m := range numberRegex.FindAllString(text, -1) {
		clean := strings.ReplaceAll(m, ",", "")
		val, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			clean = strings.ReplaceAll(m, ".", "")
			val, err = strconv.ParseFloat(clean, 64)
		}
		if err == nil && val > 0 {
			amounts = append(amounts, val)
		}
	}

	if len(amounts) == 0 {
		return 0, 0, ""
	}

	if len(amounts) == 1 {
		if strings.Contains(textLower, "minimum") || strings.Contains(textLower, "at least") {
			return amounts[0], 0, currency
		}
		return 0, amounts[0], currency
	}

	minAmt, maxAmt = amounts[0], amounts[0]
	for _, a := range amounts {
		if a < minAmt {
			minAmt = a
		}
		if a > maxAmt {
			maxAmt = a
		}
	}
	return minAmt, maxAmt, currency
}

var deadlineLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02/01/2006",
	"01/02/2006",
	time.RFC3339,
}

func parseDeadline(text string) *time.Time {
	text = normalizeSpace(text)
	text = strings.TrimPrefix(text, "Deadline:")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, layout := range deadlineLayouts {
		if dt, err := time.Parse(layout, text); err == nil {
			return &dt
		}
	}
	return nil
}

// keywordsFrom derives search keywords from source tags plus notable
// words in the title.
func keywordsFrom(raw RawOpportunity) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	for _, tag := range raw.RawTags {
		add(tag)
	}
	for _, word := range strings.Fields(strings.ToLower(raw.Title)) {
		word = strings.Trim(word, ".,;:()[]\"'")
		if len(word) >= 5 {
			add(word)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// Normalize converts an untrusted RawOpportunity into a canonical
// catalog record. Returns false when the record is unusable.
func Normalize(raw RawOpportunity) (models.Opportunity, bool) {
	title := normalizeSpace(raw.Title)
	if title == "" || raw.SourceURL == "" {
		return models.Opportunity{}, false
	}

	opp := models.Opportunity{
		Title:       title,
		Description: HTMLToText(raw.Description),
		Country:     normalizeSpace(raw.Country),
		SourceName:  normalizeSpace(raw.SourceName),
		SourceURL:   raw.SourceURL,
		Keywords:    keywordsFrom(raw),
		Currency:    raw.RawCurrency,
	}
	if opp.Country == "" {
		opp.Country = "Global"
	}
	if opp.Currency == "" {
		opp.Currency = "USD"
	}

	if raw.Sector != "" {
		opp.Sector = NormalizeSector(raw.Sector)
	} else {
		opp.Sector = NormalizeSector(title + " " + opp.Description)
	}

	if raw.RawAmount != "" {
		minAmt, maxAmt, currency := parseAmount(raw.RawAmount, raw.RawCurrency)
		if minAmt > 0 || maxAmt > 0 {
			opp.AmountMin = minAmt
			opp.AmountMax = maxAmt
			if currency != "" {
				opp.Currency = currency
			}
		}
	}

	opp.Deadline = parseDeadline(raw.RawDeadline)

	return opp, true
}
