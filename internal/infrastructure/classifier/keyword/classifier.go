package keyword

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

// Classifier maps document text to classification fields by ordered keyword scans.
type Classifier struct {
	insurers  []string
	lines     []Category
	countries []Category
}

type Option func(*Classifier)

func WithInsurers(insurers []string) Option {
	return func(c *Classifier) { c.insurers = insurers }
}

func WithLines(lines []Category) Option {
	return func(c *Classifier) { c.lines = lines }
}

func WithCountries(countries []Category) Option {
	return func(c *Classifier) { c.countries = countries }
}

func New(opts ...Option) *Classifier {
	c := &Classifier{
		insurers:  DefaultInsurers,
		lines:     DefaultLines,
		countries: DefaultCountries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify never fails; unmatched fields fall back to their sentinels.
func (c *Classifier) Classify(_ context.Context, text string) (domain.Classification, error) {
	return domain.NewClassification(domain.Fields{
		Country:       c.DetectCountry(text),
		Insurer:       c.DetectInsurer(text),
		InsuranceLine: c.DetectLine(text),
		ProductName:   DetectProductName(text),
	}), nil
}

// DetectInsurer only looks at the cover section so fine print cannot override it.
func (c *Classifier) DetectInsurer(text string) string {
	head := strings.ToUpper(prefixRunes(text, insurerScanRunes))
	for _, insurer := range c.insurers {
		if strings.Contains(head, strings.ToUpper(insurer)) {
			return insurer
		}
	}
	return domain.Unknown
}

func (c *Classifier) DetectLine(text string) string {
	return firstCategory(strings.ToLower(text), c.lines)
}

func (c *Classifier) DetectCountry(text string) string {
	return firstCategory(strings.ToLower(text), c.countries)
}

// DetectProductName returns the first title-like line among the top lines.
func DetectProductName(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > productScanLines {
		lines = lines[:productScanLines]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		n := utf8.RuneCountInString(trimmed)
		if n <= productMinRunes || n >= productMaxRunes || strings.HasPrefix(trimmed, "www") {
			continue
		}
		if containsAny(strings.ToLower(trimmed), productKeywords) {
			return trimmed
		}
	}
	return domain.GenericProduct
}

func firstCategory(lowered string, categories []Category) string {
	for _, cat := range categories {
		if containsAny(lowered, cat.Keywords) {
			return cat.Label
		}
	}
	return domain.Unknown
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func prefixRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
