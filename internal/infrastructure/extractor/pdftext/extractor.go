package pdftext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/kirillkom/policy-sorter/internal/core/ports"
)

// DefaultMaxChars bounds extraction; the heuristic never needs more than the first pages.
const DefaultMaxChars = 20000

type Extractor struct {
	docs     ports.DocumentStore
	maxChars int
}

func NewExtractor(docs ports.DocumentStore, maxChars int) *Extractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Extractor{docs: docs, maxChars: maxChars}
}

// Extract returns the plain text of the leading pages, stopping once maxChars is reached.
func (e *Extractor) Extract(ctx context.Context, name string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrParse, "read pdf", fmt.Errorf("%s: %v", name, r))
		}
	}()

	f, reader, err := pdf.Open(e.docs.Path(name))
	if err != nil {
		return "", domain.WrapError(domain.ErrParse, "open pdf", err)
	}
	defer f.Close()

	var b strings.Builder
	chars := 0
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, fontName := range page.Fonts() {
			if _, ok := fonts[fontName]; !ok {
				font := page.Font(fontName)
				fonts[fontName] = &font
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", domain.WrapError(domain.ErrParse, fmt.Sprintf("extract page %d", i), err)
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
			chars++
		}
		b.WriteString(pageText)
		chars += utf8.RuneCountInString(pageText)
		if chars >= e.maxChars {
			break
		}
	}

	return strings.TrimSpace(limitRunes(b.String(), e.maxChars)), nil
}

// limitRunes cuts s after n characters.
func limitRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
