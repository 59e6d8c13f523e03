package crawler

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Extractor returns the text of one element of the page at a URL.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// TextMode selects how element text is flattened.
type TextMode int

const (
	// TextRaw concatenates the element's text nodes unchanged,
	// keeping the newlines between lines of a list item.
	TextRaw TextMode = iota

	// TextStripped trims every text node, drops the empty ones and
	// concatenates the rest without a separator.
	TextStripped
)

// SelectorExtractor extracts the text of the first element matching a CSS selector.
type SelectorExtractor struct {
	fetcher  Fetcher
	selector cascadia.Selector
	raw      string
	mode     TextMode
}

// NewSelectorExtractor compiles selector and returns an extractor that reads
// pages through fetcher. An invalid selector is reported here rather than
// on every page.
func NewSelectorExtractor(fetcher Fetcher, selector string, mode TextMode) (*SelectorExtractor, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return &SelectorExtractor{
		fetcher:  fetcher,
		selector: sel,
		raw:      selector,
		mode:     mode,
	}, nil
}

// Extract fetches pageURL and returns the text of the first matching element.
func (e *SelectorExtractor) Extract(ctx context.Context, pageURL string) (string, error) {
	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return e.ExtractFromDocument(page.Document)
}

// ExtractFromDocument applies the selector to an already parsed document.
func (e *SelectorExtractor) ExtractFromDocument(doc *goquery.Document) (string, error) {
	sel := doc.FindMatcher(e.selector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%s: %w", e.raw, ErrElementNotFound)
	}
	if e.mode == TextStripped {
		return StrippedText(sel.Nodes[0]), nil
	}
	return sel.Text(), nil
}

// StrippedText walks the text nodes under n in document order, trims each
// one and joins the non-empty pieces.
func StrippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
