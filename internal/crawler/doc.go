// Package crawler fetches listing pages and extracts element text from them.
//
// # Components
//
//   - Client: HTTP client built on resty. It sends the configured
//     User-Agent and headers, enforces the request timeout, caps the
//     number of body bytes parsed and decodes non-UTF-8 pages.
//   - SelectorExtractor: fetches a page through a Fetcher, selects the
//     first element matching a CSS selector and returns its text.
//
// Stages depend on the Extractor interface only, so tests can inject canned
// text without a network.
//
// # Errors
//
// A page that answers with anything but 200 yields a *StatusError. A page
// without a matching element yields ErrElementNotFound. Transport failures
// are returned wrapped as-is. Callers treat all of them as "skip this URL".
//
// # Usage
//
//	client := crawler.NewClient(crawler.WithTimeout(10 * time.Second))
//	ext, err := crawler.NewSelectorExtractor(client, ".job-detail-des .tag-item", crawler.TextStripped)
//	text, err := ext.Extract(ctx, "https://example.com/job/1")
package crawler
