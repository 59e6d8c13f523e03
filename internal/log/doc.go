// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// Scraping job boards often requires a session cookie or an API token in the
// request headers, and listing URLs may carry tracking or signature query
// parameters. The SecureHandler masks those before a record reaches the
// underlying handler:
//   - Attributes whose key names a secret (cookie, authorization, token, ...)
//   - String values that look like credentials (bearer tokens, JWTs)
//   - Secret query parameters inside URLs, including URLs embedded in errors
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose, jsonFormat)
//	logger.Info("checking", "url", "https://jobs.example/1?token=abc")
//	// url=https://jobs.example/1?token=REDACTED
//
//	slog.SetDefault(logger)
package log
