// Where: internal/telemetry/redact.go
// What: Secret redaction for log output.
// Why: Connection strings and credentials must never appear in logs verbatim.
package telemetry

import "net/url"

// Redact reduces a connection string or endpoint to a loggable identifier.
// For URL-shaped values the scheme and host survive; credentials, paths, and
// query parameters do not. Anything else collapses to a fixed mask.
func Redact(secret string) string {
	if secret == "" {
		return "<none>"
	}
	parsed, err := url.Parse(secret)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "****"
	}
	return parsed.Scheme + "://" + parsed.Host
}
