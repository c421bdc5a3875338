package middleware

import (
	"net/http"
	"strings"

	"github.com/teamspace/guardrail/internal/util"
)

// Headers whose values must never reach the logs. Everything the API
// accepts for authentication lives here, plus the proxy form of it.
var redactedHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"set-cookie":          {},
	"proxy-authorization": {},
	"x-api-key":           {},
	"x-auth-token":        {},
	"x-csrf-token":        {},
}

// SanitizeHeaders prepares request headers for logging. Credential-bearing
// headers are replaced with a marker; everything else goes through
// util.SanitizeForLog, which strips control characters and truncates, the
// same treatment organization names get before they reach an audit row.
func SanitizeHeaders(h http.Header) map[string][]string {
	if h == nil {
		return nil
	}
	out := make(map[string][]string, len(h))
	for name, vals := range h {
		if _, secret := redactedHeaders[strings.ToLower(name)]; secret {
			out[name] = []string{"<redacted>"}
			continue
		}
		clean := make([]string, 0, len(vals))
		for _, v := range vals {
			clean = append(clean, util.SanitizeForLog(v))
		}
		out[name] = clean
	}
	return out
}

// SanitizePath strips the query string, then cleans the remaining path for
// logging. Query parameters can carry emails and tokens, so they are
// dropped rather than sanitized.
func SanitizePath(p string) string {
	if i := strings.IndexByte(p, '?'); i != -1 {
		p = p[:i]
	}
	return util.SanitizeForLog(p)
}
