package log

import (
	"regexp"
	"strings"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// secretKeys are attribute keys, lowercased, whose values are never logged.
var secretKeys = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"x-api-key":           {},
	"api_key":             {},
	"apikey":              {},
	"auth":                {},
	"credentials":         {},
}

// secretKeywords mark a key as sensitive wherever they occur in it, so
// github_token and proxy_password are covered. The bare "key" is left out:
// it would hide harmless keys such as cache_key.
var secretKeywords = []string{"password", "passwd", "secret", "token", "credential", "private"}

// secretValues are whole values that are credentials on their own.
var secretValues = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// embeddedRule rewrites a secret that appears inside a longer string such
// as an error message, a header dump or a probed URL.
type embeddedRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var embeddedRules = []embeddedRule{
	// GitHub personal access, OAuth, app and fine-grained tokens.
	{regexp.MustCompile(`\b(?:gh[pousr]_[A-Za-z0-9]{20,}|github_pat_[A-Za-z0-9_]{20,})`), MaskValue},
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`), "Bearer " + MaskValue},
	// user:password@ in proxy and link URLs.
	{regexp.MustCompile(`(://)[^/\s:@]+:[^/\s@]+@`), "${1}" + MaskValue + "@"},
	// Signed or token-carrying query parameters of documented download links.
	{
		regexp.MustCompile(`(?i)([?&](?:access_token|token|sig|signature|x-amz-signature|x-amz-credential|api_key|apikey)=)[^&#\s]+`),
		"${1}" + MaskValue,
	},
}

// isSecretKey reports whether values logged under key must be hidden.
func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	if _, ok := secretKeys[k]; ok {
		return true
	}
	for _, kw := range secretKeywords {
		if strings.Contains(k, kw) {
			return true
		}
	}
	return false
}

// isSensitiveValue reports whether value as a whole is a credential.
// Commit ids and report digests are long hex strings and do not match.
func isSensitiveValue(value string) bool {
	for _, p := range secretValues {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// redactEmbedded masks secrets that occur inside s.
func redactEmbedded(s string) string {
	for _, r := range embeddedRules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}
