// Package util holds small helpers for keeping secrets out of log output.
package util

import (
	"net/url"
	"strings"
)

// MaskSecret obscures a secret for logging, showing only the first and last
// few characters.
func MaskSecret(secret string) string {
	if len(secret) > 8 {
		return secret[:4] + "..." + secret[len(secret)-4:]
	} else if len(secret) > 4 {
		return secret[:2] + "..." + secret[len(secret)-2:]
	} else if len(secret) > 2 {
		return secret[:1] + "..." + secret[len(secret)-1:]
	}
	return secret
}

// MaskDSN hides the password inside a database DSN so connection strings
// can be logged. Both URL-style and key=value DSNs are handled.
func MaskDSN(dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return ""
	}

	if parsed, errParse := url.Parse(trimmed); errParse == nil && parsed.Scheme != "" && parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), "****")
			return parsed.String()
		}
		return trimmed
	}

	parts := strings.Fields(trimmed)
	changed := false
	for i, part := range parts {
		if strings.HasPrefix(strings.ToLower(part), "password=") {
			parts[i] = "password=****"
			changed = true
		}
	}
	if changed {
		return strings.Join(parts, " ")
	}
	return trimmed
}
