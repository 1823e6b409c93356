package security

import "crypto/subtle"

// SecretEqual compares a presented secret with the configured one in
// constant time. An empty configured secret never matches.
func SecretEqual(configured, presented string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}
