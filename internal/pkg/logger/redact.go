package logger

import "strings"

var secretKeySubstrings = []string{"key", "secret", "token", "private", "credential", "password"}

// IsSecretKey reports whether a field name looks like it carries
// credential material.
func IsSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, s := range secretKeySubstrings {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// RedactSecret masks a secret value for safe logging.
// Long values keep the first 4 characters for correlation:
// "sk_live_abcdef123456" → "sk_l***". Short values are fully masked.
func RedactSecret(val string) string {
	if len(val) > 8 {
		return val[:4] + "***"
	}
	return "***"
}

func redactSecretValue(key, val string) string {
	if IsSecretKey(key) {
		return RedactSecret(val)
	}
	return val
}
