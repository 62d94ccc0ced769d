package credential

import (
	"strings"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
)

// maskFill is the fixed run between the preserved edges of a masked
// value. Using a fixed width keeps the mask from leaking the secret's
// true length.
const maskFill = "********"

// Mask returns a copy of the bundle with every secret-bearing value
// masked. Non-secret fields (project IDs, vendor numbers) pass through
// so API clients can still identify the connection.
func Mask(creds provider.Credentials) provider.Credentials {
	masked := make(provider.Credentials, len(creds))
	for k, v := range creds {
		if isSensitiveField(k) {
			masked[k] = MaskValue(v)
		} else {
			masked[k] = v
		}
	}
	return masked
}

// MaskValue masks a single secret: long values keep the first and last
// four characters for correlation, short values are fully masked.
func MaskValue(val string) string {
	if len(val) > 12 {
		return val[:4] + maskFill + val[len(val)-4:]
	}
	return maskFill
}

func isSensitiveField(name string) bool {
	n := strings.ToLower(name)
	for _, s := range []string{"key", "secret", "token", "private"} {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}
