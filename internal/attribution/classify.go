// Package attribution classifies anonymous clicks and joins purchase
// events back to them inside a bounded match window.
package attribution

import (
	"fmt"
	"net/url"
	"strings"
)

// sourcePatterns maps referrer substrings to display sources. Order
// matters: the first match wins, so the short aliases (t.co, fb.me)
// sit next to their parent platform.
var sourcePatterns = []struct {
	substr string
	source string
}{
	{"twitter", "Twitter"},
	{"t.co", "Twitter"},
	{"x.com", "Twitter"},
	{"reddit", "Reddit"},
	{"instagram", "Instagram"},
	{"facebook", "Facebook"},
	{"fb.me", "Facebook"},
	{"tiktok", "TikTok"},
	{"youtube", "YouTube"},
	{"youtu.be", "YouTube"},
	{"linkedin", "LinkedIn"},
	{"producthunt", "Product Hunt"},
	{"hackernews", "Hacker News"},
	{"news.ycombinator", "Hacker News"},
	{"google", "Google"},
}

// SourceFromReferrer classifies a referrer URL into a traffic source.
// An empty referrer is a direct visit; an unrecognized one falls back to
// its bare hostname so new sources still show up in reports.
func SourceFromReferrer(referrer string) string {
	if strings.TrimSpace(referrer) == "" {
		return "direct"
	}

	lower := strings.ToLower(referrer)
	for _, p := range sourcePatterns {
		if strings.Contains(lower, p.substr) {
			return p.source
		}
	}

	if u, err := url.Parse(referrer); err == nil && u.Hostname() != "" {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return referrer
}

// DeviceFromUserAgent buckets a user agent into a coarse device family.
func DeviceFromUserAgent(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad"):
		return "iPad"
	case strings.Contains(ua, "iphone"):
		return "iPhone"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "macintosh"), strings.Contains(ua, "mac os"):
		return "Mac"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

// Fingerprint derives a stable non-cryptographic hash from a visitor's
// IP and user agent. Used only to recognize repeat clicks; never treated
// as an identity.
func Fingerprint(ip, userAgent string) string {
	var h uint64 = 14695981039346656037
	for _, b := range []byte(ip + userAgent) {
		h = h * 1099511628211
		h ^= uint64(b)
	}
	return fmt.Sprintf("%016x", h)
}
