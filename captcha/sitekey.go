package captcha

import (
	"net/url"
	"strings"
)

// SiteKey returns the site key carried in the k query parameter of a
// reCAPTCHA frame src. ok is false when src is not a URL or has no key.
func SiteKey(src string) (key string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return "", false
	}

	key = u.Query().Get("k")
	if key == "" {
		return "", false
	}
	return key, true
}
