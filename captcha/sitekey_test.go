package captcha

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteKey(t *testing.T) {
	tests := []struct {
		name string
		src  string
		key  string
		ok   bool
	}{
		{
			name: "anchor frame",
			src:  "https://www.google.com/recaptcha/api2/anchor?ar=1&k=6LcSITE_KEY&co=aHR0cHM6&hl=iw&v=abc",
			key:  "6LcSITE_KEY",
			ok:   true,
		},
		{
			name: "key is last parameter",
			src:  "https://www.google.com/recaptcha/api2/bframe?hl=iw&v=abc&k=LASTKEY",
			key:  "LASTKEY",
			ok:   true,
		},
		{
			name: "similar parameter name is not the key",
			src:  "https://www.google.com/recaptcha/api2/anchor?ck=notit&v=abc",
			ok:   false,
		},
		{
			name: "no query",
			src:  "https://www.google.com/recaptcha/api2/anchor",
			ok:   false,
		},
		{
			name: "empty key",
			src:  "https://www.google.com/recaptcha/api2/anchor?k=&v=abc",
			ok:   false,
		},
		{
			name: "empty src",
			src:  "",
			ok:   false,
		},
		{
			name: "unparseable",
			src:  "http://[::1",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := SiteKey(tt.src)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}
