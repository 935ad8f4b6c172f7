package utils

import "regexp"

var urlUserinfoRegex = regexp.MustCompile(`(://[^:/@]+:)([^@/]+)(@)`)

// MaskURL hides the password of any userinfo embedded in a URL or DSN.
func MaskURL(raw string) string {
	return urlUserinfoRegex.ReplaceAllString(raw, "${1}***${3}")
}

// ShortID returns the last n characters of id, or id itself when shorter.
func ShortID(id string, n int) string {
	if n <= 0 || len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}
