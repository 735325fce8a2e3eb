package sanitizer

import (
	"strings"
)

// NormalizeURL canonicalizes an image URL: https scheme, lowercase host,
// no trailing slash.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")
	parts := strings.SplitN(url, "/", 2)
	domain := strings.ToLower(parts[0])
	var path string
	if len(parts) > 1 {
		path = "/" + parts[1]
	}
	result := "https://" + domain + path
	result = strings.TrimSuffix(result, "/")
	return result
}

// NormalizeURLs maps NormalizeURL over a slice, dropping empties.
func NormalizeURLs(urls []string) []string {
	if len(urls) == 0 {
		return urls
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if n := NormalizeURL(u); n != "" {
			out = append(out, n)
		}
	}
	return out
}
