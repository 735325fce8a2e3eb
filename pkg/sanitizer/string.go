package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace
// runs to single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeLocation(location string) string {
	return TrimAndNormalize(location)
}

// NormalizeAmenity lowercases amenity tags so listings filter consistently.
func NormalizeAmenity(amenity string) string {
	return strings.ToLower(TrimAndNormalize(amenity))
}
