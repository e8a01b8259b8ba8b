package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxKeySegmentLen bounds a sanitized storage key segment in bytes.
const MaxKeySegmentLen = 128

// ErrInvalidFileName is returned for names that cannot become a key segment.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName turns an uploaded file name into a single storage key
// segment. Separators, whitespace and control characters become "_", and
// long names are cut to MaxKeySegmentLen keeping their extension.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", ErrInvalidFileName
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsSpace(r) || unicode.IsControl(r):
			return '_'
		}
		return r
	}, s)
	if len(s) > MaxKeySegmentLen {
		ext := path.Ext(s)
		if len(ext) > 16 {
			ext = ""
		}
		s = truncateUTF8(s[:len(s)-len(ext)], MaxKeySegmentLen-len(ext)) + ext
	}
	return s, nil
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
