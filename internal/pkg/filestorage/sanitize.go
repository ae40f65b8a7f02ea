package filestorage

import (
	"path"
	"strings"
)

// SanitizeSegment replaces every rune outside [A-Za-z0-9._-] with a single
// underscore. Rune count and positions are preserved.
func SanitizeSegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	dotsOnly := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
			dotsOnly = false
		case r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
			dotsOnly = false
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	// "." and ".." would escape the directory
	if dotsOnly {
		return strings.Repeat("_", len(out))
	}
	return out
}

// BuildBookPath returns books/<category>/<grade>/<filename> with each
// segment sanitized; category and grade are lower-cased first.
func BuildBookPath(category, grade, filename string) string {
	return path.Join(
		"books",
		SanitizeSegment(strings.ToLower(category)),
		SanitizeSegment(strings.ToLower(grade)),
		SanitizeSegment(filename),
	)
}

// withSuffix inserts _<suffix> before the extension of p
func withSuffix(p, suffix string) string {
	dir, file := path.Split(p)
	ext := path.Ext(file)
	base := strings.TrimSuffix(file, ext)
	if base == "" {
		base, ext = file, ""
	}
	return dir + base + "_" + suffix + ext
}
