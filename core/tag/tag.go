// Package tag normalizes user supplied tags into slugs.
package tag

import (
	"strings"
	"unicode"
)

// MaxLength is the longest slug kept; longer slugs are truncated.
const MaxLength = 50

// Normalize lower-cases and slugifies each tag, dropping empties and
// duplicates while keeping first-seen order.
func Normalize(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		slug := Slugify(raw)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}

// Slugify converts one tag. Whitespace runs become a single '-', anything
// outside [a-z0-9-] is dropped.
func Slugify(raw string) string {
	var b strings.Builder
	lastDash := true // suppresses leading dashes
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > MaxLength {
		slug = strings.TrimRight(slug[:MaxLength], "-")
	}
	return slug
}

// Split parses a comma separated tag list as used in query strings.
func Split(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return Normalize(strings.Split(csv, ","))
}
