package domain

import "strings"

// Tags live in a single free-text string field (kept for storage and wire
// compatibility), so hashtag identity is re-derived from the text on every
// sync. All parsing goes through here.

// ParseHashtags splits a tag string on runs of whitespace and returns the
// lower-cased tokens that are hashtags: '#'-prefixed and longer than one
// character. Order and duplicates are preserved.
func ParseHashtags(s string) []string {
	fields := strings.Fields(s)
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 1 && strings.HasPrefix(f, "#") {
			tags = append(tags, strings.ToLower(f))
		}
	}
	return tags
}

// HashtagSet returns the membership set of the hashtags in s.
func HashtagSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tag := range ParseHashtags(s) {
		set[tag] = struct{}{}
	}
	return set
}

// NewHashtags returns the content hashtags missing from the business tag
// string: lower-cased, in first-occurrence order. Tokens are tested against
// the business set only, never against each other, so a new tag repeated in
// the content string comes back repeated.
func NewHashtags(businessTags, contentTags string) []string {
	existing := HashtagSet(businessTags)
	var delta []string
	for _, tag := range ParseHashtags(contentTags) {
		if _, ok := existing[tag]; !ok {
			delta = append(delta, tag)
		}
	}
	return delta
}

// AppendHashtags appends the delta tokens to the stored tag text,
// space-separated, leaving the existing text untouched (casing included).
func AppendHashtags(existing string, delta []string) string {
	out := existing
	for _, tag := range delta {
		if out == "" {
			out = tag
		} else {
			out += " " + tag
		}
	}
	return out
}
