package fields

import (
	"regexp"
	"strings"
)

// Replacement maps one corrupted byte sequence to the character it was
// meant to be. Order matters: "Â£" must be repaired before the stray "Â"
// marker is stripped.
type Replacement struct {
	Corrupted string
	Intended  string
}

// DefaultReplacements returns the known corrupted-sequence table: the
// mojibake forms of € and £, the stray Â marker, and U+201A.
func DefaultReplacements() []Replacement {
	return []Replacement{
		{Corrupted: "â‚¬", Intended: "€"},
		{Corrupted: "Â£", Intended: "£"},
		{Corrupted: "Â", Intended: ""},
		{Corrupted: "‚", Intended: ""},
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Cleaner normalizes free-text field values. It is immutable after
// construction and safe for concurrent use.
type Cleaner struct {
	replacements []Replacement
}

// NewCleaner creates a Cleaner with the default replacement table plus any
// extra corrupted-sequence pairs. Extras are applied after the defaults,
// so new legacy encodings can be added without touching cleaning logic.
func NewCleaner(extra ...Replacement) *Cleaner {
	replacements := DefaultReplacements()
	replacements = append(replacements, extra...)
	return &Cleaner{replacements: replacements}
}

// Clean normalizes a field value. Empty strings and the case-insensitive
// literals "none" and "null" become nil. Otherwise known corrupted byte
// sequences are repaired, whitespace runs collapse to a single space, and
// the result is trimmed.
func (c *Cleaner) Clean(field string) *string {
	if field == "" || strings.EqualFold(field, "none") || strings.EqualFold(field, "null") {
		return nil
	}

	for _, r := range c.replacements {
		field = strings.ReplaceAll(field, r.Corrupted, r.Intended)
	}

	field = whitespaceRun.ReplaceAllString(field, " ")
	field = strings.TrimSpace(field)
	return &field
}
