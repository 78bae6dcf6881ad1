package identity

import (
	"regexp"
	"strings"
)

var nonAlnumRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// DefaultAbbreviations maps street suffix abbreviations to their canonical form.
var DefaultAbbreviations = map[string]string{
	"st":   "street",
	"ave":  "avenue",
	"av":   "avenue",
	"ct":   "court",
	"rd":   "road",
	"blvd": "boulevard",
	"dr":   "drive",
}

// normalizeText lowercases, trims and collapses whitespace, Unicode spaces included.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// normalizeNumber keeps letters and digits only, so "12-A" and "12a" agree.
func normalizeNumber(s string) string {
	return nonAlnumRegex.ReplaceAllString(strings.ToLower(s), "")
}

// canonicalStreet rewrites every token through the abbreviation table.
func canonicalStreet(s string, abbreviations map[string]string) string {
	tokens := strings.Fields(normalizeText(s))
	out := tokens[:0]
	for _, tok := range tokens {
		tok = strings.TrimRight(tok, ".,")
		if tok == "" {
			continue
		}
		if full, ok := abbreviations[tok]; ok {
			tok = full
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

// equalNonEmpty treats an empty value on either side as a mismatch.
func equalNonEmpty(a, b string) bool {
	return a != "" && a == b
}
