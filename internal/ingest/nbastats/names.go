package nbastats

import (
	"regexp"
	"strings"
)

var (
	nonLetters  = regexp.MustCompile(`[^a-z\s]`)
	nameSuffix  = regexp.MustCompile(`\b(jr|sr|ii|iii|iv)\b`)
	whitespaces = regexp.MustCompile(`\s+`)
)

// NormalizeName folds a display name into a lookup key: lower-case letters
// only, generational suffixes stripped, whitespace collapsed. "Jaren
// Jackson Jr." and "jaren jackson" normalize to the same key.
func NormalizeName(name string) string {
	s := strings.ToLower(name)
	s = nonLetters.ReplaceAllString(s, " ")
	s = nameSuffix.ReplaceAllString(s, " ")
	s = whitespaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
