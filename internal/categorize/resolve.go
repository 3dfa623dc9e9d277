package categorize

import (
	"strings"
	"unicode"

	"github.com/rocjay1/ynab-importer/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeName drops symbols (emoji included) and combining marks so that
// "Fun Money 🤑" and "fun money" compare equal.
func normalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.So)), runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

// ResolveName maps a free-form answer onto one of valid. Exact matches win,
// then normalized equality, then normalized containment in either direction.
// Anything else resolves to models.DefaultCategory.
func ResolveName(answer string, valid []string) string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return models.DefaultCategory
	}
	for _, v := range valid {
		if v == answer {
			return v
		}
	}

	a := normalizeName(answer)
	if a == "" {
		return models.DefaultCategory
	}
	for _, v := range valid {
		if normalizeName(v) == a {
			return v
		}
	}
	for _, v := range valid {
		n := normalizeName(v)
		if n == "" {
			continue
		}
		if strings.Contains(n, a) || strings.Contains(a, n) {
			return v
		}
	}
	return models.DefaultCategory
}
