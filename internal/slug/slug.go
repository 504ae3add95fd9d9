// Package slug derives URL-safe identifiers from free text.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxBaseLen leaves room for a "-n" suffix inside a 255 character column.
const MaxBaseLen = 240

var pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Letters that survive NFKD decomposition unchanged.
var ligatures = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"đ", "d",
	"ð", "d",
	"ł", "l",
	"þ", "th",
	"ı", "i",
)

func newFolder() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Make lowercases text, folds it to ASCII and joins the remaining
// alphanumeric runs with single hyphens. It returns "" when nothing survives.
//
//	Make("Post de prueba") // "post-de-prueba"
//	Make("Hello, World!")  // "hello-world"
func Make(text string) string {
	folded, _, err := transform.String(newFolder(), text)
	if err != nil {
		folded = text
	}
	folded = ligatures.Replace(strings.ToLower(folded))

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	s := b.String()
	if len(s) > MaxBaseLen {
		s = strings.TrimRight(s[:MaxBaseLen], "-")
	}
	return s
}

// Candidate returns base for n == 0 and base-n otherwise.
func Candidate(base string, n int) string {
	if n <= 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// Valid reports whether s is a well-formed slug.
func Valid(s string) bool {
	return pattern.MatchString(s)
}
