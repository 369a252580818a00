// Package normalizer canonicalizes raw geographic labels for comparison:
// lowercasing, whitespace collapsing, ё→е folding, region-stem reduction and
// splitting a label into its city and region parts.
package normalizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Settlement prefixes stripped from the head of a label before splitting.
var cityPrefixes = []string{
	"г.", "п.", "д.", "с.", "пос.", "дер.", "село", "город", "поселок", "деревня",
}

// Keywords that mark the start of an inline (non-parenthesized) region part.
var regionKeywords = []string{
	"област", "край", "республик", "округ",
	"ленинград", "москов", "курск", "кемеров",
	"свердлов", "нижегород", "новосибирск", "тамбов",
	"красноярск",
}

// Adjective-to-stem replacements applied when comparing region qualifiers.
// Order matters: the longest adjective forms run before unit words.
var regionReplacements = [][2]string{
	{"ленинградская", "ленинград"},
	{"московская", "москов"},
	{"курская", "курск"},
	{"кемеровская", "кемеров"},
	{"свердловская", "свердлов"},
	{"нижегородская", "нижегород"},
	{"новосибирская", "новосибирск"},
	{"тамбовская", "тамбов"},
	{"красноярская", "красноярск"},
	{"область", ""},
	{"обл", ""},
	{"край", ""},
	{"республика", ""},
	{"респ", ""},
	{"  ", " "},
}

// Normalize canonicalizes a raw label: NFC, ё→е, lowercase, trimmed, inner
// whitespace runs collapsed to single spaces. Deterministic and locale-free.
// Whitespace-only input normalizes to "".
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := norm.NFC.String(raw)
	s = strings.ReplaceAll(s, "ё", "е")
	s = strings.ReplaceAll(s, "Ё", "Е")
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeRegion reduces a region qualifier to a comparable stem form.
func NormalizeRegion(raw string) string {
	s := Normalize(raw)
	for _, r := range regionReplacements {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	return strings.TrimSpace(s)
}

// BaseName strips a trailing parenthesized qualifier from a directory name.
func BaseName(name string) string {
	if i := strings.Index(name, "("); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}

// Split decomposes a raw label into its city part and an optional region
// qualifier. A trailing "City (Region)" group wins; only the first
// top-level group is treated as a qualifier. Otherwise the label is scanned
// for inline region keywords. Settlement prefixes are stripped and anything
// after the first comma is dropped beforehand.
func Split(raw string) (city, region string) {
	text := strings.TrimSpace(raw)

	if i := strings.Index(text, ","); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}

	text = stripPrefix(text)

	// Parenthesized qualifier form.
	if open := strings.Index(text, "("); open >= 0 {
		if close := strings.Index(text[open:], ")"); close >= 0 {
			city = strings.TrimSpace(text[:open])
			region = strings.TrimSpace(text[open+1 : open+close])
			return city, region
		}
	}

	words := strings.Fields(text)
	if len(words) <= 1 {
		return text, ""
	}

	var cityWords, regionWords []string
	regionFound := false
	for _, word := range words {
		wordLower := strings.ToLower(word)
		switch {
		case !regionFound && hasRegionKeyword(wordLower):
			regionFound = true
			regionWords = append(regionWords, word)
		case regionFound:
			regionWords = append(regionWords, word)
		default:
			cityWords = append(cityWords, word)
		}
	}

	if len(cityWords) == 0 {
		return text, strings.Join(regionWords, " ")
	}
	return strings.Join(cityWords, " "), strings.Join(regionWords, " ")
}

// Changed reports whether the resolved canonical name differs from the
// original label. No match means no change.
func Changed(original, matched string) bool {
	if matched == "" {
		return false
	}
	return strings.TrimSpace(original) != strings.TrimSpace(matched)
}

func stripPrefix(text string) string {
	lower := strings.ToLower(text)
	for _, prefix := range cityPrefixes {
		if strings.HasPrefix(lower, prefix+" ") {
			return strings.TrimSpace(text[len(prefix)+1:])
		}
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(text[len(prefix):])
		}
	}
	return text
}

func hasRegionKeyword(word string) bool {
	for _, kw := range regionKeywords {
		if strings.Contains(word, kw) {
			return true
		}
	}
	return false
}
