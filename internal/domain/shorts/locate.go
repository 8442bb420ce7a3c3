package shorts

import (
	"strings"
	"unicode"
)

// Locate returns the rune offset of the first case-insensitive occurrence of
// needle in haystack. When the whole needle is absent it retries with
// progressively shorter word prefixes of the needle, longest first.
func Locate(haystack, needle string) (int, bool) {
	off, _, ok := LocateSpan(haystack, needle)
	return off, ok
}

// LocateSpan is Locate that also reports the rune length of the text that
// matched, which is shorter than needle when a prefix matched.
func LocateSpan(haystack, needle string) (int, int, bool) {
	hay := foldRunes(haystack)
	if strings.TrimSpace(needle) == "" || len(hay) == 0 {
		return 0, 0, false
	}

	full := foldRunes(needle)
	if off := indexRunes(hay, full); off >= 0 {
		return off, len(full), true
	}

	words := strings.Fields(needle)
	for i := len(words) - 1; i > 0; i-- {
		prefix := foldRunes(strings.Join(words[:i], " "))
		if off := indexRunes(hay, prefix); off >= 0 {
			return off, len(prefix), true
		}
	}
	return 0, 0, false
}

func foldRunes(s string) []rune {
	out := []rune(s)
	for i, r := range out {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(hay, needle []rune) int {
	n := len(needle)
	if n == 0 || n > len(hay) {
		return -1
	}
outer:
	for i := 0; i+n <= len(hay); i++ {
		for j := 0; j < n; j++ {
			if hay[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
