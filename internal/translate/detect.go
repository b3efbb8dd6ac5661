package translate

import (
	"strings"
	"unicode"
)

// Scripts whose presence means the text is certainly not English.
var nonLatinScripts = []*unicode.RangeTable{
	unicode.Arabic,
	unicode.Cyrillic,
	unicode.Han,
	unicode.Hiragana,
	unicode.Katakana,
	unicode.Hangul,
	unicode.Hebrew,
	unicode.Thai,
}

const diacritics = "àâäãåéèêëíìîïóòôöõúùûüçñýÀÂÄÃÅÉÈÊËÍÌÎÏÓÒÔÖÕÚÙÛÜÇÑ"

// LikelyEnglish is a cheap pre-filter so ingestion does not pay one
// translation round-trip per field for text that is plainly English
// already. It errs toward "English", since translation is best-effort anyway.
//
// Rules, in order: any character from a non-Latin script fails
// immediately, no matter how short the text is; then very short Latin
// text is skipped; more than 15% non-ASCII fails; common Latin
// diacritics fail; everything else passes.
func LikelyEnglish(s string) bool {
	s = strings.TrimSpace(s)
	runes := []rune(s)

	nonASCII := 0
	for _, r := range runes {
		for _, tbl := range nonLatinScripts {
			if unicode.Is(tbl, r) {
				return false
			}
		}
		if r > unicode.MaxASCII {
			nonASCII++
		}
	}

	if len(runes) < 12 {
		return true
	}
	if float64(nonASCII)/float64(len(runes)) > 0.15 {
		return false
	}
	if strings.ContainsAny(s, diacritics) {
		return false
	}
	return true
}
