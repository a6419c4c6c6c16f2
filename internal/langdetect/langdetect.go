// Package langdetect infers the language of a piece of user text
// independently of the active UI locale.
package langdetect

import "github.com/abadojack/whatlanggo"

// arabicRanges covers the Arabic script blocks: the base block, supplement,
// extended-A and the presentation forms.
var arabicRanges = [][2]rune{
	{0x0600, 0x06FF},
	{0x0750, 0x077F},
	{0x08A0, 0x08FF},
	{0xFB50, 0xFDFF},
	{0xFE70, 0xFEFF},
}

// ContainsArabic reports whether s contains at least one Arabic-script
// code point.
func ContainsArabic(s string) bool {
	for _, r := range s {
		for _, rng := range arabicRanges {
			if r >= rng[0] && r <= rng[1] {
				return true
			}
		}
	}
	return false
}

// supported are the locales the backend accepts for questions.
var supported = map[string]bool{
	"en": true,
	"ar": true,
}

// DetectLocale picks the request language for a question. Arabic-script
// content always wins regardless of the active UI locale; otherwise a
// statistical detection is consulted, and anything outside the supported set
// falls back to the given UI locale.
func DetectLocale(text string, fallback string) string {
	if ContainsArabic(text) {
		return "ar"
	}
	detected := whatlanggo.DetectLang(text).Iso6391()
	if supported[detected] {
		return detected
	}
	return fallback
}
