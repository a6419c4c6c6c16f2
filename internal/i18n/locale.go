package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Locale is a UI locale code. The set is closed: the backend and the string
// tables only know English and Arabic.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleArabic  Locale = "ar"
)

// Direction is the document text direction for a locale.
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

func (l Locale) Direction() Direction {
	if l == LocaleArabic {
		return DirectionRTL
	}
	return DirectionLTR
}

var supportedTags = []language.Tag{language.English, language.Arabic}

var localeMatcher = language.NewMatcher(supportedTags)

// ParseLocale resolves an arbitrary BCP 47 code ("en", "en-US", "ar-EG") to
// one of the supported locales. Unknown codes fail rather than silently
// landing on the matcher default.
func ParseLocale(code string) (Locale, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", code, err)
	}
	_, index, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return "", fmt.Errorf("unsupported locale %q", code)
	}
	if index == 1 {
		return LocaleArabic, nil
	}
	return LocaleEnglish, nil
}
