package translate

import "unicode"

// targetScripts lists the code points that identify text already written in a language
var targetScripts = map[string][]*unicode.RangeTable{
	"zh": {unicode.Han},
	"ja": {unicode.Hiragana, unicode.Katakana},
	"ko": {unicode.Hangul},
	"ru": {unicode.Cyrillic},
	"uk": {unicode.Cyrillic},
	"bg": {unicode.Cyrillic},
	"ar": {unicode.Arabic},
	"fa": {unicode.Arabic},
	"he": {unicode.Hebrew},
	"el": {unicode.Greek},
	"th": {unicode.Thai},
	"hi": {unicode.Devanagari},
}

// MatchesTargetScript reports whether text contains code points specific to lang.
// Latin-script targets cannot be told apart this way and always return false.
func MatchesTargetScript(text, lang string) bool {
	tables, ok := targetScripts[normalizeLang(lang)]
	if !ok {
		return false
	}
	for _, r := range text {
		if unicode.IsOneOf(tables, r) {
			return true
		}
	}
	return false
}

// DetectLanguage guesses a language code from the dominant script of text
func DetectLanguage(text string) string {
	counts := map[string]int{}
	kana := false
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana = true
			counts["ja"]++
		case unicode.Is(unicode.Han, r):
			counts["zh"]++
		case unicode.Is(unicode.Hangul, r):
			counts["ko"]++
		case unicode.Is(unicode.Cyrillic, r):
			counts["ru"]++
		case unicode.Is(unicode.Arabic, r):
			counts["ar"]++
		case unicode.Is(unicode.Greek, r):
			counts["el"]++
		case unicode.Is(unicode.Latin, r):
			counts["en"]++
		}
	}
	if kana {
		// Japanese mixes kanji with kana
		counts["ja"] += counts["zh"]
		delete(counts, "zh")
	}

	best, bestN := "und", 0
	for _, lang := range []string{"en", "zh", "ja", "ko", "ru", "ar", "el"} {
		if counts[lang] > bestN {
			best, bestN = lang, counts[lang]
		}
	}
	return best
}
