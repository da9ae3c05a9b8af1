package translate

import (
	"fmt"
	"regexp"
	"strings"
)

const translationPrompt = `You are a professional news translator.
Translate the following text from %s into %s.
Keep names, numbers and quotes accurate. Do not summarize, explain or add notes.
Respond with the translated text only.

Text:
%s`

var languageNames = map[string]string{
	"en": "English",
	"zh": "Simplified Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"ru": "Russian",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"ar": "Arabic",
	"tr": "Turkish",
}

// LanguageName returns a human readable name for a language code
func LanguageName(code string) string {
	if name, ok := languageNames[normalizeLang(code)]; ok {
		return name
	}
	if code == "" || code == "und" {
		return "the source language"
	}
	return code
}

// BuildTranslationPrompt creates the instruction sent to completion providers
func BuildTranslationPrompt(text, sourceLang, targetLang string) string {
	return fmt.Sprintf(translationPrompt, LanguageName(sourceLang), LanguageName(targetLang), strings.TrimSpace(text))
}

var (
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	answerPrefix  = regexp.MustCompile(`(?i)^(translation|translated text|译文|翻译)\s*[:：]\s*`)
	codeFenceOpen = regexp.MustCompile("^```[a-zA-Z]*\\s*")
)

// CleanCompletion strips the wrapping that completion models tend to add
func CleanCompletion(s string) string {
	s = strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
	if strings.HasPrefix(s, "```") {
		s = codeFenceOpen.ReplaceAllString(s, "")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = answerPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"「", "」"}} {
		if len(s) > len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = s[len(q[0]) : len(s)-len(q[1])]
		}
	}
	return strings.TrimSpace(s)
}
