// Package i18n projects multi-language template documents onto a single
// target language.
package i18n

import (
	"sort"

	"golang.org/x/text/language"

	"survey-curator/internal/template"
)

// Pick selects one translation: lang, then each fallback in order, then
// the first non-empty value by language code, then "". Plain maps carry
// no declared order; see PickText for texts that do.
func Pick(values map[string]string, lang string, fallbacks []string) string {
	codes := make([]string, 0, len(values))
	for k := range values {
		codes = append(codes, k)
	}

	sort.Strings(codes)

	return pick(values, codes, lang, fallbacks)
}

// PickText is Pick for a localized text: the last resort is the first
// non-empty translation in declared order.
func PickText(t template.Text, lang string, fallbacks []string) string {
	return pick(t.Lang, t.Languages(), lang, fallbacks)
}

func pick(values map[string]string, codes []string, lang string, fallbacks []string) string {
	for _, l := range append([]string{lang}, fallbacks...) {
		if l == "" {
			continue
		}

		if v := values[l]; v != "" {
			return v
		}
	}

	for _, k := range codes {
		if values[k] != "" {
			return values[k]
		}
	}

	return ""
}

// Localize returns value with every language map replaced by its
// selected translation. Other values pass through unchanged; nested
// maps and lists are rewritten recursively.
func Localize(value any, lang string, fallbacks []string) any {
	switch v := value.(type) {
	case template.Text:
		return LocalizeText(v, lang, fallbacks)
	case map[string]any:
		if tr, ok := languageMap(v); ok {
			return Pick(tr, lang, fallbacks)
		}

		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = Localize(e, lang, fallbacks)
		}

		return out
	case map[string]string:
		if isLanguageKeys(v) {
			return Pick(v, lang, fallbacks)
		}

		return v
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = Localize(e, lang, fallbacks)
		}

		return out
	default:
		return value
	}
}

// LocalizeText flattens a localized text to a plain one.
func LocalizeText(t template.Text, lang string, fallbacks []string) template.Text {
	if !t.IsLocalized() {
		return t
	}

	return template.Plain(PickText(t, lang, fallbacks))
}

// languageMap reports whether m maps language tags to strings.
func languageMap(m map[string]any) (map[string]string, bool) {
	if len(m) == 0 {
		return nil, false
	}

	out := make(map[string]string, len(m))

	for k, v := range m {
		switch s := v.(type) {
		case string:
			out[k] = s
		case nil:
			out[k] = ""
		default:
			return nil, false
		}
	}

	return out, isLanguageKeys(out)
}

func isLanguageKeys(m map[string]string) bool {
	if len(m) == 0 {
		return false
	}

	for k := range m {
		if !IsLanguageTag(k) {
			return false
		}
	}

	return true
}

// IsLanguageTag reports whether s is a well-formed, known BCP 47 tag
// with a two or three letter primary language.
func IsLanguageTag(s string) bool {
	if len(s) < 2 {
		return false
	}

	if _, err := language.Parse(s); err != nil {
		return false
	}

	base := s
	for i, r := range s {
		if r == '-' || r == '_' {
			base = s[:i]
			break
		}
	}

	return len(base) == 2 || len(base) == 3
}
