package dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"survey-curator/internal/diagnostic"
	"survey-curator/internal/validate"
)

// Structural prefixes of subject and session ids.
const (
	SubjectPrefix = "sub-"
	SessionPrefix = "ses-"
)

// DefaultSession is used when the input has no session column or the
// session cell is missing.
const DefaultSession = "1"

// subjectPad is the width short numeric subject ids are zero-padded to.
const subjectPad = 3

// transliterations are letters that do not decompose to ASCII.
var transliterations = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"ß", "ss",
	"æ", "ae", "Æ", "Ae",
	"œ", "oe", "Œ", "Oe",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"þ", "th", "Þ", "Th",
)

// toASCII transliterates s, then strips combining marks and every
// remaining rune that is not an ASCII letter or digit.
func toASCII(s string) string {
	s = transliterations.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}

		return -1
	}, out)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return s != ""
}

func trimPrefixFold(s, prefix string) string {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):]
	}

	return s
}

// SubjectID normalizes a raw subject cell to "sub-<label>".
func SubjectID(raw any) (string, error) {
	v := validate.Normalize(raw)
	if v == validate.MissingToken {
		return "", diagnostic.UserInputf("missing subject id")
	}

	label := toASCII(trimPrefixFold(v, SubjectPrefix))
	if label == "" {
		return "", diagnostic.UserInputf("subject id %q has no usable characters", v)
	}

	if isDigits(label) && len(label) < subjectPad {
		label = strings.Repeat("0", subjectPad-len(label)) + label
	}

	return SubjectPrefix + label, nil
}

// SessionID normalizes a raw session cell to "ses-<label>". Missing
// values fall back to def, or DefaultSession when def is empty.
func SessionID(raw any, def string) (string, error) {
	if def == "" {
		def = DefaultSession
	}

	v := validate.Normalize(raw)
	if v == validate.MissingToken {
		v = def
	}

	label := toASCII(trimPrefixFold(v, SessionPrefix))
	if label == "" {
		return "", diagnostic.UserInputf("session id %q has no usable characters", v)
	}

	return SessionPrefix + label, nil
}
