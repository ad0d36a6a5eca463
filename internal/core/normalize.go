package core

import "strings"

// Country calling codes recognized by the strict rule.
const (
	PrefixEgypt = "20"
	PrefixSaudi = "966"
)

// specialChars is the character class stripped from phone numbers.
const specialChars = "!@+#$%-^&*() "

// stripper removes every character in specialChars.
var stripper = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(specialChars))
	for _, c := range specialChars {
		pairs = append(pairs, string(c), "")
	}
	return strings.NewReplacer(pairs...)
}()

// NormalizeFunc rewrites a raw phone string into its cleaned form.
type NormalizeFunc func(string) string

// NormalizePhone applies the full cleanup used by the strict rule:
//
//  1. trim surrounding whitespace
//  2. drop one leading "00" or "0" dialing prefix
//  3. strip the special character class (see StripSpecial)
//  4. trim again
//  5. infer a missing country code from the first digit
//
// Prefix inference runs last so a number that already carries 20 or 966
// is never prefixed twice.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	s = StripDialPrefix(s)
	s = StripSpecial(s)
	s = strings.TrimSpace(s)
	return InferCountryPrefix(s)
}

// StripDialPrefix removes a single leading "00" or, failing that, a single
// leading "0".
func StripDialPrefix(s string) string {
	if strings.HasPrefix(s, "00") {
		return s[2:]
	}
	return strings.TrimPrefix(s, "0")
}

// StripSpecial removes every occurrence of ! @ + # $ % - ^ & * ( ) and space.
func StripSpecial(s string) string {
	return stripper.Replace(s)
}

// InferCountryPrefix prepends 20 to numbers starting with '1' (Egyptian
// subscriber numbers) and 966 to numbers starting with '5' (Saudi subscriber
// numbers). Anything else is returned unchanged.
func InferCountryPrefix(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '1':
		return PrefixEgypt + s
	case '5':
		return PrefixSaudi + s
	default:
		return s
	}
}

// Normalize returns a copy of r with its phone rewritten by fn.
func Normalize(r Record, fn NormalizeFunc) Record {
	r.Phone = fn(r.Phone)
	return r
}
