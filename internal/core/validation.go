package core

// validation.go defines the versioned phone rules.
//
// A Rule pairs a normalizer with the pattern the normalized value must match.
// Two versions exist:
//
//   - strict: full cleanup with country-code inference, then
//     ^((20)|(966))[0-9]{9,11}$
//   - legacy: character-class strip only, then ^[0-9]{11,14}$
//
// strict is the default. legacy reproduces older output exactly and accepts
// numbers strict rejects (e.g. a bare 11-digit number with no known prefix).

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule names.
const (
	RuleStrictName = "strict"
	RuleLegacyName = "legacy"
)

// Compiled once; shared by every record.
var (
	strictPattern = regexp.MustCompile(`^((20)|(966))[0-9]{9,11}$`)
	legacyPattern = regexp.MustCompile(`^[0-9]{11,14}$`)
	digitsPattern = regexp.MustCompile(`^[0-9]*$`)
)

// Rule is a named normalization and validation policy.
type Rule struct {
	Name      string
	Normalize NormalizeFunc
	Pattern   *regexp.Regexp
}

// RuleStrict is the canonical, prefix-aware rule.
var RuleStrict = Rule{
	Name:      RuleStrictName,
	Normalize: NormalizePhone,
	Pattern:   strictPattern,
}

// RuleLegacy is the loose 11-14 digit rule with no prefix handling.
var RuleLegacy = Rule{
	Name:      RuleLegacyName,
	Normalize: StripSpecial,
	Pattern:   legacyPattern,
}

// RuleNames lists the selectable rules.
var RuleNames = []string{RuleStrictName, RuleLegacyName}

// RuleByName returns the rule with the given name (case-insensitive).
// An empty name selects RuleStrict.
func RuleByName(name string) (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RuleStrictName:
		return RuleStrict, nil
	case RuleLegacyName:
		return RuleLegacy, nil
	default:
		return Rule{}, fmt.Errorf("unknown rule %q (want one of: %s)", name, strings.Join(RuleNames, ", "))
	}
}

// ValidationError explains why a normalized phone was rejected.
type ValidationError struct {
	Field   string // Column name
	Value   string // The rejected value
	Message string // Human-readable message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Accept reports whether the normalized record passes the rule.
func (r Rule) Accept(rec Record) bool {
	return r.Pattern.MatchString(rec.Phone)
}

// Check returns nil if rec passes, or a ValidationError describing the failure.
func (r Rule) Check(rec Record) error {
	if r.Accept(rec) {
		return nil
	}
	return ValidationError{
		Field:   ColumnPhone,
		Value:   rec.Phone,
		Message: r.explain(rec.Phone),
	}
}

// Apply normalizes rec and validates it in one step.
func (r Rule) Apply(rec Record) (Record, error) {
	out := Normalize(rec, r.Normalize)
	return out, r.Check(out)
}

// explain picks the most specific reason a value fails the rule.
func (r Rule) explain(phone string) string {
	switch {
	case phone == "":
		return "empty phone number"
	case !digitsPattern.MatchString(phone):
		return fmt.Sprintf("non-digit characters in %q", phone)
	case r.Name == RuleStrictName && !strings.HasPrefix(phone, PrefixEgypt) && !strings.HasPrefix(phone, PrefixSaudi):
		return fmt.Sprintf("unsupported country code in %q", phone)
	default:
		return fmt.Sprintf("%q has wrong length for rule %s (%s)", phone, r.Name, r.Pattern.String())
	}
}
