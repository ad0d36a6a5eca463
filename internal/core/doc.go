// Package core provides the business logic for cleaning contact-record CSVs.
//
// # Pipeline
//
// A run is a single pass over the input with four stages:
//
//	RecordReader → Rule.Normalize → Rule.Check → RecordWriter
//
// Records are independent. Each one is decoded, normalized, validated and
// either written or rejected before the next is read, so memory use is
// constant per row regardless of file size. See [Pipeline.Run].
//
// # Rules
//
// [RuleStrict] is the canonical rule: it trims the phone, drops one leading
// "00" or "0", strips ! @ + # $ % - ^ & * ( ) and spaces, then prepends 20
// or 966 when the number starts with 1 or 5. The result must match
// ^((20)|(966))[0-9]{9,11}$.
//
//	"+2(0111)6613061" → "201116613061"  accepted
//	"00201116613061"  → "201116613061"  accepted
//	"1116613061"      → "201116613061"  accepted
//	"540029129"       → "966540029129"  accepted
//	"1232131"         → "201232131"     rejected (7 subscriber digits)
//
// [RuleLegacy] keeps the older behavior (strip only, 11-14 digits) for
// callers that need byte-for-byte parity with earlier output.
//
// # Errors
//
// Malformed rows stop the run with a [*DecodeError] carrying the line
// number. File failures surface as [*IOError]. Rejections are not errors:
// they are counted in [Result] and optionally sent to a [RejectWriter].
// [MapError] turns any of these into a coded [UserMessage].
package core
