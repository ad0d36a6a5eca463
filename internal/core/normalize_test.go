package core

import (
	"strings"
	"testing"
)

func TestStripSpecial(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "digits untouched", in: "201116613061", want: "201116613061"},
		{name: "plus and parens", in: "+2(0111)6613061", want: "201116613061"},
		{name: "dashes", in: "+2011-1661-3061", want: "201116613061"},
		{name: "interior spaces", in: "20 111 661 3061", want: "201116613061"},
		{name: "every special char", in: "!@+#$%-^&*() 1", want: "1"},
		{name: "letters kept", in: "hah2011166130", want: "hah2011166130"},
		{name: "tabs kept", in: "\t20\t", want: "\t20\t"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripSpecial(tt.in); got != tt.want {
				t.Fatalf("StripSpecial(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripSpecial_Idempotent(t *testing.T) {
	inputs := []string{
		"", "0", "00", "+", "++20", "+2(0111)6613061", "!@+#$%-^&*() ",
		"20111bad", " 0020 111-661 3061 ", "((((1))))", "a b c",
		strings.Repeat("-+", 50) + "9",
	}
	for _, in := range inputs {
		once := StripSpecial(in)
		twice := StripSpecial(once)
		if once != twice {
			t.Errorf("StripSpecial not idempotent for %q: %q then %q", in, once, twice)
		}
		if strings.ContainsAny(once, specialChars) {
			t.Errorf("StripSpecial(%q) = %q still contains special characters", in, once)
		}
	}
}

func TestStripDialPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"00201116613061", "201116613061"},
		{"01116613061", "1116613061"},
		{"000123", "0123"},
		{"0", ""},
		{"00", ""},
		{"201116613061", "201116613061"},
		{"+00201116613061", "+00201116613061"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripDialPrefix(tt.in); got != tt.want {
			t.Errorf("StripDialPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInferCountryPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1116613061", "201116613061"},
		{"540029129", "966540029129"},
		{"201116613061", "201116613061"},
		{"966540029129", "966540029129"},
		{"7123", "7123"},
		{"1", "201"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := InferCountryPrefix(tt.in); got != tt.want {
			t.Errorf("InferCountryPrefix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInferCountryPrefix_Concatenates(t *testing.T) {
	for _, s := range []string{"1", "12", "1116613061", "1abc", "19999999999999"} {
		got := InferCountryPrefix(s)
		if got != PrefixEgypt+s {
			t.Errorf("InferCountryPrefix(%q) = %q, want %q", s, got, PrefixEgypt+s)
		}
	}
	for _, s := range []string{"5", "540029129", "5x"} {
		got := InferCountryPrefix(s)
		if got != PrefixSaudi+s {
			t.Errorf("InferCountryPrefix(%q) = %q, want %q", s, got, PrefixSaudi+s)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already normalized", in: "201116613061", want: "201116613061"},
		{name: "formatted with plus", in: "+2(0111)6613061", want: "201116613061"},
		{name: "international 00 prefix", in: "00201116613061", want: "201116613061"},
		{name: "domestic egyptian", in: "01116613061", want: "201116613061"},
		{name: "local egyptian", in: "1116613061", want: "201116613061"},
		{name: "local saudi", in: "540029129", want: "966540029129"},
		{name: "domestic saudi", in: "0540029129", want: "966540029129"},
		{name: "saudi with plus", in: "+966 54 002 9129", want: "966540029129"},
		{name: "surrounding whitespace", in: "  \t00201116613061\n", want: "201116613061"},
		{name: "short local", in: "1232131", want: "201232131"},
		{name: "letters kept", in: "20111bad", want: "20111bad"},
		{name: "only zeros", in: "00", want: ""},
		{name: "plus before zeros not a dial prefix", in: "+00201116613061", want: "00201116613061"},
		{name: "no double prefix", in: "+20 111 661 3061", want: "201116613061"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.in); got != tt.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_OnlyPhoneChanges(t *testing.T) {
	in := Record{Phone: " 0540029129 ", Name: "  Saad  ", Count: 42}
	out := Normalize(in, NormalizePhone)

	if out.Phone != "966540029129" {
		t.Errorf("Phone = %q, want %q", out.Phone, "966540029129")
	}
	if out.Name != in.Name || out.Count != in.Count {
		t.Errorf("Normalize changed other fields: %+v -> %+v", in, out)
	}
	if in.Phone != " 0540029129 " {
		t.Errorf("input record mutated: %+v", in)
	}
}
