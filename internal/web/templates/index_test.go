package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestIndex(t *testing.T) {
	var buf bytes.Buffer
	page := IndexPage{Rules: []string{"strict", "legacy"}, DefaultRule: "legacy", MaxUploadSize: 32 << 20}

	if err := Index(page).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`action="/normalize"`,
		`<option value="strict">strict</option>`,
		`<option value="legacy" selected>legacy</option>`,
		"32.0 MiB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Index output missing %q", want)
		}
	}
}

func TestErrorAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer

	if err := ErrorAlert("<b>bad</b>", "", "ROW002").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "<b>bad</b>") {
		t.Errorf("ErrorAlert did not escape message: %s", out)
	}
	if !strings.Contains(out, "&lt;b&gt;bad&lt;/b&gt;") || !strings.Contains(out, "Code: ROW002") {
		t.Errorf("ErrorAlert output = %s", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{33554432, "32.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
