package core

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "missing input", err: &IOError{Op: "open", Path: "in.csv", Err: fs.ErrNotExist}, wantCode: "FILE001"},
		{name: "permission", err: &IOError{Op: "create", Path: "/out.csv", Err: fs.ErrPermission}, wantCode: "FILE002"},
		{name: "empty file", err: &DecodeError{Line: 1, Err: ErrMissingHeader}, wantCode: "FILE005"},
		{name: "missing column", err: &DecodeError{Line: 1, Err: fmt.Errorf("%w: count", ErrMissingColumn)}, wantCode: "ROW001"},
		{name: "field count", err: &DecodeError{Line: 3, Err: errors.New("wrong number of fields")}, wantCode: "ROW002"},
		{name: "invalid count", err: &DecodeError{Line: 3, Err: ErrInvalidCount}, wantCode: "ROW003"},
		{name: "bare quote", err: errors.New(`bare " in non-quoted-field`), wantCode: "ROW004"},
		{name: "cancelled", err: fmt.Errorf("run cancelled: %w", errors.New("context canceled")), wantCode: "RUN001"},
		{name: "unknown rule", err: errors.New(`unknown rule "x"`), wantCode: "RUN003"},
		{name: "server busy", err: errors.New("too many concurrent runs, try again later"), wantCode: "RUN004"},
		{name: "db refused", err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), wantCode: "DB001"},
		{name: "unknown error returns default", err: errors.New("something odd"), wantCode: "ERR000"},
		{name: "case insensitive", err: errors.New("NO SUCH FILE or directory"), wantCode: "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(&DecodeError{Line: 7, Err: ErrInvalidCount})
	if !strings.Contains(got, "(Code: ROW003)") {
		t.Errorf("FormatUserError = %q, want ROW003", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(&DecodeError{Line: 2, Err: ErrInvalidCount}) {
		t.Error("decode error should be user facing")
	}
	if IsUserFacing(errors.New("mystery")) {
		t.Error("unknown error should not be user facing")
	}
}

func TestDecodeError(t *testing.T) {
	err := fmt.Errorf("normalize: %w", &DecodeError{Line: 12, Err: ErrInvalidCount})

	if got := err.Error(); got != "normalize: line 12: invalid count" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrInvalidCount) {
		t.Error("errors.Is(err, ErrInvalidCount) = false")
	}
	if LineOf(err) != 12 {
		t.Errorf("LineOf = %d, want 12", LineOf(err))
	}
	if LineOf(errors.New("x")) != 0 {
		t.Error("LineOf of plain error should be 0")
	}
}

func TestIOError(t *testing.T) {
	err := &IOError{Op: "open", Path: "in.csv", Err: fs.ErrNotExist}
	if got := err.Error(); got != "open in.csv: file does not exist" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is(err, fs.ErrNotExist) = false")
	}
}
