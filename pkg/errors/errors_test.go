package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	cause := errors.New("permission denied")
	tests := []struct {
		name    string
		err     *Error
		want    string
		message string
	}{
		{
			name:    "new",
			err:     New(ErrCodeInvalidArrow, "arrow %d out of range", 3),
			want:    "INVALID_ARROW: arrow 3 out of range",
			message: "arrow 3 out of range",
		},
		{
			name:    "wrap",
			err:     Wrap(ErrCodeIO, cause, "write %s", "map.json"),
			want:    "IO_ERROR: write map.json: permission denied",
			message: "write map.json: permission denied",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}

	wrapped := Wrap(ErrCodeIO, cause, "write")
	if !errors.Is(wrapped, cause) || errors.Unwrap(wrapped) != cause {
		t.Error("Wrap() does not expose its cause")
	}
}

func TestIsAndGetCode(t *testing.T) {
	doc := New(ErrCodeInvalidDocument, "bad json")
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", doc, ErrCodeInvalidDocument},
		{"fmt wrapped", fmt.Errorf("load: %w", doc), ErrCodeInvalidDocument},
		{"coded wrap", Wrap(ErrCodeNotFound, errors.New("gone"), "get"), ErrCodeNotFound},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeUnsupported) {
				t.Error("Is(UNSUPPORTED) = true")
			}
		})
	}
}

func TestUserMessagePlainError(t *testing.T) {
	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestIsLoadError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeInvalidDocument, "x"), true},
		{fmt.Errorf("open: %w", New(ErrCodeInvalidArrow, "x")), true},
		{New(ErrCodeFileNotFound, "x"), false},
		{New(ErrCodeIO, "x"), false},
		{errors.New("x"), false},
	}
	for _, tt := range tests {
		if got := IsLoadError(tt.err); got != tt.want {
			t.Errorf("IsLoadError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
