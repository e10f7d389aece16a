package cerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeHTTPCode(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{InvalidArgument, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{AlreadyExists, http.StatusConflict},
		{PermissionDenied, http.StatusForbidden},
		{Unauthenticated, http.StatusUnauthorized},
		{Internal, http.StatusInternalServerError},
		{OK, http.StatusOK},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPCode(); got != tt.want {
			t.Errorf("%s.HTTPCode() = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestNewErrorStackCapture(t *testing.T) {
	if err := NewError(Internal, "boom", nil); err.Stack == "" {
		t.Error("Internal error should capture a stack trace")
	}
	if err := NewError(NotFound, "missing", nil); err.Stack != "" {
		t.Error("NotFound error should not capture a stack trace")
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	err := NewError(InvalidArgument, "bad input", inner)
	wrapped := fmt.Errorf("handler: %w", err)

	if !errors.Is(wrapped, inner) {
		t.Error("Expected errors.Is to reach the underlying error")
	}
	if !IsCode(wrapped, InvalidArgument) {
		t.Error("Expected IsCode to find InvalidArgument through wrapping")
	}
	if IsCode(wrapped, NotFound) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(inner, InvalidArgument) {
		t.Error("IsCode matched a plain error")
	}
}

func TestErrorString(t *testing.T) {
	err := NewError(PermissionDenied, "access denied", nil)
	if got := err.Error(); got != "[PermissionDenied] access denied" {
		t.Errorf("Unexpected error string: %s", got)
	}
	err = NewError(NotFound, "codebase not found", errors.New("no row"))
	if got := err.Error(); got != "[NotFound] codebase not found: no row" {
		t.Errorf("Unexpected error string: %s", got)
	}
}
