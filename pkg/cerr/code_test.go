package cerr

import (
	"net/http"
	"testing"
)

func TestCodeStringRoundTrip(t *testing.T) {
	for code, name := range codeNames {
		if got := code.String(); got != name {
			t.Errorf("Code(%d).String() = %q, want %q", code, got, name)
		}
		if got := CodeFromString(name); got != code {
			t.Errorf("CodeFromString(%q) = %v, want %v", name, got, code)
		}
	}
	if got := CodeFromString("no_such_code"); got != Unknown {
		t.Errorf("CodeFromString on unknown name = %v, want Unknown", got)
	}
}

func TestCodeHTTPMapping(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{InvalidArgument, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Aborted, http.StatusConflict},
		{Unavailable, http.StatusServiceUnavailable},
		{Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPCode(); got != tt.status {
			t.Errorf("%v.HTTPCode() = %d, want %d", tt.code, got, tt.status)
		}
		if got := CodeFromHTTPStatus(tt.status); got.HTTPCode() != tt.status {
			t.Errorf("CodeFromHTTPStatus(%d) = %v, does not map back", tt.status, got)
		}
	}
}
