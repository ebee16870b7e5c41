package httpcore_test

import (
	"errors"
	"testing"

	"github.com/firasghr/httpengine/httpcore"
)

func TestTransportError_Error_Message(t *testing.T) {
	err := httpcore.NewTransportFailure(7, "connection refused", nil)
	want := "transport failure (code 7): connection refused"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}

func TestMultiFailure_Error_Message(t *testing.T) {
	err := httpcore.NewMultiFailure(3, "pool exhausted", nil)
	want := "multi failure (code 3): pool exhausted"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := httpcore.NewTransportFailure(0, "init failure", cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}
