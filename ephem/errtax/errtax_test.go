package errtax

import (
	"errors"
	"testing"
)

func TestCodeString(t *testing.T) {
	cases := []struct {
		c    Code
		want string
	}{
		{OK, "OK"},
		{InvalidConfig, "InvalidConfig"},
		{NoSegment, "NoSegment"},
		{Code(1000), "Unknown"},
	}
	for _, c := range cases {
		if got := c.c.String(); got != c.want {
			t.Errorf("Code(%d).String(): got %q, want %q", c.c, got, c.want)
		}
	}
}

func TestNewAndError(t *testing.T) {
	cause := errors.New("boom")
	err := New(KernelLoad, "kernel.bsp", cause)
	if err.Code != KernelLoad {
		t.Errorf("Code: got %v, want %v", err.Code, KernelLoad)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through to the wrapped cause")
	}
	msg := err.Error()
	if msg == "" {
		t.Error("Error() returned empty string")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(TimeConversion, "", cause)
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(nil) != OK {
		t.Error("CodeOf(nil) should be OK")
	}

	taxErr := New(EpochOutOfRange, "tdbJD", errors.New("out of range"))
	if CodeOf(taxErr) != EpochOutOfRange {
		t.Errorf("CodeOf(taxErr): got %v, want %v", CodeOf(taxErr), EpochOutOfRange)
	}

	plain := errors.New("not a taxonomy error")
	if CodeOf(plain) != Unknown {
		t.Errorf("CodeOf(plain): got %v, want Unknown", CodeOf(plain))
	}
}

func TestCodeOf_StringConcatenatedWrapIsUnknown(t *testing.T) {
	taxErr := New(NoConvergence, "", errors.New("did not converge"))
	wrapped := errors.New("wrapping: " + taxErr.Error())
	if CodeOf(wrapped) != Unknown {
		t.Error("a plain-string-wrapped error should not resolve to a Code")
	}
}
