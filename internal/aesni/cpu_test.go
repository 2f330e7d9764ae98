package aesni

import (
	"testing"
)

// HasHardwareSupport must be stable across calls and goroutines
func TestHasHardwareSupportIdempotent(t *testing.T) {
	want := HasHardwareSupport()
	done := make(chan bool)
	for i := 0; i < 8; i++ {
		go func() {
			done <- HasHardwareSupport()
		}()
	}
	for i := 0; i < 8; i++ {
		if have := <-done; have != want {
			t.Errorf("want=%v have=%v", want, have)
		}
	}
	if !haveAsm && want {
		t.Error("reports hardware support in a build without assembly")
	}
}
