package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v9.9.9"
	got := String()
	if !strings.HasPrefix(got, "swu-companion v9.9.9 (") {
		t.Errorf("Unexpected version string %q", got)
	}
	if GetVersion() != "v9.9.9" {
		t.Errorf("Expected GetVersion v9.9.9, got %s", GetVersion())
	}
}
