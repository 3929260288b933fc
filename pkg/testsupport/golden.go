// Package testsupport holds fixture and golden file helpers shared by tests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateEnv names the variable that rewrites goldens instead of comparing.
const UpdateEnv = "UPDATE_GOLDENS"

// MustReadFixture returns the contents of path or fails the test.
func MustReadFixture(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// MustReadFixtureString is MustReadFixture as a string.
func MustReadFixtureString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadFixture(t, path))
}

// Golden compares got with the golden file at path. With UPDATE_GOLDENS set
// the file is rewritten instead.
func Golden(t *testing.T, path string, got []byte) {
	t.Helper()
	if os.Getenv(UpdateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(path, got, 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	want := MustReadFixture(t, path)
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}

// GoldenJSON marshals value with two space indentation and a trailing newline,
// then compares it like Golden.
func GoldenJSON(t *testing.T, path string, value any) {
	t.Helper()
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	Golden(t, path, append(payload, '\n'))
}
