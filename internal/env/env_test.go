package env

import (
	"testing"
	"time"
)

func TestGetBool(t *testing.T) {
	t.Setenv("ENV_TEST_BOOL", "true")
	if !GetBool("ENV_TEST_BOOL", false) {
		t.Fatalf("expected true for set variable")
	}

	t.Setenv("ENV_TEST_BOOL", "not-a-bool")
	if GetBool("ENV_TEST_BOOL", false) {
		t.Fatalf("expected fallback for unparsable value")
	}

	if !GetBool("ENV_TEST_BOOL_MISSING", true) {
		t.Fatalf("expected fallback for missing variable")
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("ENV_TEST_DURATION", "90s")
	if got := GetDuration("ENV_TEST_DURATION", time.Minute); got != 90*time.Second {
		t.Fatalf("duration=%s want=90s", got)
	}

	t.Setenv("ENV_TEST_DURATION", "soon")
	if got := GetDuration("ENV_TEST_DURATION", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for unparsable value, got %s", got)
	}

	if got := GetDuration("ENV_TEST_DURATION_MISSING", 15*time.Second); got != 15*time.Second {
		t.Fatalf("expected fallback for missing variable, got %s", got)
	}
}
