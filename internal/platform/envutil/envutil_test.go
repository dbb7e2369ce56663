package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("RC_STR", "  value ")
	t.Setenv("RC_INT", "42")
	t.Setenv("RC_BAD_INT", "forty")
	t.Setenv("RC_BOOL", "off")
	t.Setenv("RC_DUR", "90")
	t.Setenv("RC_DUR2", "2m")
	t.Setenv("RC_LIST", "a, b,,c ")

	if got := String("RC_STR", "x"); got != "value" {
		t.Fatalf("String: %q", got)
	}
	if got := String("RC_MISSING", "x"); got != "x" {
		t.Fatalf("String default: %q", got)
	}
	if got := Int("RC_INT", 1); got != 42 {
		t.Fatalf("Int: %d", got)
	}
	if got := Int("RC_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: %d", got)
	}
	if got := Bool("RC_BOOL", true); got {
		t.Fatalf("Bool: expected false")
	}
	if got := Bool("RC_MISSING", true); !got {
		t.Fatalf("Bool default: expected true")
	}
	if got := Duration("RC_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("Duration seconds: %v", got)
	}
	if got := Duration("RC_DUR2", time.Second); got != 2*time.Minute {
		t.Fatalf("Duration string: %v", got)
	}
	got := List("RC_LIST", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("List: %v", got)
	}
}
