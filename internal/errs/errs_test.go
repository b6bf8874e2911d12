package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

var errBase = errors.New("base")

func TestWrapKeepsChain(t *testing.T) {
	t.Parallel()

	if Wrap(nil, "noop") != nil {
		t.Fatal("Wrap(nil) != nil")
	}
	err := Wrapf(Wrap(errBase, "load vehicle"), "sweep %s", "expired")
	if !errors.Is(err, errBase) {
		t.Fatalf("errors.Is(%v, errBase) = false", err)
	}
	if got, want := err.Error(), "sweep expired: load vehicle: base"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestWithStackCapturesOnce(t *testing.T) {
	t.Parallel()

	first := WithStack(errBase)
	var se *StackError
	if !errors.As(first, &se) || len(se.Stack()) == 0 {
		t.Fatalf("WithStack() did not record a stack: %#v", first)
	}
	wrapped := Wrap(first, "outer")
	if again := WithStack(wrapped); again != wrapped {
		t.Fatalf("WithStack() re-captured an existing stack")
	}
}

func TestErrorChainStringsFollowsMultiWrap(t *testing.T) {
	t.Parallel()

	errKind := errors.New("invalid status")
	err := Wrap(fmt.Errorf("%w: %w: %q", errBase, errKind, "towed"), "register vehicle")

	got := ErrorChainStrings(err)
	want := []string{
		`register vehicle: base: invalid status: "towed"`,
		`base: invalid status: "towed"`,
		"base",
		"invalid status",
	}
	if len(got) != len(want) {
		t.Fatalf("ErrorChainStrings() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ErrorChainStrings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoggableGroup(t *testing.T) {
	t.Parallel()

	v := Loggable(WithStack(errBase)).LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("LogValue().Kind() = %v, want group", v.Kind())
	}
	keys := map[string]bool{}
	for _, a := range v.Group() {
		keys[a.Key] = true
	}
	for _, k := range []string{"message", "chain", "stack"} {
		if !keys[k] {
			t.Fatalf("LogValue() missing %q: %v", k, v)
		}
	}
	if got := Loggable(nil).LogValue(); len(got.Group()) != 0 {
		t.Fatalf("Loggable(nil) = %v, want empty group", got)
	}
}
