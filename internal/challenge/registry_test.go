package challenge

import (
	"testing"
	"time"
)

func TestRegistry_BuiltinCatalogue(t *testing.T) {
	r := NewRegistry()
	want := []string{
		CodeDecafSwap,
		CodeHalfReduction,
		CodeRolling24h,
		CodeThreeDayAdherence,
		CodeFirstAttendance,
		CodeTenDayAttendance,
	}
	got := r.Codes()
	if len(got) != len(want) {
		t.Fatalf("Codes() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Codes()[%d] = %q; want %q", i, got[i], want[i])
		}
	}
	for _, code := range want {
		if _, ok := r.Lookup(code); !ok {
			t.Fatalf("Lookup(%q) missing", code)
		}
	}
	if _, ok := r.Lookup("nope"); ok {
		t.Fatalf("Lookup of unknown code succeeded")
	}
}

func TestRegistry_RegisterReplacesKeepingOrder(t *testing.T) {
	r := NewRegistry()
	before := r.Codes()

	r.Register(attendanceRule{code: CodeTenDayAttendance, target: 3})
	after := r.Codes()
	if len(after) != len(before) {
		t.Fatalf("re-register changed catalogue size: %d -> %d", len(before), len(after))
	}

	s := Snapshot{Now: time.Now(), DailyLimitMg: 400, DaysWithIntake: 3}
	if got := r.Evaluate(CodeTenDayAttendance, s); got.Status != StatusClaimable {
		t.Fatalf("replacement rule not in effect: %+v", got)
	}
}

func TestRegistry_EvaluateUnknownCode(t *testing.T) {
	r := NewRegistry()
	got := r.Evaluate("mystery", Snapshot{Now: time.Now(), DailyLimitMg: 400})
	if got != (Result{StatusNotStarted, 0}) {
		t.Fatalf("unknown code: got %+v; want not started", got)
	}
}
