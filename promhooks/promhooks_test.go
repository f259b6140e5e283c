package promhooks

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/unkn0wn-root/preloadcache"
)

func TestCountersTrackEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := New(reg, "test")

	h.LoadCompleted("k1", 15*time.Millisecond)
	h.LoadCompleted("k2", 20*time.Millisecond)
	h.LoadFailed("k3", preloadcache.ErrTimeout)
	h.LoadFailed("k4", preloadcache.ErrCancelled)
	h.LoadFailed("k5", &preloadcache.AssemblyError{Key: "k5", Err: errors.New("boom")})
	h.DuplicateSuppressed("k1")
	h.BatchTruncated(5, 3)
	h.Evicted("k0")
	h.StaleLoadDiscarded("k6")

	if got := testutil.ToFloat64(h.completed); got != 2 {
		t.Fatalf("completed = %v, want 2", got)
	}
	for reason, want := range map[string]float64{
		"timeout":   1,
		"cancelled": 1,
		"assembly":  1,
	} {
		if got := testutil.ToFloat64(h.failed.WithLabelValues(reason)); got != want {
			t.Fatalf("failed{reason=%q} = %v, want %v", reason, got, want)
		}
	}
	if got := testutil.ToFloat64(h.duplicates); got != 1 {
		t.Fatalf("duplicates = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.truncated); got != 1 {
		t.Fatalf("truncated = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.dropped); got != 2 {
		t.Fatalf("dropped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.evicted); got != 1 {
		t.Fatalf("evicted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.stale); got != 1 {
		t.Fatalf("stale = %v, want 1", got)
	}
}

func TestReasonLabel(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"timeout":   {preloadcache.ErrTimeout, "timeout"},
		"cancelled": {preloadcache.ErrCancelled, "cancelled"},
		"assembly":  {&preloadcache.AssemblyError{Key: "k", Err: errors.New("x")}, "assembly"},
		"other":     {errors.New("weird"), "other"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := reasonLabel(tc.err); got != tc.want {
				t.Fatalf("reasonLabel = %q, want %q", got, tc.want)
			}
		})
	}
}
