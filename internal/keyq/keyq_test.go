package keyq

import "testing"

func TestPushPopOrder(t *testing.T) {
	q := New()
	q.Push("a")
	q.Push("b")
	q.Push("a") // duplicate: keeps original position
	q.Push("c")

	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}
	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.PopOldest()
		if !ok || got != want {
			t.Fatalf("PopOldest = %q ok=%v, want %q", got, ok, want)
		}
	}
	if _, ok := q.PopOldest(); ok {
		t.Fatalf("PopOldest on empty queue should report false")
	}
}

func TestRemovePreservesOrder(t *testing.T) {
	q := New()
	for _, k := range []string{"a", "b", "c"} {
		q.Push(k)
	}
	q.Remove("b")
	q.Remove("missing") // no-op

	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}
	for _, want := range []string{"a", "c"} {
		if got, _ := q.PopOldest(); got != want {
			t.Fatalf("PopOldest = %q, want %q", got, want)
		}
	}
}

func TestRemovedKeyCanBePushedAgain(t *testing.T) {
	q := New()
	q.Push("a")
	q.Push("b")
	q.Remove("a")
	q.Push("a") // re-inserted at the back

	if got, _ := q.PopOldest(); got != "b" {
		t.Fatalf("PopOldest = %q, want b", got)
	}
	if got, _ := q.PopOldest(); got != "a" {
		t.Fatalf("PopOldest = %q, want a", got)
	}
}

func TestReset(t *testing.T) {
	q := New()
	q.Push("a")
	q.Push("b")
	q.Reset()

	if q.Len() != 0 {
		t.Fatalf("Len after reset = %d, want 0", q.Len())
	}
	q.Push("a")
	if got, ok := q.PopOldest(); !ok || got != "a" {
		t.Fatalf("queue unusable after reset: %q %v", got, ok)
	}
}
