package observable

import (
	"reflect"
	"testing"
)

func TestGetReflectsSequentialOps(t *testing.T) {
	v := New(1)
	v.Set(5)
	v.Update(func(n int) int { return n * 2 })
	v.Update(func(n int) int { return n + 3 })
	if got := v.Get(); got != 13 {
		t.Fatalf("got %d, want 13", got)
	}
}

func TestObserveReplaysCurrentValueSynchronously(t *testing.T) {
	v := New("hello")
	var got []string
	v.Observe(func(s string) { got = append(got, s) })
	if !reflect.DeepEqual(got, []string{"hello"}) {
		t.Fatalf("replay: got %v", got)
	}
}

func TestObserversSeeEveryChangeInOrder(t *testing.T) {
	v := New(0)
	var a, b []int
	v.Observe(func(n int) { a = append(a, n) })
	v.Observe(func(n int) { b = append(b, n) })
	v.Set(1)
	v.Set(2)
	v.Update(func(n int) int { return n + 1 })

	want := []int{0, 1, 2, 3}
	if !reflect.DeepEqual(a, want) {
		t.Fatalf("first observer: got %v, want %v", a, want)
	}
	if !reflect.DeepEqual(b, want) {
		t.Fatalf("second observer: got %v, want %v", b, want)
	}
}

func TestRegistrationOrderWithinOneChange(t *testing.T) {
	v := New(0)
	var order []string
	v.Observe(func(int) { order = append(order, "first") })
	v.Observe(func(int) { order = append(order, "second") })
	order = nil
	v.Set(1)
	if !reflect.DeepEqual(order, []string{"first", "second"}) {
		t.Fatalf("got %v", order)
	}
}

func TestNestedSetFromObserver(t *testing.T) {
	v := New(0)
	var first, second []int
	v.Observe(func(n int) {
		first = append(first, n)
		if n == 1 {
			v.Set(2) // must be queued, not delivered re-entrantly
		}
	})
	v.Observe(func(n int) { second = append(second, n) })
	v.Set(1)

	want := []int{0, 1, 2}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("first observer: got %v, want %v", first, want)
	}
	if !reflect.DeepEqual(second, want) {
		t.Fatalf("second observer: got %v, want %v", second, want)
	}
	if v.Get() != 2 {
		t.Fatalf("final value %d", v.Get())
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	v := New(0)
	var got []int
	cancel := v.Observe(func(n int) { got = append(got, n) })
	v.Set(1)
	cancel()
	v.Set(2)
	if !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("got %v", got)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	v := New(0)
	cancel := v.Observe(func(int) {})
	cancel()
	cancel()
	v.Set(1) // must not panic
}

func TestPeekMatchesGet(t *testing.T) {
	v := New(42)
	if v.Peek() != v.Get() {
		t.Fatal("peek and get disagree")
	}
}

func TestDeriveProjectsAndTracksBase(t *testing.T) {
	token := New("")
	authed := Derive[string, bool](token, func(s string) bool { return s != "" })

	if authed.Get() {
		t.Fatal("expected false for empty token")
	}

	var seen []bool
	authed.Observe(func(b bool) { seen = append(seen, b) })

	token.Set("tok-123")
	token.Set("")

	want := []bool{false, true, false}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("got %v, want %v", seen, want)
	}
}

func TestSynchronousReadViaSubscribeUnsubscribe(t *testing.T) {
	// The subscribe-capture-unsubscribe idiom must observe the value at call
	// time with no asynchronous hop.
	v := New("current")
	var captured string
	cancel := v.Observe(func(s string) { captured = s })
	cancel()
	if captured != "current" {
		t.Fatalf("captured %q", captured)
	}
}
