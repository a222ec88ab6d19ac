package reactive

import "testing"

func TestSignalSetNotifiesEffect(t *testing.T) {
	s := NewSignal(1)
	runs := 0
	var last int
	CreateEffect(func() {
		runs++
		last = s.Get()
	})
	if runs != 1 || last != 1 {
		t.Fatalf("expected one initial run with value 1, got runs=%d last=%d", runs, last)
	}

	s.Set(2)
	if runs != 2 || last != 2 {
		t.Fatalf("expected effect to re-run with value 2, got runs=%d last=%d", runs, last)
	}
}

func TestSignalSetSameValueSkipsNotify(t *testing.T) {
	s := NewSignal("a")
	runs := 0
	CreateEffect(func() {
		runs++
		s.Get()
	})
	s.Set("a")
	if runs != 1 {
		t.Errorf("expected no re-run for an equal value, got runs=%d", runs)
	}
}

func TestComputedRecomputesOnDependencyChange(t *testing.T) {
	s := NewSignal(2)
	calls := 0
	c := NewComputed(func() int {
		calls++
		return s.Get() * 10
	})

	if got := c.Get(); got != 20 || calls != 1 {
		t.Fatalf("got %d (calls=%d), want 20 (calls=1)", got, calls)
	}
	if got := c.Get(); got != 20 || calls != 1 {
		t.Fatalf("expected memoized read, got %d (calls=%d)", got, calls)
	}

	s.Set(3)
	if got := c.Get(); got != 30 || calls != 2 {
		t.Fatalf("got %d (calls=%d), want 30 (calls=2)", got, calls)
	}
}

func TestBatchCoalescesMultipleSets(t *testing.T) {
	a := NewSignal(1)
	b := NewSignal(1)
	runs := 0
	CreateEffect(func() {
		runs++
		a.Get()
		b.Get()
	})

	Batch(func() {
		a.Set(2)
		b.Set(2)
	})

	if runs != 2 {
		t.Errorf("expected batched updates to trigger exactly one re-run, got runs=%d", runs)
	}
}

func TestEffectDisposeStopsReruns(t *testing.T) {
	s := NewSignal(1)
	runs := 0
	e := CreateEffect(func() {
		runs++
		s.Get()
	})
	e.Dispose()
	s.Set(2)
	if runs != 1 {
		t.Errorf("expected disposed effect not to re-run, got runs=%d", runs)
	}
}
