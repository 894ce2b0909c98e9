package motion

import "testing"

func TestSequenceCompletionTiming(t *testing.T) {
	s := New(WithLogger(&testLogger{}))
	target := Single(testSprite("a"))

	first := &fakeEffect{}
	second := &fakeEffect{}
	seq, err := s.Apply(Sequence(
		NewAction(first, Frames(3)),
		NewAction(second, Frames(2)),
	), target)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	// the first child starts immediately; the second starts on the tick the
	// first completes and receives its first update the tick after
	for tick := 1; tick <= 4; tick++ {
		s.Update(0.1)
		if seq.Done() {
			t.Fatalf("sequence done early at tick %d", tick)
		}
	}
	s.Update(0.1)
	if !seq.Done() {
		t.Fatal("sequence of 3+2 frame children should finish on tick 5")
	}
	if first.steps != 3 || second.steps != 2 {
		t.Fatalf("expected child step counts 3/2, got %d/%d", first.steps, second.steps)
	}
	if first.removes != 1 || second.removes != 1 {
		t.Fatalf("expected each child removed once, got %d/%d", first.removes, second.removes)
	}
}

func TestSequenceEmptyCompletesImmediately(t *testing.T) {
	s := New(WithLogger(&testLogger{}))
	seq, err := s.Apply(Sequence(), Single(testSprite("a")))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	s.Update(0.1)
	if !seq.Done() {
		t.Fatal("empty sequence should complete on its first tick")
	}
}

func TestSequenceStopInterruptsOnlyCurrentChild(t *testing.T) {
	s := New(WithLogger(&testLogger{}))
	target := Single(testSprite("a"))

	first := &fakeEffect{}
	second := &fakeEffect{}
	seq, err := s.Apply(Sequence(
		NewAction(first, Frames(1)),
		NewAction(second, Forever()),
	), target)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	s.Update(0.1) // first child completes, second starts
	s.Update(0.1)
	seq.Stop()

	if first.removes != 1 {
		t.Fatalf("finished child should be removed exactly once, got %d", first.removes)
	}
	if second.removes != 1 {
		t.Fatalf("running child should be removed on stop, got %d", second.removes)
	}
}

func TestParallelWaitsForSlowestChild(t *testing.T) {
	s := New(WithLogger(&testLogger{}))
	target := Single(testSprite("a"))

	fast := &fakeEffect{}
	slow := &fakeEffect{}
	par, err := s.Apply(Parallel(
		NewAction(fast, Frames(2)),
		NewAction(slow, Frames(5)),
	), target)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	for tick := 1; tick <= 4; tick++ {
		s.Update(0.1)
		if par.Done() {
			t.Fatalf("parallel done early at tick %d", tick)
		}
	}
	s.Update(0.1)
	if !par.Done() {
		t.Fatal("parallel should finish with its slowest child on tick 5")
	}
	if fast.steps != 2 {
		t.Fatalf("finished child kept stepping, steps=%d", fast.steps)
	}
	if slow.steps != 5 {
		t.Fatalf("expected slow child to step 5 times, got %d", slow.steps)
	}
}

func TestRepeatNeverCompletes(t *testing.T) {
	s := New(WithLogger(&testLogger{}))
	target := Single(testSprite("a"))

	template := &fakeEffect{}
	rep, err := s.Apply(Repeat(NewAction(template, Frames(2))), target)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	for tick := 0; tick < 1000; tick++ {
		s.Update(0.1)
		if rep.Done() {
			t.Fatalf("repeat completed at tick %d", tick+1)
		}
	}
	// the template itself is never started, only its clones
	if template.applies != 0 {
		t.Fatalf("template effect was started directly, applies=%d", template.applies)
	}

	rep.Stop()
	if !rep.Done() {
		t.Fatal("stop should finish a repeat")
	}
}

func TestRepeatRestartsCompletedIteration(t *testing.T) {
	s := New(WithLogger(&testLogger{}))
	sprite := testSprite("a")
	target := Single(sprite)

	// each iteration steps twice then respawns; across 6 ticks we expect the
	// third clone to be mid-flight
	rep, err := s.Apply(Repeat(NewAction(&fakeEffect{}, Frames(2))), target)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	for tick := 0; tick < 6; tick++ {
		s.Update(0.1)
	}
	if rep.Done() {
		t.Fatal("repeat must not complete")
	}
}

func TestCompositeCloneIsDeep(t *testing.T) {
	s := New(WithLogger(&testLogger{}))

	first := &fakeEffect{}
	seq := Sequence(
		NewAction(first, Frames(2)),
		NewAction(&fakeEffect{}, Frames(2)),
	)
	clone := seq.Clone()

	if _, err := s.Apply(seq, Single(testSprite("a"))); err != nil {
		t.Fatalf("apply original: %v", err)
	}
	for tick := 0; tick < 3; tick++ {
		s.Update(0.1)
	}

	// original is past its first child; the clone starts from the beginning
	if _, err := s.Apply(clone, Single(testSprite("b"))); err != nil {
		t.Fatalf("apply clone: %v", err)
	}
	s.Update(0.1)
	if !seq.Done() {
		t.Fatal("original should finish on tick 4")
	}
	if clone.Done() {
		t.Fatal("clone must not inherit the original's progress")
	}
	for tick := 0; tick < 3; tick++ {
		s.Update(0.1)
	}
	if !clone.Done() {
		t.Fatal("clone should finish after its own 4 ticks")
	}
}

func TestCompositePausePropagates(t *testing.T) {
	s := New(WithLogger(&testLogger{}))
	target := Single(testSprite("a"))

	child := &fakeEffect{}
	par, err := s.Apply(Parallel(NewAction(child, Forever())), target)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	s.Update(0.1)
	par.Pause()
	s.Update(0.1)
	s.Update(0.1)
	if child.steps != 1 {
		t.Fatalf("paused composite stepped its child, steps=%d", child.steps)
	}

	par.Resume()
	s.Update(0.1)
	if child.steps != 2 {
		t.Fatalf("resumed composite did not step its child, steps=%d", child.steps)
	}
}

func TestCompositeAttrsAggregate(t *testing.T) {
	seq := Sequence(
		NewAction(&fakeEffect{attrs: AttrPosition}, Forever()),
		NewAction(&fakeEffect{attrs: AttrAlpha}, Forever()),
	)
	want := AttrPosition | AttrAlpha
	if seq.Attrs() != want {
		t.Fatalf("expected aggregated attrs %v, got %v", want, seq.Attrs())
	}
}
