package motion

import "testing"

func TestConditionFuncSemantics(t *testing.T) {
	cases := []struct {
		name     string
		result   any
		wantOK   bool
		wantData any
	}{
		{"nil keeps running", nil, false, nil},
		{"false keeps running", false, false, nil},
		{"true completes without data", true, true, nil},
		{"value completes with data", "payload", true, "payload"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cond := ConditionFunc(func() any { return tc.result })
			data, ok := cond.Check(0.1)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if data != tc.wantData {
				t.Fatalf("data = %v, want %v", data, tc.wantData)
			}
		})
	}
}

func TestForeverNeverSatisfied(t *testing.T) {
	cond := Forever()
	for i := 0; i < 100; i++ {
		if _, ok := cond.Check(1); ok {
			t.Fatal("Forever must never be satisfied")
		}
	}
}

func TestElapsedAccumulates(t *testing.T) {
	cond := Elapsed(1)
	for i := 0; i < 7; i++ {
		if _, ok := cond.Check(0.125); ok {
			t.Fatalf("satisfied early at step %d", i)
		}
	}
	if _, ok := cond.Check(0.125); !ok {
		t.Fatal("expected satisfied at 1s")
	}
}

func TestElapsedCloneAndReset(t *testing.T) {
	cond := Elapsed(0.5)
	cond.Check(0.4)

	clone := cond.Clone()
	if _, ok := clone.Check(0.2); ok {
		t.Fatal("clone inherited accumulated time")
	}

	cond.Reset()
	if _, ok := cond.Check(0.2); ok {
		t.Fatal("reset did not clear accumulated time")
	}
}

func TestElapsedRejectsNegative(t *testing.T) {
	cond := Elapsed(-1)
	v, ok := cond.(interface{ Validate() error })
	if !ok {
		t.Fatal("expected Elapsed to be validatable")
	}
	if v.Validate() == nil {
		t.Fatal("expected validation error for negative duration")
	}
}

func TestFramesCounts(t *testing.T) {
	cond := Frames(3)
	for i := 0; i < 2; i++ {
		if _, ok := cond.Check(0); ok {
			t.Fatalf("satisfied early at check %d", i)
		}
	}
	if _, ok := cond.Check(0); !ok {
		t.Fatal("expected satisfied on third check")
	}

	clone := cond.Clone()
	if _, ok := clone.Check(0); ok {
		t.Fatal("clone inherited the frame count")
	}
}

func TestFramesRejectsNegative(t *testing.T) {
	cond := Frames(-1)
	v, ok := cond.(interface{ Validate() error })
	if !ok {
		t.Fatal("expected Frames to be validatable")
	}
	if v.Validate() == nil {
		t.Fatal("expected validation error for negative count")
	}
}
