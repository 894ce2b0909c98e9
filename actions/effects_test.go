package actions

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"

	"github.com/goliatone/go-motion"
)

// bareEntity carries only the base Entity contract, no optional capabilities.
type bareEntity struct {
	pos, vel cp.Vector
}

func (e *bareEntity) Position() cp.Vector     { return e.pos }
func (e *bareEntity) SetPosition(p cp.Vector) { e.pos = p }
func (e *bareEntity) Velocity() cp.Vector     { return e.vel }
func (e *bareEntity) SetVelocity(v cp.Vector) { e.vel = v }
func (e *bareEntity) Size() cp.Vector         { return cp.Vector{X: 1, Y: 1} }

func TestRotateUntil(t *testing.T) {
	world := newWorld()
	s := newSpriteAt(0, 0)

	a, err := world.Apply(RotateUntil(math.Pi, motion.Elapsed(1)), motion.Single(s))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	for i := 0; i < 8; i++ {
		world.Update(0.125)
	}
	if !a.Done() {
		t.Fatal("expected completion after 1s")
	}
	if got := s.Angle(); math.Abs(got-math.Pi) > 1e-9 {
		t.Fatalf("expected angle pi, got %v", got)
	}
}

func TestRotateRequiresRotatable(t *testing.T) {
	world := newWorld()
	if _, err := world.Apply(RotateUntil(1, motion.Forever()), motion.Single(&bareEntity{})); err == nil {
		t.Fatal("expected capability error for non-rotatable entity")
	}
}

func TestFadeUntilClampsAtZero(t *testing.T) {
	world := newWorld()
	s := newSpriteAt(0, 0) // alpha starts at 1

	if _, err := world.Apply(FadeUntil(-2, motion.Elapsed(1)), motion.Single(s)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	for i := 0; i < 8; i++ {
		world.Update(0.125)
	}
	if got := s.Alpha(); got != 0 {
		t.Fatalf("expected alpha clamped to 0, got %v", got)
	}
}

func TestFadeRequiresFadeable(t *testing.T) {
	world := newWorld()
	if _, err := world.Apply(FadeUntil(-1, motion.Forever()), motion.Single(&bareEntity{})); err == nil {
		t.Fatal("expected capability error for non-fadeable entity")
	}
}

func TestScaleUntil(t *testing.T) {
	world := newWorld()
	s := newSpriteAt(0, 0)

	if _, err := world.Apply(ScaleUntil(2, motion.Elapsed(0.5)), motion.Single(s)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	for i := 0; i < 4; i++ {
		world.Update(0.125)
	}
	if got := s.Scale(); got != 2 {
		t.Fatalf("expected scale 2 after 0.5s at rate 2, got %v", got)
	}
}

func TestBlinkTogglesAndRestores(t *testing.T) {
	world := newWorld()
	s := newSpriteAt(0, 0)
	s.SetAlpha(0.75)

	a, err := world.Apply(Blink(0.25, motion.Elapsed(1)), motion.Single(s))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	world.Update(0.125)
	if s.Alpha() != 0.75 {
		t.Fatalf("blink toggled before the interval, alpha=%v", s.Alpha())
	}
	world.Update(0.125) // 0.25s: hide
	if s.Alpha() != 0 {
		t.Fatalf("expected hidden at the interval, alpha=%v", s.Alpha())
	}
	world.Update(0.125)
	world.Update(0.125) // 0.5s: show
	if s.Alpha() != 0.75 {
		t.Fatalf("expected original alpha restored on toggle, alpha=%v", s.Alpha())
	}

	for i := 0; i < 4; i++ {
		world.Update(0.125)
	}
	if !a.Done() {
		t.Fatal("expected completion after 1s")
	}
	if s.Alpha() != 0.75 {
		t.Fatalf("expected original alpha restored on completion, alpha=%v", s.Alpha())
	}
}

func TestBlinkRejectsNonPositiveInterval(t *testing.T) {
	world := newWorld()
	if _, err := world.Apply(Blink(0, motion.Forever()), motion.Single(newSpriteAt(0, 0))); err == nil {
		t.Fatal("expected apply error for zero interval")
	}
}

func TestBlinkRestoresOnForcedStop(t *testing.T) {
	world := newWorld()
	s := newSpriteAt(0, 0)
	s.SetAlpha(0.5)

	a, err := world.Apply(Blink(0.125, motion.Forever()), motion.Single(s))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	world.Update(0.125) // hidden
	if s.Alpha() != 0 {
		t.Fatalf("expected hidden, alpha=%v", s.Alpha())
	}

	a.Stop()
	if s.Alpha() != 0.5 {
		t.Fatalf("expected alpha restored on stop, alpha=%v", s.Alpha())
	}
}
