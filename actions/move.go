// Package actions provides the concrete effects shipped with go-motion:
// movement with boundary handling, rotation, fading, scaling, and blinking.
// Every constructor returns a ready-to-apply *motion.Action declaring its
// attribute conflict set.
package actions

import (
	"github.com/goliatone/go-errors"
	"github.com/jakecoffman/cp"

	"github.com/goliatone/go-motion"
	"github.com/goliatone/go-motion/boundary"
)

// VelocityProvider supplies a per-tick velocity for an entity. A returned
// error (or a panic) makes the action fall back to the entity's last known
// good velocity; it never aborts the tick.
type VelocityProvider func(e motion.Entity) (cp.Vector, error)

// MoveOption configures the movement family of actions.
type MoveOption func(*moveEffect)

// WithBounds constrains movement to the rectangle, in entity-edge
// coordinates.
func WithBounds(bb cp.BB) MoveOption {
	return func(e *moveEffect) {
		e.machineOpts = append(e.machineOpts, boundary.WithBounds(bb))
	}
}

// WithBehavior selects the boundary response policy.
func WithBehavior(b boundary.Behavior) MoveOption {
	return func(e *moveEffect) {
		e.machineOpts = append(e.machineOpts, boundary.WithBehavior(b))
	}
}

// OnBoundaryEnter registers the contact-begin callback.
func OnBoundaryEnter(fn boundary.EventFunc) MoveOption {
	return func(e *moveEffect) {
		e.machineOpts = append(e.machineOpts, boundary.OnEnter(fn))
	}
}

// OnBoundaryExit registers the contact-end callback.
func OnBoundaryExit(fn boundary.EventFunc) MoveOption {
	return func(e *moveEffect) {
		e.machineOpts = append(e.machineOpts, boundary.OnExit(fn))
	}
}

// WithVelocityProvider derives each tick's velocity from a callable instead
// of the entity's stored velocity.
func WithVelocityProvider(p VelocityProvider) MoveOption {
	return func(e *moveEffect) {
		e.provider = p
	}
}

// MoveUntil assigns the velocity to every target entity and integrates
// position each tick until the condition is met. With bounds and a behavior
// configured, crossings are resolved by the boundary machine.
func MoveUntil(vel cp.Vector, cond motion.Condition, opts ...MoveOption) *motion.Action {
	eff := newMoveEffect(vel, opts...)
	return motion.NewAction(eff, cond)
}

// MoveBy displaces the target by delta over the given number of seconds.
// Negative durations are rejected at Apply.
func MoveBy(delta cp.Vector, seconds float64, opts ...MoveOption) *motion.Action {
	vel := cp.Vector{}
	if seconds > 0 {
		vel = delta.Mult(1 / seconds)
	}
	eff := newMoveEffect(vel, opts...)
	return motion.NewAction(eff, motion.Elapsed(seconds))
}

func newMoveEffect(vel cp.Vector, opts ...MoveOption) *moveEffect {
	eff := &moveEffect{
		vel:      vel,
		lastGood: make(map[motion.Entity]cp.Vector),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(eff)
		}
	}
	eff.machine = boundary.NewMachine(eff.machineOpts...)
	return eff
}

type moveEffect struct {
	vel         cp.Vector
	provider    VelocityProvider
	machine     *boundary.Machine
	machineOpts []boundary.MachineOption

	guard    *motion.CallbackGuard
	lastGood map[motion.Entity]cp.Vector
}

func (e *moveEffect) ReceiveGuard(g *motion.CallbackGuard, _ motion.Observer) {
	e.guard = g
	e.machine.SetGuard(g)
}

func (e *moveEffect) Apply(t motion.Target) error {
	var err error
	t.Each(func(ent motion.Entity) {
		if err != nil {
			return
		}
		if verr := e.machine.Validate(ent.Size()); verr != nil {
			err = verr
			return
		}
		if e.provider == nil {
			ent.SetVelocity(e.vel)
		}
		e.lastGood[ent] = e.vel
	})
	return err
}

func (e *moveEffect) Step(t motion.Target, dt float64) {
	e.machine.BeginTick()
	t.Each(func(ent motion.Entity) {
		vel := e.resolveVelocity(ent)
		if e.machine.Active() {
			vel = e.machine.Move(ent, vel, dt)
		} else {
			ent.SetPosition(ent.Position().Add(vel.Mult(dt)))
		}
		// mirror policy adjustments (bounce negation, limit zeroing) into
		// both the entity and the recorded fallback
		ent.SetVelocity(vel)
		e.lastGood[ent] = vel
	})
}

// resolveVelocity reads the entity's live velocity, or asks the provider,
// falling back to the last known good value when the provider errors or
// panics.
func (e *moveEffect) resolveVelocity(ent motion.Entity) cp.Vector {
	if e.provider == nil {
		return ent.Velocity()
	}

	vel := e.lastGood[ent]
	call := func() {
		got, err := e.provider(ent)
		if err != nil {
			e.guard.ReportOnce("move.velocity_provider", err)
			return
		}
		vel = got
	}
	if e.guard != nil {
		e.guard.Invoke("move.velocity_provider", call)
	} else {
		call()
	}
	return vel
}

func (e *moveEffect) Remove(t motion.Target) {
	if t != nil {
		t.Each(func(ent motion.Entity) {
			ent.SetVelocity(cp.Vector{})
		})
	}
	e.machine.Reset()
	e.lastGood = make(map[motion.Entity]cp.Vector)
}

func (e *moveEffect) Attrs() motion.Attr {
	return motion.AttrPosition | motion.AttrVelocity
}

func (e *moveEffect) Clone() motion.Effect {
	clone := &moveEffect{
		vel:         e.vel,
		provider:    e.provider,
		machineOpts: e.machineOpts,
		machine:     e.machine.Clone(),
		lastGood:    make(map[motion.Entity]cp.Vector),
	}
	return clone
}

// MoveTo steers every target entity toward dest at the given speed and
// completes once all of them have arrived. Speed must be positive.
func MoveTo(dest cp.Vector, speed float64) *motion.Action {
	return motion.NewAction(&moveToEffect{dest: dest, speed: speed}, nil)
}

type moveToEffect struct {
	dest    cp.Vector
	speed   float64
	arrived bool
}

func (e *moveToEffect) Validate() error {
	if e.speed <= 0 {
		return errors.New("speed must be positive", errors.CategoryBadInput).
			WithTextCode("NON_POSITIVE_SPEED").
			WithMetadata(map[string]any{"speed": e.speed})
	}
	return nil
}

func (e *moveToEffect) Apply(t motion.Target) error {
	e.arrived = false
	return nil
}

func (e *moveToEffect) Step(t motion.Target, dt float64) {
	all := true
	t.Each(func(ent motion.Entity) {
		pos := ent.Position()
		diff := e.dest.Sub(pos)
		dist := diff.Length()
		step := e.speed * dt
		if dist <= step {
			ent.SetPosition(e.dest)
			ent.SetVelocity(cp.Vector{})
			return
		}
		all = false
		vel := diff.Mult(e.speed / dist)
		ent.SetVelocity(vel)
		ent.SetPosition(pos.Add(vel.Mult(dt)))
	})
	e.arrived = all
}

func (e *moveToEffect) Completed() (any, bool) {
	return nil, e.arrived
}

func (e *moveToEffect) Remove(t motion.Target) {
	if t == nil {
		return
	}
	t.Each(func(ent motion.Entity) {
		ent.SetVelocity(cp.Vector{})
	})
}

func (e *moveToEffect) Attrs() motion.Attr {
	return motion.AttrPosition | motion.AttrVelocity
}

func (e *moveToEffect) Clone() motion.Effect {
	return &moveToEffect{dest: e.dest, speed: e.speed}
}
