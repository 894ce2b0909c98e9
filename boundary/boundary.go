// Package boundary implements the per-entity, per-axis boundary state
// machine consulted by movement actions: side detection (reactive and
// predictive), enter/exit event transitions, and the bounce, wrap, and limit
// response policies.
package boundary

import (
	"github.com/goliatone/go-errors"
	"github.com/jakecoffman/cp"

	"github.com/goliatone/go-motion"
)

// Behavior is the policy applied when an entity crosses a configured bound.
type Behavior int

const (
	None Behavior = iota
	// Bounce negates the velocity component and clamps the crossed edge
	// exactly onto the bound.
	Bounce
	// Wrap teleports the entity by exactly the rectangle span; velocity is
	// untouched.
	Wrap
	// Limit clamps the crossed edge onto the bound and zeroes the velocity
	// component, but only while the entity is moving toward the bound.
	Limit
)

func (b Behavior) String() string {
	switch b {
	case Bounce:
		return "bounce"
	case Wrap:
		return "wrap"
	case Limit:
		return "limit"
	default:
		return "none"
	}
}

// Axis identifies the horizontal or vertical pass.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Side is the bound an entity touches on one axis; empty means no contact.
type Side string

const (
	SideNone   Side = ""
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideTop    Side = "top"
)

// EventFunc observes boundary contact transitions. Both callbacks are
// optional and fire at most once per (entity, axis) per tick.
type EventFunc func(e motion.Entity, axis Axis, side Side)

// Machine tracks which bound each entity touches per axis and applies the
// configured response policy. State entries are created lazily on first
// contact and cleared when the owning action's effect is removed.
type Machine struct {
	bounds   cp.BB
	bounded  bool
	behavior Behavior

	onEnter EventFunc
	onExit  EventFunc
	guard   *motion.CallbackGuard

	state map[motion.Entity]*axisState
	fired map[fireKey]struct{}
}

type axisState struct {
	x Side
	y Side
}

type fireKey struct {
	entity motion.Entity
	axis   Axis
	enter  bool
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithBounds sets the axis-aligned rectangle, in entity-edge coordinates.
func WithBounds(bb cp.BB) MachineOption {
	return func(m *Machine) {
		m.bounds = bb
		m.bounded = true
	}
}

// WithBehavior selects the crossing response policy.
func WithBehavior(b Behavior) MachineOption {
	return func(m *Machine) {
		m.behavior = b
	}
}

// OnEnter registers the contact-begin callback.
func OnEnter(fn EventFunc) MachineOption {
	return func(m *Machine) {
		m.onEnter = fn
	}
}

// OnExit registers the contact-end callback.
func OnExit(fn EventFunc) MachineOption {
	return func(m *Machine) {
		m.onExit = fn
	}
}

// NewMachine builds a boundary machine; without bounds and a behavior it is
// inert and Move degenerates to plain integration.
func NewMachine(opts ...MachineOption) *Machine {
	m := &Machine{
		state: make(map[motion.Entity]*axisState),
		fired: make(map[fireKey]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Active reports whether the machine will constrain movement.
func (m *Machine) Active() bool {
	return m != nil && m.bounded && m.behavior != None
}

// SetGuard installs the callback guard wrapped around enter/exit events.
func (m *Machine) SetGuard(g *motion.CallbackGuard) {
	m.guard = g
}

// Validate rejects rectangles whose span is smaller than the entity on an
// axis, for behaviors that clamp: such an entity could never occupy a legal
// position.
func (m *Machine) Validate(size cp.Vector) error {
	if !m.Active() {
		return nil
	}
	if m.behavior != Bounce && m.behavior != Limit {
		return nil
	}
	spanX := m.bounds.R - m.bounds.L
	spanY := m.bounds.T - m.bounds.B
	if spanX < size.X || spanY < size.Y {
		return errors.New("boundary span is smaller than entity size", errors.CategoryBadInput).
			WithTextCode("BOUNDS_TOO_SMALL").
			WithMetadata(map[string]any{
				"behavior": m.behavior.String(),
				"span_x":   spanX,
				"span_y":   spanY,
				"size_x":   size.X,
				"size_y":   size.Y,
			})
	}
	return nil
}

// BeginTick clears the per-tick event dedupe set. Movement effects call it
// once before stepping their entities.
func (m *Machine) BeginTick() {
	if len(m.fired) > 0 {
		m.fired = make(map[fireKey]struct{})
	}
}

// Reset drops all per-entity contact state. Called when the owning action's
// effect is removed.
func (m *Machine) Reset() {
	m.state = make(map[motion.Entity]*axisState)
	m.fired = make(map[fireKey]struct{})
}

// Clone copies the configuration with fresh state maps.
func (m *Machine) Clone() *Machine {
	clone := NewMachine()
	clone.bounds = m.bounds
	clone.bounded = m.bounded
	clone.behavior = m.behavior
	clone.onEnter = m.onEnter
	clone.onExit = m.onExit
	return clone
}

// Move advances the entity by vel*dt on both axes, applying the configured
// policy where a crossing is predicted or detected, and returns the possibly
// adjusted velocity. The caller is responsible for mirroring the returned
// velocity into any recorded velocity state it tracks.
func (m *Machine) Move(e motion.Entity, vel cp.Vector, dt float64) cp.Vector {
	pos := e.Position()
	half := e.Size().Mult(0.5)

	x, vx, sideX := m.stepAxis(pos.X, half.X, m.bounds.L, m.bounds.R, vel.X, dt, SideLeft, SideRight)
	y, vy, sideY := m.stepAxis(pos.Y, half.Y, m.bounds.B, m.bounds.T, vel.Y, dt, SideBottom, SideTop)

	e.SetPosition(cp.Vector{X: x, Y: y})

	m.transition(e, AxisX, sideX)
	m.transition(e, AxisY, sideY)

	return cp.Vector{X: vx, Y: vy}
}

// stepAxis integrates one axis and applies the behavior policy. It returns
// the new center, the adjusted velocity component, and the effective side.
func (m *Machine) stepAxis(center, half, lowBound, highBound, v, dt float64, lowSide, highSide Side) (float64, float64, Side) {
	if !m.Active() {
		return center + v*dt, v, SideNone
	}

	span := highBound - lowBound
	next := center + v*dt
	crossLow := v < 0 && next-half <= lowBound
	crossHigh := v > 0 && next+half >= highBound

	switch m.behavior {
	case Bounce:
		// predictive: correct before the edge visibly penetrates
		if crossLow {
			return lowBound + half, -v, lowSide
		}
		if crossHigh {
			return highBound - half, -v, highSide
		}
	case Wrap:
		// teleport by exactly the span so repeated wraps never drift
		if crossLow {
			return center + span, v, lowSide
		}
		if crossHigh {
			return center - span, v, highSide
		}
	case Limit:
		// reactive: move first, then clamp; velocity is zeroed only while
		// pointing toward the violated bound, so externally assigned
		// outbound velocity survives
		center = next
		if center-half <= lowBound {
			if v < 0 {
				v = 0
			}
			return lowBound + half, v, lowSide
		}
		if center+half >= highBound {
			if v > 0 {
				v = 0
			}
			return highBound - half, v, highSide
		}
		return center, v, SideNone
	}

	// no crossing: fall back to the reactive side of the new position
	center = next
	switch {
	case center-half <= lowBound:
		return center, v, lowSide
	case center+half >= highBound:
		return center, v, highSide
	}
	return center, v, SideNone
}

// transition compares the effective side against the stored side for the
// axis and fires enter/exit exactly once per crossing. Re-observing the same
// side without an intervening exit never re-fires.
func (m *Machine) transition(e motion.Entity, axis Axis, side Side) {
	if !m.Active() {
		return
	}

	st := m.state[e]
	var prev Side
	if st != nil {
		prev = st.get(axis)
	}
	if prev == side {
		return
	}

	if st == nil {
		st = &axisState{}
		m.state[e] = st
	}
	st.set(axis, side)

	if prev != SideNone {
		m.fire(e, axis, prev, false)
	}
	if side != SideNone {
		m.fire(e, axis, side, true)
	}
}

func (m *Machine) fire(e motion.Entity, axis Axis, side Side, enter bool) {
	fn := m.onExit
	name := "boundary.on_exit"
	if enter {
		fn = m.onEnter
		name = "boundary.on_enter"
	}
	if fn == nil {
		return
	}

	key := fireKey{entity: e, axis: axis, enter: enter}
	if _, dup := m.fired[key]; dup {
		return
	}
	m.fired[key] = struct{}{}

	if m.guard != nil {
		m.guard.Invoke(name, func() { fn(e, axis, side) })
		return
	}
	fn(e, axis, side)
}

func (s *axisState) get(axis Axis) Side {
	if axis == AxisY {
		return s.y
	}
	return s.x
}

func (s *axisState) set(axis Axis, side Side) {
	if axis == AxisY {
		s.y = side
		return
	}
	s.x = side
}
