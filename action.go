package motion

import (
	"github.com/goliatone/go-errors"
)

// Effect is the per-tick mutation an action performs on its target. Apply
// runs once when the action starts and is the last chance to reject a bad
// configuration; Step runs every tick; Remove runs exactly once when the
// action completes or is stopped and must undo transient state such as
// assigned velocities.
type Effect interface {
	Apply(t Target) error
	Step(t Target, dt float64)
	Remove(t Target)
	Attrs() Attr
	Clone() Effect
}

// completer lets an effect report its own completion. Composite effects use
// this instead of an external Condition so cloning keeps effect and
// completion state together.
type completer interface {
	Completed() (data any, ok bool)
}

// pausable effects get pause/resume forwarded, so composites can propagate
// to children.
type pausable interface {
	Pause()
	Resume()
}

// resettable effects restore their initial state when the owning action is
// reset.
type resettable interface {
	Reset()
}

// GuardReceiver is implemented by effects that invoke user callbacks and
// need the owning action's guard and observer. The action hands them over
// right before the effect is applied.
type GuardReceiver interface {
	ReceiveGuard(g *CallbackGuard, o Observer)
}

// Action is a schedulable unit of behavior: an effect driven every tick
// until a condition is met, with a tag for target-scoped lookup, a stop
// callback, and pause support.
//
// Invariant: once done an action never mutates its target again.
type Action struct {
	effect    Effect
	condition Condition
	onStop    StopCallback

	tag    string
	target Target
	factor float64

	done            bool
	active          bool
	paused          bool
	satisfied       bool
	callbacksActive bool

	guard    *CallbackGuard
	observer Observer
	sched    *Scheduler
}

// ActionOption configures an action at construction.
type ActionOption func(*Action)

// WithOnStop registers a no-argument completion callback.
func WithOnStop(fn func()) ActionOption {
	return func(a *Action) {
		a.onStop = OnStop(fn)
	}
}

// WithOnStopData registers a completion callback receiving the condition's
// result. The payload is nil when the condition signalled plain completion.
func WithOnStopData(fn func(any)) ActionOption {
	return func(a *Action) {
		a.onStop = OnStopData(fn)
	}
}

// WithFactor sets the speed multiplier applied to every dt the action sees.
func WithFactor(factor float64) ActionOption {
	return func(a *Action) {
		a.factor = factor
	}
}

// NewAction builds an action from an effect and a condition. A nil condition
// defers completion to the effect itself (composites); an effect with
// neither runs until stopped.
func NewAction(effect Effect, cond Condition, opts ...ActionOption) *Action {
	a := &Action{
		effect:    effect,
		condition: cond,
		factor:    1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Apply registers the action with a scheduler against a target. It is a thin
// chaining wrapper over Scheduler.Apply.
func (a *Action) Apply(s *Scheduler, target Target, opts ...ApplyOption) (*Action, error) {
	return s.Apply(a, target, opts...)
}

func (a *Action) Done() bool      { return a.done }
func (a *Action) Active() bool    { return a.active }
func (a *Action) Paused() bool    { return a.paused }
func (a *Action) Tag() string     { return a.tag }
func (a *Action) Target() Target  { return a.target }
func (a *Action) Factor() float64 { return a.factor }

// SetFactor adjusts the speed multiplier mid-flight.
func (a *Action) SetFactor(factor float64) { a.factor = factor }

// Attrs exposes the effect's declared conflict set.
func (a *Action) Attrs() Attr {
	if a.effect == nil {
		return 0
	}
	return a.effect.Attrs()
}

// Start applies the effect and activates the action. Effect configuration
// failures deactivate the action and are returned to the caller.
func (a *Action) Start() error {
	if a.done {
		return nil
	}
	a.callbacksActive = true
	if f, ok := a.effect.(GuardReceiver); ok {
		f.ReceiveGuard(a.guard, a.observer)
	}
	if a.effect != nil {
		if err := a.effect.Apply(a.target); err != nil {
			a.done = true
			a.active = false
			return errors.Wrap(err, errors.CategoryBadInput, "applying action effect failed").
				WithTextCode("MOTION_APPLY_FAILED").
				WithMetadata(map[string]any{"tag": a.tag})
		}
	}
	a.active = true
	if a.observer != nil && a.guard != nil {
		a.guard.Invoke("observer.started", func() { a.observer.ActionStarted(a) })
	}
	return nil
}

// Update advances the action by one tick: step the effect, then evaluate the
// completion condition. No-op when inactive, done, or paused.
func (a *Action) Update(dt float64) {
	if !a.active || a.done || a.paused {
		return
	}
	dt *= a.factor

	if a.effect != nil {
		a.effect.Step(a.target, dt)
	}

	if a.satisfied {
		return
	}
	data, ok := a.checkCompletion(dt)
	if !ok {
		return
	}

	a.satisfied = true
	if a.effect != nil {
		a.effect.Remove(a.target)
	}
	a.done = true
	a.active = false

	if a.observer != nil && a.guard != nil {
		a.guard.Invoke("observer.condition", func() { a.observer.ConditionMet(a, data) })
	}
	if a.callbacksActive && !a.onStop.isZero() {
		a.invokeStop(data)
	}
}

func (a *Action) checkCompletion(dt float64) (any, bool) {
	if a.condition != nil {
		return a.condition.Check(dt)
	}
	if c, ok := a.effect.(completer); ok {
		return c.Completed()
	}
	return nil, false
}

func (a *Action) invokeStop(data any) {
	cb := a.onStop
	if a.guard != nil {
		a.guard.Invoke("action.on_stop", func() { cb.call(data) })
		return
	}
	cb.call(data)
}

// Stop forcibly terminates the action. It deactivates callbacks first so an
// in-flight completion cannot race an external stop, removes the action from
// its scheduler, and runs the effect cleanup. Idempotent.
func (a *Action) Stop() {
	a.callbacksActive = false
	if a.done {
		return
	}
	a.done = true
	a.active = false
	a.satisfied = true

	if a.sched != nil {
		a.sched.forget(a)
	}
	if a.effect != nil {
		a.effect.Remove(a.target)
	}
	if a.observer != nil && a.guard != nil {
		a.guard.Invoke("observer.stopped", func() { a.observer.ActionStopped(a) })
	}
}

// Pause freezes the action; its effect stops receiving ticks until Resume.
func (a *Action) Pause() {
	a.paused = true
	if p, ok := a.effect.(pausable); ok {
		p.Pause()
	}
}

// Resume reverses Pause.
func (a *Action) Resume() {
	a.paused = false
	if p, ok := a.effect.(pausable); ok {
		p.Resume()
	}
}

// Reset restores the action to its pre-start state so it can be reapplied.
func (a *Action) Reset() {
	a.done = false
	a.active = false
	a.paused = false
	a.satisfied = false
	a.callbacksActive = false
	if a.condition != nil {
		a.condition.Reset()
	}
	if r, ok := a.effect.(resettable); ok {
		r.Reset()
	}
}

// Clone produces an unstarted deep copy: effect and condition state are
// fresh, callbacks and tag are shared by value.
func (a *Action) Clone() *Action {
	clone := &Action{
		onStop: a.onStop,
		tag:    a.tag,
		factor: a.factor,
	}
	if a.effect != nil {
		clone.effect = a.effect.Clone()
	}
	if a.condition != nil {
		clone.condition = a.condition.Clone()
	}
	return clone
}

func (a *Action) deactivateCallbacks() {
	a.callbacksActive = false
}
