package motion

import (
	"sync"

	"github.com/goliatone/go-errors"
)

// Scheduler drives every registered action exactly once per tick. Construct
// one per simulation world; there is no package-level instance.
//
// All state mutation happens synchronously inside Update. Callers must not
// invoke Update reentrantly from an action's effect, condition, or callback;
// registrations made during a tick are deferred to the end of that tick.
type Scheduler struct {
	logger   Logger
	guard    *CallbackGuard
	observer Observer

	active  []*Action
	pending []*Action

	frame    int64
	updating bool

	warnConflicts bool

	deferredMu sync.Mutex
	deferred   []func()
}

// Option configures a scheduler.
type Option func(*Scheduler)

// WithLogger sets the diagnostics logger.
func WithLogger(logger Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithObserver installs the instrumentation hook.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// WithConflictWarnings toggles attribute-overlap diagnostics (on by default).
func WithConflictWarnings(enabled bool) Option {
	return func(s *Scheduler) {
		s.warnConflicts = enabled
	}
}

// New builds an independent scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		warnConflicts: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = normalizeLogger(s.logger)
	s.guard = NewCallbackGuard(s.logger)
	return s
}

// ApplyOption configures a single registration.
type ApplyOption func(*applyConfig)

type applyConfig struct {
	tag     string
	replace bool
}

// WithTag labels the action for target-scoped lookup and replacement.
func WithTag(tag string) ApplyOption {
	return func(c *applyConfig) {
		c.tag = tag
	}
}

// WithReplace stops any active action sharing the same (target, tag) pair
// before this one starts. Requires a tag.
func WithReplace() ApplyOption {
	return func(c *applyConfig) {
		c.replace = true
	}
}

// Apply binds the action to a target and registers it. Configuration errors
// (bad bounds, negative durations) surface here. If a tick is in progress the
// action is queued and starts at the end of that tick, so it never observes
// partial mutation from same-tick siblings.
func (s *Scheduler) Apply(a *Action, target Target, opts ...ApplyOption) (*Action, error) {
	if a == nil {
		return nil, errors.New("action cannot be nil", errors.CategoryBadInput).
			WithTextCode("NIL_ACTION")
	}
	if target == nil || target.Len() == 0 {
		return nil, errors.New("target cannot be nil or empty", errors.CategoryBadInput).
			WithTextCode("NIL_TARGET")
	}

	var cfg applyConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := validateComponent(a.condition); err != nil {
		return nil, err
	}
	if err := validateComponent(a.effect); err != nil {
		return nil, err
	}

	a.target = target
	a.tag = cfg.tag
	a.sched = s
	a.guard = s.guard
	a.observer = s.observer

	if cfg.replace && cfg.tag != "" {
		s.StopActionsFor(target, cfg.tag)
	}

	if s.warnConflicts {
		s.reportConflicts(a)
	}

	if s.updating {
		s.pending = append(s.pending, a)
		return a, nil
	}

	if err := a.Start(); err != nil {
		return a, err
	}
	s.active = append(s.active, a)
	return a, nil
}

// reportConflicts warns when the new action's declared attribute set
// intersects another active action's set on the same target. Diagnostic
// only, never blocking.
func (s *Scheduler) reportConflicts(a *Action) {
	attrs := a.Attrs()
	if attrs == 0 {
		return
	}
	check := func(other *Action) {
		if other == a || other.done {
			return
		}
		if !SameTarget(other.target, a.target) {
			return
		}
		if overlap := attrs & other.Attrs(); overlap != 0 {
			withLoggerFields(s.logger, map[string]any{
				"attrs":     overlap.String(),
				"tag":       a.tag,
				"other_tag": other.tag,
			}).Warn("actions mutate overlapping attributes on the same target")
		}
	}
	for _, other := range s.active {
		check(other)
	}
	for _, other := range s.pending {
		check(other)
	}
}

// Update is the per-tick entry point; the host calls it exactly once per
// frame. Within one tick every action active at the start is updated, in
// registration order, before any action registered during the tick starts.
func (s *Scheduler) Update(dt float64) {
	s.drainDeferred()

	if !s.allActivePaused() {
		s.frame++
	}

	s.updating = true

	// prevent stale callbacks from actions completed on a previous tick
	for _, a := range s.active {
		if a.done {
			a.deactivateCallbacks()
		}
	}

	// snapshot: actions may stop themselves or siblings mid-iteration
	snapshot := make([]*Action, len(s.active))
	copy(snapshot, s.active)
	for _, a := range snapshot {
		a.Update(dt)
	}

	// prune completed
	remaining := s.active[:0]
	for _, a := range s.active {
		if !a.done {
			remaining = append(remaining, a)
		}
	}
	s.active = remaining

	// admit actions registered during this tick
	queued := s.pending
	s.pending = nil
	for _, a := range queued {
		if a.done {
			continue
		}
		if err := a.Start(); err != nil {
			withLoggerFields(s.logger, map[string]any{
				"tag":   a.Tag(),
				"error": err,
			}).Error("deferred action failed to start")
			continue
		}
		s.active = append(s.active, a)
	}

	s.updating = false
}

// allActivePaused reports whether there is at least one active action and
// every one of them is paused. A fully paused world freezes the frame clock.
func (s *Scheduler) allActivePaused() bool {
	if len(s.active) == 0 {
		return false
	}
	for _, a := range s.active {
		if !a.paused {
			return false
		}
	}
	return true
}

// Frame returns the number of ticks that advanced the world.
func (s *Scheduler) Frame() int64 {
	return s.frame
}

// PauseAll pauses every active action.
func (s *Scheduler) PauseAll() {
	for _, a := range s.active {
		a.Pause()
	}
}

// ResumeAll resumes every active action.
func (s *Scheduler) ResumeAll() {
	for _, a := range s.active {
		a.Resume()
	}
}

// IsPaused reports true only when the active set is non-empty and every
// member is paused.
func (s *Scheduler) IsPaused() bool {
	return s.allActivePaused()
}

// Step single-steps a frozen world: resume, tick exactly once, re-pause.
func (s *Scheduler) Step(dt float64) {
	s.ResumeAll()
	s.Update(dt)
	s.PauseAll()
}

// StopAll force-stops every active and pending action.
func (s *Scheduler) StopAll() {
	snapshot := make([]*Action, len(s.active))
	copy(snapshot, s.active)
	for _, a := range snapshot {
		a.Stop()
	}
	queued := s.pending
	s.pending = nil
	for _, a := range queued {
		a.Stop()
	}
}

// ActionsFor returns the active and pending actions bound to the target,
// optionally narrowed by tag. Linear scan; active sets are expected to be
// small.
func (s *Scheduler) ActionsFor(target Target, tag ...string) []*Action {
	var want string
	if len(tag) > 0 {
		want = tag[0]
	}
	var out []*Action
	match := func(a *Action) {
		if a.done || !SameTarget(a.target, target) {
			return
		}
		if want != "" && a.tag != want {
			return
		}
		out = append(out, a)
	}
	for _, a := range s.active {
		match(a)
	}
	for _, a := range s.pending {
		match(a)
	}
	return out
}

// StopActionsFor stops every action matching the target (and tag, when
// given).
func (s *Scheduler) StopActionsFor(target Target, tag ...string) {
	for _, a := range s.ActionsFor(target, tag...) {
		a.Stop()
	}
}

// Defer queues fn to run at the start of the next tick. It is the only
// scheduler entry point safe to call from another goroutine; the cron bridge
// uses it to hand registrations to the tick thread.
func (s *Scheduler) Defer(fn func()) {
	if fn == nil {
		return
	}
	s.deferredMu.Lock()
	s.deferred = append(s.deferred, fn)
	s.deferredMu.Unlock()
}

func (s *Scheduler) drainDeferred() {
	s.deferredMu.Lock()
	queued := s.deferred
	s.deferred = nil
	s.deferredMu.Unlock()

	for _, fn := range queued {
		s.guard.Invoke("scheduler.deferred", fn)
	}
}

// forget drops the action from the registries without running lifecycle
// hooks. Called by Action.Stop.
func (s *Scheduler) forget(a *Action) {
	for i, other := range s.active {
		if other == a {
			s.active = append(s.active[:i], s.active[i+1:]...)
			return
		}
	}
	for i, other := range s.pending {
		if other == a {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}
