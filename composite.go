package motion

// Composite actions own and drive child actions. Children are never
// registered with the scheduler directly; the composite forwards lifecycle
// calls and aggregates completion. Cloning a composite deep-clones every
// child so two instances never share nested state.

// Sequence runs children one after another against the composite's target.
// A finished child is never stopped; it completed itself. An empty sequence
// completes on its first tick.
func Sequence(children ...*Action) *Action {
	return NewAction(&sequenceEffect{children: children}, nil)
}

type sequenceEffect struct {
	children []*Action
	idx      int
	started  bool
}

func (e *sequenceEffect) Apply(t Target) error {
	e.idx = 0
	e.started = false
	if len(e.children) == 0 {
		return nil
	}
	return e.startChild(t)
}

func (e *sequenceEffect) startChild(t Target) error {
	c := e.children[e.idx]
	c.target = t
	e.started = true
	return c.Start()
}

func (e *sequenceEffect) Step(t Target, dt float64) {
	if e.idx >= len(e.children) {
		return
	}
	c := e.children[e.idx]
	c.Update(dt)
	if !c.Done() {
		return
	}
	e.idx++
	if e.idx < len(e.children) {
		if err := e.startChild(t); err != nil {
			// a child rejected its configuration mid-sequence; skip it
			e.children[e.idx].Stop()
		}
	}
}

func (e *sequenceEffect) Remove(Target) {
	// forced stop interrupts only the child currently running
	if e.idx < len(e.children) && e.started {
		c := e.children[e.idx]
		if !c.Done() {
			c.Stop()
		}
	}
}

func (e *sequenceEffect) Completed() (any, bool) {
	return nil, e.idx >= len(e.children)
}

func (e *sequenceEffect) Pause() {
	if e.idx < len(e.children) {
		e.children[e.idx].Pause()
	}
}

func (e *sequenceEffect) Resume() {
	if e.idx < len(e.children) {
		e.children[e.idx].Resume()
	}
}

func (e *sequenceEffect) Reset() {
	e.idx = 0
	e.started = false
	for _, c := range e.children {
		c.Reset()
	}
}

func (e *sequenceEffect) ReceiveGuard(g *CallbackGuard, o Observer) {
	forwardToChildren(e.children, g, o)
}

func (e *sequenceEffect) Attrs() Attr {
	var attrs Attr
	for _, c := range e.children {
		attrs |= c.Attrs()
	}
	return attrs
}

func (e *sequenceEffect) Clone() Effect {
	clone := &sequenceEffect{children: make([]*Action, len(e.children))}
	for i, c := range e.children {
		clone.children[i] = c.Clone()
	}
	return clone
}

// Parallel runs all children simultaneously and completes only once every
// child reports done. An empty parallel completes on its first tick.
func Parallel(children ...*Action) *Action {
	return NewAction(&parallelEffect{children: children}, nil)
}

type parallelEffect struct {
	children []*Action
}

func (e *parallelEffect) Apply(t Target) error {
	var firstErr error
	for _, c := range e.children {
		c.target = t
		if err := c.Start(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (e *parallelEffect) Step(_ Target, dt float64) {
	for _, c := range e.children {
		if !c.Done() {
			c.Update(dt)
		}
	}
}

func (e *parallelEffect) Remove(Target) {
	for _, c := range e.children {
		if !c.Done() {
			c.Stop()
		}
	}
}

func (e *parallelEffect) Completed() (any, bool) {
	for _, c := range e.children {
		if !c.Done() {
			return nil, false
		}
	}
	return nil, true
}

func (e *parallelEffect) Pause() {
	for _, c := range e.children {
		c.Pause()
	}
}

func (e *parallelEffect) Resume() {
	for _, c := range e.children {
		c.Resume()
	}
}

func (e *parallelEffect) Reset() {
	for _, c := range e.children {
		c.Reset()
	}
}

func (e *parallelEffect) ReceiveGuard(g *CallbackGuard, o Observer) {
	forwardToChildren(e.children, g, o)
}

func (e *parallelEffect) Attrs() Attr {
	var attrs Attr
	for _, c := range e.children {
		attrs |= c.Attrs()
	}
	return attrs
}

func (e *parallelEffect) Clone() Effect {
	clone := &parallelEffect{children: make([]*Action, len(e.children))}
	for i, c := range e.children {
		clone.children[i] = c.Clone()
	}
	return clone
}

// Repeat clones the template and starts the clone whenever the previous
// iteration completes. It never finishes on its own; only Stop ends it. A
// nil template completes on its first tick.
func Repeat(template *Action) *Action {
	return NewAction(&repeatEffect{template: template}, nil)
}

type repeatEffect struct {
	template *Action
	current  *Action

	guard    *CallbackGuard
	observer Observer
}

func (e *repeatEffect) Apply(t Target) error {
	if e.template == nil {
		return nil
	}
	return e.spawn(t)
}

func (e *repeatEffect) spawn(t Target) error {
	e.current = e.template.Clone()
	e.current.target = t
	e.current.guard = e.guard
	e.current.observer = e.observer
	return e.current.Start()
}

func (e *repeatEffect) ReceiveGuard(g *CallbackGuard, o Observer) {
	e.guard = g
	e.observer = o
	if e.template != nil {
		forwardToChildren([]*Action{e.template}, g, o)
	}
}

func (e *repeatEffect) Step(t Target, dt float64) {
	if e.current == nil {
		return
	}
	e.current.Update(dt)
	if e.current.Done() {
		// fresh clone runs from the next tick on
		if err := e.spawn(t); err != nil {
			e.current = nil
		}
	}
}

func (e *repeatEffect) Remove(Target) {
	if e.current != nil && !e.current.Done() {
		e.current.Stop()
	}
	e.current = nil
}

func (e *repeatEffect) Completed() (any, bool) {
	if e.template == nil {
		return nil, true
	}
	return nil, false
}

func (e *repeatEffect) Pause() {
	if e.current != nil {
		e.current.Pause()
	}
}

func (e *repeatEffect) Resume() {
	if e.current != nil {
		e.current.Resume()
	}
}

func (e *repeatEffect) Reset() {
	e.current = nil
}

func (e *repeatEffect) Attrs() Attr {
	if e.template == nil {
		return 0
	}
	return e.template.Attrs()
}

func (e *repeatEffect) Clone() Effect {
	clone := &repeatEffect{}
	if e.template != nil {
		clone.template = e.template.Clone()
	}
	return clone
}

func forwardToChildren(children []*Action, g *CallbackGuard, o Observer) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.guard = g
		c.observer = o
		if f, ok := c.effect.(GuardReceiver); ok {
			f.ReceiveGuard(g, o)
		}
	}
}
