package motion

// Observer is a fire-and-forget instrumentation hook: the scheduler reports
// lifecycle events through it so debugging overlays can trace action churn.
// Implementations must be cheap; they run synchronously inside the tick,
// wrapped by the callback guard so a faulty observer cannot break ticking.
type Observer interface {
	ActionStarted(a *Action)
	ActionStopped(a *Action)
	ConditionMet(a *Action, data any)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) ActionStarted(*Action)     {}
func (NopObserver) ActionStopped(*Action)     {}
func (NopObserver) ConditionMet(*Action, any) {}
