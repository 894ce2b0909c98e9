package motion

import (
	"runtime"
	"strings"
)

// StopCallback is a tagged variant for completion callbacks: either a no-arg
// function or one receiving the condition's result data. The variant is
// chosen explicitly at registration, so there is no runtime signature
// sniffing.
type StopCallback struct {
	fn     func()
	fnData func(any)
}

// OnStop builds a no-argument stop callback.
func OnStop(fn func()) StopCallback {
	return StopCallback{fn: fn}
}

// OnStopData builds a stop callback that receives the condition result.
func OnStopData(fn func(any)) StopCallback {
	return StopCallback{fnData: fn}
}

func (c StopCallback) isZero() bool {
	return c.fn == nil && c.fnData == nil
}

func (c StopCallback) call(data any) {
	switch {
	case c.fnData != nil:
		c.fnData(data)
	case c.fn != nil:
		c.fn()
	}
}

// CallbackGuard invokes user-supplied callbacks and providers so that a
// panicking callback cannot halt the scheduler sweep. Each distinct callback
// site is reported once; repeat failures are swallowed silently.
type CallbackGuard struct {
	logger   Logger
	reported map[string]struct{}
}

// NewCallbackGuard builds a guard reporting through the given logger.
func NewCallbackGuard(logger Logger) *CallbackGuard {
	return &CallbackGuard{
		logger:   normalizeLogger(logger),
		reported: make(map[string]struct{}),
	}
}

// Invoke runs fn, recovering any panic. name identifies the callback site
// for once-only reporting.
func (g *CallbackGuard) Invoke(name string, fn func()) {
	if fn == nil {
		return
	}
	defer g.recoverPanic(name)
	fn()
}

func (g *CallbackGuard) recoverPanic(name string) {
	err := recover()
	if err == nil {
		return
	}
	if g == nil || !g.firstReport(name) {
		return
	}

	stack := make([]byte, 8096)
	n := runtime.Stack(stack, false)

	withLoggerFields(g.logger, map[string]any{
		"callback": name,
		"error":    err,
	}).Error("recovered from panic in user callback (reported once)\n%s", cleanStackTrace(stack[:n]))
}

// ReportOnce logs a non-panic provider or callback failure, once per site.
func (g *CallbackGuard) ReportOnce(name string, err any) {
	if g == nil || err == nil || !g.firstReport(name) {
		return
	}
	withLoggerFields(g.logger, map[string]any{
		"callback": name,
		"error":    err,
	}).Warn("user callback failed (reported once)")
}

func (g *CallbackGuard) firstReport(name string) bool {
	if _, seen := g.reported[name]; seen {
		return false
	}
	g.reported[name] = struct{}{}
	return true
}

// cleanStackTrace drops the recovery frames above the panic site so the
// report starts at user code.
func cleanStackTrace(stack []byte) string {
	lines := strings.Split(string(stack), "\n")

	panicLine := -1
	for i, line := range lines {
		if strings.Contains(line, "panic(") {
			panicLine = i
			break
		}
	}

	// skip the panic() call line and its file reference line
	if panicLine >= 0 && panicLine+2 < len(lines) {
		lines = lines[panicLine+2:]
	}

	return strings.Join(lines, "\n")
}
