package motion

import (
	"github.com/goliatone/go-errors"
)

// Condition decides when an action is finished. Check is evaluated once per
// tick after the action's effect has stepped; a true ok stops the action and
// data (which may be nil) is forwarded to the stop callback.
//
// Conditions that accumulate state (Elapsed, Frames) must return fresh state
// from Clone so repeated or cloned actions never share progress.
type Condition interface {
	Check(dt float64) (data any, ok bool)
	Reset()
	Clone() Condition
}

// ConditionFunc adapts a plain closure as a Condition. A nil or false result
// keeps the action running; true stops it with no data; any other value stops
// it and becomes the stop callback payload.
type ConditionFunc func() any

func (f ConditionFunc) Check(float64) (any, bool) {
	v := f()
	switch v {
	case nil, false:
		return nil, false
	case true:
		return nil, true
	default:
		return v, true
	}
}

func (f ConditionFunc) Reset() {}

func (f ConditionFunc) Clone() Condition { return f }

// Forever returns a condition that is never satisfied. Actions built with it
// only end via Stop.
func Forever() Condition {
	return ConditionFunc(func() any { return nil })
}

// Elapsed is satisfied once the given number of seconds of scaled tick time
// has accumulated. Negative durations are a configuration error surfaced at
// Apply.
func Elapsed(seconds float64) Condition {
	return &elapsedCondition{limit: seconds}
}

type elapsedCondition struct {
	limit float64
	total float64
}

func (c *elapsedCondition) Check(dt float64) (any, bool) {
	c.total += dt
	return nil, c.total >= c.limit
}

func (c *elapsedCondition) Reset() { c.total = 0 }

func (c *elapsedCondition) Clone() Condition {
	return &elapsedCondition{limit: c.limit}
}

func (c *elapsedCondition) Validate() error {
	if c.limit < 0 {
		return errors.New("duration cannot be negative", errors.CategoryBadInput).
			WithTextCode("NEGATIVE_DURATION").
			WithMetadata(map[string]any{"seconds": c.limit})
	}
	return nil
}

// Frames is satisfied after the action has been updated n times. Negative
// counts are a configuration error surfaced at Apply.
func Frames(n int) Condition {
	return &framesCondition{limit: n}
}

type framesCondition struct {
	limit int
	seen  int
}

func (c *framesCondition) Check(float64) (any, bool) {
	c.seen++
	return nil, c.seen >= c.limit
}

func (c *framesCondition) Reset() { c.seen = 0 }

func (c *framesCondition) Clone() Condition {
	return &framesCondition{limit: c.limit}
}

func (c *framesCondition) Validate() error {
	if c.limit < 0 {
		return errors.New("frame count cannot be negative", errors.CategoryBadInput).
			WithTextCode("NEGATIVE_FRAME_COUNT").
			WithMetadata(map[string]any{"frames": c.limit})
	}
	return nil
}
