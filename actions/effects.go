package actions

import (
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-motion"
)

func missingCapability(name string) error {
	return errors.New("target entity lacks required capability", errors.CategoryBadInput).
		WithTextCode("MISSING_CAPABILITY").
		WithMetadata(map[string]any{"capability": name})
}

// RotateUntil spins every target entity at angularVel radians per second
// until the condition is met. Entities must implement motion.Rotatable.
func RotateUntil(angularVel float64, cond motion.Condition) *motion.Action {
	return motion.NewAction(&rotateEffect{angularVel: angularVel}, cond)
}

type rotateEffect struct {
	angularVel float64
}

func (e *rotateEffect) Apply(t motion.Target) error {
	var err error
	t.Each(func(ent motion.Entity) {
		if _, ok := ent.(motion.Rotatable); !ok && err == nil {
			err = missingCapability("rotatable")
		}
	})
	return err
}

func (e *rotateEffect) Step(t motion.Target, dt float64) {
	t.Each(func(ent motion.Entity) {
		if r, ok := ent.(motion.Rotatable); ok {
			r.SetAngle(r.Angle() + e.angularVel*dt)
		}
	})
}

func (e *rotateEffect) Remove(motion.Target) {}

func (e *rotateEffect) Attrs() motion.Attr { return motion.AttrAngle }

func (e *rotateEffect) Clone() motion.Effect {
	return &rotateEffect{angularVel: e.angularVel}
}

// FadeUntil changes opacity at rate alpha-units per second until the
// condition is met. Alpha is clamped to [0, 1] by the entity. Entities must
// implement motion.Fadeable.
func FadeUntil(rate float64, cond motion.Condition) *motion.Action {
	return motion.NewAction(&fadeEffect{rate: rate}, cond)
}

type fadeEffect struct {
	rate float64
}

func (e *fadeEffect) Apply(t motion.Target) error {
	var err error
	t.Each(func(ent motion.Entity) {
		if _, ok := ent.(motion.Fadeable); !ok && err == nil {
			err = missingCapability("fadeable")
		}
	})
	return err
}

func (e *fadeEffect) Step(t motion.Target, dt float64) {
	t.Each(func(ent motion.Entity) {
		if f, ok := ent.(motion.Fadeable); ok {
			f.SetAlpha(f.Alpha() + e.rate*dt)
		}
	})
}

func (e *fadeEffect) Remove(motion.Target) {}

func (e *fadeEffect) Attrs() motion.Attr { return motion.AttrAlpha }

func (e *fadeEffect) Clone() motion.Effect {
	return &fadeEffect{rate: e.rate}
}

// ScaleUntil grows or shrinks every target entity at rate scale-units per
// second until the condition is met. Entities must implement
// motion.Scalable.
func ScaleUntil(rate float64, cond motion.Condition) *motion.Action {
	return motion.NewAction(&scaleEffect{rate: rate}, cond)
}

type scaleEffect struct {
	rate float64
}

func (e *scaleEffect) Apply(t motion.Target) error {
	var err error
	t.Each(func(ent motion.Entity) {
		if _, ok := ent.(motion.Scalable); !ok && err == nil {
			err = missingCapability("scalable")
		}
	})
	return err
}

func (e *scaleEffect) Step(t motion.Target, dt float64) {
	t.Each(func(ent motion.Entity) {
		if s, ok := ent.(motion.Scalable); ok {
			s.SetScale(s.Scale() + e.rate*dt)
		}
	})
}

func (e *scaleEffect) Remove(motion.Target) {}

func (e *scaleEffect) Attrs() motion.Attr { return motion.AttrScale }

func (e *scaleEffect) Clone() motion.Effect {
	return &scaleEffect{rate: e.rate}
}

// Blink toggles visibility every interval seconds until the condition is
// met, restoring the original opacity on completion or stop. Intervals must
// be positive.
func Blink(interval float64, cond motion.Condition) *motion.Action {
	return motion.NewAction(&blinkEffect{
		interval: interval,
		original: make(map[motion.Entity]float64),
	}, cond)
}

type blinkEffect struct {
	interval float64
	elapsed  float64
	hidden   bool
	original map[motion.Entity]float64
}

func (e *blinkEffect) Validate() error {
	if e.interval <= 0 {
		return errors.New("blink interval must be positive", errors.CategoryBadInput).
			WithTextCode("NON_POSITIVE_INTERVAL").
			WithMetadata(map[string]any{"interval": e.interval})
	}
	return nil
}

func (e *blinkEffect) Apply(t motion.Target) error {
	var err error
	e.elapsed = 0
	e.hidden = false
	t.Each(func(ent motion.Entity) {
		f, ok := ent.(motion.Fadeable)
		if !ok {
			if err == nil {
				err = missingCapability("fadeable")
			}
			return
		}
		e.original[ent] = f.Alpha()
	})
	return err
}

func (e *blinkEffect) Step(t motion.Target, dt float64) {
	e.elapsed += dt
	if e.elapsed < e.interval {
		return
	}
	e.elapsed -= e.interval
	e.hidden = !e.hidden
	t.Each(func(ent motion.Entity) {
		f, ok := ent.(motion.Fadeable)
		if !ok {
			return
		}
		if e.hidden {
			f.SetAlpha(0)
		} else {
			f.SetAlpha(e.original[ent])
		}
	})
}

func (e *blinkEffect) Remove(t motion.Target) {
	if t != nil {
		t.Each(func(ent motion.Entity) {
			if f, ok := ent.(motion.Fadeable); ok {
				if alpha, tracked := e.original[ent]; tracked {
					f.SetAlpha(alpha)
				}
			}
		})
	}
	e.original = make(map[motion.Entity]float64)
	e.hidden = false
	e.elapsed = 0
}

func (e *blinkEffect) Attrs() motion.Attr { return motion.AttrAlpha }

func (e *blinkEffect) Clone() motion.Effect {
	return &blinkEffect{
		interval: e.interval,
		original: make(map[motion.Entity]float64),
	}
}
