package timeline

import (
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-motion"
)

// exprCondition evaluates a tengo expression once per tick against the
// bound entity's state. The expression sees the variables pos_x, pos_y,
// vel_x, vel_y, elapsed, and frame, plus the math stdlib module; a truthy
// result stops the action.
type exprCondition struct {
	src      string
	compiled *tengo.Compiled
	entity   motion.Entity

	elapsed float64
	frame   int64
}

const exprResultVar = "__until"

var exprVars = []string{"pos_x", "pos_y", "vel_x", "vel_y", "elapsed", "frame"}

func newExprCondition(src string, entity motion.Entity) (*exprCondition, error) {
	script := tengo.NewScript([]byte(`math := import("math")` + "\n" + exprResultVar + " := (" + src + ")"))
	for _, name := range exprVars {
		if err := script.Add(name, 0.0); err != nil {
			return nil, wrapExprError(err, src)
		}
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, wrapExprError(err, src)
	}

	return &exprCondition{src: src, compiled: compiled, entity: entity}, nil
}

func wrapExprError(err error, src string) error {
	return errors.Wrap(err, errors.CategoryBadInput, "until expression rejected").
		WithTextCode("TIMELINE_EXPR_INVALID").
		WithMetadata(map[string]any{"expression": src})
}

func (c *exprCondition) Check(dt float64) (any, bool) {
	c.elapsed += dt
	c.frame++

	if c.entity != nil {
		pos := c.entity.Position()
		vel := c.entity.Velocity()
		_ = c.compiled.Set("pos_x", pos.X)
		_ = c.compiled.Set("pos_y", pos.Y)
		_ = c.compiled.Set("vel_x", vel.X)
		_ = c.compiled.Set("vel_y", vel.Y)
	}
	_ = c.compiled.Set("elapsed", c.elapsed)
	_ = c.compiled.Set("frame", float64(c.frame))

	if err := c.compiled.Run(); err != nil {
		// a faulty expression never satisfies; the scheduler keeps ticking
		return nil, false
	}
	return nil, c.compiled.Get(exprResultVar).Bool()
}

func (c *exprCondition) Reset() {
	c.elapsed = 0
	c.frame = 0
}

func (c *exprCondition) Clone() motion.Condition {
	return &exprCondition{
		src:      c.src,
		compiled: c.compiled.Clone(),
		entity:   c.entity,
	}
}
