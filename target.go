package motion

import "github.com/jakecoffman/cp"

// Entity is the minimal contract an animated object must satisfy. Positions
// are box centers; Size reports the axis-aligned extents used for boundary
// edge math. Implementations must be comparable (pointer receivers) so they
// can key per-entity boundary state.
type Entity interface {
	Position() cp.Vector
	SetPosition(cp.Vector)
	Velocity() cp.Vector
	SetVelocity(cp.Vector)
	Size() cp.Vector
}

// Rotatable is an optional capability for effects that spin an entity.
type Rotatable interface {
	Angle() float64
	SetAngle(float64)
}

// Fadeable is an optional capability for effects that change opacity.
// Alpha is expected in [0, 1].
type Fadeable interface {
	Alpha() float64
	SetAlpha(float64)
}

// Scalable is an optional capability for effects that resize an entity.
type Scalable interface {
	Scale() float64
	SetScale(float64)
}

// EntityBB returns the entity's axis-aligned box in edge coordinates.
func EntityBB(e Entity) cp.BB {
	pos := e.Position()
	half := e.Size().Mult(0.5)
	return cp.BB{L: pos.X - half.X, B: pos.Y - half.Y, R: pos.X + half.X, T: pos.Y + half.Y}
}

// Target is the entity or homogeneous collection an action mutates. It is a
// sealed variant: construct one with Single or Group.
type Target interface {
	Each(fn func(Entity))
	Len() int

	equals(other Target) bool
}

// Single wraps one entity as an action target.
func Single(e Entity) Target {
	return single{e: e}
}

// Group wraps a collection of entities as a uniform action target.
func Group(members ...Entity) Target {
	out := make([]Entity, len(members))
	copy(out, members)
	return &group{members: out}
}

type single struct {
	e Entity
}

func (s single) Each(fn func(Entity)) {
	if s.e != nil {
		fn(s.e)
	}
}

func (s single) Len() int {
	if s.e == nil {
		return 0
	}
	return 1
}

func (s single) equals(other Target) bool {
	o, ok := other.(single)
	return ok && o.e == s.e
}

type group struct {
	members []Entity
}

func (g *group) Each(fn func(Entity)) {
	for _, e := range g.members {
		if e != nil {
			fn(e)
		}
	}
}

func (g *group) Len() int {
	return len(g.members)
}

func (g *group) equals(other Target) bool {
	o, ok := other.(*group)
	if !ok {
		return false
	}
	if o == g {
		return true
	}
	if len(o.members) != len(g.members) {
		return false
	}
	for i, e := range g.members {
		if o.members[i] != e {
			return false
		}
	}
	return true
}

// SameTarget reports whether two targets refer to the same entity or the
// same collection membership. Used by tag-scoped queries and replacement.
func SameTarget(a, b Target) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.equals(b)
}

// Sprite is a basic Entity implementation carrying the full capability set.
// It backs tests, the timeline demo world, and serves as a reference for
// host-side adapters.
type Sprite struct {
	Name string

	pos   cp.Vector
	vel   cp.Vector
	size  cp.Vector
	angle float64
	alpha float64
	scale float64
}

// NewSprite builds a sprite with the given box size, fully opaque at scale 1.
func NewSprite(name string, size cp.Vector) *Sprite {
	return &Sprite{Name: name, size: size, alpha: 1, scale: 1}
}

func (s *Sprite) Position() cp.Vector     { return s.pos }
func (s *Sprite) SetPosition(p cp.Vector) { s.pos = p }
func (s *Sprite) Velocity() cp.Vector     { return s.vel }
func (s *Sprite) SetVelocity(v cp.Vector) { s.vel = v }
func (s *Sprite) Size() cp.Vector         { return s.size.Mult(s.scale) }
func (s *Sprite) Angle() float64          { return s.angle }
func (s *Sprite) SetAngle(a float64)      { s.angle = a }
func (s *Sprite) Alpha() float64          { return s.alpha }

func (s *Sprite) SetAlpha(a float64) {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	s.alpha = a
}

func (s *Sprite) Scale() float64 { return s.scale }

func (s *Sprite) SetScale(v float64) {
	if v < 0 {
		v = 0
	}
	s.scale = v
}
