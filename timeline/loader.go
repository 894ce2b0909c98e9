package timeline

import (
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/jakecoffman/cp"

	"github.com/goliatone/go-motion"
	"github.com/goliatone/go-motion/actions"
)

// BuildContext resolves the target names a timeline document refers to.
type BuildContext struct {
	Targets map[string]motion.Target
}

// Scene is a built action tree bound to its resolved target, ready to apply.
type Scene struct {
	Name   string
	Target motion.Target
	Action *motion.Action
}

// Build constructs every scene in the set. Until-expressions are bound to
// the first entity of the scene's target.
func Build(set SceneSet, bctx BuildContext) ([]Scene, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	scenes := make([]Scene, 0, len(set.Scenes))
	for _, def := range set.Scenes {
		target, ok := bctx.Targets[def.Target]
		if !ok {
			return nil, errors.New("timeline target not found", errors.CategoryBadInput).
				WithTextCode("TIMELINE_TARGET_UNKNOWN").
				WithMetadata(map[string]any{"scene": def.Name, "target": def.Target})
		}

		action, err := buildScene(def, target)
		if err != nil {
			return nil, fmt.Errorf("build scene %s: %w", def.Name, err)
		}
		scenes = append(scenes, Scene{Name: def.Name, Target: target, Action: action})
	}
	return scenes, nil
}

// Stage builds the set and applies every scene to its target, tagged by
// scene name with replacement, so re-staging an edited document swaps the
// running actions.
func Stage(s *motion.Scheduler, set SceneSet, bctx BuildContext) ([]Scene, error) {
	scenes, err := Build(set, bctx)
	if err != nil {
		return nil, err
	}
	for _, scene := range scenes {
		if _, err := s.Apply(scene.Action, scene.Target, motion.WithTag(scene.Name), motion.WithReplace()); err != nil {
			return nil, fmt.Errorf("stage scene %s: %w", scene.Name, err)
		}
	}
	return scenes, nil
}

func buildScene(def SceneDef, target motion.Target) (*motion.Action, error) {
	built := make([]*motion.Action, 0, len(def.Steps))
	for i, step := range def.Steps {
		a, err := buildStep(step, target)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		built = append(built, a)
	}
	if len(built) == 1 {
		return built[0], nil
	}
	return motion.Sequence(built...), nil
}

func buildStep(def StepDef, target motion.Target) (*motion.Action, error) {
	switch def.Type {
	case "sequence", "parallel":
		children := make([]*motion.Action, 0, len(def.Steps))
		for i, child := range def.Steps {
			a, err := buildStep(child, target)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
			children = append(children, a)
		}
		if def.Type == "parallel" {
			return motion.Parallel(children...), nil
		}
		return motion.Sequence(children...), nil

	case "repeat":
		template, err := buildStep(*def.Step, target)
		if err != nil {
			return nil, fmt.Errorf("step: %w", err)
		}
		return motion.Repeat(template), nil

	case "move_to":
		return actions.MoveTo(cp.Vector{X: def.Dest[0], Y: def.Dest[1]}, def.Speed), nil
	}

	cond, err := buildCondition(def, target)
	if err != nil {
		return nil, err
	}

	switch def.Type {
	case "move":
		opts, err := moveOptions(def)
		if err != nil {
			return nil, err
		}
		vel := cp.Vector{X: def.Velocity[0], Y: def.Velocity[1]}
		return actions.MoveUntil(vel, cond, opts...), nil
	case "rotate":
		return actions.RotateUntil(def.Rate, cond), nil
	case "fade":
		return actions.FadeUntil(def.Rate, cond), nil
	case "scale":
		return actions.ScaleUntil(def.Rate, cond), nil
	case "blink":
		return actions.Blink(def.Interval, cond), nil
	default:
		return nil, fmt.Errorf("unsupported step type %s", def.Type)
	}
}

func buildCondition(def StepDef, target motion.Target) (motion.Condition, error) {
	switch {
	case def.Until != "":
		return newExprCondition(def.Until, firstEntity(target))
	case def.Seconds != nil:
		return motion.Elapsed(*def.Seconds), nil
	case def.Frames != nil:
		return motion.Frames(*def.Frames), nil
	default:
		return motion.Forever(), nil
	}
}

func moveOptions(def StepDef) ([]actions.MoveOption, error) {
	var opts []actions.MoveOption
	if len(def.Bounds) == 4 {
		opts = append(opts, actions.WithBounds(cp.BB{
			L: def.Bounds[0], B: def.Bounds[1], R: def.Bounds[2], T: def.Bounds[3],
		}))
	}
	if def.Behavior != "" {
		behavior, err := parseBehavior(def.Behavior)
		if err != nil {
			return nil, err
		}
		opts = append(opts, actions.WithBehavior(behavior))
	}
	return opts, nil
}

func firstEntity(target motion.Target) motion.Entity {
	var first motion.Entity
	target.Each(func(e motion.Entity) {
		if first == nil {
			first = e
		}
	})
	return first
}
