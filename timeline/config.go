// Package timeline loads declarative scene definitions from YAML and builds
// action trees out of them. Step completion can be expressed as a duration,
// a frame count, or a tengo expression evaluated against the target's state
// each tick.
package timeline

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-motion/boundary"
)

// SceneSet is the root of a timeline document.
type SceneSet struct {
	Version int        `yaml:"version"`
	Scenes  []SceneDef `yaml:"scenes"`
}

// SceneDef names a target and the steps to run against it. Multiple steps
// form an implicit sequence.
type SceneDef struct {
	Name   string    `yaml:"name"`
	Target string    `yaml:"target"`
	Steps  []StepDef `yaml:"steps"`
}

// StepDef is one node of the action tree.
type StepDef struct {
	Type string `yaml:"type"`

	// completion, mutually exclusive; none means run-until-stopped
	Seconds *float64 `yaml:"seconds,omitempty"`
	Frames  *int     `yaml:"frames,omitempty"`
	Until   string   `yaml:"until,omitempty"`

	// movement
	Velocity []float64 `yaml:"velocity,omitempty"`
	Dest     []float64 `yaml:"dest,omitempty"`
	Speed    float64   `yaml:"speed,omitempty"`
	Bounds   []float64 `yaml:"bounds,omitempty"` // left, bottom, right, top
	Behavior string    `yaml:"behavior,omitempty"`

	// rotate/fade/scale rate, blink interval
	Rate     float64 `yaml:"rate,omitempty"`
	Interval float64 `yaml:"interval,omitempty"`

	// composites
	Step  *StepDef  `yaml:"step,omitempty"`  // repeat template
	Steps []StepDef `yaml:"steps,omitempty"` // sequence/parallel children
}

var stepTypes = map[string]bool{
	"move":     true,
	"move_to":  true,
	"rotate":   true,
	"fade":     true,
	"scale":    true,
	"blink":    true,
	"sequence": true,
	"parallel": true,
	"repeat":   true,
}

// Parse decodes a YAML (or JSON) timeline document and validates it.
func Parse(data []byte) (SceneSet, error) {
	var set SceneSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return set, errors.Wrap(err, errors.CategoryBadInput, "timeline document is not valid YAML").
			WithTextCode("TIMELINE_PARSE_FAILED")
	}
	return set, set.Validate()
}

// Validate checks structural integrity before any action is built.
func (s SceneSet) Validate() error {
	var errs error
	for i, scene := range s.Scenes {
		if strings.TrimSpace(scene.Name) == "" {
			errs = errors.Join(errs, fieldError(fmt.Sprintf("scenes[%d]", i), "scene name is required"))
		}
		if strings.TrimSpace(scene.Target) == "" {
			errs = errors.Join(errs, fieldError(fmt.Sprintf("scenes[%d]", i), "scene target is required"))
		}
		if len(scene.Steps) == 0 {
			errs = errors.Join(errs, fieldError(fmt.Sprintf("scenes[%d]", i), "scene needs at least one step"))
		}
		for j, step := range scene.Steps {
			if err := step.validate(fmt.Sprintf("scenes[%d].steps[%d]", i, j)); err != nil {
				errs = errors.Join(errs, err)
			}
		}
	}
	return errs
}

func (d StepDef) validate(path string) error {
	if !stepTypes[d.Type] {
		return fieldError(path, fmt.Sprintf("unknown step type %q", d.Type))
	}

	var errs error
	switch d.Type {
	case "move":
		if len(d.Velocity) != 2 {
			errs = errors.Join(errs, fieldError(path, "move requires velocity: [x, y]"))
		}
		if len(d.Bounds) != 0 && len(d.Bounds) != 4 {
			errs = errors.Join(errs, fieldError(path, "bounds must be [left, bottom, right, top]"))
		}
		if d.Behavior != "" {
			if _, err := parseBehavior(d.Behavior); err != nil {
				errs = errors.Join(errs, fieldError(path, err.Error()))
			}
		}
	case "move_to":
		if len(d.Dest) != 2 {
			errs = errors.Join(errs, fieldError(path, "move_to requires dest: [x, y]"))
		}
		if d.Speed <= 0 {
			errs = errors.Join(errs, fieldError(path, "move_to requires a positive speed"))
		}
	case "blink":
		if d.Interval <= 0 {
			errs = errors.Join(errs, fieldError(path, "blink requires a positive interval"))
		}
	case "sequence", "parallel":
		if len(d.Steps) == 0 {
			errs = errors.Join(errs, fieldError(path, d.Type+" needs child steps"))
		}
		for i, child := range d.Steps {
			if err := child.validate(fmt.Sprintf("%s.steps[%d]", path, i)); err != nil {
				errs = errors.Join(errs, err)
			}
		}
	case "repeat":
		if d.Step == nil {
			errs = errors.Join(errs, fieldError(path, "repeat needs a template step"))
		} else if err := d.Step.validate(path + ".step"); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	if d.Seconds != nil && *d.Seconds < 0 {
		errs = errors.Join(errs, fieldError(path, "seconds cannot be negative"))
	}
	if d.Frames != nil && *d.Frames < 0 {
		errs = errors.Join(errs, fieldError(path, "frames cannot be negative"))
	}
	return errs
}

func fieldError(path, msg string) error {
	return errors.New(msg, errors.CategoryValidation).
		WithTextCode("TIMELINE_INVALID").
		WithMetadata(map[string]any{"path": path})
}

func parseBehavior(s string) (boundary.Behavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return boundary.None, nil
	case "bounce":
		return boundary.Bounce, nil
	case "wrap":
		return boundary.Wrap, nil
	case "limit":
		return boundary.Limit, nil
	default:
		return boundary.None, fmt.Errorf("unknown boundary behavior %q", s)
	}
}
