package motion

import "github.com/goliatone/go-errors"

// validatable is the optional contract conditions and effects implement to
// fail fast at Apply time rather than mid-tick.
type validatable interface {
	Validate() error
}

func validateComponent(v any) error {
	c, ok := v.(validatable)
	if !ok || c == nil {
		return nil
	}
	if err := c.Validate(); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "action configuration rejected").
			WithTextCode("MOTION_CONFIG_INVALID")
	}
	return nil
}
