package referenceframe

import "github.com/pkg/errors"

// NewUnknownFrameError returns an error indicating that a point names a frame this package cannot convert.
func NewUnknownFrameError(name Name) error {
	return errors.Errorf("unknown reference frame %q", name)
}
