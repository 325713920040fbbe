package calibrate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidImage is returned when the input image is nil or has no pixels.
var ErrInvalidImage = errors.New("calibrate: invalid image")

// UnsupportedDisplayTypeError is returned when a display type selector does
// not resolve to any known profile. It carries the offending input and the
// list of valid profile names so callers can build a helpful message.
type UnsupportedDisplayTypeError struct {
	DisplayType string
	Valid       []string
}

func (e *UnsupportedDisplayTypeError) Error() string {
	return fmt.Sprintf("unsupported display type %q, valid types are: %s",
		e.DisplayType, strings.Join(e.Valid, ", "))
}
