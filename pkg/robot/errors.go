package robot

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrDeviceNotFound is returned by a Registry for an unregistered device name.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrUnsupported is returned when a backend cannot perform an operation.
	ErrUnsupported = errors.New("operation not supported")
)

// BindingError is returned by Bind when the hardware cannot be bound.
// Missing lists every role whose device was absent from the registry.
// When all devices were found but setting one up failed, Role and Err describe it.
type BindingError struct {
	Missing []MotorName
	Role    MotorName
	Err     error
}

func (e *BindingError) Error() string {
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, n := range e.Missing {
			names[i] = string(n)
		}
		return fmt.Sprintf("bind hardware: missing devices for %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("bind hardware: setup %s: %v", e.Role, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

func newUnsupportedError(device, op string) error {
	return errors.Wrapf(ErrUnsupported, "device %s does not support %s", device, op)
}
