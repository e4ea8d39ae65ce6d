package robot

import (
	"context"
	"math"
)

// Direction is the rotation direction a motor is configured with.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Sign returns 1 for Forward and -1 for Reverse.
func (d Direction) Sign() int {
	if d == Reverse {
		return -1
	}
	return 1
}

// RunMode selects how a motor uses its encoder.
type RunMode int

const (
	// ResetEncoder stops the motor and zeroes its position counter.
	ResetEncoder RunMode = iota
	// RunUsingEncoder runs at the commanded power with encoder feedback.
	RunUsingEncoder
	// RunToPosition drives the motor to its target position at the commanded power.
	RunToPosition
)

func (m RunMode) String() string {
	switch m {
	case ResetEncoder:
		return "reset_encoder"
	case RunUsingEncoder:
		return "run_using_encoder"
	case RunToPosition:
		return "run_to_position"
	default:
		return "unknown"
	}
}

// Motor is a single actuator exposed by the hardware layer.
type Motor interface {
	// SetDirection sets which way positive power turns the motor.
	SetDirection(ctx context.Context, dir Direction) error

	// SetPower sets the power between -1 and 1. Values outside are clamped.
	SetPower(ctx context.Context, power float64) error

	// SetMode switches the encoder usage mode.
	SetMode(ctx context.Context, mode RunMode) error

	// SetTargetPosition sets the target in encoder ticks used by RunToPosition.
	SetTargetPosition(ctx context.Context, ticks int) error
}

// ClampPower clamps a power to [-1, 1].
func ClampPower(pwr float64) float64 {
	pwr = math.Min(pwr, 1.0)
	pwr = math.Max(pwr, -1.0)
	return pwr
}
