package robot

import (
	"context"

	"go.uber.org/multierr"
)

// HardwareMap binds each motor role to a device name in the registry.
type HardwareMap struct {
	LeftFront  string `json:"left_front" mapstructure:"left_front"`
	LeftBack   string `json:"left_back" mapstructure:"left_back"`
	RightFront string `json:"right_front" mapstructure:"right_front"`
	RightBack  string `json:"right_back" mapstructure:"right_back"`
	Arm        string `json:"arm" mapstructure:"arm"`
}

// DefaultHardwareMap names every device after its role.
func DefaultHardwareMap() HardwareMap {
	return HardwareMap{
		LeftFront:  string(LeftFront),
		LeftBack:   string(LeftBack),
		RightFront: string(RightFront),
		RightBack:  string(RightBack),
		Arm:        string(Arm),
	}
}

// Device returns the device name bound to role.
func (h HardwareMap) Device(role MotorName) string {
	switch role {
	case LeftFront:
		return h.LeftFront
	case LeftBack:
		return h.LeftBack
	case RightFront:
		return h.RightFront
	case RightBack:
		return h.RightBack
	case Arm:
		return h.Arm
	}
	return ""
}

// Hardware holds the bound motors of the robot.
type Hardware struct {
	LeftFront  Motor
	LeftBack   Motor
	RightFront Motor
	RightBack  Motor
	Arm        Motor
}

// Bind resolves every role in hw through reg and initializes the motors:
// directions set, power zeroed, encoders reset, then run using encoder.
// A missing device or a failed setup call returns a *BindingError and no Hardware.
func Bind(ctx context.Context, reg Registry, hw HardwareMap) (*Hardware, error) {
	motors := make(map[MotorName]Motor, len(AllMotors()))
	var missing []MotorName
	var lookupErr error
	for _, role := range AllMotors() {
		m, err := reg.Motor(hw.Device(role))
		if err != nil {
			missing = append(missing, role)
			lookupErr = multierr.Append(lookupErr, err)
			continue
		}
		motors[role] = m
	}
	if len(missing) > 0 {
		return nil, &BindingError{Missing: missing, Err: lookupErr}
	}

	// Right side is mounted mirrored.
	for _, role := range AllMotors() {
		dir := Forward
		if role.IsRightSide() {
			dir = Reverse
		}
		if err := motors[role].SetDirection(ctx, dir); err != nil {
			return nil, &BindingError{Role: role, Err: err}
		}
	}
	for _, role := range AllMotors() {
		if err := motors[role].SetPower(ctx, 0); err != nil {
			return nil, &BindingError{Role: role, Err: err}
		}
	}
	for _, mode := range []RunMode{ResetEncoder, RunUsingEncoder} {
		for _, role := range AllMotors() {
			if err := motors[role].SetMode(ctx, mode); err != nil {
				return nil, &BindingError{Role: role, Err: err}
			}
		}
	}

	return &Hardware{
		LeftFront:  motors[LeftFront],
		LeftBack:   motors[LeftBack],
		RightFront: motors[RightFront],
		RightBack:  motors[RightBack],
		Arm:        motors[Arm],
	}, nil
}

// Motor returns the motor bound to role.
func (h *Hardware) Motor(role MotorName) Motor {
	switch role {
	case LeftFront:
		return h.LeftFront
	case LeftBack:
		return h.LeftBack
	case RightFront:
		return h.RightFront
	case RightBack:
		return h.RightBack
	case Arm:
		return h.Arm
	}
	return nil
}

// SetDrive sets the left wheels to left and the right wheels to right.
func (h *Hardware) SetDrive(ctx context.Context, left, right float64) error {
	return multierr.Combine(
		h.LeftFront.SetPower(ctx, left),
		h.LeftBack.SetPower(ctx, left),
		h.RightFront.SetPower(ctx, right),
		h.RightBack.SetPower(ctx, right),
	)
}

// SetArm commands the arm to target ticks at the given power.
func (h *Hardware) SetArm(ctx context.Context, power float64, target int) error {
	if err := h.Arm.SetTargetPosition(ctx, target); err != nil {
		return err
	}
	return h.Arm.SetPower(ctx, power)
}

// PrepareArm holds the arm at its zero reference in position mode.
func (h *Hardware) PrepareArm(ctx context.Context) error {
	if err := h.Arm.SetTargetPosition(ctx, 0); err != nil {
		return err
	}
	return h.Arm.SetMode(ctx, RunToPosition)
}

// Stop zeroes power on every motor.
func (h *Hardware) Stop(ctx context.Context) error {
	var err error
	for _, role := range AllMotors() {
		err = multierr.Append(err, h.Motor(role).SetPower(ctx, 0))
	}
	return err
}
