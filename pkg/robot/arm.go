package robot

import (
	"context"
	"sync"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"github.com/pkg/errors"
)

// ServoArm is the arm joint driven by a single feetech servo in position mode.
// Ticks map one to one onto raw servo steps relative to the homing offset.
type ServoArm struct {
	name  string
	bus   *feetech.Bus
	group *feetech.ServoGroup

	mu      sync.Mutex
	cal     MotorCalibration
	dir     Direction
	mode    RunMode
	target  int
	enabled bool
}

// OpenServoArm opens the servo bus and binds the arm servo.
func OpenServoArm(name string, cfg ArmConfig) (*ServoArm, error) {
	baud := cfg.BaudRate
	if baud <= 0 {
		baud = DefaultServoBaudRate
	}
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: baud,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open servo bus on %s", cfg.Port)
	}

	return &ServoArm{
		name:  name,
		bus:   bus,
		group: feetech.NewServoGroupByIDs(bus, cfg.Calibration.ID),
		cal:   cfg.Calibration,
		mode:  RunUsingEncoder,
	}, nil
}

// Close closes the servo bus.
func (a *ServoArm) Close() error {
	return a.bus.Close()
}

// Calibration returns the current calibration, including the homing offset
// latched by the last encoder reset.
func (a *ServoArm) Calibration() MotorCalibration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cal
}

func (a *ServoArm) SetDirection(ctx context.Context, dir Direction) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dir = dir
	return nil
}

// SetPower enables torque for any non-zero power and disables it at zero.
// A position servo has no variable power, so the magnitude is not used.
func (a *ServoArm) SetPower(ctx context.Context, power float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	want := ClampPower(power) != 0 && a.mode != ResetEncoder
	if want != a.enabled {
		if err := a.setTorque(ctx, want); err != nil {
			return err
		}
	}
	if want && a.mode == RunToPosition {
		return a.writeTarget(ctx)
	}
	return nil
}

func (a *ServoArm) SetMode(ctx context.Context, mode RunMode) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch mode {
	case ResetEncoder:
		if a.enabled {
			if err := a.setTorque(ctx, false); err != nil {
				return err
			}
		}
		raw, err := a.readRaw(ctx)
		if err != nil {
			return err
		}
		a.cal.HomingOffset = raw
	case RunToPosition:
		if a.enabled {
			a.mode = mode
			return a.writeTarget(ctx)
		}
	}
	a.mode = mode
	return nil
}

func (a *ServoArm) SetTargetPosition(ctx context.Context, ticks int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.target = ticks
	if a.enabled && a.mode == RunToPosition {
		return a.writeTarget(ctx)
	}
	return nil
}

// Position reads the current arm position in ticks.
func (a *ServoArm) Position(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	raw, err := a.readRaw(ctx)
	if err != nil {
		return 0, err
	}
	return a.cal.Ticks(raw) * a.dir.Sign(), nil
}

func (a *ServoArm) setTorque(ctx context.Context, on bool) error {
	var err error
	if on {
		err = a.group.EnableAll(ctx)
	} else {
		err = a.group.DisableAll(ctx)
	}
	if err != nil {
		return errors.Wrapf(err, "set torque on %s", a.name)
	}
	a.enabled = on
	return nil
}

func (a *ServoArm) writeTarget(ctx context.Context) error {
	raw := a.cal.Raw(a.target * a.dir.Sign())
	if err := a.group.SetPositions(ctx, feetech.PositionMap{a.cal.ID: raw}); err != nil {
		return errors.Wrapf(err, "write %s position", a.name)
	}
	return nil
}

func (a *ServoArm) readRaw(ctx context.Context) (int, error) {
	positions, err := a.group.Positions(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "read %s position", a.name)
	}
	raw, ok := positions[a.cal.ID]
	if !ok {
		return 0, errors.Errorf("servo %d did not report a position", a.cal.ID)
	}
	return raw, nil
}
