package robot

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// SimMotor is an in-memory motor that records every command it receives.
type SimMotor struct {
	Name   string
	Logger *zap.Logger

	mu        sync.Mutex
	direction Direction
	power     float64
	mode      RunMode
	target    int
	position  int
	resets    int
	writes    int
}

// NewSimMotor creates a simulated motor.
func NewSimMotor(name string, logger *zap.Logger) *SimMotor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimMotor{Name: name, Logger: logger, mode: RunUsingEncoder}
}

// NewSimDevices registers a simulated motor for every device name in hw.
func NewSimDevices(hw HardwareMap, logger *zap.Logger) *Devices {
	d := NewDevices()
	for _, role := range AllMotors() {
		name := hw.Device(role)
		d.Add(name, NewSimMotor(name, logger))
	}
	return d
}

func (m *SimMotor) SetDirection(ctx context.Context, dir Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.direction = dir
	return nil
}

func (m *SimMotor) SetPower(ctx context.Context, power float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.power = ClampPower(power)
	m.writes++
	if m.mode == RunToPosition && m.power != 0 {
		m.position = m.target
	}
	m.Logger.Debug("sim motor power", zap.String("motor", m.Name), zap.Float64("power", m.power))
	return nil
}

func (m *SimMotor) SetMode(ctx context.Context, mode RunMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode == ResetEncoder {
		m.power = 0
		m.position = 0
		m.resets++
	}
	m.mode = mode
	return nil
}

func (m *SimMotor) SetTargetPosition(ctx context.Context, ticks int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.target = ticks
	return nil
}

// Direction returns the configured direction.
func (m *SimMotor) Direction() Direction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.direction
}

// Power returns the last commanded power.
func (m *SimMotor) Power() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.power
}

// Mode returns the current run mode.
func (m *SimMotor) Mode() RunMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Target returns the last target position.
func (m *SimMotor) Target() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// Position returns the simulated encoder position. In RunToPosition with
// non-zero power the motor reaches its target instantly.
func (m *SimMotor) Position() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

// Resets returns how many times the encoder was reset.
func (m *SimMotor) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

// Writes returns how many SetPower calls the motor received.
func (m *SimMotor) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
