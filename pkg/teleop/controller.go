// Package teleop runs the driver-controlled period: it polls the gamepad,
// drives the wheels and arm, and reports status every tick.
package teleop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gwillem/basicdrive/pkg/drive"
	"github.com/gwillem/basicdrive/pkg/input"
	"github.com/gwillem/basicdrive/pkg/ratelimit"
	"github.com/gwillem/basicdrive/pkg/robot"
	"github.com/gwillem/basicdrive/pkg/telemetry"
)

// Controller manages the teleop control loop.
type Controller struct {
	hw      *robot.Hardware
	input   input.Source
	display telemetry.Display
	logger  *zap.Logger
	cfg     Config
	clock   clock.Clock

	armGate   *ratelimit.Gate
	powerGate *ratelimit.Gate
	errGate   *ratelimit.Gate

	mu    sync.RWMutex
	phase Phase
	state ControlState
	start time.Time

	statusCh chan Status
}

// NewController creates a controller for bound hardware. A nil display
// discards telemetry and a nil logger disables logging.
func NewController(cfg Config, hw *robot.Hardware, src input.Source, display telemetry.Display, logger *zap.Logger) (*Controller, error) {
	if hw == nil {
		return nil, errors.New("no hardware bound")
	}
	if src == nil {
		return nil, errors.New("no input source")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if display == nil {
		display = telemetry.NewBuffer(nil)
	}
	cfg = cfg.withDefaults()

	return &Controller{
		hw:        hw,
		input:     src,
		display:   display,
		logger:    logger,
		cfg:       cfg,
		clock:     cfg.Clock,
		armGate:   ratelimit.New(cfg.ArmInterval, cfg.Clock),
		powerGate: ratelimit.New(cfg.PowerInterval, cfg.Clock),
		errGate:   ratelimit.New(time.Second, cfg.Clock),
		phase:     WaitingForStart,
		state:     NewControlState(),
		statusCh:  make(chan Status, 1),
	}, nil
}

// Statuses returns a channel that receives a status after every tick.
func (c *Controller) Statuses() <-chan Status {
	return c.statusCh
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// State returns a copy of the control state.
func (c *Controller) State() ControlState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Run waits for the period to start, then runs the control loop until lc
// reports inactive or ctx is done. Actuators are stopped on return.
func (c *Controller) Run(ctx context.Context, lc Lifecycle) error {
	c.mu.Lock()
	if c.phase != WaitingForStart {
		c.mu.Unlock()
		return fmt.Errorf("controller is %s", c.phase)
	}
	c.mu.Unlock()

	c.display.AddData("Status", "Initialized")
	c.display.Update()

	if err := c.hw.PrepareArm(ctx); err != nil {
		c.shutdown()
		return fmt.Errorf("prepare arm: %w", err)
	}

	c.logger.Info("waiting for start")
	if err := lc.WaitForStart(ctx); err != nil {
		c.shutdown()
		if errors.Is(err, ErrStopped) {
			return nil
		}
		return err
	}

	c.begin()

	for lc.IsActive() {
		if err := ctx.Err(); err != nil {
			c.shutdown()
			return err
		}
		c.step(ctx)
		c.clock.Sleep(c.cfg.LoopDelay)
	}

	c.shutdown()
	return nil
}

// begin moves to Active and restarts the elapsed time and rate limits.
func (c *Controller) begin() {
	c.mu.Lock()
	c.phase = Active
	c.state = NewControlState()
	c.start = c.clock.Now()
	c.mu.Unlock()

	c.armGate.Mark()
	c.powerGate.Mark()
	c.errGate.Reset()
	c.logger.Info("teleop started",
		zap.Duration("arm_interval", c.cfg.ArmInterval),
		zap.Duration("power_interval", c.cfg.PowerInterval),
		zap.Duration("period", c.cfg.Period),
	)
}

// step runs one tick of the control loop.
func (c *Controller) step(ctx context.Context) Status {
	gp := c.input.Snapshot().Gamepad1.Clamped()

	c.mu.Lock()
	st := &c.state

	left, right := drive.Power(st.Mode, gp.LeftStickY, gp.RightStickX, gp.RightStickY)
	left *= st.BasePower
	right *= st.BasePower

	if c.armGate.Ready() {
		if gp.RightBumper {
			st.ArmTarget -= c.cfg.ArmStep
			c.armGate.Mark()
		}
		if gp.LeftBumper {
			st.ArmTarget += c.cfg.ArmStep
			c.armGate.Mark()
		}
	}
	st.ArmTarget = min(st.ArmTarget, 0)
	target := st.ArmTarget
	c.mu.Unlock()

	c.apply(ctx, left, right, target)

	c.mu.Lock()
	prevMode, prevPower := st.Mode, st.BasePower
	if gp.DpadUp {
		st.Mode = drive.Arcade
	} else if gp.DpadDown {
		st.Mode = drive.Tank
	}

	if c.powerGate.Ready() {
		if gp.DpadLeft {
			st.BasePower = roundPower(math.Max(0, st.BasePower-c.cfg.PowerStep))
			c.powerGate.Mark()
		} else if gp.DpadRight {
			st.BasePower = roundPower(math.Min(1, st.BasePower+c.cfg.PowerStep))
			c.powerGate.Mark()
		}
	}

	now := c.clock.Now()
	status := Status{
		Phase:     c.phase,
		Elapsed:   now.Sub(c.start),
		Left:      left,
		Right:     right,
		BasePower: st.BasePower,
		Mode:      st.Mode,
		ArmTarget: st.ArmTarget,
		Timestamp: now,
	}
	c.mu.Unlock()

	if status.Mode != prevMode {
		c.logger.Info("drive mode changed", zap.Stringer("mode", status.Mode))
	}
	if status.BasePower != prevPower {
		c.logger.Info("base power changed", zap.Float64("power", status.BasePower))
	}

	c.report(status)
	return status
}

func (c *Controller) apply(ctx context.Context, left, right float64, armTarget int) {
	err := multierr.Append(
		c.hw.SetDrive(ctx, left, right),
		c.hw.SetArm(ctx, c.cfg.ArmPower, armTarget),
	)
	if err != nil && c.errGate.Allow() {
		c.logger.Warn("actuator write failed", zap.Error(err))
	}
}

func (c *Controller) report(s Status) {
	c.display.AddData("Status", "Run Time: %s", s.Elapsed.Round(100*time.Millisecond))
	c.display.AddData("Motors", "left (%.2f), right (%.2f)", s.Left, s.Right)
	c.display.AddData("Power", "%.2f", s.BasePower)
	c.display.AddData("Mode", "%s", s.Mode)
	c.display.AddData("Arm Position", "%d", s.ArmTarget)
	c.display.Update()

	select {
	case c.statusCh <- s:
	default:
		// Drop old status if channel full, replace with new
		select {
		case <-c.statusCh:
		default:
		}
		select {
		case c.statusCh <- s:
		default:
		}
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.phase = Stopped
	c.mu.Unlock()

	if err := c.hw.Stop(context.Background()); err != nil {
		c.logger.Warn("failed to stop actuators", zap.Error(err))
	}
	c.display.AddData("Status", "Stopped")
	c.display.Update()
	c.logger.Info("teleop stopped")
}

// roundPower drops float noise so repeated 0.1 steps land on exact tenths.
func roundPower(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
