package teleop

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Config holds tuning for the control loop.
type Config struct {
	// ArmPower is the constant power the arm runs to its target with.
	ArmPower float64 `json:"arm_power" mapstructure:"arm_power"`
	// ArmStep is how many ticks one bumper repeat moves the arm target.
	ArmStep int `json:"arm_step" mapstructure:"arm_step"`
	// ArmInterval is the minimum time between arm target changes.
	ArmInterval time.Duration `json:"arm_interval" mapstructure:"arm_interval"`
	// PowerStep is the base power change per dpad press.
	PowerStep float64 `json:"power_step" mapstructure:"power_step"`
	// PowerInterval is the minimum time between base power changes.
	PowerInterval time.Duration `json:"power_interval" mapstructure:"power_interval"`
	// LoopDelay is the pause at the end of every tick.
	LoopDelay time.Duration `json:"loop_delay" mapstructure:"loop_delay"`
	// Period ends the teleop period after this long. Zero runs until stopped.
	Period time.Duration `json:"period" mapstructure:"period"`

	// Clock is the time source. Nil uses the wall clock.
	Clock clock.Clock `json:"-" mapstructure:"-"`
}

// DefaultConfig returns the tuning used on the field.
func DefaultConfig() Config {
	return Config{
		ArmPower:      1,
		ArmStep:       1,
		ArmInterval:   50 * time.Millisecond,
		PowerStep:     0.1,
		PowerInterval: 500 * time.Millisecond,
		LoopDelay:     5 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ArmStep <= 0 {
		c.ArmStep = def.ArmStep
	}
	if c.PowerStep <= 0 {
		c.PowerStep = def.PowerStep
	}
	if c.ArmInterval < 0 {
		c.ArmInterval = def.ArmInterval
	}
	if c.PowerInterval < 0 {
		c.PowerInterval = def.PowerInterval
	}
	if c.LoopDelay < 0 {
		c.LoopDelay = def.LoopDelay
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return c
}
