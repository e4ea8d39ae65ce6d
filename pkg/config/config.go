// Package config loads and saves the basicdrive configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/gwillem/basicdrive/pkg/input"
	"github.com/gwillem/basicdrive/pkg/robot"
	"github.com/gwillem/basicdrive/pkg/teleop"
)

const (
	DefaultConfigFile = "basicdrive.json"
	EnvPrefix         = "BASICDRIVE"
)

// ErrNotFound is returned by Load when the config file does not exist.
// The returned Config then holds the defaults.
var ErrNotFound = errors.New("config file not found")

// Config holds the robot configuration.
type Config struct {
	Hardware robot.HardwareConfig `json:"hardware" mapstructure:"hardware"`
	Input    InputConfig          `json:"input" mapstructure:"input"`
	Teleop   teleop.Config        `json:"teleop" mapstructure:"teleop"`
}

// InputConfig selects the gamepad. Without a joystick device the keyboard
// stands in for gamepad 1.
type InputConfig struct {
	Joystick string       `json:"joystick" mapstructure:"joystick"`
	Layout   input.Layout `json:"layout" mapstructure:"layout"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	hw := robot.DefaultHardwareMap()
	return &Config{
		Hardware: robot.HardwareConfig{
			Devices: hw,
			Drive: robot.DriveConfig{
				BaudRate: robot.DefaultDriveBaudRate,
				Channels: robot.DefaultDriveChannels(hw),
			},
			Arm: robot.ArmConfig{
				BaudRate: robot.DefaultServoBaudRate,
			},
		},
		Input: InputConfig{
			Layout: input.DefaultLayout(),
		},
		Teleop: teleop.DefaultConfig(),
	}
}

// Load reads the default config file.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom reads configuration from path. Missing keys take their default
// values and BASICDRIVE_* environment variables override both, e.g.
// BASICDRIVE_HARDWARE_SIM=true.
func LoadFrom(path string) (*Config, error) {
	v := newViper()

	var notFound bool
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		notFound = true
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if notFound {
		return &cfg, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return &cfg, nil
}

// Save writes the configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo writes the configuration to path. Durations are stored as strings.
func (c *Config) SaveTo(path string) error {
	v := viper.New()
	v.SetConfigType("json")
	for key, val := range c.settings() {
		v.Set(key, val)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Exists returns true if the default config file exists.
func Exists() bool {
	return ExistsAt(DefaultConfigFile)
}

// ExistsAt returns true if a config file exists at path.
func ExistsAt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range Default().settings() {
		v.SetDefault(key, val)
	}
	return v
}

// settings flattens c into dotted viper keys.
func (c *Config) settings() map[string]any {
	hw, in, tc := c.Hardware, c.Input, c.Teleop
	cal := hw.Arm.Calibration

	channels := make(map[string]any, len(hw.Drive.Channels))
	for ch, name := range hw.Drive.Channels {
		channels[ch] = name
	}

	return map[string]any{
		"hardware.sim":                       hw.Sim,
		"hardware.devices.left_front":        hw.Devices.LeftFront,
		"hardware.devices.left_back":         hw.Devices.LeftBack,
		"hardware.devices.right_front":       hw.Devices.RightFront,
		"hardware.devices.right_back":        hw.Devices.RightBack,
		"hardware.devices.arm":               hw.Devices.Arm,
		"hardware.drive.port":                hw.Drive.Port,
		"hardware.drive.baud_rate":           hw.Drive.BaudRate,
		"hardware.drive.channels":            channels,
		"hardware.arm.port":                  hw.Arm.Port,
		"hardware.arm.baud_rate":             hw.Arm.BaudRate,
		"hardware.arm.calibration.id":        cal.ID,
		"hardware.arm.calibration.range_min": cal.RangeMin,
		"hardware.arm.calibration.range_max": cal.RangeMax,
		"input.joystick":                     in.Joystick,
		"input.layout.left_stick_x":          in.Layout.LeftStickX,
		"input.layout.left_stick_y":          in.Layout.LeftStickY,
		"input.layout.right_stick_x":         in.Layout.RightStickX,
		"input.layout.right_stick_y":         in.Layout.RightStickY,
		"input.layout.dpad_x":                in.Layout.DpadX,
		"input.layout.dpad_y":                in.Layout.DpadY,
		"input.layout.dpad_up_button":        in.Layout.DpadUpButton,
		"input.layout.dpad_down_button":      in.Layout.DpadDownButton,
		"input.layout.dpad_left_button":      in.Layout.DpadLeftButton,
		"input.layout.dpad_right_button":     in.Layout.DpadRightButton,
		"input.layout.left_bumper":           in.Layout.LeftBumper,
		"input.layout.right_bumper":          in.Layout.RightBumper,
		"teleop.arm_power":                   tc.ArmPower,
		"teleop.arm_step":                    tc.ArmStep,
		"teleop.arm_interval":                tc.ArmInterval.String(),
		"teleop.power_step":                  tc.PowerStep,
		"teleop.power_interval":              tc.PowerInterval.String(),
		"teleop.loop_delay":                  tc.LoopDelay.String(),
		"teleop.period":                      tc.Period.String(),
	}
}
