package robot

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Default serial settings.
const (
	DefaultServoBaudRate = 1_000_000
	DefaultDriveBaudRate = 115_200
)

// HardwareConfig describes how to reach the robot's devices.
type HardwareConfig struct {
	// Sim replaces every device with an in-memory motor.
	Sim     bool        `json:"sim" mapstructure:"sim"`
	Devices HardwareMap `json:"devices" mapstructure:"devices"`
	Drive   DriveConfig `json:"drive" mapstructure:"drive"`
	Arm     ArmConfig   `json:"arm" mapstructure:"arm"`
}

// DriveConfig holds the serial drive controller settings.
type DriveConfig struct {
	Port     string `json:"port" mapstructure:"port"`
	BaudRate int    `json:"baud_rate" mapstructure:"baud_rate"`
	// Channels maps controller channel letters to device names.
	Channels map[string]string `json:"channels" mapstructure:"channels"`
}

// ArmConfig holds configuration for the arm servo.
type ArmConfig struct {
	Port        string           `json:"port" mapstructure:"port"`
	BaudRate    int              `json:"baud_rate" mapstructure:"baud_rate"`
	Calibration MotorCalibration `json:"calibration" mapstructure:"calibration"`
}

// IsCalibrated returns true if the arm has a recorded range of motion.
func (a *ArmConfig) IsCalibrated() bool {
	return a.Calibration.ID > 0 && a.Calibration.HasRange()
}

// DefaultDriveChannels assigns the wheels of hw to channels x, y, z and w.
func DefaultDriveChannels(hw HardwareMap) map[string]string {
	channels := make(map[string]string, len(DriveChannels))
	for i, role := range DriveMotors() {
		channels[string(DriveChannels[i])] = hw.Device(role)
	}
	return channels
}

// Open builds a device registry from cfg. Devices without a configured port
// are simulated. The caller must Close it.
func Open(ctx context.Context, cfg HardwareConfig, logger *zap.Logger) (*Devices, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Sim {
		logger.Info("using simulated hardware")
		return NewSimDevices(cfg.Devices, logger), nil
	}

	devices := NewDevices()

	if cfg.Drive.Port != "" {
		baud := cfg.Drive.BaudRate
		if baud <= 0 {
			baud = DefaultDriveBaudRate
		}
		ctrl, err := OpenDriveController(cfg.Drive.Port, baud)
		if err != nil {
			return nil, err
		}
		devices.AddCloser(ctrl)
		channels := cfg.Drive.Channels
		if len(channels) == 0 {
			channels = DefaultDriveChannels(cfg.Devices)
		}
		for ch, name := range channels {
			if len(ch) != 1 {
				devices.Close()
				return nil, fmt.Errorf("drive channel for %s: want one letter, got %q", name, ch)
			}
			m, err := ctrl.Channel(name, ch[0])
			if err != nil {
				devices.Close()
				return nil, err
			}
			devices.Add(name, m)
		}
		logger.Info("drive controller opened", zap.String("port", cfg.Drive.Port), zap.Int("channels", len(channels)))
	} else {
		for _, role := range DriveMotors() {
			name := cfg.Devices.Device(role)
			devices.Add(name, NewSimMotor(name, logger))
		}
		logger.Info("no drive controller port, simulating wheels")
	}

	if cfg.Arm.Port != "" {
		arm, err := OpenServoArm(cfg.Devices.Arm, cfg.Arm)
		if err != nil {
			devices.Close()
			return nil, err
		}
		devices.AddCloser(arm)
		devices.Add(cfg.Devices.Arm, arm)
		logger.Info("arm servo opened", zap.String("port", cfg.Arm.Port), zap.Int("id", cfg.Arm.Calibration.ID))
	} else {
		devices.Add(cfg.Devices.Arm, NewSimMotor(cfg.Devices.Arm, logger))
		logger.Info("no arm port, simulating arm")
	}

	return devices, nil
}
