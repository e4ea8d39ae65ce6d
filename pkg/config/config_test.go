package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/basicdrive/pkg/input"
	"github.com/gwillem/basicdrive/pkg/robot"
	"github.com/gwillem/basicdrive/pkg/teleop"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	data := `{
		"hardware": {
			"devices": { "left_front": "lf" },
			"drive": { "port": "/dev/ttyACM0", "channels": { "x": "lf" } },
			"arm": { "port": "/dev/ttyUSB0", "calibration": { "id": 3, "range_min": 100, "range_max": 3000 } }
		},
		"teleop": { "arm_interval": "100ms", "power_step": 0.05, "period": "2m30s" }
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "lf", cfg.Hardware.Devices.LeftFront)
	assert.Equal(t, "leftBack", cfg.Hardware.Devices.LeftBack)
	assert.Equal(t, "/dev/ttyACM0", cfg.Hardware.Drive.Port)
	assert.Equal(t, robot.DefaultDriveBaudRate, cfg.Hardware.Drive.BaudRate)
	assert.Equal(t, "lf", cfg.Hardware.Drive.Channels["x"])
	assert.Equal(t, "/dev/ttyUSB0", cfg.Hardware.Arm.Port)
	assert.Equal(t, 3, cfg.Hardware.Arm.Calibration.ID)
	assert.True(t, cfg.Hardware.Arm.IsCalibrated())

	assert.Equal(t, 100*time.Millisecond, cfg.Teleop.ArmInterval)
	assert.Equal(t, 0.05, cfg.Teleop.PowerStep)
	assert.Equal(t, 150*time.Second, cfg.Teleop.Period)
	assert.Equal(t, 500*time.Millisecond, cfg.Teleop.PowerInterval)
}

func TestLoad_DefaultValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.False(t, cfg.Hardware.Sim)
	assert.Equal(t, robot.DefaultHardwareMap(), cfg.Hardware.Devices)
	assert.Equal(t, robot.DefaultDriveChannels(robot.DefaultHardwareMap()), cfg.Hardware.Drive.Channels)
	assert.Equal(t, robot.DefaultServoBaudRate, cfg.Hardware.Arm.BaudRate)
	assert.False(t, cfg.Hardware.Arm.IsCalibrated())
	assert.Equal(t, input.DefaultLayout(), cfg.Input.Layout)
	assert.Empty(t, cfg.Input.Joystick)
	assert.Equal(t, teleop.DefaultConfig(), cfg.Teleop)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrNotFound)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().Teleop, cfg.Teleop)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"hardware": `), 0644))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BASICDRIVE_HARDWARE_SIM", "true")
	t.Setenv("BASICDRIVE_TELEOP_LOOP_DELAY", "20ms")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, ErrNotFound)

	assert.True(t, cfg.Hardware.Sim)
	assert.Equal(t, 20*time.Millisecond, cfg.Teleop.LoopDelay)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	cfg := Default()
	cfg.Hardware.Drive.Port = "/dev/ttyACM1"
	cfg.Hardware.Arm.Port = "/dev/ttyUSB1"
	cfg.Hardware.Arm.Calibration = robot.MotorCalibration{ID: 7, HomingOffset: 2048, RangeMin: 900, RangeMax: 3100}
	cfg.Input.Joystick = input.DefaultJoystickDevice
	cfg.Input.Layout.DpadUpButton = 12
	cfg.Teleop.ArmInterval = 75 * time.Millisecond
	require.NoError(t, cfg.SaveTo(path))
	assert.True(t, ExistsAt(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"75ms"`)
	assert.NotContains(t, string(raw), "homing_offset", "latched at bind time, not stored")

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Hardware.Arm.Calibration.HomingOffset)
	cfg.Hardware.Arm.Calibration.HomingOffset = 0
	assert.Equal(t, cfg, loaded)
}
