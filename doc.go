// Package basicdrive provides teleop control for a four wheel robot with a
// single positional arm.
//
// Two gamepad sticks drive the wheels in tank or arcade mode, the dpad changes
// the mode and the overall power, and the bumpers step the arm up and down.
// Without a gamepad the keyboard stands in for one.
//
// # Installation
//
//	go install github.com/gwillem/basicdrive/cmd/basicdrive@latest
//
// # Usage
//
// First, run setup to pick the drive controller port and record the arm range:
//
//	basicdrive setup
//
// Then start the driver-controlled period:
//
//	basicdrive drive
//
// Pass --sim to drive simulated motors without any hardware.
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/basicdrive: CLI with setup and drive commands
//   - cmd/robot-info: serial port and servo scanner
//   - pkg/robot: motors, hardware binding, drive controller and arm servo
//   - pkg/drive: tank and arcade power mapping
//   - pkg/input: gamepad snapshots and keyboard emulation
//   - pkg/ratelimit: leading-edge rate gate
//   - pkg/telemetry: operator status lines
//   - pkg/teleop: the control loop and its lifecycle
//   - pkg/config: configuration file
package basicdrive
