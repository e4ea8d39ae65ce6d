// Package drive maps joystick axes to left and right wheel power.
package drive

import "github.com/gwillem/basicdrive/pkg/robot"

// Mode selects the drive mapping.
type Mode int

const (
	// Tank drives each side from its own stick.
	Tank Mode = iota
	// Arcade combines a forward axis and a turn axis (POV drive).
	Arcade
)

func (m Mode) String() string {
	if m == Arcade {
		return "Arcade Drive"
	}
	return "Tank Drive"
}

// TankPower passes the stick values through unchanged.
func TankPower(leftStickY, rightStickY float64) (left, right float64) {
	return leftStickY, rightStickY
}

// ArcadePower mixes drive and turn into side powers, each clamped to [-1, 1].
// Stick Y reads negative when pushed forward, so drive is its negation.
func ArcadePower(leftStickY, rightStickX float64) (left, right float64) {
	drive := -leftStickY
	turn := rightStickX
	return robot.ClampPower(drive + turn), robot.ClampPower(drive - turn)
}

// Power computes the side powers for mode from the relevant stick axes.
func Power(mode Mode, leftStickY, rightStickX, rightStickY float64) (left, right float64) {
	if mode == Arcade {
		return ArcadePower(leftStickY, rightStickX)
	}
	return TankPower(leftStickY, rightStickY)
}
