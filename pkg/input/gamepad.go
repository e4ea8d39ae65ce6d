// Package input provides gamepad snapshots read once per control tick.
package input

import (
	"math"

	"github.com/gwillem/basicdrive/pkg/robot"
)

// Gamepad is the state of one gamepad. Stick axes are in [-1, 1]; Y reads
// negative when the stick is pushed forward.
type Gamepad struct {
	LeftStickX  float64
	LeftStickY  float64
	RightStickX float64
	RightStickY float64

	DpadUp    bool
	DpadDown  bool
	DpadLeft  bool
	DpadRight bool

	LeftBumper  bool
	RightBumper bool
}

// Clamped returns a copy with every axis clamped to [-1, 1].
func (g Gamepad) Clamped() Gamepad {
	g.LeftStickX = robot.ClampPower(g.LeftStickX)
	g.LeftStickY = robot.ClampPower(g.LeftStickY)
	g.RightStickX = robot.ClampPower(g.RightStickX)
	g.RightStickY = robot.ClampPower(g.RightStickY)
	return g
}

// Snapshot is the state of both gamepads at one instant.
type Snapshot struct {
	Gamepad1 Gamepad
	Gamepad2 Gamepad
}

// Source yields the current input snapshot.
type Source interface {
	Snapshot() Snapshot
}

// Static is a Source that always returns the same snapshot.
type Static Snapshot

// Snapshot returns s.
func (s Static) Snapshot() Snapshot {
	return Snapshot(s)
}

// Func adapts a function to a Source.
type Func func() Snapshot

// Snapshot calls f.
func (f Func) Snapshot() Snapshot {
	return f()
}

// Merge combines sources into one. Buttons are pressed if pressed on any
// source; each axis takes the value with the largest magnitude.
func Merge(sources ...Source) Source {
	return Func(func() Snapshot {
		var out Snapshot
		for _, src := range sources {
			s := src.Snapshot()
			out.Gamepad1 = mergePads(out.Gamepad1, s.Gamepad1)
			out.Gamepad2 = mergePads(out.Gamepad2, s.Gamepad2)
		}
		return out
	})
}

func mergePads(a, b Gamepad) Gamepad {
	axis := func(x, y float64) float64 {
		if math.Abs(y) > math.Abs(x) {
			return y
		}
		return x
	}
	return Gamepad{
		LeftStickX:  axis(a.LeftStickX, b.LeftStickX),
		LeftStickY:  axis(a.LeftStickY, b.LeftStickY),
		RightStickX: axis(a.RightStickX, b.RightStickX),
		RightStickY: axis(a.RightStickY, b.RightStickY),
		DpadUp:      a.DpadUp || b.DpadUp,
		DpadDown:    a.DpadDown || b.DpadDown,
		DpadLeft:    a.DpadLeft || b.DpadLeft,
		DpadRight:   a.DpadRight || b.DpadRight,
		LeftBumper:  a.LeftBumper || b.LeftBumper,
		RightBumper: a.RightBumper || b.RightBumper,
	}
}
