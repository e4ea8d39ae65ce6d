package teleop

import (
	"time"

	"github.com/gwillem/basicdrive/pkg/drive"
)

// Phase is the lifecycle state of the controller.
type Phase int

const (
	WaitingForStart Phase = iota
	Active
	Stopped
)

func (p Phase) String() string {
	switch p {
	case WaitingForStart:
		return "waiting for start"
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ControlState is the session state mutated by the loop.
// ArmTarget is never positive: the arm cannot go above its zero reference.
type ControlState struct {
	BasePower float64
	ArmTarget int
	Mode      drive.Mode
}

// NewControlState returns the state at the start of a period.
func NewControlState() ControlState {
	return ControlState{BasePower: 1, Mode: drive.Tank}
}

// Status is the snapshot published after every tick.
type Status struct {
	Phase     Phase
	Elapsed   time.Duration
	Left      float64
	Right     float64
	BasePower float64
	Mode      drive.Mode
	ArmTarget int
	Timestamp time.Time
}
