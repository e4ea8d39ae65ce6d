package input

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultJoystickDevice is the first joystick of the Linux joystick API.
const DefaultJoystickDevice = "/dev/input/js0"

// Joystick event types. EventInit is or'ed in for the synthetic events the
// kernel sends on open to report the initial state.
const (
	EventButton uint8 = 0x01
	EventAxis   uint8 = 0x02
	EventInit   uint8 = 0x80
)

// Event is one Linux joystick API event (struct js_event).
type Event struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

// ReadEvent reads one event from r.
func ReadEvent(r io.Reader) (Event, error) {
	var e Event
	err := binary.Read(r, binary.LittleEndian, &e)
	return e, err
}

// Layout maps joystick axis and button numbers to gamepad controls.
// A negative number leaves the control unmapped.
type Layout struct {
	LeftStickX  int `json:"left_stick_x" mapstructure:"left_stick_x"`
	LeftStickY  int `json:"left_stick_y" mapstructure:"left_stick_y"`
	RightStickX int `json:"right_stick_x" mapstructure:"right_stick_x"`
	RightStickY int `json:"right_stick_y" mapstructure:"right_stick_y"`
	// DpadX and DpadY are hat axes. Pads that report the dpad as buttons use
	// the Dpad*Button fields instead.
	DpadX int `json:"dpad_x" mapstructure:"dpad_x"`
	DpadY int `json:"dpad_y" mapstructure:"dpad_y"`

	DpadUpButton    int `json:"dpad_up_button" mapstructure:"dpad_up_button"`
	DpadDownButton  int `json:"dpad_down_button" mapstructure:"dpad_down_button"`
	DpadLeftButton  int `json:"dpad_left_button" mapstructure:"dpad_left_button"`
	DpadRightButton int `json:"dpad_right_button" mapstructure:"dpad_right_button"`
	LeftBumper      int `json:"left_bumper" mapstructure:"left_bumper"`
	RightBumper     int `json:"right_bumper" mapstructure:"right_bumper"`
}

// DefaultLayout is the layout of an Xbox-style pad on the xpad driver.
func DefaultLayout() Layout {
	return Layout{
		LeftStickX:      0,
		LeftStickY:      1,
		RightStickX:     3,
		RightStickY:     4,
		DpadX:           6,
		DpadY:           7,
		DpadUpButton:    -1,
		DpadDownButton:  -1,
		DpadLeftButton:  -1,
		DpadRightButton: -1,
		LeftBumper:      4,
		RightBumper:     5,
	}
}

// Joystick is a Source fed by a Linux joystick device. The device reports
// changes only, so the latest value of every control is kept.
type Joystick struct {
	r      io.ReadCloser
	layout Layout
	logger *zap.Logger

	mu  sync.Mutex
	pad Gamepad
}

// NewJoystick reads events from r.
func NewJoystick(r io.ReadCloser, layout Layout, logger *zap.Logger) *Joystick {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Joystick{r: r, layout: layout, logger: logger}
}

// OpenJoystick opens a joystick device such as /dev/input/js0.
func OpenJoystick(path string, layout Layout, logger *zap.Logger) (*Joystick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open joystick %s", path)
	}
	return NewJoystick(f, layout, logger), nil
}

// Run reads events until the device fails or ctx is done. All controls read
// idle once it returns, so a disconnected pad stops the robot.
func (j *Joystick) Run(ctx context.Context) error {
	defer j.idle()

	stop := context.AfterFunc(ctx, func() { _ = j.r.Close() })
	defer stop()

	for {
		e, err := ReadEvent(j.r)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read joystick")
		}
		j.Apply(e)
	}
}

// Apply updates the gamepad state from one event.
func (j *Joystick) Apply(e Event) {
	l := j.layout
	n := int(e.Number)

	j.mu.Lock()
	defer j.mu.Unlock()
	p := &j.pad

	switch e.Type &^ EventInit {
	case EventAxis:
		v := axisValue(e.Value)
		switch n {
		case l.LeftStickX:
			p.LeftStickX = v
		case l.LeftStickY:
			p.LeftStickY = v
		case l.RightStickX:
			p.RightStickX = v
		case l.RightStickY:
			p.RightStickY = v
		case l.DpadX:
			p.DpadLeft, p.DpadRight = e.Value < 0, e.Value > 0
		case l.DpadY:
			p.DpadUp, p.DpadDown = e.Value < 0, e.Value > 0
		default:
			return
		}
	case EventButton:
		pressed := e.Value != 0
		switch n {
		case l.LeftBumper:
			p.LeftBumper = pressed
		case l.RightBumper:
			p.RightBumper = pressed
		case l.DpadUpButton:
			p.DpadUp = pressed
		case l.DpadDownButton:
			p.DpadDown = pressed
		case l.DpadLeftButton:
			p.DpadLeft = pressed
		case l.DpadRightButton:
			p.DpadRight = pressed
		default:
			return
		}
	default:
		return
	}
	j.logger.Debug("joystick event",
		zap.Uint8("type", e.Type),
		zap.Uint8("number", e.Number),
		zap.Int16("value", e.Value),
	)
}

// Snapshot returns the joystick as gamepad 1; gamepad 2 is idle.
func (j *Joystick) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{Gamepad1: j.pad}
}

// Close closes the device.
func (j *Joystick) Close() error {
	return j.r.Close()
}

func (j *Joystick) idle() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pad = Gamepad{}
}

func axisValue(v int16) float64 {
	return max(-1, float64(v)/math.MaxInt16)
}
