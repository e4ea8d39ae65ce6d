package robot

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// MaxSpeed is the full-scale channel value of the drive controller.
const MaxSpeed = 255

// DriveChannels are the channel letters understood by the drive controller.
const DriveChannels = "xyzw"

// DriveController talks to a four-channel motor controller over a serial line.
// Every speed change is sent as one "<channel><sign><hex>\n" line, e.g. "x+7f".
type DriveController struct {
	mu     sync.Mutex
	w      io.WriteCloser
	speeds map[byte]int
}

// NewDriveController wraps an open connection to the controller.
func NewDriveController(w io.WriteCloser) *DriveController {
	return &DriveController{
		w:      w,
		speeds: make(map[byte]int, len(DriveChannels)),
	}
}

// OpenDriveController opens the controller on a serial port.
func OpenDriveController(port string, baudRate int) (*DriveController, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open drive controller on %s", port)
	}
	return NewDriveController(p), nil
}

// Channel returns the motor on channel ch, named name.
func (c *DriveController) Channel(name string, ch byte) (*DriveChannel, error) {
	if !strings.ContainsRune(DriveChannels, rune(ch)) {
		return nil, errors.Errorf("drive controller has no channel %q", ch)
	}
	return &DriveChannel{ctrl: c, name: name, ch: ch, mode: RunUsingEncoder}, nil
}

// Speed returns the last speed sent on channel ch.
func (c *DriveController) Speed(ch byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speeds[ch]
}

func (c *DriveController) send(ch byte, speed int) error {
	speed = min(MaxSpeed, max(-MaxSpeed, speed))

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "%c%+.2x\n", ch, speed); err != nil {
		return errors.Wrapf(err, "write channel %c", ch)
	}
	c.speeds[ch] = speed
	return nil
}

// Close stops every channel and closes the connection.
func (c *DriveController) Close() error {
	for i := 0; i < len(DriveChannels); i++ {
		// Best effort, the port may already be gone.
		_ = c.send(DriveChannels[i], 0)
	}
	return c.w.Close()
}

// DriveChannel is one wheel motor on a DriveController.
// The controller has no position control, so RunToPosition is unsupported.
type DriveChannel struct {
	ctrl *DriveController
	name string
	ch   byte

	mu     sync.Mutex
	dir    Direction
	mode   RunMode
	target int
}

func (m *DriveChannel) SetDirection(ctx context.Context, dir Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir = dir
	return nil
}

func (m *DriveChannel) SetPower(ctx context.Context, power float64) error {
	m.mu.Lock()
	dir, mode := m.dir, m.mode
	m.mu.Unlock()

	if mode == ResetEncoder {
		power = 0
	}
	speed := int(math.Round(ClampPower(power)*MaxSpeed)) * dir.Sign()
	return m.ctrl.send(m.ch, speed)
}

func (m *DriveChannel) SetMode(ctx context.Context, mode RunMode) error {
	if mode == RunToPosition {
		return newUnsupportedError(m.name, mode.String())
	}
	m.mu.Lock()
	m.mode = mode
	m.mu.Unlock()

	if mode == ResetEncoder {
		return m.ctrl.send(m.ch, 0)
	}
	return nil
}

func (m *DriveChannel) SetTargetPosition(ctx context.Context, ticks int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.target = ticks
	return nil
}
