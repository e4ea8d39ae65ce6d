package input

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultHold is how long a key press keeps its control held. Terminals send
// no key-up events, so a held key shows up as auto-repeated presses.
const DefaultHold = 150 * time.Millisecond

// Control is a single gamepad control a key can drive.
type Control int

const (
	LeftStickUp Control = iota
	LeftStickDown
	LeftStickLeft
	LeftStickRight
	RightStickUp
	RightStickDown
	RightStickLeft
	RightStickRight
	DpadUp
	DpadDown
	DpadLeft
	DpadRight
	LeftBumper
	RightBumper
)

// DefaultKeymap maps key names, as reported by bubbletea, to controls.
var DefaultKeymap = map[string]Control{
	"w":     LeftStickUp,
	"s":     LeftStickDown,
	"a":     LeftStickLeft,
	"d":     LeftStickRight,
	"i":     RightStickUp,
	"k":     RightStickDown,
	"j":     RightStickLeft,
	"l":     RightStickRight,
	"up":    DpadUp,
	"down":  DpadDown,
	"left":  DpadLeft,
	"right": DpadRight,
	"[":     LeftBumper,
	"]":     RightBumper,
}

// Keyboard emulates gamepad 1 from key presses.
type Keyboard struct {
	keymap map[string]Control
	hold   time.Duration
	clock  clock.Clock

	mu      sync.Mutex
	pressed map[Control]time.Time
}

// NewKeyboard creates a keyboard source. Zero hold uses DefaultHold, nil
// keymap uses DefaultKeymap and nil clk uses the wall clock.
func NewKeyboard(keymap map[string]Control, hold time.Duration, clk clock.Clock) *Keyboard {
	if keymap == nil {
		keymap = DefaultKeymap
	}
	if hold <= 0 {
		hold = DefaultHold
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Keyboard{
		keymap:  keymap,
		hold:    hold,
		clock:   clk,
		pressed: make(map[Control]time.Time),
	}
}

// Press registers a key press. It returns false for unmapped keys.
func (k *Keyboard) Press(key string) bool {
	c, ok := k.keymap[key]
	if !ok {
		return false
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pressed[c] = k.clock.Now()
	return true
}

// Release drops every held control.
func (k *Keyboard) Release() {
	k.mu.Lock()
	defer k.mu.Unlock()
	clear(k.pressed)
}

// Snapshot returns the emulated gamepad 1; gamepad 2 is idle.
func (k *Keyboard) Snapshot() Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.clock.Now()
	held := func(c Control) bool {
		t, ok := k.pressed[c]
		return ok && now.Sub(t) < k.hold
	}
	axis := func(neg, pos Control) float64 {
		var v float64
		if held(neg) {
			v--
		}
		if held(pos) {
			v++
		}
		return v
	}

	return Snapshot{Gamepad1: Gamepad{
		LeftStickX:  axis(LeftStickLeft, LeftStickRight),
		LeftStickY:  axis(LeftStickUp, LeftStickDown),
		RightStickX: axis(RightStickLeft, RightStickRight),
		RightStickY: axis(RightStickUp, RightStickDown),
		DpadUp:      held(DpadUp),
		DpadDown:    held(DpadDown),
		DpadLeft:    held(DpadLeft),
		DpadRight:   held(DpadRight),
		LeftBumper:  held(LeftBumper),
		RightBumper: held(RightBumper),
	}}
}
