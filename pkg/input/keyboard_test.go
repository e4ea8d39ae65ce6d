package input

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestKeyboardSticks(t *testing.T) {
	clk := clock.NewMock()
	kb := NewKeyboard(nil, 0, clk)

	assert.True(t, kb.Press("w"))
	assert.True(t, kb.Press("l"))
	gp := kb.Snapshot().Gamepad1

	assert.Equal(t, -1.0, gp.LeftStickY, "forward reads negative")
	assert.Equal(t, 1.0, gp.RightStickX)
	assert.Equal(t, 0.0, gp.RightStickY)
	assert.Equal(t, 0.0, gp.LeftStickX)
}

func TestKeyboardOpposingKeysCancel(t *testing.T) {
	kb := NewKeyboard(nil, 0, clock.NewMock())
	kb.Press("i")
	kb.Press("k")
	assert.Equal(t, 0.0, kb.Snapshot().Gamepad1.RightStickY)
}

func TestKeyboardHoldExpires(t *testing.T) {
	clk := clock.NewMock()
	kb := NewKeyboard(nil, 100*time.Millisecond, clk)

	kb.Press("left")
	kb.Press("]")
	assert.True(t, kb.Snapshot().Gamepad1.DpadLeft)
	assert.True(t, kb.Snapshot().Gamepad1.RightBumper)

	clk.Add(99 * time.Millisecond)
	assert.True(t, kb.Snapshot().Gamepad1.DpadLeft)

	clk.Add(time.Millisecond)
	assert.Equal(t, Gamepad{}, kb.Snapshot().Gamepad1)
}

func TestKeyboardRepeatExtendsHold(t *testing.T) {
	clk := clock.NewMock()
	kb := NewKeyboard(nil, 100*time.Millisecond, clk)

	for i := 0; i < 5; i++ {
		kb.Press("[")
		clk.Add(60 * time.Millisecond)
		assert.True(t, kb.Snapshot().Gamepad1.LeftBumper)
	}
}

func TestKeyboardUnmapped(t *testing.T) {
	kb := NewKeyboard(nil, 0, clock.NewMock())
	assert.False(t, kb.Press("x"))
	assert.Equal(t, Snapshot{}, kb.Snapshot())
}

func TestKeyboardRelease(t *testing.T) {
	kb := NewKeyboard(nil, 0, clock.NewMock())
	kb.Press("up")
	kb.Release()
	assert.False(t, kb.Snapshot().Gamepad1.DpadUp)
}

func TestGamepadClamped(t *testing.T) {
	gp := Gamepad{LeftStickY: -1.5, RightStickX: 2, RightBumper: true}.Clamped()
	assert.Equal(t, Gamepad{LeftStickY: -1, RightStickX: 1, RightBumper: true}, gp)
}

func TestStaticAndFunc(t *testing.T) {
	snap := Snapshot{Gamepad1: Gamepad{DpadUp: true}}
	assert.Equal(t, snap, Static(snap).Snapshot())

	var calls int
	src := Func(func() Snapshot {
		calls++
		return snap
	})
	src.Snapshot()
	src.Snapshot()
	assert.Equal(t, 2, calls)
}
