package input

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventStream is an io.ReadCloser that blocks after its events until closed.
type eventStream struct {
	events *bytes.Reader
	closed chan struct{}
}

func newEventStream(t *testing.T, events ...Event) *eventStream {
	t.Helper()
	var buf bytes.Buffer
	for _, e := range events {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, e))
	}
	return &eventStream{events: bytes.NewReader(buf.Bytes()), closed: make(chan struct{})}
}

func (s *eventStream) Read(p []byte) (int, error) {
	if s.events.Len() > 0 {
		return s.events.Read(p)
	}
	<-s.closed
	return 0, io.ErrClosedPipe
}

func (s *eventStream) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

func TestReadEvent(t *testing.T) {
	raw := []byte{0x10, 0x27, 0, 0, 0x01, 0x80, EventAxis | EventInit, 1}
	e, err := ReadEvent(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, Event{Time: 10000, Value: -32767, Type: EventAxis | EventInit, Number: 1}, e)

	_, err = ReadEvent(bytes.NewReader(raw[:5]))
	assert.Error(t, err)
}

func TestJoystickApply(t *testing.T) {
	js := NewJoystick(newEventStream(t), DefaultLayout(), nil)

	js.Apply(Event{Type: EventAxis, Number: 1, Value: -math.MaxInt16})
	js.Apply(Event{Type: EventAxis, Number: 3, Value: math.MaxInt16 / 2})
	js.Apply(Event{Type: EventAxis, Number: 4, Value: math.MinInt16})
	js.Apply(Event{Type: EventAxis, Number: 7, Value: -math.MaxInt16})
	js.Apply(Event{Type: EventAxis, Number: 6, Value: math.MaxInt16})
	js.Apply(Event{Type: EventButton | EventInit, Number: 5, Value: 1})
	js.Apply(Event{Type: EventButton, Number: 9, Value: 1})

	gp := js.Snapshot().Gamepad1
	assert.Equal(t, -1.0, gp.LeftStickY)
	assert.InDelta(t, 0.5, gp.RightStickX, 1e-4)
	assert.Equal(t, -1.0, gp.RightStickY)
	assert.True(t, gp.DpadUp)
	assert.False(t, gp.DpadDown)
	assert.True(t, gp.DpadRight)
	assert.True(t, gp.RightBumper)
	assert.False(t, gp.LeftBumper)

	js.Apply(Event{Type: EventAxis, Number: 7, Value: 0})
	js.Apply(Event{Type: EventButton, Number: 5, Value: 0})
	gp = js.Snapshot().Gamepad1
	assert.False(t, gp.DpadUp)
	assert.False(t, gp.RightBumper)
}

func TestJoystickDpadButtons(t *testing.T) {
	layout := DefaultLayout()
	layout.DpadX, layout.DpadY = -1, -1
	layout.DpadLeftButton = 13
	js := NewJoystick(newEventStream(t), layout, nil)

	js.Apply(Event{Type: EventButton, Number: 13, Value: 1})
	assert.True(t, js.Snapshot().Gamepad1.DpadLeft)
}

func TestJoystickRun(t *testing.T) {
	stream := newEventStream(t,
		Event{Type: EventAxis | EventInit, Number: 0, Value: 0},
		Event{Type: EventAxis, Number: 1, Value: -math.MaxInt16},
		Event{Type: EventButton, Number: 4, Value: 1},
	)
	js := NewJoystick(stream, DefaultLayout(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- js.Run(ctx) }()

	require.Eventually(t, func() bool {
		return js.Snapshot().Gamepad1.LeftBumper
	}, time.Second, time.Millisecond)
	assert.Equal(t, -1.0, js.Snapshot().Gamepad1.LeftStickY)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, Gamepad{}, js.Snapshot().Gamepad1, "idle after disconnect")
}

func TestJoystickRunDeviceGone(t *testing.T) {
	js := NewJoystick(io.NopCloser(bytes.NewReader(nil)), DefaultLayout(), nil)
	err := js.Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestMerge(t *testing.T) {
	a := Static{Gamepad1: Gamepad{LeftStickY: -0.3, RightStickX: 0.9, DpadUp: true}}
	b := Static{Gamepad1: Gamepad{LeftStickY: 0.8, RightStickX: -0.2, RightBumper: true}}

	gp := Merge(a, b).Snapshot().Gamepad1
	assert.Equal(t, 0.8, gp.LeftStickY)
	assert.Equal(t, 0.9, gp.RightStickX)
	assert.True(t, gp.DpadUp)
	assert.True(t, gp.RightBumper)
	assert.False(t, gp.LeftBumper)

	assert.Equal(t, Snapshot{}, Merge().Snapshot())
}
