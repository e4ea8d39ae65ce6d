// Package telemetry collects the status lines shown to the operator.
package telemetry

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Display accepts key/value status lines and flushes them once per tick.
type Display interface {
	// AddData sets the line for key, formatting args with format.
	AddData(key, format string, args ...any)
	// Update publishes the lines added since the previous Update.
	Update()
}

// Line is one status entry.
type Line struct {
	Key   string
	Value string
}

// Frame is the set of lines published by one Update, in insertion order.
type Frame []Line

// Get returns the value for key.
func (f Frame) Get(key string) (string, bool) {
	for _, l := range f {
		if l.Key == key {
			return l.Value, true
		}
	}
	return "", false
}

// Buffer is a Display that publishes frames on a channel.
// Slow consumers only ever see the latest frame.
type Buffer struct {
	logger *zap.Logger

	mu      sync.Mutex
	pending Frame
	last    Frame
	frames  chan Frame
}

// NewBuffer creates a display buffer. Published frames are logged at debug level.
func NewBuffer(logger *zap.Logger) *Buffer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Buffer{
		logger: logger,
		frames: make(chan Frame, 1),
	}
}

// AddData sets the line for key. A key added twice before Update keeps its
// first position and the latest value.
func (b *Buffer) AddData(key, format string, args ...any) {
	value := fmt.Sprintf(format, args...)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.pending {
		if b.pending[i].Key == key {
			b.pending[i].Value = value
			return
		}
	}
	b.pending = append(b.pending, Line{Key: key, Value: value})
}

// Update publishes the pending lines as a frame.
func (b *Buffer) Update() {
	b.mu.Lock()
	frame := b.pending
	b.pending = nil
	b.last = frame
	b.mu.Unlock()

	if ce := b.logger.Check(zap.DebugLevel, "telemetry"); ce != nil {
		fields := make([]zap.Field, 0, len(frame))
		for _, l := range frame {
			fields = append(fields, zap.String(l.Key, l.Value))
		}
		ce.Write(fields...)
	}

	select {
	case b.frames <- frame:
	default:
		// Drop old frame if channel full, replace with new
		select {
		case <-b.frames:
		default:
		}
		select {
		case b.frames <- frame:
		default:
		}
	}
}

// Frames returns a channel that receives published frames.
func (b *Buffer) Frames() <-chan Frame {
	return b.frames
}

// Last returns the most recently published frame.
func (b *Buffer) Last() Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
