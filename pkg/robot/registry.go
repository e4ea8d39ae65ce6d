package robot

import (
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Registry resolves device names to motors.
type Registry interface {
	Motor(name string) (Motor, error)
}

// Devices is a Registry backed by a map of named motors.
// It owns any io.Closer added with AddCloser.
type Devices struct {
	mu      sync.RWMutex
	motors  map[string]Motor
	closers []io.Closer
}

// NewDevices creates an empty device registry.
func NewDevices() *Devices {
	return &Devices{motors: make(map[string]Motor)}
}

// Add registers a motor under name, replacing any previous one.
func (d *Devices) Add(name string, m Motor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.motors[name] = m
}

// AddCloser registers a resource to release on Close.
func (d *Devices) AddCloser(c io.Closer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closers = append(d.closers, c)
}

// Motor returns the motor registered under name.
func (d *Devices) Motor(name string) (Motor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.motors[name]
	if !ok {
		return nil, errors.Wrapf(ErrDeviceNotFound, "motor %q", name)
	}
	return m, nil
}

// Names returns the registered device names, sorted.
func (d *Devices) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.motors))
	for name := range d.motors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases all owned resources.
func (d *Devices) Close() error {
	d.mu.Lock()
	closers := d.closers
	d.closers = nil
	d.mu.Unlock()

	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
