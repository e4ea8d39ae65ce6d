package robot

import (
	"context"
	"strings"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// PortInfo describes a serial port and the feetech servos answering on it.
type PortInfo struct {
	Port   string
	Servos []feetech.FoundServo
}

// HasServos reports whether any servo answered on the port.
func (p PortInfo) HasServos() bool {
	return len(p.Servos) > 0
}

// ScanPorts lists serial ports and probes each for feetech servos with IDs
// between minID and maxID. Ports that fail to open are still listed, without servos.
func ScanPorts(ctx context.Context, minID, maxID int) ([]PortInfo, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "list serial ports")
	}

	var infos []PortInfo
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		info := PortInfo{Port: port}
		if servos, err := probeServos(ctx, port, minID, maxID); err == nil {
			info.Servos = servos
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func probeServos(ctx context.Context, port string, minID, maxID int) ([]feetech.FoundServo, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: DefaultServoBaudRate,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	defer bus.Close()

	return bus.Scan(ctx, minID, maxID)
}

// ServoPositions reads the raw position of servo id on port. It is used by
// setup to record the arm's range of motion.
type ServoPositions struct {
	bus   *feetech.Bus
	group *feetech.ServoGroup
	id    int
}

// OpenServoPositions opens port with torque disabled on servo id so the joint
// can be moved by hand.
func OpenServoPositions(ctx context.Context, port string, id int) (*ServoPositions, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: DefaultServoBaudRate,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open servo bus on %s", port)
	}
	group := feetech.NewServoGroupByIDs(bus, id)
	if err := group.DisableAll(ctx); err != nil {
		bus.Close()
		return nil, errors.Wrapf(err, "disable servo %d", id)
	}
	return &ServoPositions{bus: bus, group: group, id: id}, nil
}

// Read returns the current raw position.
func (s *ServoPositions) Read(ctx context.Context) (int, error) {
	positions, err := s.group.Positions(ctx)
	if err != nil {
		return 0, err
	}
	raw, ok := positions[s.id]
	if !ok {
		return 0, errors.Errorf("servo %d did not report a position", s.id)
	}
	return raw, nil
}

// Close closes the bus.
func (s *ServoPositions) Close() error {
	return s.bus.Close()
}

// Wiggle moves servo id on port back and forth around its current position
// so the operator can see which joint it drives. Torque is off afterwards.
func Wiggle(ctx context.Context, port string, id, amount int) error {
	s, err := OpenServoPositions(ctx, port, id)
	if err != nil {
		return err
	}
	defer s.Close()

	origin, err := s.Read(ctx)
	if err != nil {
		return err
	}
	if err := s.group.EnableAll(ctx); err != nil {
		return errors.Wrapf(err, "enable servo %d", id)
	}
	defer s.group.DisableAll(ctx)

	for _, pos := range []int{origin + amount, origin - amount, origin + amount, origin - amount, origin} {
		if err := s.group.SetPositions(ctx, feetech.PositionMap{id: pos}); err != nil {
			return errors.Wrapf(err, "move servo %d", id)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(150 * time.Millisecond):
		}
	}
	return nil
}
