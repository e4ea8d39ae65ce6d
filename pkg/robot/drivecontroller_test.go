package robot

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	bytes.Buffer
	writeErr error
	closeErr error
	closed   bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.Buffer.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return p.closeErr
}

func TestDriveChannelFrames(t *testing.T) {
	ctx := context.Background()
	port := &fakePort{}
	ctrl := NewDriveController(port)

	left, err := ctrl.Channel("leftFront", 'x')
	require.NoError(t, err)
	right, err := ctrl.Channel("rightFront", 'z')
	require.NoError(t, err)
	require.NoError(t, right.SetDirection(ctx, Reverse))

	require.NoError(t, left.SetPower(ctx, 1))
	require.NoError(t, left.SetPower(ctx, 0.5))
	require.NoError(t, right.SetPower(ctx, 1))
	require.NoError(t, right.SetPower(ctx, -2))

	assert.Equal(t, "x+ff\nx+80\nz-ff\nz+ff\n", port.String())
	assert.Equal(t, 128, ctrl.Speed('x'))
	assert.Equal(t, 255, ctrl.Speed('z'))
}

func TestDriveChannelModes(t *testing.T) {
	ctx := context.Background()
	port := &fakePort{}
	ctrl := NewDriveController(port)
	m, err := ctrl.Channel("leftBack", 'y')
	require.NoError(t, err)

	require.NoError(t, m.SetMode(ctx, ResetEncoder))
	require.NoError(t, m.SetPower(ctx, 0.7))
	assert.Equal(t, 0, ctrl.Speed('y'), "reset mode holds the motor stopped")

	require.NoError(t, m.SetMode(ctx, RunUsingEncoder))
	require.NoError(t, m.SetPower(ctx, -0.2))
	assert.Equal(t, -51, ctrl.Speed('y'))

	err = m.SetMode(ctx, RunToPosition)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.NoError(t, m.SetTargetPosition(ctx, 10))
}

func TestDriveControllerUnknownChannel(t *testing.T) {
	ctrl := NewDriveController(&fakePort{})
	_, err := ctrl.Channel("arm", 'q')
	assert.Error(t, err)
}

func TestDriveControllerWriteError(t *testing.T) {
	port := &fakePort{writeErr: errors.New("unplugged")}
	ctrl := NewDriveController(port)
	m, err := ctrl.Channel("leftFront", 'x')
	require.NoError(t, err)

	err = m.SetPower(context.Background(), 1)
	assert.ErrorContains(t, err, "unplugged")
	assert.Equal(t, 0, ctrl.Speed('x'))
}

func TestDriveControllerCloseStopsChannels(t *testing.T) {
	port := &fakePort{}
	ctrl := NewDriveController(port)

	require.NoError(t, ctrl.Close())
	assert.Equal(t, "x+00\ny+00\nz+00\nw+00\n", port.String())
	assert.True(t, port.closed)
}

func TestDefaultDriveChannels(t *testing.T) {
	channels := DefaultDriveChannels(DefaultHardwareMap())
	assert.Equal(t, map[string]string{
		"x": "leftFront",
		"y": "leftBack",
		"z": "rightFront",
		"w": "rightBack",
	}, channels)
}

func TestOpenSim(t *testing.T) {
	devices, err := Open(context.Background(), HardwareConfig{Sim: true, Devices: DefaultHardwareMap()}, nil)
	require.NoError(t, err)
	defer devices.Close()

	assert.Equal(t, []string{"arm", "leftBack", "leftFront", "rightBack", "rightFront"}, devices.Names())
}

func TestOpenWithoutPortsSimulates(t *testing.T) {
	hw := DefaultHardwareMap()
	hw.Arm = "lift"
	devices, err := Open(context.Background(), HardwareConfig{Devices: hw}, nil)
	require.NoError(t, err)
	defer devices.Close()

	assert.Equal(t, []string{"leftBack", "leftFront", "lift", "rightBack", "rightFront"}, devices.Names())
	_, err = Bind(context.Background(), devices, hw)
	assert.NoError(t, err)
}
