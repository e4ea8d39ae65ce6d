package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/basicdrive/pkg/input"
	"github.com/gwillem/basicdrive/pkg/robot"
	"github.com/gwillem/basicdrive/pkg/telemetry"
	"github.com/gwillem/basicdrive/pkg/teleop"
)

func newTestDriveModel(t *testing.T) driveModel {
	t.Helper()
	hwMap := robot.DefaultHardwareMap()
	hw, err := robot.Bind(context.Background(), robot.NewSimDevices(hwMap, nil), hwMap)
	require.NoError(t, err)

	kb := input.NewKeyboard(nil, 0, nil)
	display := telemetry.NewBuffer(nil)
	ctrl, err := teleop.NewController(teleop.DefaultConfig(), hw, kb, display, nil)
	require.NoError(t, err)

	return newDriveModel(ctrl, teleop.NewPeriod(0, nil), kb, display, newLogSink(4).Lines())
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDriveModelKeysFeedKeyboard(t *testing.T) {
	m := newTestDriveModel(t)

	next, cmd := m.Update(runeKey("w"))
	assert.Nil(t, cmd)
	m = next.(driveModel)
	assert.Equal(t, -1.0, m.keyboard.Snapshot().Gamepad1.LeftStickY)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(driveModel)
	assert.Equal(t, 0.0, m.keyboard.Snapshot().Gamepad1.LeftStickY)
}

func TestDriveModelStartAndQuit(t *testing.T) {
	m := newTestDriveModel(t)
	assert.False(t, m.period.Started())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(driveModel)
	assert.True(t, m.period.IsActive())

	next, cmd := m.Update(runeKey("q"))
	m = next.(driveModel)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.period.IsActive())
	assert.Equal(t, "Teleop stopped.\n", m.View())
}

func TestDriveModelStatusAndFrame(t *testing.T) {
	m := newTestDriveModel(t)

	next, cmd := m.Update(statusMsg(teleop.Status{Left: 0.5, Right: -0.5}))
	m = next.(driveModel)
	assert.NotNil(t, cmd)
	require.NotNil(t, m.last)
	assert.Equal(t, 0.5, m.last.Left)
	assert.False(t, m.hasMovement(teleop.Status{Left: 0.5, Right: -0.5}))
	assert.True(t, m.hasMovement(teleop.Status{Left: 0.4, Right: -0.5}))

	next, _ = m.Update(frameMsg(telemetry.Frame{{Key: "Mode", Value: "Tank Drive"}}))
	m = next.(driveModel)
	next, _ = m.Update(logMsg("INFO\tteleop started"))
	m = next.(driveModel)

	view := m.View()
	assert.Contains(t, view, "BasicDrive")
	assert.Contains(t, view, "press space to start")
	assert.Contains(t, view, "Tank Drive")
	assert.Contains(t, view, "teleop started")
}

func TestDriveModelKeepsLastLogs(t *testing.T) {
	m := newTestDriveModel(t)
	for i := 0; i < maxLogs+3; i++ {
		m.addLog(strings.Repeat("x", i+1))
	}
	assert.Len(t, m.logs, maxLogs)
	assert.Equal(t, strings.Repeat("x", maxLogs+3), m.logs[maxLogs-1])
}

func TestBindHint(t *testing.T) {
	missing := &robot.BindingError{Missing: []robot.MotorName{robot.Arm}}
	err := bindHint(missing, "robot.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "basicdrive setup")
	assert.Contains(t, err.Error(), "robot.json")
	var bindErr *robot.BindingError
	require.True(t, errors.As(err, &bindErr))
	assert.Same(t, missing, bindErr)

	setupErr := &robot.BindingError{Role: robot.Arm, Err: errors.New("torque")}
	assert.Same(t, setupErr, bindHint(setupErr, "robot.json"))

	plain := errors.New("no registry")
	assert.Same(t, plain, bindHint(plain, "robot.json"))
}
