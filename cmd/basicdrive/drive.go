package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/basicdrive/pkg/config"
	"github.com/gwillem/basicdrive/pkg/input"
	"github.com/gwillem/basicdrive/pkg/robot"
	"github.com/gwillem/basicdrive/pkg/telemetry"
	"github.com/gwillem/basicdrive/pkg/teleop"
)

type DriveCommand struct {
	Sim     bool   `long:"sim" description:"Drive simulated motors instead of hardware"`
	Config  string `long:"config" default:"basicdrive.json" description:"Configuration file"`
	Verbose bool   `short:"v" long:"verbose" description:"Log at debug level"`
	LogFile string `long:"log-file" description:"Also write logs to this file"`
	// Joystick overrides input.joystick from the config file.
	Joystick string `long:"joystick" optional:"yes" optional-value:"/dev/input/js0" description:"Read gamepad 1 from a joystick device"`
}

const (
	headerHeight = 2 // title + blank line
	panelHeight  = 7 // telemetry box
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Side colors for the power chart
var sideColors = map[string]string{
	"left":  "46", // green
	"right": "51", // cyan
}

var sides = []string{"left", "right"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	idleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

type driveModel struct {
	ctrl     *teleop.Controller
	period   *teleop.Period
	keyboard *input.Keyboard
	display  *telemetry.Buffer
	logLines <-chan string

	chart    *streamlinechart.Model
	width    int // terminal width
	height   int // terminal height
	logs     []string
	frame    telemetry.Frame
	last     *teleop.Status // previous status, to freeze the chart when idle
	quitting bool
}

func (m *driveModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// hasMovement checks if the wheel powers changed since the last status
func (m *driveModel) hasMovement(s teleop.Status) bool {
	if m.last == nil {
		return true
	}
	return s.Left != m.last.Left || s.Right != m.last.Right
}

// Messages from the controller
type statusMsg teleop.Status
type frameMsg telemetry.Frame
type logMsg string

func waitForStatus(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return statusMsg(<-ctrl.Statuses())
	}
}

func waitForFrame(display *telemetry.Buffer) tea.Cmd {
	return func() tea.Msg {
		return frameMsg(<-display.Frames())
	}
}

func waitForLog(lines <-chan string) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-lines)
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *driveModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 12 // default size before we know terminal size
	}
	width = max(40, m.width-borderSize-2)
	height = max(6, m.height-headerHeight-panelHeight-legendHeight-footerHeight-borderSize)
	return width, height
}

func (m *driveModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func newDriveModel(ctrl *teleop.Controller, period *teleop.Period, kb *input.Keyboard, display *telemetry.Buffer, logLines <-chan string) driveModel {
	chart := streamlinechart.New(80, 12,
		streamlinechart.WithYRange(-1, 1),
	)
	for _, side := range sides {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(sideColors[side]))
		chart.SetDataSetStyles(side, runes.ThinLineStyle, style)
	}

	return driveModel{
		ctrl:     ctrl,
		period:   period,
		keyboard: kb,
		display:  display,
		logLines: logLines,
		chart:    &chart,
	}
}

func (m driveModel) Init() tea.Cmd {
	return tea.Batch(
		waitForStatus(m.ctrl),
		waitForFrame(m.display),
		waitForLog(m.logLines),
	)
}

func (m driveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.period.Stop()
			m.keyboard.Release()
			m.quitting = true
			return m, tea.Quit
		case " ", "space", "enter":
			m.period.Start()
		case "esc":
			m.keyboard.Release()
		default:
			m.keyboard.Press(key)
		}
		return m, nil

	case statusMsg:
		s := teleop.Status(msg)
		if m.hasMovement(s) {
			m.chart.PushDataSet("left", s.Left)
			m.chart.PushDataSet("right", s.Right)
			m.chart.DrawAll()
			m.last = &s
		}
		return m, waitForStatus(m.ctrl)

	case frameMsg:
		m.frame = telemetry.Frame(msg)
		return m, waitForFrame(m.display)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.logLines)
	}

	return m, nil
}

func (m driveModel) View() string {
	if m.quitting {
		return "Teleop stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("BasicDrive"))
	sb.WriteString(" - ")
	sb.WriteString(m.renderPhase())
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	// Telemetry
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(40, m.width-4))
	sb.WriteString(panel.Render(renderFrame(m.frame)))
	sb.WriteString("\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(40, m.width-4))

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render(helpText)
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

const helpText = "space start · q quit · wasd/ijkl sticks · arrows dpad · [ ] arm · esc release"

func (m driveModel) renderPhase() string {
	switch m.ctrl.Phase() {
	case teleop.WaitingForStart:
		return idleStyle.Render("press space to start")
	case teleop.Active:
		if rem := m.period.Remaining(); rem > 0 {
			return activeStyle.Render(fmt.Sprintf("active, %s left", rem.Round(time.Second)))
		}
		return activeStyle.Render("active")
	default:
		return statusStyle.Render("stopped")
	}
}

func renderFrame(f telemetry.Frame) string {
	if len(f) == 0 {
		return statusStyle.Render("no telemetry yet")
	}
	lines := make([]string, 0, len(f))
	for _, l := range f {
		lines = append(lines, keyStyle.Render(l.Key+":")+" "+l.Value)
	}
	return strings.Join(lines, "\n")
}

func renderLegend() string {
	var items []string
	for _, side := range sides {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(sideColors[side])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+side)
	}
	return strings.Join(items, "  ")
}

// bindHint points the operator at setup when devices are missing from the
// configuration. It returns instead of exiting so deferred closes still run.
func bindHint(err error, configFile string) error {
	var bindErr *robot.BindingError
	if errors.As(err, &bindErr) && len(bindErr.Missing) > 0 {
		return fmt.Errorf("%w\nRun 'basicdrive setup' or check %s", err, configFile)
	}
	return err
}

func (c *DriveCommand) Execute(args []string) error {
	cfg, err := config.LoadFrom(c.Config)
	switch {
	case errors.Is(err, config.ErrNotFound):
		if !c.Sim && !cfg.Hardware.Sim {
			fmt.Fprintln(os.Stderr, "No configuration found. Run 'basicdrive setup' first, or pass --sim.")
			os.Exit(1)
		}
	case err != nil:
		return err
	default:
		fmt.Printf("Loaded configuration from %s\n", c.Config)
	}
	if c.Sim {
		cfg.Hardware.Sim = true
	}

	sink := newLogSink(32)
	logger, closeLog := newLogger(sink, c.Verbose, c.LogFile)
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	devices, err := robot.Open(ctx, cfg.Hardware, logger)
	if err != nil {
		return fmt.Errorf("open hardware: %w", err)
	}
	defer func() {
		if err := devices.Close(); err != nil {
			logger.Warn("failed to close devices", zap.Error(err))
		}
	}()

	hw, err := robot.Bind(ctx, devices, cfg.Hardware.Devices)
	if err != nil {
		return bindHint(err, c.Config)
	}

	kb := input.NewKeyboard(nil, 0, nil)
	var src input.Source = kb
	if c.Joystick != "" {
		cfg.Input.Joystick = c.Joystick
	}
	if path := cfg.Input.Joystick; path != "" {
		js, err := input.OpenJoystick(path, cfg.Input.Layout, logger)
		if err != nil {
			return err
		}
		defer js.Close()
		go func() {
			if err := js.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("joystick lost, keyboard only", zap.Error(err))
			}
		}()
		logger.Info("reading joystick", zap.String("device", path))
		src = input.Merge(kb, js)
	}

	display := telemetry.NewBuffer(logger)
	ctrl, err := teleop.NewController(cfg.Teleop, hw, src, display, logger)
	if err != nil {
		return fmt.Errorf("create controller: %w", err)
	}
	period := teleop.NewPeriod(cfg.Teleop.Period, nil)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx, period)
	}()

	p := tea.NewProgram(newDriveModel(ctrl, period, kb, display, sink.Lines()), tea.WithAltScreen())
	_, runErr := p.Run()

	period.Stop()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("controller error", zap.Error(err))
		return err
	}
	if runErr != nil {
		return fmt.Errorf("run TUI: %w", runErr)
	}
	return nil
}
