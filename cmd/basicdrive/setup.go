package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/basicdrive/pkg/config"
	"github.com/gwillem/basicdrive/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct {
	Config string `long:"config" default:"basicdrive.json" description:"Configuration file to write"`
	MaxID  int    `long:"max-id" default:"20" description:"Highest servo ID to probe"`
}

// minGoodRange is the recorded arm travel, in raw steps, below which the
// range is shown as suspicious.
const minGoodRange = 500

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("BasicDrive Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := config.LoadFrom(c.Config)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return err
	}

	fmt.Println("Scanning serial ports...")
	ctx := context.Background()
	ports, err := robot.ScanPorts(ctx, 1, c.MaxID)
	if err != nil {
		return err
	}
	fmt.Println()

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		if !confirm("Use simulated hardware instead?") {
			os.Exit(1)
		}
		cfg.Hardware.Sim = true
		return c.save(cfg)
	}
	fmt.Println(renderPorts(ports))
	fmt.Println()

	// Step 1: drive controller
	fmt.Println(subHeaderStyle.Render("━━━ Drive Controller ━━━"))
	fmt.Println()
	cfg.Hardware.Drive.Port = selectDrivePort(ports)

	// Step 2: arm servo
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Arm Servo ━━━"))
	fmt.Println()
	port, id := selectArmServo(ports)
	cfg.Hardware.Arm.Port = port
	if port != "" {
		cal, err := recordArmRange(ctx, port, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error recording arm range: %v\n", err)
			os.Exit(1)
		}
		cfg.Hardware.Arm.Calibration = cal
	}

	cfg.Hardware.Sim = cfg.Hardware.Drive.Port == "" && cfg.Hardware.Arm.Port == ""
	if cfg.Hardware.Sim {
		fmt.Println("No hardware selected, using simulated motors.")
	}
	return c.save(cfg)
}

func (c *SetupCommand) save(cfg *config.Config) error {
	if err := cfg.SaveTo(c.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", c.Config)
	fmt.Println()
	fmt.Println("Start driving with: " + headerStyle.Render("basicdrive drive"))
	return nil
}

func renderPorts(ports []robot.PortInfo) string {
	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		servos := "-"
		if p.HasServos() {
			ids := make([]string, 0, len(p.Servos))
			for _, s := range p.Servos {
				ids = append(ids, fmt.Sprintf("%d", s.ID))
			}
			servos = strings.Join(ids, ", ")
		}
		rows = append(rows, []string{p.Port, servos})
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "Servo IDs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}
			return cellStyle
		}).
		Render()
}

// selectDrivePort asks which port the wheel controller is on. Ports with
// servos are listed last since they usually carry the arm.
func selectDrivePort(ports []robot.PortInfo) string {
	var options []huh.Option[string]
	for _, p := range ports {
		if !p.HasServos() {
			options = append(options, huh.NewOption(p.Port, p.Port))
		}
	}
	for _, p := range ports {
		if p.HasServos() {
			options = append(options, huh.NewOption(p.Port+" (servo bus)", p.Port))
		}
	}
	options = append(options, huh.NewOption("None (simulate the wheels)", ""))

	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which port is the drive controller on?").
				Description("It receives x, y, z and w wheel speeds").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return port
}

type servoChoice struct {
	port string
	id   int
}

// selectArmServo asks which servo drives the arm. It returns an empty port
// when there is none.
func selectArmServo(ports []robot.PortInfo) (string, int) {
	var choices []servoChoice
	var options []huh.Option[int]
	for _, p := range ports {
		for _, s := range p.Servos {
			label := fmt.Sprintf("Servo %d on %s (model %v)", s.ID, p.Port, s.Model)
			options = append(options, huh.NewOption(label, len(choices)))
			choices = append(choices, servoChoice{port: p.Port, id: s.ID})
		}
	}
	if len(choices) == 0 {
		fmt.Println("No servos found, the arm will be simulated.")
		return "", 0
	}
	options = append(options, huh.NewOption("None (simulate the arm)", -1))

	var idx int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Which servo drives the arm?").
				Options(options...).
				Value(&idx),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	if idx < 0 {
		return "", 0
	}
	return choices[idx].port, choices[idx].id
}

func confirm(title string) bool {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return ok
}

// recordArmRange disables torque and tracks the servo while the operator
// moves the arm by hand. The zero reference is not recorded here: it is the
// arm's position when drive binds the hardware.
func recordArmRange(ctx context.Context, port string, id int) (robot.MotorCalibration, error) {
	fmt.Printf("Recording arm range on %s, servo %d\n", port, id)
	fmt.Println()

	servo, err := robot.OpenServoPositions(ctx, port, id)
	if err != nil {
		return robot.MotorCalibration{}, err
	}
	defer servo.Close()

	pos, err := servo.Read(ctx)
	if err != nil {
		return robot.MotorCalibration{}, err
	}
	cal := robot.MotorCalibration{ID: id}
	cal.Track(pos)

	fmt.Println(subHeaderStyle.Render("Record range of motion"))
	fmt.Println("Move the arm to its lowest AND highest positions.")
	fmt.Println("Press Enter when done. Rest the arm at its lowest position before")
	fmt.Println("starting drive: that position becomes its zero.")
	fmt.Println()

	p := tea.NewProgram(newRangeModel(servo, cal, pos))
	finalModel, err := p.Run()
	if err != nil {
		return robot.MotorCalibration{}, err
	}

	cal = finalModel.(rangeModel).cal
	fmt.Println()
	fmt.Printf("Arm range %d..%d.\n", cal.RangeMin, cal.RangeMax)
	return cal, nil
}

// positionReader reads a raw servo position.
type positionReader interface {
	Read(ctx context.Context) (int, error)
}

// Range recording TUI model
type rangeModel struct {
	servo    positionReader
	cal      robot.MotorCalibration
	current  int
	quitting bool
}

type tickMsg time.Time

func newRangeModel(servo positionReader, cal robot.MotorCalibration, current int) rangeModel {
	return rangeModel{
		servo:   servo,
		cal:     cal,
		current: current,
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m rangeModel) Init() tea.Cmd {
	return tick()
}

func (m rangeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		pos, err := m.servo.Read(context.Background())
		if err == nil {
			m.current = pos
			m.cal.Track(pos)
		}
		return m, tick()
	}

	return m, nil
}

func (m rangeModel) View() string {
	if m.quitting {
		return ""
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableMotorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableRangeGoodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableRangeLowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rangeSize := m.cal.RangeMax - m.cal.RangeMin
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Motor", "Current", "Min", "Max", "Range").
		Row(
			string(robot.Arm),
			fmt.Sprintf("%d", m.current),
			fmt.Sprintf("%d", m.cal.RangeMin),
			fmt.Sprintf("%d", m.cal.RangeMax),
			fmt.Sprintf("%d", rangeSize),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableMotorStyle
			case 1:
				return tableCurrentStyle
			case 4:
				if rangeSize > minGoodRange {
					return tableRangeGoodStyle
				}
				return tableRangeLowStyle
			default:
				return tableCellStyle
			}
		})

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Press Enter when done"))
	return sb.String()
}
