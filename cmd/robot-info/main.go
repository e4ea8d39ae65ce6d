package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jessevdk/go-flags"

	"github.com/gwillem/basicdrive/pkg/config"
	"github.com/gwillem/basicdrive/pkg/robot"
)

type Options struct {
	Config string `long:"config" default:"basicdrive.json" description:"Configuration file to check"`
	MaxID  int    `long:"max-id" default:"20" description:"Highest servo ID to probe"`
	Wiggle bool   `short:"w" long:"wiggle" description:"Wiggle a servo to identify it"`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	fmt.Println(headerStyle.Render("BasicDrive Port Scanner"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println()

	ctx := context.Background()
	ports, err := robot.ScanPorts(ctx, 1, opts.MaxID)
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		os.Exit(1)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println("Make sure the drive controller and arm are connected and powered on.")
		os.Exit(1)
	}

	cfg, err := config.LoadFrom(opts.Config)
	switch {
	case errors.Is(err, config.ErrNotFound):
		cfg = nil
	case err != nil:
		fmt.Printf("Error loading %s: %v\n", opts.Config, err)
		os.Exit(1)
	}

	fmt.Println(renderPorts(ports, cfg))
	fmt.Println()
	fmt.Println(checkConfig(ports, cfg, opts.Config))

	if opts.Wiggle {
		wiggleServo(ctx, ports)
	}
}

// role names what cfg expects on port.
func role(port string, cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	var roles []string
	if cfg.Hardware.Drive.Port == port {
		roles = append(roles, "drive")
	}
	if cfg.Hardware.Arm.Port == port {
		roles = append(roles, fmt.Sprintf("arm (servo %d)", cfg.Hardware.Arm.Calibration.ID))
	}
	return strings.Join(roles, ", ")
}

func renderPorts(ports []robot.PortInfo, cfg *config.Config) string {
	rows := make([][]string, 0, len(ports))
	for _, p := range ports {
		var servos []string
		for _, s := range p.Servos {
			servos = append(servos, fmt.Sprintf("%d (model %v)", s.ID, s.Model))
		}
		rows = append(rows, []string{p.Port, strings.Join(servos, ", "), role(p.Port, cfg)})
	}

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Port", "Servos", "Configured as").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}
			return cellStyle
		}).
		Render()
}

// checkConfig reports whether the configured devices were found.
func checkConfig(ports []robot.PortInfo, cfg *config.Config, path string) string {
	if cfg == nil {
		return warnStyle.Render(fmt.Sprintf("No %s found. Run 'basicdrive setup'.", path))
	}
	if cfg.Hardware.Sim {
		return dimStyle.Render("Configured for simulated hardware.")
	}

	byPort := make(map[string]robot.PortInfo, len(ports))
	for _, p := range ports {
		byPort[p.Port] = p
	}

	var lines []string
	if port := cfg.Hardware.Drive.Port; port != "" {
		if _, ok := byPort[port]; ok {
			lines = append(lines, okStyle.Render("✓ drive controller port "+port))
		} else {
			lines = append(lines, warnStyle.Render("✗ drive controller port "+port+" not found"))
		}
	}
	if arm := cfg.Hardware.Arm; arm.Port != "" {
		found := false
		for _, s := range byPort[arm.Port].Servos {
			if s.ID == arm.Calibration.ID {
				found = true
			}
		}
		label := fmt.Sprintf("arm servo %d on %s", arm.Calibration.ID, arm.Port)
		switch {
		case !found:
			lines = append(lines, warnStyle.Render("✗ "+label+" not found"))
		case !arm.IsCalibrated():
			lines = append(lines, warnStyle.Render("✗ "+label+" has no recorded range"))
		default:
			lines = append(lines, okStyle.Render("✓ "+label))
		}
	}
	if len(lines) == 0 {
		return dimStyle.Render("No devices configured, motors will be simulated.")
	}
	return strings.Join(lines, "\n")
}

func wiggleServo(ctx context.Context, ports []robot.PortInfo) {
	type target struct {
		port string
		id   int
	}
	var targets []target
	var options []huh.Option[int]
	for _, p := range ports {
		for _, s := range p.Servos {
			options = append(options, huh.NewOption(fmt.Sprintf("Servo %d on %s", s.ID, p.Port), len(targets)))
			targets = append(targets, target{port: p.Port, id: s.ID})
		}
	}
	if len(targets) == 0 {
		fmt.Println("No servos to wiggle.")
		return
	}

	var idx int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Which servo should wiggle?").
				Options(options...).
				Value(&idx),
		),
	)
	if err := form.Run(); err != nil {
		return
	}

	t := targets[idx]
	fmt.Printf("\n  Wiggling servo %d on %s...\n", t.id, t.port)
	if err := robot.Wiggle(ctx, t.port, t.id, 100); err != nil {
		fmt.Printf("  Error: %v\n", err)
	}
}
