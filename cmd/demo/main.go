package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kass/go-geo-bearing/pkg/bootstrap"
	"github.com/kass/go-geo-bearing/pkg/config"
	"github.com/kass/go-geo-bearing/pkg/logger"
	"github.com/kass/go-geo-bearing/pkg/models"
	"github.com/kass/go-geo-bearing/pkg/render"
	"github.com/kass/go-geo-bearing/pkg/validate"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginBottom(1)

	modeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))
)

// viewBuilder is the part of the planner the demo drives
type viewBuilder interface {
	FromPoint(origin models.GeoPoint, label string, mode models.BearingMode) (*models.MapView, error)
	FromAddress(ctx context.Context, address string, mode models.BearingMode) (*models.MapView, error)
	FromCurrentPosition(ctx context.Context, mode models.BearingMode) (*models.MapView, error)
}

type viewMsg struct {
	view *models.MapView
	err  error
}

type model struct {
	builder viewBuilder
	timeout time.Duration
	color   bool

	input   textinput.Model
	spinner spinner.Model
	mode    models.BearingMode
	busy    bool

	view *models.MapView
	err  error
}

func initialModel(builder viewBuilder, mode models.BearingMode, timeout time.Duration, color bool) model {
	ti := textinput.New()
	ti.Placeholder = "address, place name or lat,lng"
	ti.CharLimit = 256
	ti.Width = 48
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	if mode == "" {
		mode = models.GreatCircle
	}

	return model{
		builder: builder,
		timeout: timeout,
		color:   color,
		input:   ti,
		spinner: s,
		mode:    mode,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.mode = toggleMode(m.mode)
			if m.view != nil && !m.busy {
				return m.submit(m.lastQuery())
			}
			return m, nil
		case tea.KeyCtrlL:
			if m.busy {
				return m, nil
			}
			return m.submit(func(ctx context.Context, mode models.BearingMode) (*models.MapView, error) {
				return m.builder.FromCurrentPosition(ctx, mode)
			})
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			return m.submit(m.query(m.input.Value()))
		}

	case viewMsg:
		m.busy = false
		m.view, m.err = msg.view, msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

type buildFunc func(ctx context.Context, mode models.BearingMode) (*models.MapView, error)

// query treats "lat,lng" as coordinates and anything else as an address
func (m model) query(text string) buildFunc {
	text = strings.TrimSpace(text)
	if p, err := models.ParseGeoPoint(text); err == nil {
		return func(_ context.Context, mode models.BearingMode) (*models.MapView, error) {
			return m.builder.FromPoint(p, "", mode)
		}
	}
	return func(ctx context.Context, mode models.BearingMode) (*models.MapView, error) {
		return m.builder.FromAddress(ctx, text, mode)
	}
}

// lastQuery rebuilds the shown view, keeping a current-position origin as such
func (m model) lastQuery() buildFunc {
	if m.view.Label == "" || m.view.Label == m.input.Value() {
		return m.query(m.input.Value())
	}
	origin, label := m.view.Origin, m.view.Label
	return func(_ context.Context, mode models.BearingMode) (*models.MapView, error) {
		return m.builder.FromPoint(origin, label, mode)
	}
}

func (m model) submit(build buildFunc) (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	mode, timeout := m.mode, m.timeout
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		view, err := build(ctx, mode)
		return viewMsg{view: view, err: err}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Which way?"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString("Mode: " + modeStyle.Render(string(m.mode)))
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " Working...")
	case m.err != nil:
		b.WriteString(errorStyle.Render(describeError(m.err)))
	case m.view != nil:
		b.WriteString(render.Text(m.view, m.color))
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter: look up • tab: switch mode • ctrl+l: current location • esc: quit"))
	return b.String()
}

func toggleMode(mode models.BearingMode) models.BearingMode {
	if mode == models.Rhumb {
		return models.GreatCircle
	}
	return models.Rhumb
}

func describeError(err error) string {
	if validate.IsValidationError(err) {
		return "Invalid input: " + err.Error()
	}
	return "Error: " + err.Error()
}

// runBatch handles piped input: one query per line, one summary per line
func runBatch(r io.Reader, w io.Writer, m model) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		view, err := m.query(line)(ctx, m.mode)
		cancel()
		if err != nil {
			fmt.Fprintf(w, "%s: %s\n", line, describeError(err))
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", line, render.Summary(view))
	}
	return scanner.Err()
}

func main() {
	var (
		configFile = flag.String("c", "", "Config file")
		mode       = flag.String("mode", "", "Initial mode: great-circle or rhumb")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// keep log lines out of the terminal UI
	if cfg.Log.Level == "info" || cfg.Log.Level == "debug" {
		cfg.Log.Level = "warn"
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if *mode == "" {
		*mode = cfg.Display.Mode
	}
	bearingMode, err := models.ParseBearingMode(*mode)
	if err != nil {
		log.Fatal("Invalid mode", zap.Error(err))
	}

	p, closer, err := bootstrap.Planner(cfg, log)
	if err != nil {
		log.Fatal("Failed to set up planner", zap.Error(err))
	}
	defer closer()

	timeout := cfg.Geocoder.Timeout + cfg.Locator.Timeout
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	m := initialModel(p, bearingMode, timeout, render.ColorEnabled(os.Stdout.Fd()))

	if !interactive {
		if err := runBatch(os.Stdin, os.Stdout, m); err != nil {
			log.Fatal("Reading input failed", zap.Error(err))
		}
		return
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal("Demo failed", zap.Error(err))
	}
}
