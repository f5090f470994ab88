package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lvsim/internal/dynamo"
	"github.com/san-kum/lvsim/internal/experiment"
)

const (
	canvasWidth  = 60
	canvasHeight = 20
	frameRate    = 30
	arrowLength  = 3
)

type TickMsg time.Time

// WatchOptions controls playback of a finished experiment.
type WatchOptions struct {
	// Stride is the number of samples advanced per frame.
	Stride int
	// ShowField overlays the direction field.
	ShowField bool
}

// Watch replays the primary trajectory of a report in the terminal, tracing
// the phase-plane orbit next to the population history. Playback stops on
// the last sample and the program exits on q.
type Watch struct {
	report *experiment.Report
	traj   *dynamo.Trajectory
	opts   WatchOptions
	canvas *Canvas
	head   int
	done   bool
}

func NewWatch(report *experiment.Report, opts WatchOptions) Watch {
	if opts.Stride < 1 {
		opts.Stride = 1
	}
	return Watch{
		report: report,
		traj:   report.Main.Trajectory,
		opts:   opts,
		canvas: NewCanvas(canvasWidth, canvasHeight),
		head:   1,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Watch) Init() tea.Cmd {
	return tick()
}

func (m Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case TickMsg:
		if m.done {
			return m, nil
		}
		m.head += m.opts.Stride
		if m.head >= m.traj.Len() {
			m.head = m.traj.Len()
			m.done = true
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

// Head is the number of samples shown so far.
func (m Watch) Head() int { return m.head }

// Done reports whether playback reached the end of the trajectory.
func (m Watch) Done() bool { return m.done }

func (m Watch) draw() {
	m.canvas.Clear()
	vp := m.canvas.Viewport(m.report.Bounds)
	if m.opts.ShowField && m.report.Direction != nil {
		vp.Arrows(m.report.Direction, arrowLength)
	}
	for _, p := range m.report.Critical {
		vp.Cross(p.X, p.Y)
	}
	vp.Path(m.traj, m.head)
}

func (m Watch) View() string {
	m.draw()

	i := m.head - 1
	state := m.traj.States[i]
	rows := []Row{
		Rowf("Model", "%s", m.report.Model),
		Rowf("Integrator", "%s", m.report.Integrator),
		Rowf("Time", "%.2f", m.traj.Times[i]),
		Rowf("Prey", "%.3f", state[0]),
		Rowf("Predator", "%.3f", state[1]),
		Rowf("Sample", "%d / %d", m.head, m.traj.Len()),
	}
	if m.report.Period > 0 {
		rows = append(rows, Rowf("Period", "%.2f", m.report.Period))
	}
	stats := headerStyle.Render("PREDATOR / PREY") + "\n" + renderRows(rows)

	if m.head >= 2 {
		stats += "\n" + graphStyle.Render(SeriesPlot(m.traj.Column(0)[:m.head], 30, 4, "prey"))
	}

	status := "playing"
	if m.done {
		status = "finished"
	}
	help := helpStyle.Render(fmt.Sprintf("%s  |  q quit", status))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(stats),
	) + "\n" + help
}

// RunWatch plays report full-screen until the user quits.
func RunWatch(report *experiment.Report, opts WatchOptions) error {
	if report == nil || report.Main == nil || report.Main.Trajectory.Len() == 0 {
		return dynamo.ErrNoTrajectory
	}
	_, err := tea.NewProgram(NewWatch(report, opts), tea.WithAltScreen()).Run()
	return err
}
