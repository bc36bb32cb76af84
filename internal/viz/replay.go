package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rocketsim/internal/flightlog"
)

const (
	canvasWidth  = 60
	canvasHeight = 20
	fps          = 30
	maxSpeed     = 64.0
	minSpeed     = 1.0 / 16
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Replay plays a flight log back in simulated time.
type Replay struct {
	log     *flightlog.Log
	title   string
	xs, ys  []float64
	xLabel  string
	vyCol   int
	view    Viewport
	canvas  *Canvas
	head    int
	clock   float64
	speed   float64
	playing bool
	help    bool
}

// NewReplay prepares a replay of l. 1DOF logs are drawn as altitude over
// time, 3DOF logs as altitude over downrange distance.
func NewReplay(l *flightlog.Log, title string) (Replay, error) {
	if l == nil || l.Len() == 0 {
		return Replay{}, fmt.Errorf("viz: empty flight log")
	}
	alt, ok := l.Column("altitude")
	if !ok {
		return Replay{}, fmt.Errorf("viz: log has no altitude column")
	}

	vy, ok := l.Column("vy")
	if !ok {
		if vy, ok = l.Column("velocity"); !ok {
			return Replay{}, fmt.Errorf("viz: log has no vertical velocity column")
		}
	}

	xCol, xLabel := 0, "time"
	if x, ok := l.Column("x"); ok {
		xCol, xLabel = x, "downrange"
	}

	r := Replay{
		log:     l,
		title:   title,
		xs:      l.Series(xCol),
		ys:      l.Series(alt),
		xLabel:  xLabel,
		vyCol:   vy,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		speed:   1,
		playing: true,
	}
	r.view = Fit(r.canvas, r.xs, r.ys)
	return r, nil
}

func (r Replay) Init() tea.Cmd {
	return tick()
}

func (r Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return r, tea.Quit
		case " ":
			if r.finished() {
				r.restart()
			} else {
				r.playing = !r.playing
			}
		case "r":
			r.restart()
		case "[":
			r.stepRow(-1)
		case "]":
			r.stepRow(1)
		case "+", "=":
			r.speed = math.Min(r.speed*2, maxSpeed)
		case "-", "_":
			r.speed = math.Max(r.speed/2, minSpeed)
		case "t":
			NextTheme()
		case "?":
			r.help = !r.help
		}
	case TickMsg:
		if r.playing {
			r.advance(r.speed / fps)
		}
		return r, tick()
	}
	return r, nil
}

// advance moves the clock forward by dt simulated seconds and the head to
// the last row at or before the clock.
func (r *Replay) advance(dt float64) {
	r.clock += dt
	n := r.log.Len()
	idx := sort.Search(n, func(i int) bool { return r.log.Time(i) > r.clock }) - 1
	if idx < 0 {
		idx = 0
	}
	r.head = idx
	if r.head >= n-1 {
		r.head = n - 1
		r.playing = false
	}
}

func (r *Replay) stepRow(dir int) {
	r.playing = false
	r.head += dir
	if r.head < 0 {
		r.head = 0
	}
	if r.head >= r.log.Len() {
		r.head = r.log.Len() - 1
	}
	r.clock = r.log.Time(r.head)
}

func (r *Replay) restart() {
	r.head = 0
	r.clock = r.log.Time(0)
	r.playing = true
}

func (r Replay) finished() bool {
	return r.head == r.log.Len()-1
}

// Head returns the index of the row currently shown.
func (r Replay) Head() int { return r.head }

func (r Replay) Playing() bool { return r.playing }

func (r Replay) Speed() float64 { return r.speed }

func (r *Replay) draw() {
	r.canvas.Clear()

	gx0, gy0 := r.view.Project(r.view.MinX, 0)
	gx1, _ := r.view.Project(r.view.MaxX, 0)
	r.canvas.DrawLine(gx0, gy0, gx1, gy0)

	px, py := r.view.Project(r.xs[0], r.ys[0])
	for i := 1; i <= r.head; i++ {
		x, y := r.view.Project(r.xs[i], r.ys[i])
		r.canvas.DrawLine(px, py, x, y)
		px, py = x, y
	}
	r.canvas.DrawMarker(px, py)
}

func (r Replay) View() string {
	st := currentStyles()
	r.draw()

	row := r.log.Row(r.head)
	alt := r.ys[r.head]
	apogee := alt
	for _, y := range r.ys[:r.head+1] {
		apogee = math.Max(apogee, y)
	}

	status := st.status.Render(fmt.Sprintf("PLAYING x%g", r.speed))
	switch {
	case r.finished():
		status = st.done.Render("END OF FLIGHT")
	case !r.playing:
		status = st.paused.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(r.title)) + "\n")
	s.WriteString(status + "\n\n")

	field := func(name, format string, v float64) {
		s.WriteString(st.label.Render(name) + st.value.Render(fmt.Sprintf(format, v)) + "\n")
	}
	field("Time", "%.3f s", row[0])
	field("Altitude", "%.2f m", alt)
	field("Vert. vel.", "%.2f m/s", row[r.vyCol])
	field("Apogee", "%.2f m", apogee)
	if r.xLabel == "downrange" {
		field("Downrange", "%.2f m", r.xs[r.head])
	}
	s.WriteString(st.label.Render("Row") + st.value.Render(fmt.Sprintf("%d/%d", r.head+1, r.log.Len())) + "\n\n")

	progress := 0.0
	if r.log.Len() > 1 {
		progress = float64(r.head) / float64(r.log.Len()-1)
	}
	s.WriteString(ProgressBar(progress, 30) + "\n")

	if r.head > 1 {
		chart := asciigraph.Plot(r.ys[:r.head+1], asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("Altitude"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause R:Restart Q:Quit\n[ ]:Step +/-:Speed T:Theme ?:Help"))

	canvasView := lipgloss.NewStyle().Padding(1, 2).Render(r.canvas.String() + "altitude vs " + r.xLabel)
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if r.help {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space  - Pause/Resume playback      ║
║  R      - Restart                    ║
║  [ ]    - Step one row back/forward  ║
║  + -    - Double/halve speed         ║
║  T      - Cycle themes               ║
║  ?      - Toggle this help           ║
║  Q      - Quit                       ║
╚══════════════════════════════════════╝`

// Run starts the replay program on the terminal.
func Run(l *flightlog.Log, title string) error {
	r, err := NewReplay(l, title)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(r, tea.WithAltScreen()).Run()
	return err
}
