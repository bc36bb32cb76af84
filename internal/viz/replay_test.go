package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/rocketsim/internal/flightlog"
)

func flight(t *testing.T) *flightlog.Log {
	t.Helper()
	l := flightlog.New([]string{"altitude", "velocity", "acceleration"})
	for i := 0; i <= 40; i++ {
		tm := float64(i) * 0.25
		if err := l.Append(tm, []float64{49*tm - 4.9*tm*tm, 49 - 9.8*tm, -9.8}); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, r Replay, msg tea.Msg) Replay {
	t.Helper()
	m, _ := r.Update(msg)
	next, ok := m.(Replay)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next
}

func TestNewReplayErrors(t *testing.T) {
	if _, err := NewReplay(flightlog.New([]string{"altitude", "velocity"}), "x"); err == nil {
		t.Error("expected error for empty log")
	}

	l := flightlog.New([]string{"height"})
	_ = l.Append(0, []float64{1})
	if _, err := NewReplay(l, "x"); err == nil {
		t.Error("expected error without altitude column")
	}
}

func TestReplayAdvances(t *testing.T) {
	r, err := NewReplay(flight(t), "test")
	if err != nil {
		t.Fatal(err)
	}
	if r.Head() != 0 || !r.Playing() {
		t.Fatalf("unexpected start: head %d playing %v", r.Head(), r.Playing())
	}

	r.speed = 7.5
	r = update(t, r, TickMsg(time.Now()))
	if r.Head() != 1 {
		t.Errorf("head = %d after 0.25 s, want 1", r.Head())
	}

	for i := 0; i < 100; i++ {
		r = update(t, r, TickMsg(time.Now()))
	}
	if r.Head() != 40 || r.Playing() {
		t.Errorf("expected end of flight, got head %d playing %v", r.Head(), r.Playing())
	}
	if !strings.Contains(r.View(), "END OF FLIGHT") {
		t.Error("view does not report the end of the flight")
	}
}

func TestReplayKeys(t *testing.T) {
	r, err := NewReplay(flight(t), "test")
	if err != nil {
		t.Fatal(err)
	}

	r = update(t, r, key(" "))
	if r.Playing() {
		t.Error("space did not pause")
	}

	r = update(t, r, key("]"))
	r = update(t, r, key("]"))
	r = update(t, r, key("["))
	if r.Head() != 1 {
		t.Errorf("head = %d, want 1", r.Head())
	}

	r = update(t, r, key("["))
	r = update(t, r, key("["))
	if r.Head() != 0 {
		t.Errorf("head = %d, want 0", r.Head())
	}

	r = update(t, r, key("+"))
	r = update(t, r, key("+"))
	if r.Speed() != 4 {
		t.Errorf("speed = %v, want 4", r.Speed())
	}
	for i := 0; i < 20; i++ {
		r = update(t, r, key("-"))
	}
	if r.Speed() != minSpeed {
		t.Errorf("speed = %v, want %v", r.Speed(), minSpeed)
	}

	r = update(t, r, key("r"))
	if r.Head() != 0 || !r.Playing() {
		t.Error("restart did not rewind and play")
	}

	if _, cmd := r.Update(key("q")); cmd == nil {
		t.Error("q did not return a quit command")
	}
}

func TestReplayViewThreeDOF(t *testing.T) {
	l := flightlog.New([]string{"x", "altitude", "pitch", "vx", "vy", "pitch_rate", "ax", "ay", "pitch_accel"})
	for i := 0; i <= 10; i++ {
		tm := float64(i)
		_ = l.Append(tm, []float64{5 * tm, 20*tm - 2*tm*tm, 1.3, 5, 20 - 4*tm, 0, 0, -4, 0})
	}

	r, err := NewReplay(l, "tilted")
	if err != nil {
		t.Fatal(err)
	}
	r.head = 5
	view := r.View()
	for _, want := range []string{"TILTED", "Downrange", "altitude vs downrange", "50.00 m"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestThemes(t *testing.T) {
	start := CurrentTheme.Name
	for range Themes {
		NextTheme()
	}
	if CurrentTheme.Name != start {
		t.Errorf("cycling all themes ended on %s, want %s", CurrentTheme.Name, start)
	}
	if GetTheme("nope").Name != ThemeCyberpunk.Name {
		t.Error("unknown theme should fall back to cyberpunk")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names mismatch")
	}
}
