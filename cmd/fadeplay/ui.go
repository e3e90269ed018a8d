package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/opd-ai/fadeout/fade"
	"github.com/opd-ai/fadeout/host"
)

const (
	refreshInterval = 50 * time.Millisecond
	meterWidth      = 30
)

// tickMsg refreshes the display and drains the main loop.
type tickMsg time.Time

// drainMsg asks the UI goroutine to run pending main loop callbacks.
type drainMsg struct{}

// model is the Bubbletea model. Its Update goroutine is the host's main
// context while the UI runs.
type model struct {
	app     *app
	fade    fade.Status
	player  host.PlayerStatus
	about   bool
	message string
	width   int
}

func newModel(a *app) model {
	m := model{app: a}
	m.refresh()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tick()
}

// Update handles messages and updates the model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case drainMsg:
		m.app.loop.RunPending()
		m.refresh()

	case tickMsg:
		m.app.loop.RunPending()
		m.refresh()
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "f":
		wasActive := m.app.plugin.Status().Active
		if m.app.fadeOut() {
			switch {
			case wasActive:
				m.message = "A fade is already running"
			case !m.app.plugin.Status().Active:
				m.message = "Nothing is playing"
			}
		}

	case "s":
		m.app.player.Stop()

	case "p":
		if err := m.app.player.Play(m.app.files); err != nil {
			m.message = err.Error()
		}

	case "+", "=":
		m.changeDuration(0.1)

	case "-", "_":
		m.changeDuration(-0.1)

	case "a":
		m.about = !m.about

	default:
		if n, err := strconv.Atoi(key); err == nil {
			items := m.app.menu.Items()
			if n >= 1 && n <= len(items) {
				m.app.menu.Activate(items[n-1].ID)
			}
		}
	}

	m.refresh()
	return m, nil
}

func (m *model) changeDuration(delta float64) {
	if _, err := m.app.adjustDuration(delta); err != nil {
		m.message = err.Error()
	}
}

func (m *model) refresh() {
	m.fade = m.app.plugin.Status()
	m.player = m.app.player.Status()
}

// View renders the UI
func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("fadeplay · " + m.app.plugin.Name()))
	b.WriteString("\n")

	b.WriteString(m.transportView())
	b.WriteString(m.fadeView())
	b.WriteString(m.preferencesView())
	b.WriteString(m.menuView())

	if m.about {
		b.WriteString(aboutStyle.Render(m.app.plugin.Info().About))
		b.WriteString("\n")
	}
	if m.message != "" {
		b.WriteString(errorStyle.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("f fade out · s stop · p play · +/- duration · a about · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m model) transportView() string {
	track := "-"
	if m.player.Track != "" {
		track = filepath.Base(m.player.Track)
	}
	state := "stopped"
	if m.player.Playing {
		state = "playing"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n",
		keyStyle.Render("Track:"),
		valueStyle.Render(track),
		keyStyle.Render(fmt.Sprintf("(%d/%d)", m.player.Index+1, len(m.app.files))))
	fmt.Fprintf(&b, "%s %s / %s %s\n",
		keyStyle.Render("Time: "),
		valueStyle.Render(formatClock(m.player.Position)),
		formatClock(m.player.Length),
		keyStyle.Render(state))
	return b.String()
}

func (m model) fadeView() string {
	state := keyStyle.Render("idle")
	if m.fade.Active {
		state = fadingStyle.Render("fading")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n",
		keyStyle.Render("Fade: "),
		state,
		keyStyle.Render(fmt.Sprintf("%.1fs", m.fade.Duration.Seconds())))
	fmt.Fprintf(&b, "%s %s %s\n",
		keyStyle.Render("Level:"),
		renderMeter(m.fade.AttenuationDB),
		valueStyle.Render(fmt.Sprintf("-%.1f dB", m.fade.AttenuationDB)))
	return b.String()
}

func (m model) preferencesView() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Preferences"))
	b.WriteString("\n")

	for _, w := range m.app.plugin.Preferences() {
		switch w.Kind {
		case fade.WidgetLabel:
			fmt.Fprintf(&b, "  %s\n", valueStyle.Render(w.Label))
		case fade.WidgetSpinFloat:
			v := m.app.store.GetDouble(w.Section, w.Key)
			fmt.Fprintf(&b, "  %s %s %s %s\n",
				keyStyle.Render(w.Label),
				valueStyle.Render(strconv.FormatFloat(v, 'f', 1, 64)),
				w.Unit,
				keyStyle.Render(fmt.Sprintf("[%.1f-%.1f, step %.1f]", w.Min, w.Max, w.Step)))
		}
	}
	return b.String()
}

func (m model) menuView() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Menu"))
	b.WriteString("\n")
	for i, item := range m.app.menu.Items() {
		fmt.Fprintf(&b, "  %s %s\n", keyStyle.Render(fmt.Sprintf("%d.", i+1)), item.Label)
	}
	return b.String()
}

// renderMeter draws the output level as a bar: full when no attenuation is
// applied, empty at the silence threshold.
func renderMeter(attenuationDB float64) string {
	floor := core.LinearToDB(fade.DefaultMaxReduction)
	level := core.Clamp(1-attenuationDB/floor, 0, 1)
	filled := int(math.Round(level * meterWidth))
	return meterStyle.Render(strings.Repeat("█", filled)) +
		keyStyle.Render(strings.Repeat("░", meterWidth-filled))
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}

// runTUI runs the terminal UI. Callbacks posted to the main loop are
// forwarded to the UI goroutine, which runs them between key presses.
func (a *app) runTUI(fadeAfter time.Duration) error {
	p := tea.NewProgram(newModel(a), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-a.loop.Notify():
				p.Send(drainMsg{})
			}
		}
	}()

	if fadeAfter > 0 {
		timer := time.AfterFunc(fadeAfter, func() {
			a.loop.Post(func() { a.fadeOut() })
		})
		defer timer.Stop()
	}

	_, err := p.Run()
	return err
}
