// Package tui is an interactive terminal view of the gap lists and the time
// slot heatmap.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/chart"
	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// percentStep is how far one key press moves a percentage widget.
const percentStep = 0.5

// GapBuilder rebuilds the gap page for new widget values.
type GapBuilder func(analysis.GapConfig) (*analysis.GapPage, error)

type view int

const (
	viewGap view = iota
	viewHeatmap
)

type keyMap struct {
	Switch key.Binding
	Left   key.Binding
	Right  key.Binding
	Reveal key.Binding
	Reset  key.Binding
	TopUp  key.Binding
	TopDn  key.Binding
	BotUp  key.Binding
	BotDn  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Reveal, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Switch, k.Left, k.Right},
		{k.Reveal, k.Reset},
		{k.TopUp, k.TopDn, k.BotUp, k.BotDn},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Switch: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "gap/heatmap"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "previous"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next"),
	),
	Reveal: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter/space", "reveal"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	TopUp: key.NewBinding(
		key.WithKeys("+"),
		key.WithHelp("+", "top % up"),
	),
	TopDn: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "top % down"),
	),
	BotUp: key.NewBinding(
		key.WithKeys(">"),
		key.WithHelp(">", "bottom % up"),
	),
	BotDn: key.NewBinding(
		key.WithKeys("<"),
		key.WithHelp("<", "bottom % down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}

// Model is the bubbletea model of the browser.
type Model struct {
	build   GapBuilder
	session analysis.GapSession
	slots   []store.SlotRow
	window  analysis.Window

	view   view
	list   int
	metric int

	help   help.Model
	styles styles
	err    error
}

// New builds the gap page once with cfg and returns the initial model.
func New(build GapBuilder, cfg analysis.GapConfig, slots []store.SlotRow, w analysis.Window) (Model, error) {
	page, err := build(cfg)
	if err != nil {
		return Model{}, err
	}
	return Model{
		build:   build,
		session: analysis.NewGapSession(page, cfg),
		slots:   slots,
		window:  w,
		help:    help.New(),
		styles:  defaultStyles(),
	}, nil
}

// Session returns the current reveal state.
func (m Model) Session() analysis.GapSession {
	return m.session
}

// Metric returns the metric the heatmap currently shows.
func (m Model) Metric() analysis.Metric {
	return analysis.HeatmapMetrics[m.metric]
}

// List returns the selected gap list.
func (m Model) List() analysis.GapList {
	return analysis.GapLists[m.list]
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, keys.Switch):
			if m.view == viewGap {
				m.view = viewHeatmap
			} else {
				m.view = viewGap
			}
		case key.Matches(msg, keys.Left):
			m.step(-1)
		case key.Matches(msg, keys.Right):
			m.step(1)
		case key.Matches(msg, keys.Reveal):
			if m.view == viewGap {
				m.session = m.session.Reveal(m.List())
			}
		case key.Matches(msg, keys.Reset):
			if m.view == viewGap {
				m.session = m.session.Reset(m.List())
			}
		case key.Matches(msg, keys.TopUp):
			m.adjust(func(c *analysis.GapConfig) { c.TopPercent += percentStep })
		case key.Matches(msg, keys.TopDn):
			m.adjust(func(c *analysis.GapConfig) { c.TopPercent -= percentStep })
		case key.Matches(msg, keys.BotUp):
			m.adjust(func(c *analysis.GapConfig) { c.BottomPercent += percentStep })
		case key.Matches(msg, keys.BotDn):
			m.adjust(func(c *analysis.GapConfig) { c.BottomPercent -= percentStep })
		}
	}
	return m, nil
}

// step moves the selection: the gap list, or the heatmap metric.
func (m *Model) step(d int) {
	if m.view == viewGap {
		m.list = wrap(m.list+d, len(analysis.GapLists))
		return
	}
	m.metric = wrap(m.metric+d, len(analysis.HeatmapMetrics))
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

// adjust rebuilds the gap page with changed widgets. Out of range values are
// clamped; a failed rebuild keeps the current page.
func (m *Model) adjust(change func(*analysis.GapConfig)) {
	if m.view != viewGap {
		return
	}
	cfg := m.session.Config
	change(&cfg)
	cfg.TopPercent = clamp(cfg.TopPercent)
	cfg.BottomPercent = clamp(cfg.BottomPercent)
	if cfg == m.session.Config {
		return
	}

	page, err := m.build(cfg)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.session = m.session.WithPage(page, cfg)
}

func clamp(p float64) float64 {
	return math.Min(math.Max(p, 0), analysis.MaxPercent)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Listening Dashboard") + "  " + m.styles.Muted.Render(m.window.String()))
	b.WriteString("\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")
	if m.view == viewGap {
		b.WriteString(m.gapView())
	} else {
		b.WriteString(m.heatmapView())
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(m.styles.Error.Render("ERROR: "+m.err.Error()) + "\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) tabs() string {
	names := []string{"Like/Listen Gap", "Time Slots"}
	var out []string
	for i, n := range names {
		if view(i) == m.view {
			out = append(out, m.styles.TabOn.Render(n))
		} else {
			out = append(out, m.styles.Tab.Render(n))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func (m Model) gapView() string {
	page := m.session.Page
	cfg := m.session.Config
	metrics := fmt.Sprintf("%s forgotten   %s frequent, never liked   %s like ratio",
		m.styles.Metric.Render(pct(page.Metrics.ForgottenRatio)),
		m.styles.Metric.Render(pct(page.Metrics.FrequentRatio)),
		m.styles.Metric.Render(pct(page.Metrics.LikeRatio)))

	captions := map[analysis.GapList][2]string{
		analysis.GapForgotten: {
			"Liked but rarely played",
			fmt.Sprintf("bottom %.1f%%, liked %s", cfg.BottomPercent, page.Liked),
		},
		analysis.GapFrequent: {
			"Played often, never liked",
			fmt.Sprintf("top %.1f%%", cfg.TopPercent),
		},
		analysis.GapLong: {
			"Liked long ago, still played",
			fmt.Sprintf("top %.1f%%, liked %d+ days ago", cfg.LongTopPercent, cfg.LongDays),
		},
	}

	var cols []string
	for i, l := range analysis.GapLists {
		style := m.styles.Column
		if i == m.list {
			style = m.styles.ColumnOn
		}
		c := captions[l]
		cols = append(cols, style.Render(m.listView(c[0], c[1], m.session.Cursors[l])))
	}
	return lipgloss.JoinVertical(lipgloss.Left, metrics, "", lipgloss.JoinHorizontal(lipgloss.Top, cols...))
}

func (m Model) listView(title, caption string, c transform.Cursor[store.TrackPlay]) string {
	lines := []string{m.styles.Header.Render(title), m.styles.Muted.Render(caption), ""}
	for _, t := range c.Shown {
		lines = append(lines, lipgloss.NewStyle().Bold(true).Render(t.Track))
		detail := fmt.Sprintf("%s · %d plays", t.Artist, t.Count)
		if !t.AddedAt.IsZero() {
			detail += " · liked " + t.AddedAt.Format(store.DateLayout)
		}
		lines = append(lines, m.styles.Muted.Render(detail), "")
	}

	switch c.State() {
	case transform.Empty:
		lines = append(lines, m.styles.Muted.Render("press enter to reveal"))
	case transform.Exhausted:
		lines = append(lines, m.styles.Muted.Render("No more tracks"))
	default:
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("%d more", c.Remaining)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) heatmapView() string {
	h := chart.SlotHeatmap(analysis.SlotGrid(m.slots, m.Metric()))
	lo, hi := zRange(h.Z)

	label := m.styles.Cell.Width(11).Align(lipgloss.Left)
	header := []string{label.Render("")}
	for _, x := range h.X {
		header = append(header, m.styles.Cell.Bold(true).Render(x))
	}
	rows := []string{
		m.styles.Header.Render(h.Title) + "  " + m.styles.Muted.Render("(←/→ to change)"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, header...),
	}
	for i, y := range h.Y {
		cells := []string{label.Render(y)}
		for j, v := range h.Z[i] {
			cells = append(cells, m.cell(h.Text[i][j], v, lo, hi, h.Scale))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func zRange(z [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range z {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

func (m Model) cell(text string, v, lo, hi float64, scale chart.Scale) string {
	if math.IsNaN(v) {
		return m.styles.Cell.Render(m.styles.Muted.Render("-"))
	}
	t := 0.0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	bg, fg := blend(scale, t)
	return m.styles.Cell.
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg)).
		Render(text)
}

// blend returns the scale colour at t in [0, 1] and a readable text colour
// for it.
func blend(s chart.Scale, t float64) (string, string) {
	low, err := colorful.Hex(s.Low)
	if err != nil {
		return s.High, "#FFFFFF"
	}
	high, err := colorful.Hex(s.High)
	if err != nil {
		return s.Low, "#000000"
	}
	c := low.BlendLab(high, t).Clamped()
	if l, _, _ := c.Lab(); l < 0.6 {
		return c.Hex(), "#FFFFFF"
	}
	return c.Hex(), "#000000"
}

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
