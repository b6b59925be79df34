// Package tui provides a Bubble Tea TUI for viewing ejtrace reports.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/ejtrace/internal/report"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	targetBadge     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	withdrawalBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	openBadge       = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabWindow
	tabTarget
	tabSources
	tabCount
)

var tabNames = [tabCount]string{"Summary", "Window", "Target", "Sources"}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	report    *report.Report
	filename  string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	// Window tab: cursor position and expanded set
	cursor   int
	expanded map[int]bool
}

// New creates a new TUI model for the given report and source filename.
func New(r *report.Report, filename string) Model {
	return Model{
		report:   r,
		filename: filepath.Base(filename),
		expanded: make(map[int]bool),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "up", "k":
			if m.activeTab == tabWindow && m.cursor > 0 {
				m.cursor--
				m.rebuildWindowViewport()
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabWindow && m.cursor < len(m.report.Sessions)-1 {
				m.cursor++
				m.rebuildWindowViewport()
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabWindow && len(m.report.Sessions) > 0 {
				if m.expanded[m.cursor] {
					delete(m.expanded, m.cursor)
				} else {
					m.expanded[m.cursor] = true
				}
				m.rebuildWindowViewport()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  ejtrace  " + m.filename)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-4 jump  q quit"
	if m.activeTab == tabWindow {
		hint += "  ↑/↓ select  enter expand/collapse"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := max(1, m.width-lipgloss.Width(hint)-len(pct)-2)
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ─────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := max(1, m.height-3)
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) rebuildWindowViewport() {
	m.viewports[tabWindow].SetContent(m.renderTab(tabWindow))
}

// ── Tab renderers ─────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabWindow:
		return m.renderWindow()
	case tabTarget:
		return m.renderTarget()
	case tabSources:
		return m.renderSources()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func bullet(text string) string {
	return bulletStyle.Render("  •") + "  " + text + "\n"
}

func (m *Model) renderSummary() string {
	r := m.report
	var sb strings.Builder
	sb.WriteString(heading("Trace " + r.Trace))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-16s", label)) + "  " + value + "\n")
	}
	row("Terminal:", r.TerminalID)
	row("Outcome:", r.Outcome)
	row("Window size:", fmt.Sprintf("%d", r.WindowSize))
	if r.Investigator != "" {
		row("Investigator:", r.Investigator)
	}
	row("Created:", r.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	row("Report ID:", r.ID)
	if r.Digest != "" {
		row("Digest:", r.Digest)
	}

	sb.WriteString(heading("Counts"))
	row("Before:", fmt.Sprintf("%d (missing %d)", r.Counts.SuccessesBefore, r.Counts.BeforeDeficit))
	row("After:", fmt.Sprintf("%d (missing %d)", r.Counts.SuccessesAfter, r.Counts.AfterDeficit))
	row("Sessions:", fmt.Sprintf("%d", len(r.Sessions)))
	if r.Counts.BeforeOpen {
		sb.WriteString(warnStyle.Render("  first session starts before the scanned journals") + "\n")
	}
	if r.Counts.AfterOpen {
		sb.WriteString(warnStyle.Render("  last session continues past the scanned journals") + "\n")
	}
	if r.Hint != "" {
		sb.WriteString("\n" + warnStyle.Render("  "+r.Hint) + "\n")
	}
	return sb.String()
}

func sessionBadges(s report.Session) string {
	var b []string
	if s.Target {
		b = append(b, targetBadge.Render("[TARGET]"))
	}
	if s.SuccessWithdrawal {
		b = append(b, withdrawalBadge.Render("[CWD]"))
	}
	if !s.Complete {
		b = append(b, openBadge.Render("[OPEN]"))
	}
	return strings.Join(b, " ")
}

// firstLine returns a one-line preview of a session.
func firstLine(s report.Session) string {
	if len(s.Traces) > 0 {
		return "trace " + strings.Join(s.Traces, ", ")
	}
	line, _, _ := strings.Cut(strings.TrimSpace(s.Text), "\n")
	return strings.TrimSpace(line)
}

func (m *Model) renderWindow() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Window (%d sessions)", len(m.report.Sessions))))
	if len(m.report.Sessions) == 0 {
		sb.WriteString(dimStyle.Render("  (trace not found)") + "\n")
		return sb.String()
	}
	for i, s := range m.report.Sessions {
		toggle := dimStyle.Render("  ▶ ")
		if m.expanded[i] {
			toggle = dimStyle.Render("  ▼ ")
		}
		row := fmt.Sprintf("%s#%-5d %s  %s", toggle, s.Index, firstLine(s), sessionBadges(s))
		if i == m.cursor {
			row = selectedRowStyle.Width(max(1, m.width-2)).Render(row)
		}
		sb.WriteString(row + "\n")
		if m.expanded[i] {
			sb.WriteString(dimStyle.Render(indent(s.Text, "      ")) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderTarget() string {
	var sb strings.Builder
	sb.WriteString(heading("Target Transaction"))
	s, ok := m.report.TargetSession()
	if !ok {
		sb.WriteString(dimStyle.Render("  (trace not found)") + "\n")
		return sb.String()
	}
	sb.WriteString("  " + sessionBadges(s) + "\n\n")
	sb.WriteString(indent(s.Text, "    ") + "\n")
	return sb.String()
}

func (m *Model) renderSources() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Journal Files (%d)", len(m.report.Sources))))
	if len(m.report.Sources) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, src := range m.report.Sources {
		sb.WriteString(bullet(src.Date + "  " + src.Path))
	}
	return sb.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// Run starts the TUI for the given report.
func Run(r *report.Report, filename string) error {
	p := tea.NewProgram(New(r, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
