package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/review-relay/internal/core"
	"github.com/sevigo/review-relay/internal/parser"
	"github.com/sevigo/review-relay/internal/render"
)

// Rows taken by the header tab strip and the footer.
const chromeHeight = 7

type model struct {
	styles styles
	parser *parser.Parser
	source string

	// UI Components
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer
	isLoading bool
	width     int

	// Review State
	record      *core.ReviewRecord
	diagnostics []parser.Diagnostic
	blocks      []block
	active      int
	err         error
}

func initialModel(theme ThemeName, p *parser.Parser, source string) *model {
	styles := GetTheme(theme)

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = styles.success

	return &model{
		styles:    styles,
		parser:    p,
		source:    source,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		renderer:  newRenderer(80),
		isLoading: true,
		width:     80,
	}
}

func newRenderer(width int) *glamour.TermRenderer {
	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	return r
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(loadReviewCmd(m.parser, m.source), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "tab", "right", "l":
			m.selectBlock(m.active + 1)
			return m, nil
		case "shift+tab", "left", "h":
			m.selectBlock(m.active - 1)
			return m, nil
		}

	case reviewLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.record = msg.record
		m.diagnostics = msg.diagnostics
		m.blocks = buildBlocks(msg.record, msg.diagnostics, m.parser.GeneralBucket())
		m.selectBlock(0)
		return m, nil

	case spinner.TickMsg:
		if !m.isLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.renderer = newRenderer(m.viewport.Width)
		m.selectBlock(m.active)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// selectBlock activates block i, wrapping around at both ends.
func (m *model) selectBlock(i int) {
	if len(m.blocks) == 0 {
		return
	}
	n := len(m.blocks)
	m.active = ((i % n) + n) % n
	m.viewport.SetContent(m.renderBlock(m.blocks[m.active]))
	m.viewport.GotoTop()
}

func (m *model) renderBlock(b block) string {
	if m.renderer == nil {
		return b.markdown
	}
	out, err := m.renderer.Render(b.markdown)
	if err != nil {
		return b.markdown
	}
	return out
}

func (m *model) View() string {
	if m.err != nil {
		return m.styles.app.Render(m.styles.error.Render("⚠ "+m.err.Error()) + "\n\n" + m.styles.inactive.Render("press q to quit"))
	}
	if m.isLoading {
		return fmt.Sprintf("\n  %s PARSING %s...\n\n", m.spinner.View(), m.source)
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.header.Render(m.tabStrip()),
			m.styles.viewport.Render(m.viewport.View()),
			m.styles.footer.Render(m.statusLine()),
		),
	)
}

func (m *model) tabStrip() string {
	tabs := make([]string, 0, len(m.blocks))
	for i, b := range m.blocks {
		if i == m.active {
			tabs = append(tabs, m.styles.activeTab.Render(b.title))
		} else {
			tabs = append(tabs, m.styles.tab.Render(b.title))
		}
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width-6, 10)).Render(strings.Join(tabs, m.styles.inactive.Render("│")))
}

func (m *model) statusLine() string {
	status := m.record.ApprovalStatus
	verdict := fmt.Sprintf("%s %s", render.ApprovalIcon(status), status)
	switch status {
	case core.ApprovalApproved:
		verdict = m.styles.success.Render(verdict)
	case core.ApprovalChangesRequested:
		verdict = m.styles.error.Render(verdict)
	default:
		verdict = m.styles.warning.Render(verdict)
	}

	diag := m.styles.inactive.Render("no diagnostics")
	if n := len(m.diagnostics); n > 0 {
		diag = m.styles.warning.Render(fmt.Sprintf("%d diagnostic(s)", n))
	}

	parts := []string{
		verdict,
		fmt.Sprintf("%d/%d", m.active+1, len(m.blocks)),
		fmt.Sprintf("%d comment(s)", m.record.CommentCount()),
		diag,
		m.styles.inactive.Render("tab/shift+tab switch • ↑/↓ scroll • q quit"),
	}
	return strings.Join(parts, m.styles.inactive.Render(" │ "))
}
