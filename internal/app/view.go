package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/worksetview/internal/models"
)

type layoutDims struct {
	width, height int
	sidebarWidth  int
	previewWidth  int
	bodyHeight    int
	// Inner origin of the sidebar pane content, in screen coordinates.
	sidebarX, sidebarY int
}

func (m *Model) layout() layoutDims {
	l := layoutDims{width: m.width, height: m.height}
	l.sidebarWidth = maxInt(minSidebarWidth, m.width/3)
	if l.sidebarWidth > m.width-10 {
		l.sidebarWidth = maxInt(0, m.width-10)
	}
	l.previewWidth = maxInt(0, m.width-l.sidebarWidth)
	l.bodyHeight = maxInt(0, m.height-headerHeight-footerHeight)
	l.sidebarX = 1 // left border
	l.sidebarY = headerHeight + 1
	return l
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	l := m.layout()
	// Frame eats one cell on each side of both panes.
	m.sidebar.SetSize(maxInt(0, l.sidebarWidth-2), maxInt(0, l.bodyHeight-2))
	m.preview.Width = maxInt(0, l.previewWidth-2)
	m.preview.Height = maxInt(0, l.bodyHeight-2)
	m.refreshPreview()
}

// handleMouse routes mouse events that land inside the sidebar pane to the
// sidebar, translated to its local coordinates. Wheel events are routed by
// position too, so the preview scrolls under the pointer.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	l := m.layout()
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if msg.X >= l.sidebarWidth {
			if msg.Button == tea.MouseButtonWheelUp {
				m.preview.ScrollUp(3)
			} else {
				m.preview.ScrollDown(3)
			}
			return nil
		}
		return m.sidebar.Update(msg)
	}

	if msg.X < l.sidebarX || msg.X >= l.sidebarWidth-1 {
		return nil
	}
	if msg.Y < l.sidebarY || msg.Y >= l.sidebarY+l.bodyHeight-2 {
		return nil
	}
	msg.X -= l.sidebarX
	msg.Y -= l.sidebarY
	return m.sidebar.Update(msg)
}

// View renders the two-pane shell.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	l := m.layout()

	header := m.renderHeader(l)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebarPane(l),
		m.renderPreviewPane(l),
	)
	footer := m.renderFooter(l)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) renderHeader(l layoutDims) string {
	title := lipgloss.NewStyle().
		Foreground(m.th.AccentFg).
		Background(m.th.Accent).
		Padding(0, 1).
		Render("worksetview")
	name := ""
	if cur := m.manager.CurrentDocument(); cur != nil {
		name = " " + cur.File.Name
		if cur.Dirty {
			name += " [+]"
		}
	}
	line := title + lipgloss.NewStyle().Foreground(m.th.TextFg).Render(name)
	return lipgloss.NewStyle().Width(l.width).MaxHeight(headerHeight).Render(line)
}

func (m *Model) renderSidebarPane(l layoutDims) string {
	var content string
	if m.sidebar.Visible() {
		content = m.sidebar.View()
	} else {
		content = lipgloss.NewStyle().Foreground(m.th.MutedFg).Render("No open files.\n\nPress o to open one.")
	}
	focused := m.manager.FileSelectionFocus() == models.WorkingSetView
	return m.paneStyle(focused).
		Width(maxInt(0, l.sidebarWidth-2)).
		Height(maxInt(0, l.bodyHeight-2)).
		MaxHeight(l.bodyHeight).
		Render(content)
}

func (m *Model) renderPreviewPane(l layoutDims) string {
	focused := m.manager.FileSelectionFocus() == models.EditorView
	return m.paneStyle(focused).
		Width(maxInt(0, l.previewWidth-2)).
		Height(maxInt(0, l.bodyHeight-2)).
		MaxHeight(l.bodyHeight).
		Render(m.preview.View())
}

func (m *Model) renderFooter(l layoutDims) string {
	if m.showingPrompt {
		label := lipgloss.NewStyle().Foreground(m.th.Accent).Render("Open: ")
		return lipgloss.NewStyle().Width(l.width).MaxHeight(footerHeight).Render(label + m.prompt.View())
	}
	left := m.statusMsg
	if left == "" {
		left = "o open  x close  e dirty  s save  j/k move  r related  tab focus  q quit"
	}
	style := lipgloss.NewStyle().Foreground(m.th.MutedFg)
	line := style.Render(left)
	if gap := l.width - lipgloss.Width(line); gap > 0 {
		line += strings.Repeat(" ", gap)
	}
	return lipgloss.NewStyle().Width(l.width).MaxHeight(footerHeight).Render(line)
}

func (m *Model) paneStyle(focused bool) lipgloss.Style {
	border := m.th.BorderDim
	if focused {
		border = m.th.Accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
