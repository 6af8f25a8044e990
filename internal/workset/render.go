package workset

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	statusColWidth = 2
	badgeColWidth  = 2
	relatedIndent  = 4

	iconDirty     = "●"
	iconClose     = "✕"
	iconCollapsed = "▸"
	iconExpanded  = "▾"
	iconLoading   = "…"
)

type rowKind int

const (
	rowItem rowKind = iota
	rowRelated
	rowLoading
)

// row is one rendered line of the list, carrying the target a click on it
// resolves to.
type row struct {
	kind    rowKind
	path    string // owning item's file path
	related int    // index into the item's related links, for rowRelated
}

// buildRows flattens items and their expanded panels into the displayed
// line sequence. Mouse hit-testing uses the same sequence.
func (v *View) buildRows() []row {
	rows := []row{}
	for _, it := range v.items {
		rows = append(rows, row{kind: rowItem, path: it.file.FullPath})
		if !it.expanded {
			continue
		}
		if it.relatedLoading {
			rows = append(rows, row{kind: rowLoading, path: it.file.FullPath})
			continue
		}
		for i := range it.related {
			rows = append(rows, row{kind: rowRelated, path: it.file.FullPath, related: i})
		}
	}
	return rows
}

// View renders the sidebar. An empty working set renders nothing at all:
// the container is hidden, not blank.
func (v *View) View() string {
	if !v.Visible() || v.width <= 0 {
		return ""
	}

	rows := v.buildRows()
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, v.renderRow(r))
	}
	v.viewport.SetContent(strings.Join(lines, "\n"))

	sections := []string{
		v.renderTitle(),
		v.renderShadow(v.viewport.YOffset > 0),
		v.viewport.View(),
		v.renderShadow(!v.viewport.AtBottom()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTitle() string {
	style := lipgloss.NewStyle().
		Foreground(v.th.MutedFg).
		Bold(true).
		Width(v.width)
	return style.Render("Open Files")
}

// renderShadow draws the scroll shadow row: a thin rule when content
// continues past that edge, blank otherwise.
func (v *View) renderShadow(active bool) string {
	if !active {
		return strings.Repeat(" ", v.width)
	}
	return lipgloss.NewStyle().
		Foreground(v.th.BorderDim).
		Render(strings.Repeat("╌", v.width))
}

func (v *View) renderRow(r row) string {
	it := v.byPath[r.path]
	if it == nil {
		return ""
	}
	switch r.kind {
	case rowRelated:
		return v.renderRelatedRow(it, r.related)
	case rowLoading:
		return v.renderLoadingRow()
	default:
		return v.renderItemRow(it)
	}
}

func (v *View) renderItemRow(it *item) string {
	status := "  "
	statusStyle := lipgloss.NewStyle().Foreground(v.th.WarnFg)
	switch {
	case it.canClose:
		status = iconClose + " "
		if !it.dirty {
			statusStyle = statusStyle.Foreground(v.th.MutedFg)
		}
	case it.dirty:
		status = iconDirty + " "
	}

	icon := ""
	if v.cfg == nil || v.cfg.ShowIcons {
		icon = iconWithSpace(deviconForName(it.file.Name, false))
	}

	badge := "  "
	badgeStyle := lipgloss.NewStyle().Foreground(v.th.MutedFg)
	switch {
	case it.relatedLoading:
		badge = iconLoading + " "
	case it.expanded:
		badge = iconExpanded + " "
		badgeStyle = badgeStyle.Foreground(v.th.Accent)
	case it.hasRelated:
		badge = iconCollapsed + " "
	}

	nameWidth := v.width - statusColWidth - badgeColWidth - lipgloss.Width(icon)
	name := truncate.StringWithTail(it.file.Name, uint(maxInt(nameWidth, 1)), "…") //nolint:gosec
	name += strings.Repeat(" ", maxInt(0, nameWidth-lipgloss.Width(name)))

	if it.selected {
		line := status + icon + name + badge
		return lipgloss.NewStyle().
			Background(v.th.Accent).
			Foreground(v.th.AccentFg).
			Bold(true).
			Width(v.width).
			Render(line)
	}

	nameStyle := lipgloss.NewStyle().Foreground(v.th.TextFg)
	if it.dirty {
		nameStyle = nameStyle.Foreground(v.th.WarnFg)
	}
	return statusStyle.Render(status) + nameStyle.Render(icon+name) + badgeStyle.Render(badge)
}

func (v *View) renderRelatedRow(it *item, idx int) string {
	if idx < 0 || idx >= len(it.related) {
		return ""
	}
	link := it.related[idx]
	width := maxInt(1, v.width-relatedIndent)
	text := truncate.StringWithTail(link.DisplayPath, uint(width), "…") //nolint:gosec
	return strings.Repeat(" ", relatedIndent) + lipgloss.NewStyle().
		Foreground(v.th.LinkFg).
		Underline(true).
		Render(text)
}

func (v *View) renderLoadingRow() string {
	return strings.Repeat(" ", relatedIndent) + lipgloss.NewStyle().
		Foreground(v.th.MutedFg).
		Italic(true).
		Render("looking for related files"+iconLoading)
}
