package workset

import (
	tea "github.com/charmbracelet/bubbletea"
)

// listTopOffset is the number of chrome lines above the first list row
// (title plus the top scroll shadow).
const listTopOffset = 2

// handleMouse routes pointer input. Coordinates are local to the sidebar:
// (0,0) is the title's first cell; the host translates pane offsets before
// delegating.
func (v *View) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp:
		v.viewport.ScrollUp(1)
		v.notifyContentChanged()
		return nil
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown:
		v.viewport.ScrollDown(1)
		v.notifyContentChanged()
		return nil
	case msg.Action == tea.MouseActionMotion:
		return v.handleHover(msg)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return v.handleClick(msg)
	}
	return nil
}

// rowAt resolves local coordinates to a displayed row.
func (v *View) rowAt(y int) (row, bool) {
	idx := y - listTopOffset + v.viewport.YOffset
	rows := v.buildRows()
	if idx < 0 || idx >= len(rows) {
		return row{}, false
	}
	if y < listTopOffset || y >= listTopOffset+v.viewport.Height {
		return row{}, false
	}
	return rows[idx], true
}

func (v *View) handleHover(msg tea.MouseMsg) tea.Cmd {
	r, ok := v.rowAt(msg.Y)
	if !ok || r.kind != rowItem {
		return v.setHover("")
	}
	return v.setHover(r.path)
}

func (v *View) handleClick(msg tea.MouseMsg) tea.Cmd {
	r, ok := v.rowAt(msg.Y)
	if !ok {
		return nil
	}
	it := v.byPath[r.path]
	if it == nil {
		return nil
	}

	switch r.kind {
	case rowRelated:
		if r.related < 0 || r.related >= len(it.related) {
			return nil
		}
		return v.openRelated(it, it.related[r.related])

	case rowLoading:
		return nil

	default:
		switch {
		case msg.X < statusColWidth && (it.dirty || it.canClose):
			v.closeItem(it)
			return nil
		case msg.X >= v.width-badgeColWidth && (it.hasRelated || it.expanded):
			return v.toggle(it, !it.expanded)
		default:
			return v.selectItem(it)
		}
	}
}
