package workset

import (
	"fmt"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/worksetview/internal/command"
	"github.com/chmouel/worksetview/internal/models"
)

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion}
}

func TestClickSelectsItem(t *testing.T) {
	f := newFixture(t)
	paths := f.open(t, "a.go", "b.go")

	// Second row: title and top shadow sit above the list.
	cmd := f.view.Update(leftClick(10, listTopOffset+1))
	require.NotNil(t, cmd)
	assert.True(t, f.view.byPath[paths[1]].selected)

	f.exec(t, cmd)
	require.NotNil(t, f.manager.CurrentDocument())
	assert.Equal(t, paths[1], f.manager.CurrentDocument().File.FullPath)
}

func TestClickOutsideListIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.open(t, "a.go")

	assert.Nil(t, f.view.Update(leftClick(5, 0)), "title row")
	assert.Nil(t, f.view.Update(leftClick(5, 19)), "below the rows")
	assert.Empty(t, f.selectedPaths())
}

func TestClickStatusIconClosesFile(t *testing.T) {
	f := newFixture(t)
	paths := f.open(t, "a.go")
	f.manager.SetDirty(paths[0], true)
	f.sync(t)

	f.exec(t, f.view.Update(leftClick(0, listTopOffset)))

	require.Len(t, f.commands.executed, 1)
	assert.Equal(t, command.CloseFile, f.commands.executed[0])
}

func TestClickIconColumnWithoutIconSelects(t *testing.T) {
	f := newFixture(t)
	paths := f.open(t, "a.go")

	// Clean and unhovered: no icon, the click is a plain select.
	f.exec(t, f.view.Update(leftClick(0, listTopOffset)))
	require.NotNil(t, f.manager.CurrentDocument())
	assert.Equal(t, paths[0], f.manager.CurrentDocument().File.FullPath)
	assert.Empty(t, f.commands.executed)
}

func TestClickBadgeTogglesPanel(t *testing.T) {
	f := newFixture(t)
	paths := f.open(t, "a.go")
	it := f.view.byPath[paths[0]]
	f.resolver.files[paths[0]] = []models.FileRef{models.NewFileRef(filepath.Join(f.dir, "a_test.go"))}
	it.hasRelated = true

	badgeX := f.view.width - 1
	f.exec(t, f.view.Update(leftClick(badgeX, listTopOffset)))
	assert.True(t, it.expanded)
	require.Len(t, it.related, 1)

	f.exec(t, f.view.Update(leftClick(badgeX, listTopOffset)))
	assert.False(t, it.expanded)
	assert.Nil(t, it.related)
}

func TestClickBadgeWithoutRelatedSelects(t *testing.T) {
	f := newFixture(t)
	paths := f.open(t, "a.go")
	f.resolver.loaded[paths[0]] = true // settled, no related files

	f.exec(t, f.view.Update(leftClick(f.view.width-1, listTopOffset)))
	assert.False(t, f.view.byPath[paths[0]].expanded)
	require.NotNil(t, f.manager.CurrentDocument())
}

func TestClickRelatedLinkOpensFile(t *testing.T) {
	f := newFixture(t)
	paths := f.open(t, "a.go")
	it := f.view.byPath[paths[0]]
	relPath := f.file(t, "a_test.go")
	f.resolver.files[paths[0]] = []models.FileRef{models.NewFileRef(relPath)}

	f.exec(t, f.view.toggle(it, true))
	require.Len(t, it.related, 1)

	// The related row renders directly under its item.
	f.exec(t, f.view.Update(leftClick(6, listTopOffset+1)))

	assert.False(t, it.expanded)
	assert.Equal(t, 2, f.view.Count())
	require.NotNil(t, f.manager.CurrentDocument())
	assert.Equal(t, relPath, f.manager.CurrentDocument().File.FullPath)
}

func TestHoverTogglesCloseAffordance(t *testing.T) {
	f := newFixture(t)
	paths := f.open(t, "a.go", "b.go")
	f.resolver.loaded[paths[0]] = true
	f.resolver.loaded[paths[1]] = true
	a, b := f.view.byPath[paths[0]], f.view.byPath[paths[1]]

	f.exec(t, f.view.Update(motion(5, listTopOffset)))
	assert.True(t, a.canClose)
	assert.False(t, b.canClose)

	// Moving to the next row shifts the affordance.
	f.exec(t, f.view.Update(motion(5, listTopOffset+1)))
	assert.False(t, a.canClose)
	assert.True(t, b.canClose)

	// Leaving the list clears it.
	f.exec(t, f.view.Update(motion(5, 50)))
	assert.False(t, a.canClose)
	assert.False(t, b.canClose)
}

func TestWheelScrollsViewport(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 30; i++ {
		f.open(t, fmt.Sprintf("file%02d.go", i))
	}
	f.view.SetSize(30, 8)
	f.view.View() // lay out content

	wheel := tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}
	f.exec(t, f.view.Update(wheel))
	f.exec(t, f.view.Update(wheel))
	assert.Positive(t, f.view.viewport.YOffset)

	up := tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp}
	f.exec(t, f.view.Update(up))
	assert.Equal(t, 1, f.view.viewport.YOffset)
}
