// Package app hosts the demo editor shell around the workset sidebar: a
// two-pane TUI with the open-files list on the left and a read-only
// preview of the current document on the right.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chmouel/worksetview/internal/command"
	"github.com/chmouel/worksetview/internal/config"
	"github.com/chmouel/worksetview/internal/docmodel"
	"github.com/chmouel/worksetview/internal/log"
	"github.com/chmouel/worksetview/internal/models"
	"github.com/chmouel/worksetview/internal/related"
	"github.com/chmouel/worksetview/internal/theme"
	"github.com/chmouel/worksetview/internal/workset"
)

const (
	headerHeight    = 1
	footerHeight    = 1
	minSidebarWidth = 24
)

// Messages for the Bubble Tea app.
type (
	modelChangedMsg struct{}
	savedOnDiskMsg  struct{ path string }
)

// Model is the demo application model.
type Model struct {
	cfg *config.AppConfig
	th  *theme.Theme

	manager    *docmodel.Manager
	dispatcher *command.Dispatcher
	resolver   *related.Resolver
	sidebar    *workset.View
	watch      *docmodel.WatchService

	preview       viewport.Model
	prompt        textinput.Model
	showingPrompt bool

	events chan tea.Msg
	subs   []docmodel.Subscription

	width, height int
	statusMsg     string
	quitting      bool
}

// NewModel wires the document model, resolver, dispatcher and sidebar for
// the project rooted at root, opening initialFiles into the working set.
func NewModel(cfg *config.AppConfig, root string, initialFiles []string) *Model {
	manager := docmodel.NewManager()
	dispatcher := command.NewDispatcher()
	resolver := related.NewResolver(models.NewFileRef(root))

	m := &Model{
		cfg:        cfg,
		th:         theme.ByName(cfg.Theme),
		manager:    manager,
		dispatcher: dispatcher,
		resolver:   resolver,
		watch:      docmodel.NewWatchService(manager),
		preview:    viewport.New(40, 10),
		prompt:     textinput.New(),
		events:     make(chan tea.Msg, 32),
	}
	m.prompt.Placeholder = "path/to/file"
	m.prompt.Width = 50

	dispatcher.Register(command.CloseFile, m.closeFile)
	dispatcher.Register(command.OpenFile, func(args command.Args) error {
		return manager.AddToWorkingSetAndSelect(args.File.FullPath)
	})

	m.sidebar = workset.New(workset.Deps{
		Model:    manager,
		Commands: dispatcher,
		Resolver: resolver,
		Config:   cfg,
		Theme:    m.th,
	})
	m.sidebar.OnSelectionChanged(func() { m.refreshPreview() })
	m.sidebar.OnContentChanged(func() {})

	m.subs = append(m.subs,
		manager.OnWorkingSetAdd(func(f models.FileRef) {
			m.watch.WatchFile(f.FullPath)
			m.queue(modelChangedMsg{})
		}),
		manager.OnWorkingSetRemove(func(models.FileRef) { m.queue(modelChangedMsg{}) }),
		manager.OnDirtyFlagChange(func(*docmodel.Document) { m.queue(modelChangedMsg{}) }),
		manager.OnDocumentSaved(func(*docmodel.Document) { m.queue(modelChangedMsg{}) }),
		manager.OnSelectionFocusChange(func() { m.queue(modelChangedMsg{}) }),
	)

	for _, path := range initialFiles {
		if err := manager.AddToWorkingSet(path); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
			log.Printf("app: open %s: %v", path, err)
		}
	}
	if ws := manager.WorkingSet(); len(ws) > 0 {
		_ = manager.OpenAndSelectDocument(ws[0].FullPath, models.WorkingSetView)
	}
	m.refreshPreview()
	return m
}

// closeFile is the CLOSE_FILE command handler: the full application close
// action. The demo discards unsaved changes with a notice instead of
// prompting.
func (m *Model) closeFile(args command.Args) error {
	doc := m.manager.OpenDocumentForPath(args.File.FullPath)
	if doc == nil {
		return nil
	}
	if doc.Dirty {
		m.statusMsg = fmt.Sprintf("Closed %s (unsaved changes discarded)", args.File.Name)
	} else {
		m.statusMsg = fmt.Sprintf("Closed %s", args.File.Name)
	}
	m.manager.RemoveFromWorkingSet(args.File.FullPath)
	return nil
}

// Init starts the sidebar pump, the model-event pump and the disk watcher.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.sidebar.Init(), m.waitForModelEvent()}
	if m.cfg.AutoRefresh {
		if err := m.watch.Start(); err != nil {
			log.Printf("app: watch start: %v", err)
		} else {
			cmds = append(cmds, m.waitForSave())
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) queue(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *Model) waitForModelEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) waitForSave() tea.Cmd {
	return func() tea.Msg {
		path, ok := <-m.watch.Events
		if !ok {
			return nil
		}
		return savedOnDiskMsg{path: path}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case modelChangedMsg:
		m.refreshPreview()
		return m, m.waitForModelEvent()

	case savedOnDiskMsg:
		m.manager.NotifySaved(msg.path)
		m.statusMsg = fmt.Sprintf("Reloaded %s from disk", models.NewFileRef(msg.path).Name)
		return m, m.waitForSave()
	}

	// Everything else (sidebar timers, lookups, deferred opens) belongs
	// to the sidebar.
	return m, m.sidebar.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showingPrompt {
		return m.handlePromptKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.teardown()
		m.quitting = true
		return m, tea.Quit

	case "o":
		m.showingPrompt = true
		m.prompt.SetValue("")
		m.prompt.Focus()
		return m, textinput.Blink

	case "j", "down":
		m.selectNeighbor(1)
		return m, nil

	case "k", "up":
		m.selectNeighbor(-1)
		return m, nil

	case "enter":
		// Click equivalent on the current row: re-activate it and pull
		// the selection focus back to the sidebar.
		if cur := m.manager.CurrentDocument(); cur != nil {
			_ = m.manager.OpenAndSelectDocument(cur.File.FullPath, models.WorkingSetView)
		}
		return m, nil

	case "x":
		if cur := m.manager.CurrentDocument(); cur != nil {
			if err := m.dispatcher.Execute(command.CloseFile, command.Args{File: cur.File}); err != nil {
				m.statusMsg = fmt.Sprintf("Error: %v", err)
			}
		}
		return m, nil

	case "e":
		if cur := m.manager.CurrentDocument(); cur != nil {
			m.manager.SetDirty(cur.File.FullPath, !cur.Dirty)
		}
		return m, nil

	case "s":
		if cur := m.manager.CurrentDocument(); cur != nil {
			m.manager.NotifySaved(cur.File.FullPath)
			m.statusMsg = fmt.Sprintf("Saved %s", cur.File.Name)
		}
		return m, nil

	case "r":
		if cur := m.manager.CurrentDocument(); cur != nil {
			return m, m.sidebar.ToggleRelatedPanel(cur.File.FullPath)
		}
		return m, nil

	case "tab":
		if m.manager.FileSelectionFocus() == models.WorkingSetView {
			m.manager.SetSelectionFocus(models.EditorView)
		} else {
			m.manager.SetSelectionFocus(models.WorkingSetView)
		}
		return m, nil

	case "pgdown", " ":
		m.preview.HalfPageDown()
		return m, nil

	case "pgup":
		m.preview.HalfPageUp()
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.prompt.Value())
		m.showingPrompt = false
		m.prompt.Blur()
		if path == "" {
			return m, nil
		}
		expanded, err := config.ExpandPath(path)
		if err == nil {
			path = expanded
		}
		if err := m.manager.AddToWorkingSetAndSelect(path); err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", err)
		}
		return m, nil
	case "esc":
		m.showingPrompt = false
		m.prompt.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// selectNeighbor moves the active document up or down the working set.
// Keyboard navigation goes through the model; the sidebar follows via the
// focus-change event like any other selection change.
func (m *Model) selectNeighbor(delta int) {
	ws := m.manager.WorkingSet()
	if len(ws) == 0 {
		return
	}
	idx := 0
	if cur := m.manager.CurrentDocument(); cur != nil {
		for i, f := range ws {
			if f.FullPath == cur.File.FullPath {
				idx = i + delta
				break
			}
		}
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(ws) {
		idx = len(ws) - 1
	}
	_ = m.manager.OpenAndSelectDocument(ws[idx].FullPath, models.WorkingSetView)
}

func (m *Model) teardown() {
	m.sidebar.Close()
	m.watch.Stop()
	for _, sub := range m.subs {
		sub.Dispose()
	}
	m.subs = nil
}

func (m *Model) refreshPreview() {
	cur := m.manager.CurrentDocument()
	if cur == nil {
		m.preview.SetContent("No file open.")
		return
	}
	m.preview.SetContent(cur.Text)
}

// Manager exposes the document model for tests and embedding hosts.
func (m *Model) Manager() *docmodel.Manager {
	return m.manager
}

// Sidebar exposes the workset component for tests and embedding hosts.
func (m *Model) Sidebar() *workset.View {
	return m.sidebar
}
