// Package workset implements the open-files sidebar: an ordered list of
// the working set mirroring the document model. It is a bubbletea
// component; the host embeds it in its own model, forwards messages to
// Update and places the output of View.
//
// The component owns no canonical state. It subscribes to model events,
// patches its per-item view records to match, and forwards user intent
// (select, close, open related) back to the command dispatcher and the
// document model.
package workset

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/chmouel/worksetview/internal/command"
	"github.com/chmouel/worksetview/internal/config"
	"github.com/chmouel/worksetview/internal/docmodel"
	"github.com/chmouel/worksetview/internal/log"
	"github.com/chmouel/worksetview/internal/models"
	"github.com/chmouel/worksetview/internal/theme"
)

// deselectDelay is how long a deselected item keeps its expanded panel
// visible, so the collapse does not cut off abruptly.
const deselectDelay = 250 * time.Millisecond

// DocumentModel is the slice of the document manager the sidebar consumes.
type DocumentModel interface {
	WorkingSet() []models.FileRef
	CurrentDocument() *docmodel.Document
	OpenDocumentForPath(path string) *docmodel.Document
	FileSelectionFocus() models.ViewID
	OpenAndSelectDocument(path string, viewID models.ViewID) error
	AddToWorkingSetAndSelect(path string) error
	OnWorkingSetAdd(fn func(models.FileRef)) docmodel.Subscription
	OnWorkingSetRemove(fn func(models.FileRef)) docmodel.Subscription
	OnDirtyFlagChange(fn func(*docmodel.Document)) docmodel.Subscription
	OnDocumentSaved(fn func(*docmodel.Document)) docmodel.Subscription
	OnSelectionFocusChange(fn func()) docmodel.Subscription
}

// Commander dispatches application commands.
type Commander interface {
	Execute(id command.ID, args command.Args) error
}

// RelatedResolver is the related-files lookup the panel is fed from.
type RelatedResolver interface {
	HasLoaded(path string) bool
	FindDocRelatedFiles(ctx context.Context, file models.FileRef) ([]models.FileRef, error)
	RelatedFiles(file models.FileRef) []models.FileRef
	RelativeURI(root, target, from string) string
	ProjectRoot() models.FileRef
	DisplayPath(path string) string
}

// Deps are the collaborators a View is wired to.
type Deps struct {
	Model    DocumentModel
	Commands Commander
	Resolver RelatedResolver
	Config   *config.AppConfig
	Theme    *theme.Theme
}

// item is the view-state record for one working-set entry. Items are keyed
// by file path; nothing is ever looked up by scanning rendered rows.
type item struct {
	file           models.FileRef
	selected       bool
	dirty          bool
	canClose       bool // hover affordance on the status icon
	hovered        bool
	expanded       bool
	relatedLoading bool
	hasRelated     bool
	related        []models.RelatedFile // populated only while expanded
	pendingClose   int                  // generation of a scheduled deferred deselect, 0 = none
}

// View is the open-files sidebar component.
type View struct {
	model    DocumentModel
	commands Commander
	resolver RelatedResolver
	cfg      *config.AppConfig
	th       *theme.Theme

	items  []*item
	byPath map[string]*item

	width, height int
	viewport      viewport.Model
	hoverPath     string

	events chan tea.Msg
	subs   []docmodel.Subscription
	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	closeGen int // generation counter for deferred deselects

	selectionListeners []func()
	contentListeners   []func()
}

// Model event messages. Model callbacks run on whatever goroutine mutated
// the model; they are queued and re-enter the component through Update.
type (
	modelEventMsg struct{ event any }

	fileAddedEvent   struct{ file models.FileRef }
	fileRemovedEvent struct{ file models.FileRef }
	dirtyChangedEvent struct {
		path  string
		dirty bool
	}
	documentSavedEvent struct{ path string }
	focusChangedEvent  struct{}
)

// Internal scheduling messages.
type (
	relatedLoadedMsg struct {
		path  string
		files []models.FileRef
		err   error
	}
	deferredDeselectMsg struct {
		path string
		gen  int
	}
	openFileMsg    struct{ path string }
	openRelatedMsg struct{ path string }
)

// New constructs the sidebar, subscribes it to the model and renders the
// initial list from the model's current state.
func New(deps Deps) *View {
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		model:    deps.Model,
		commands: deps.Commands,
		resolver: deps.Resolver,
		cfg:      deps.Config,
		th:       deps.Theme,
		byPath:   make(map[string]*item),
		events:   make(chan tea.Msg, 64),
		viewport: viewport.New(0, 0),
		ctx:      ctx,
		cancel:   cancel,
	}

	v.subs = append(v.subs,
		deps.Model.OnWorkingSetAdd(func(f models.FileRef) {
			v.queue(fileAddedEvent{file: f})
		}),
		deps.Model.OnWorkingSetRemove(func(f models.FileRef) {
			v.queue(fileRemovedEvent{file: f})
		}),
		deps.Model.OnDirtyFlagChange(func(d *docmodel.Document) {
			v.queue(dirtyChangedEvent{path: d.File.FullPath, dirty: d.Dirty})
		}),
		deps.Model.OnDocumentSaved(func(d *docmodel.Document) {
			v.queue(documentSavedEvent{path: d.File.FullPath})
		}),
		deps.Model.OnSelectionFocusChange(func() {
			v.queue(focusChangedEvent{})
		}),
	)

	v.rebuild()
	return v
}

// Close disposes every model subscription and cancels outstanding lookups
// and timers. The view must not be used afterwards.
func (v *View) Close() {
	if v.closed {
		return
	}
	v.closed = true
	for _, sub := range v.subs {
		sub.Dispose()
	}
	v.subs = nil
	v.cancel()
	close(v.events)
}

// Init arms the model-event pump.
func (v *View) Init() tea.Cmd {
	return v.waitForEvent()
}

// OnSelectionChanged registers a listener fired after every selection
// recompute (the host's scroll-shadow decoration hangs off this).
func (v *View) OnSelectionChanged(fn func()) {
	v.selectionListeners = append(v.selectionListeners, fn)
}

// OnContentChanged registers a listener fired after structural or content
// changes to the list.
func (v *View) OnContentChanged(fn func()) {
	v.contentListeners = append(v.contentListeners, fn)
}

// Visible reports whether the sidebar has anything to show. An empty
// working set hides the whole container.
func (v *View) Visible() bool {
	return len(v.items) > 0
}

// Count returns the number of working-set items.
func (v *View) Count() int {
	return len(v.items)
}

// SetSize fixes the area the sidebar renders into.
func (v *View) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width
	// Title plus the two scroll-shadow rows.
	v.viewport.Height = maxInt(0, height-3)
}

func (v *View) queue(event any) {
	if v.closed {
		return
	}
	select {
	case v.events <- modelEventMsg{event: event}:
	default:
		log.Printf("workset: event queue full, dropping %T", event)
	}
}

// waitForEvent blocks on the subscription queue and hands the next model
// event to Update. The channel closing (view closed) ends the pump.
func (v *View) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-v.events
		if !ok {
			return nil
		}
		return msg
	}
}

// Update routes messages. Mouse coordinates are expected to be local to
// the sidebar's top-left cell; the host translates before delegating.
func (v *View) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case modelEventMsg:
		cmd := v.handleModelEvent(msg.event)
		return tea.Batch(cmd, v.waitForEvent())

	case relatedLoadedMsg:
		v.handleRelatedLoaded(msg)
		return nil

	case deferredDeselectMsg:
		v.handleDeferredDeselect(msg)
		return nil

	case openFileMsg:
		// Deliberately deferred to this turn so the click's own visual
		// feedback rendered first.
		if err := v.model.OpenAndSelectDocument(msg.path, models.WorkingSetView); err != nil {
			log.Printf("workset: open %s: %v", msg.path, err)
		}
		return nil

	case openRelatedMsg:
		if err := v.model.AddToWorkingSetAndSelect(msg.path); err != nil {
			log.Printf("workset: open related %s: %v", msg.path, err)
		}
		return nil

	case tea.MouseMsg:
		return v.handleMouse(msg)
	}
	return nil
}

func (v *View) handleModelEvent(event any) tea.Cmd {
	switch ev := event.(type) {
	case fileAddedEvent:
		v.addItem(ev.file)
		v.notifyContentChanged()
		return nil
	case fileRemovedEvent:
		v.removeItem(ev.file.FullPath)
		v.notifyContentChanged()
		return nil
	case dirtyChangedEvent:
		it := v.byPath[ev.path]
		if it == nil {
			return nil
		}
		// The can-close affordance belongs to hover state and survives
		// dirty-flag churn untouched.
		v.setStatus(it, ev.dirty, it.canClose)
		v.notifyContentChanged()
		return nil
	case documentSavedEvent:
		it := v.byPath[ev.path]
		if it == nil || !it.expanded {
			return nil
		}
		// A save may change the related set; repopulate the open panel.
		return v.startRelatedLookup(it)
	case focusChangedEvent:
		return v.syncSelection()
	}
	return nil
}

// rebuild drops every item and recreates one per working-set file in model
// order. Used for the initial render and any bulk change.
func (v *View) rebuild() {
	v.items = nil
	v.byPath = make(map[string]*item)
	for _, f := range v.model.WorkingSet() {
		v.addItem(f)
	}
}

// addItem appends one item, seeding its status and selection from the
// model's current state.
func (v *View) addItem(file models.FileRef) {
	if v.byPath[file.FullPath] != nil {
		return
	}
	it := &item{file: file}
	if doc := v.model.OpenDocumentForPath(file.FullPath); doc != nil {
		it.dirty = doc.Dirty
	}
	if cur := v.model.CurrentDocument(); cur != nil &&
		cur.File.FullPath == file.FullPath &&
		v.model.FileSelectionFocus() == models.WorkingSetView {
		it.selected = true
	}
	v.refreshBadge(it)
	v.items = append(v.items, it)
	v.byPath[file.FullPath] = it
}

// removeItem drops the item for path. Unknown paths are a silent no-op;
// the model may remove files the view never showed. Any pending deferred
// deselect or in-flight lookup for the item becomes a no-op because the
// path lookup will fail when its message lands.
func (v *View) removeItem(path string) {
	it := v.byPath[path]
	if it == nil {
		return
	}
	delete(v.byPath, path)
	for i, candidate := range v.items {
		if candidate == it {
			v.items = append(v.items[:i], v.items[i+1:]...)
			break
		}
	}
	if v.hoverPath == path {
		v.hoverPath = ""
	}
}

// setStatus reconciles the status icon: it exists iff dirty or closable,
// and carries both styles independently.
func (v *View) setStatus(it *item, dirty, canClose bool) {
	it.dirty = dirty
	it.canClose = canClose
}

// syncSelection recomputes the selected flag across all items against the
// model's current document. Selection belongs to this list only while it
// owns the file-selection focus.
func (v *View) syncSelection() tea.Cmd {
	targetPath := ""
	if cur := v.model.CurrentDocument(); cur != nil &&
		v.model.FileSelectionFocus() == models.WorkingSetView {
		targetPath = cur.File.FullPath
	}

	var cmds []tea.Cmd
	for _, it := range v.items {
		shouldSelect := it.file.FullPath == targetPath && targetPath != ""
		switch {
		case shouldSelect:
			it.selected = true
			it.pendingClose = 0
		case it.selected && it.expanded:
			// Keep the panel (and the selected look) for a beat so the
			// collapse can play out, then clear both.
			v.closeGen++
			it.pendingClose = v.closeGen
			cmds = append(cmds, deferDeselect(it.file.FullPath, v.closeGen))
		default:
			it.selected = false
		}
	}
	v.notifySelectionChanged()
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func deferDeselect(path string, gen int) tea.Cmd {
	return tea.Tick(deselectDelay, func(time.Time) tea.Msg {
		return deferredDeselectMsg{path: path, gen: gen}
	})
}

func (v *View) handleDeferredDeselect(msg deferredDeselectMsg) {
	it := v.byPath[msg.path]
	if it == nil || it.pendingClose != msg.gen {
		// Item gone, or it was re-selected / re-scheduled meanwhile.
		return
	}
	it.pendingClose = 0
	it.selected = false
	v.collapse(it)
	v.notifySelectionChanged()
}

// toggle opens or closes an item's related panel. Closing always clears
// the panel's contents.
func (v *View) toggle(it *item, open bool) tea.Cmd {
	if !open {
		v.collapse(it)
		v.notifyContentChanged()
		return nil
	}
	it.expanded = true
	v.notifyContentChanged()
	return v.startRelatedLookup(it)
}

func (v *View) collapse(it *item) {
	it.expanded = false
	it.related = nil
}

// startRelatedLookup kicks an asynchronous resolver query for the item's
// file. Its completion may land after the item was removed.
func (v *View) startRelatedLookup(it *item) tea.Cmd {
	if v.cfg != nil && !v.cfg.RelatedFiles {
		return nil
	}
	it.relatedLoading = !v.resolver.HasLoaded(it.file.FullPath)
	file := it.file
	ctx := v.ctx
	resolver := v.resolver
	return func() tea.Msg {
		files, err := resolver.FindDocRelatedFiles(ctx, file)
		return relatedLoadedMsg{path: file.FullPath, files: files, err: err}
	}
}

func (v *View) handleRelatedLoaded(msg relatedLoadedMsg) {
	it := v.byPath[msg.path]
	if it == nil {
		// The file was closed while the lookup was in flight.
		return
	}
	it.relatedLoading = false
	if msg.err != nil {
		it.hasRelated = false
		it.related = nil
		v.notifyContentChanged()
		return
	}
	it.hasRelated = len(msg.files) > 0
	if it.expanded {
		v.populate(it, msg.files)
	}
	v.notifyContentChanged()
}

// populate fills the expanded panel from the resolver's latest result:
// display paths relative to the project root, tooltips as relative
// references from the item's own file.
func (v *View) populate(it *item, files []models.FileRef) {
	limit := len(files)
	if v.cfg != nil && v.cfg.MaxRelatedShown > 0 && limit > v.cfg.MaxRelatedShown {
		limit = v.cfg.MaxRelatedShown
	}
	root := v.resolver.ProjectRoot().FullPath
	links := make([]models.RelatedFile, 0, limit)
	for _, f := range files[:limit] {
		links = append(links, models.RelatedFile{
			File:        f,
			DisplayPath: v.resolver.DisplayPath(f.FullPath),
			Tooltip:     v.resolver.RelativeURI(root, f.FullPath, it.file.FullPath),
		})
	}
	it.related = links
}

// refreshBadge updates the has-related indicator from the resolver's
// cached state without opening the panel.
func (v *View) refreshBadge(it *item) {
	if v.cfg != nil && !v.cfg.RelatedFiles {
		it.hasRelated = false
		return
	}
	if !v.resolver.HasLoaded(it.file.FullPath) {
		return
	}
	it.hasRelated = len(v.resolver.RelatedFiles(it.file)) > 0
}

// ToggleRelatedPanel opens or closes the related-files panel of the item
// for path, for hosts that drive the sidebar from the keyboard. Unknown
// paths are a no-op.
func (v *View) ToggleRelatedPanel(path string) tea.Cmd {
	it := v.byPath[path]
	if it == nil {
		return nil
	}
	return v.toggle(it, !it.expanded)
}

// selectItem handles a click on an item row: immediate selected look,
// loading indicator if the resolver has not settled, and the actual
// open+select deferred to the next Update cycle.
func (v *View) selectItem(it *item) tea.Cmd {
	for _, other := range v.items {
		other.selected = other == it
	}
	it.pendingClose = 0
	v.notifySelectionChanged()

	var cmds []tea.Cmd
	if v.cfg == nil || v.cfg.RelatedFiles {
		if !v.resolver.HasLoaded(it.file.FullPath) {
			cmds = append(cmds, v.startRelatedLookup(it))
		}
	}
	path := it.file.FullPath
	cmds = append(cmds, func() tea.Msg { return openFileMsg{path: path} })
	return tea.Batch(cmds...)
}

// closeItem dispatches the application close command for the item's file.
// This asks for the full close action (the host may prompt about unsaved
// changes), not a bare working-set remove.
func (v *View) closeItem(it *item) {
	if err := v.commands.Execute(command.CloseFile, command.Args{File: it.file}); err != nil {
		log.Printf("workset: close %s: %v", it.file.FullPath, err)
	}
}

// openRelated handles a click on a related link: the panel closes, the
// item loses its close affordance, and the open happens next cycle so the
// collapse renders first.
func (v *View) openRelated(it *item, link models.RelatedFile) tea.Cmd {
	v.collapse(it)
	v.setStatus(it, it.dirty, false)
	v.notifyContentChanged()
	path := link.File.FullPath
	return func() tea.Msg { return openRelatedMsg{path: path} }
}

// setHover moves the hover affordance between items.
func (v *View) setHover(path string) tea.Cmd {
	if v.hoverPath == path {
		return nil
	}
	if prev := v.byPath[v.hoverPath]; prev != nil {
		v.setStatus(prev, prev.dirty, false)
		prev.hovered = false
	}
	v.hoverPath = path
	it := v.byPath[path]
	if it == nil {
		return nil
	}
	it.hovered = true
	v.setStatus(it, it.dirty, true)
	if (v.cfg == nil || v.cfg.RelatedFiles) && !v.resolver.HasLoaded(path) {
		return v.startRelatedLookup(it)
	}
	return nil
}

func (v *View) notifySelectionChanged() {
	for _, fn := range v.selectionListeners {
		fn()
	}
}

func (v *View) notifyContentChanged() {
	for _, fn := range v.contentListeners {
		fn()
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
