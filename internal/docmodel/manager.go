// Package docmodel owns the canonical editing state: which files are open
// (the working set), which document is current, dirty flags, and which view
// region holds the selection focus. Views mirror this state by subscribing
// to its events; they never own it.
package docmodel

import (
	"fmt"
	"os"
	"sync"

	"github.com/chmouel/worksetview/internal/models"
)

// Document is an open file plus its editing state.
type Document struct {
	File  models.FileRef
	Text  string
	Dirty bool
}

// Subscription is a registered event callback. Dispose unregisters it;
// disposing twice is harmless.
type Subscription interface {
	Dispose()
}

type subscription struct {
	cancel func()
	once   sync.Once
}

func (s *subscription) Dispose() {
	s.once.Do(s.cancel)
}

type fileCallback struct {
	id int
	fn func(models.FileRef)
}

type docCallback struct {
	id int
	fn func(*Document)
}

type focusCallback struct {
	id int
	fn func()
}

// Manager is the document/working-set model.
type Manager struct {
	mu         sync.Mutex
	workingSet []models.FileRef
	docs       map[string]*Document
	current    *Document
	focus      models.ViewID
	nextSubID  int

	onAdd    []fileCallback
	onRemove []fileCallback
	onDirty  []docCallback
	onSaved  []docCallback
	onFocus  []focusCallback
}

// NewManager returns an empty model with selection focus on the editor.
func NewManager() *Manager {
	return &Manager{
		docs:  make(map[string]*Document),
		focus: models.EditorView,
	}
}

// WorkingSet returns the ordered open files. The slice is a copy.
func (m *Manager) WorkingSet() []models.FileRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.FileRef, len(m.workingSet))
	copy(out, m.workingSet)
	return out
}

// CurrentDocument returns the focused document, or nil when none is.
func (m *Manager) CurrentDocument() *Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// OpenDocumentForPath returns the open document for path, or nil.
func (m *Manager) OpenDocumentForPath(path string) *Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[path]
}

// FileSelectionFocus reports which view region owns the active document.
func (m *Manager) FileSelectionFocus() models.ViewID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focus
}

// AddToWorkingSet opens path (reading its current content) and appends it
// to the working set. Adding an already-open file is a no-op.
func (m *Manager) AddToWorkingSet(path string) error {
	m.mu.Lock()
	if _, open := m.docs[path]; open {
		m.mu.Unlock()
		return nil
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("open %s: %w", path, err)
	}
	file := models.NewFileRef(path)
	m.docs[path] = &Document{File: file, Text: string(data)}
	m.workingSet = append(m.workingSet, file)
	cbs := append([]fileCallback(nil), m.onAdd...)
	m.mu.Unlock()

	for _, cb := range cbs {
		cb.fn(file)
	}
	return nil
}

// RemoveFromWorkingSet drops path from the working set and closes its
// document. Removing a file that is not open is a no-op. When the removed
// document was current, the current document becomes nil.
func (m *Manager) RemoveFromWorkingSet(path string) {
	m.mu.Lock()
	doc, open := m.docs[path]
	if !open {
		m.mu.Unlock()
		return
	}
	delete(m.docs, path)
	for i, f := range m.workingSet {
		if f.FullPath == path {
			m.workingSet = append(m.workingSet[:i], m.workingSet[i+1:]...)
			break
		}
	}
	clearedCurrent := m.current == doc
	if clearedCurrent {
		m.current = nil
	}
	removeCbs := append([]fileCallback(nil), m.onRemove...)
	var focusCbs []focusCallback
	if clearedCurrent {
		focusCbs = append(focusCbs, m.onFocus...)
	}
	file := doc.File
	m.mu.Unlock()

	for _, cb := range removeCbs {
		cb.fn(file)
	}
	for _, cb := range focusCbs {
		cb.fn()
	}
}

// SetDirty updates a document's dirty flag and notifies listeners. Unknown
// paths and unchanged flags are no-ops.
func (m *Manager) SetDirty(path string, dirty bool) {
	m.mu.Lock()
	doc, open := m.docs[path]
	if !open || doc.Dirty == dirty {
		m.mu.Unlock()
		return
	}
	doc.Dirty = dirty
	cbs := append([]docCallback(nil), m.onDirty...)
	m.mu.Unlock()

	for _, cb := range cbs {
		cb.fn(doc)
	}
}

// NotifySaved records that path's document was written out: the dirty flag
// clears (with its own change event) and DocumentSaved fires. Text is
// re-read from disk so an external write refreshes the preview too.
func (m *Manager) NotifySaved(path string) {
	m.mu.Lock()
	doc, open := m.docs[path]
	if !open {
		m.mu.Unlock()
		return
	}
	if data, err := os.ReadFile(path); err == nil { //nolint:gosec
		doc.Text = string(data)
	}
	var dirtyCbs []docCallback
	if doc.Dirty {
		doc.Dirty = false
		dirtyCbs = append(dirtyCbs, m.onDirty...)
	}
	savedCbs := append([]docCallback(nil), m.onSaved...)
	m.mu.Unlock()

	for _, cb := range dirtyCbs {
		cb.fn(doc)
	}
	for _, cb := range savedCbs {
		cb.fn(doc)
	}
}

// SetSelectionFocus moves the active-document focus to viewID and fires
// the focus-change event, also when only the current document changed.
func (m *Manager) SetSelectionFocus(viewID models.ViewID) {
	m.mu.Lock()
	m.focus = viewID
	cbs := append([]focusCallback(nil), m.onFocus...)
	m.mu.Unlock()

	for _, cb := range cbs {
		cb.fn()
	}
}

// OpenAndSelectDocument makes path's document current and gives viewID the
// selection focus. The file must already be in the working set.
func (m *Manager) OpenAndSelectDocument(path string, viewID models.ViewID) error {
	m.mu.Lock()
	doc, open := m.docs[path]
	if !open {
		m.mu.Unlock()
		return fmt.Errorf("document not open: %s", path)
	}
	m.current = doc
	m.focus = viewID
	cbs := append([]focusCallback(nil), m.onFocus...)
	m.mu.Unlock()

	for _, cb := range cbs {
		cb.fn()
	}
	return nil
}

// AddToWorkingSetAndSelect opens path if needed, then selects it with the
// working-set view holding focus.
func (m *Manager) AddToWorkingSetAndSelect(path string) error {
	if err := m.AddToWorkingSet(path); err != nil {
		return err
	}
	return m.OpenAndSelectDocument(path, models.WorkingSetView)
}

// OnWorkingSetAdd registers fn for working-set additions.
func (m *Manager) OnWorkingSetAdd(fn func(models.FileRef)) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	m.onAdd = append(m.onAdd, fileCallback{id: id, fn: fn})
	return m.fileSub(&m.onAdd, id)
}

// OnWorkingSetRemove registers fn for working-set removals.
func (m *Manager) OnWorkingSetRemove(fn func(models.FileRef)) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	m.onRemove = append(m.onRemove, fileCallback{id: id, fn: fn})
	return m.fileSub(&m.onRemove, id)
}

// OnDirtyFlagChange registers fn for dirty-flag changes.
func (m *Manager) OnDirtyFlagChange(fn func(*Document)) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	m.onDirty = append(m.onDirty, docCallback{id: id, fn: fn})
	return m.docSub(&m.onDirty, id)
}

// OnDocumentSaved registers fn for document saves.
func (m *Manager) OnDocumentSaved(fn func(*Document)) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	m.onSaved = append(m.onSaved, docCallback{id: id, fn: fn})
	return m.docSub(&m.onSaved, id)
}

// OnSelectionFocusChange registers fn for focus/current-document changes.
func (m *Manager) OnSelectionFocusChange(fn func()) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID()
	m.onFocus = append(m.onFocus, focusCallback{id: id, fn: fn})
	sid := id
	return &subscription{cancel: func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, cb := range m.onFocus {
			if cb.id == sid {
				m.onFocus = append(m.onFocus[:i], m.onFocus[i+1:]...)
				return
			}
		}
	}}
}

func (m *Manager) nextID() int {
	m.nextSubID++
	return m.nextSubID
}

func (m *Manager) fileSub(list *[]fileCallback, id int) Subscription {
	return &subscription{cancel: func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, cb := range *list {
			if cb.id == id {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return
			}
		}
	}}
}

func (m *Manager) docSub(list *[]docCallback, id int) Subscription {
	return &subscription{cancel: func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, cb := range *list {
			if cb.id == id {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return
			}
		}
	}}
}
