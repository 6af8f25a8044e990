// Package command implements the application command dispatcher. UI
// components request application-level actions (close a file, open a file)
// by id instead of calling into the host directly.
package command

import (
	"fmt"
	"sync"

	"github.com/chmouel/worksetview/internal/models"
)

// ID names a dispatchable command.
type ID string

const (
	// CloseFile requests the full application close action for a file.
	// This is distinct from a working-set remove: the host may prompt for
	// unsaved changes before actually closing.
	CloseFile ID = "file.close"
	// OpenFile requests that a file be opened and become the active
	// document.
	OpenFile ID = "file.open"
)

// Args carries the payload of a command invocation.
type Args struct {
	File models.FileRef
}

// Handler executes one command.
type Handler func(Args) error

// Dispatcher routes command invocations to registered handlers.
type Dispatcher struct {
	mu       sync.Mutex
	handlers map[ID]Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[ID]Handler)}
}

// Register installs the handler for id, replacing any previous one.
func (d *Dispatcher) Register(id ID, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[id] = h
}

// Execute runs the handler registered for id. Unknown commands are an
// error; handler errors pass through.
func (d *Dispatcher) Execute(id ID, args Args) error {
	d.mu.Lock()
	h := d.handlers[id]
	d.mu.Unlock()
	if h == nil {
		return fmt.Errorf("command %q: no handler registered", id)
	}
	return h(args)
}
