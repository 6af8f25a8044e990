// Package models defines the data objects shared across worksetview packages.
package models

import "path/filepath"

// FileRef identifies a file by its full path. Paths are the identity used
// everywhere: two refs are the same file iff their FullPath is equal.
type FileRef struct {
	FullPath string
	Name     string
}

// NewFileRef builds a FileRef from a full path, deriving the display name.
func NewFileRef(fullPath string) FileRef {
	return FileRef{
		FullPath: fullPath,
		Name:     filepath.Base(fullPath),
	}
}

// RelatedFile is one entry of a related-files lookup result: the path shown
// in the panel plus the tooltip reference computed relative to the file the
// lookup was made for. Related entries are ephemeral and rebuilt on every
// panel open.
type RelatedFile struct {
	File        FileRef
	DisplayPath string
	Tooltip     string
}

// ViewID names a UI region that can own active-document semantics.
type ViewID string

const (
	// WorkingSetView is the view id of the open-files sidebar.
	WorkingSetView ViewID = "working-set"
	// EditorView is the view id of the editor/preview area.
	EditorView ViewID = "editor"
)
