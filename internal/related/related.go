// Package related resolves the files contextually associated with an open
// file: companion sources, headers, tests and same-stem siblings living in
// the same directory. Lookups are asynchronous and cached per path; the
// sidebar only ever reads the cached result.
package related

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/chmouel/worksetview/internal/log"
	"github.com/chmouel/worksetview/internal/models"
)

type lookupState int

const (
	statePending lookupState = iota
	stateLoaded
	stateFailed
)

type lookup struct {
	state lookupState
	files []models.FileRef
}

// Resolver finds related files beneath a project root.
type Resolver struct {
	root models.FileRef

	mu    sync.Mutex
	cache map[string]*lookup
}

// NewResolver returns a resolver scoped to the given project root.
func NewResolver(root models.FileRef) *Resolver {
	return &Resolver{
		root:  root,
		cache: make(map[string]*lookup),
	}
}

// ProjectRoot returns the root the resolver was built for.
func (r *Resolver) ProjectRoot() models.FileRef {
	return r.root
}

// HasLoaded reports whether a lookup for path has settled, successfully or
// not. A path never looked up has not loaded.
func (r *Resolver) HasLoaded(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	lk, ok := r.cache[path]
	return ok && lk.state != statePending
}

// RelatedFiles returns the cached related set for file, or nil when the
// lookup has not settled successfully.
func (r *Resolver) RelatedFiles(file models.FileRef) []models.FileRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	lk, ok := r.cache[file.FullPath]
	if !ok || lk.state != stateLoaded {
		return nil
	}
	return lk.files
}

// FindDocRelatedFiles scans the file's directory for companions and caches
// the outcome. It blocks and is meant to be called from a background
// goroutine (a tea.Cmd in the UI). Every call re-resolves, so a repopulated
// panel reflects the current state of the directory.
func (r *Resolver) FindDocRelatedFiles(ctx context.Context, file models.FileRef) ([]models.FileRef, error) {
	r.mu.Lock()
	r.cache[file.FullPath] = &lookup{state: statePending}
	r.mu.Unlock()

	files, err := r.scan(ctx, file)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.cache[file.FullPath] = &lookup{state: stateFailed}
		log.Printf("related: lookup for %s failed: %v", file.FullPath, err)
		return nil, err
	}
	r.cache[file.FullPath] = &lookup{state: stateLoaded, files: files}
	return files, nil
}

// DisplayPath renders path relative to the project root, falling back to
// the full path when it lies outside the root.
func (r *Resolver) DisplayPath(path string) string {
	rel, err := filepath.Rel(r.root.FullPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// RelativeURI computes a relative reference from the directory of `from`
// to `target`. When `from` is empty the reference is taken from `root`.
func (r *Resolver) RelativeURI(root, target, from string) string {
	base := root
	if from != "" {
		base = filepath.Dir(from)
	}
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

// companionExts maps an extension to the extensions its companions carry.
var companionExts = map[string][]string{
	".go":   {".go"},
	".c":    {".h"},
	".h":    {".c", ".cc", ".cpp"},
	".cc":   {".h", ".hh"},
	".cpp":  {".h", ".hpp"},
	".hpp":  {".cpp"},
	".html": {".css", ".js"},
	".css":  {".html", ".js"},
	".js":   {".html", ".css"},
	".ts":   {".tsx", ".css"},
	".tsx":  {".ts", ".css"},
}

func (r *Resolver) scan(ctx context.Context, file models.FileRef) ([]models.FileRef, error) {
	dir := filepath.Dir(file.FullPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := filepath.Ext(file.Name)
	stem := strings.TrimSuffix(file.Name, ext)
	stem = strings.TrimSuffix(stem, "_test")

	related := []models.FileRef{}
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == file.Name {
			continue
		}
		if !r.isCompanion(stem, ext, entry.Name()) {
			continue
		}
		related = append(related, models.NewFileRef(filepath.Join(dir, entry.Name())))
	}
	sort.Slice(related, func(i, j int) bool {
		return related[i].FullPath < related[j].FullPath
	})
	return related, nil
}

func (r *Resolver) isCompanion(stem, ext, candidate string) bool {
	cext := filepath.Ext(candidate)
	cstem := strings.TrimSuffix(candidate, cext)
	cstem = strings.TrimSuffix(cstem, "_test")
	if cstem != stem {
		return false
	}
	exts, ok := companionExts[ext]
	if !ok {
		// Unknown extension: any same-stem sibling counts.
		return true
	}
	for _, e := range exts {
		if cext == e {
			return true
		}
	}
	return false
}
