// Package workspace defines the project file store the agent tools operate
// against. Tools never touch the host file system directly; they go through a
// Store, which keeps concurrent runs against different projects isolated and
// easy to test.
package workspace

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record exists at the requested path or id.
var ErrNotFound = errors.New("workspace: record not found")

// Kind distinguishes files from folders.
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// FileRecord is one entry in the project workspace.
type FileRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`        // slash-separated, relative to project root
	ParentPath string    `json:"parent_path"` // "" for root-level entries
	Kind       Kind      `json:"kind"`
	Content    string    `json:"content,omitempty"` // empty for folders
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Patch describes a partial update to a record. Nil fields are left unchanged.
type Patch struct {
	Name    *string
	Path    *string
	Content *string
}

// Store is the collaborator interface the tools depend on.
type Store interface {
	// FindByPath returns the record at path, or ErrNotFound.
	FindByPath(p string) (*FileRecord, error)
	// Create inserts a new record. The path must not already exist.
	Create(rec *FileRecord) error
	// Update applies a patch to the record with the given id.
	Update(id string, patch Patch) error
	// List returns records under parentPath ("" for the whole project),
	// sorted by path. With recursive=false only direct children are returned.
	List(parentPath string, recursive bool) ([]FileRecord, error)
}

// NewRecord builds a record for the given path with a fresh id and timestamps.
func NewRecord(p string, kind Kind, content string) *FileRecord {
	p = CleanPath(p)
	now := time.Now().UTC()
	return &FileRecord{
		ID:         uuid.NewString(),
		Name:       path.Base(p),
		Path:       p,
		ParentPath: parentOf(p),
		Kind:       kind,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CleanPath normalizes a workspace path: slash-separated, no leading slash,
// no "." or ".." segments escaping the project root.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p) // anchor so ".." cannot escape
	return strings.TrimPrefix(p, "/")
}

func parentOf(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// isUnder reports whether child lives below parent ("" matches everything).
func isUnder(child, parent string) bool {
	if parent == "" {
		return child != ""
	}
	return strings.HasPrefix(child, parent+"/")
}

// directChild reports whether child is an immediate child of parent.
func directChild(child, parent string) bool {
	return parentOf(child) == parent
}
