// Package contextstore persists categorized agent memory as Markdown files
// under a project's hidden .agent directory. Notes survive across runs and
// sessions; they are the only durable memory the execution core has.
package contextstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AgentDir is the hidden per-project directory holding agent state.
const AgentDir = ".agent"

// Category names one of the five fixed note files. The set is closed: the
// listing and read tools assume exactly these files exist or are absent.
type Category string

const (
	CategoryArchitecture Category = "architecture"
	CategoryProgress     Category = "progress"
	CategoryResearch     Category = "research"
	CategoryTasks        Category = "tasks"
	CategoryNotes        Category = "notes"
)

// Categories lists all valid categories in stable order.
func Categories() []Category {
	return []Category{
		CategoryArchitecture,
		CategoryProgress,
		CategoryResearch,
		CategoryTasks,
		CategoryNotes,
	}
}

// ParseCategory validates a raw category string. Invalid values are a caller
// error and are rejected before any file I/O happens.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryArchitecture, CategoryProgress, CategoryResearch, CategoryTasks, CategoryNotes:
		return c, nil
	}
	return "", fmt.Errorf("invalid context category %q (valid: architecture, progress, research, tasks, notes)", raw)
}

// ErrNoteNotFound distinguishes "no note yet" from "note exists but is empty".
var ErrNoteNotFound = fmt.Errorf("context note not found")

// Store reads and writes context notes for one project.
type Store struct {
	dir string // <project>/.agent

	now func() time.Time // test seam
}

// NewStore creates a store rooted at projectRoot. The .agent directory is
// created lazily on first write.
func NewStore(projectRoot string) *Store {
	return &Store{
		dir: filepath.Join(projectRoot, AgentDir),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Dir returns the directory holding the note files.
func (s *Store) Dir() string { return s.dir }

func (s *Store) notePath(c Category) string {
	return filepath.Join(s.dir, string(c)+".md")
}

// Write replaces the note for the category with content.
func (s *Store) Write(category, content string) error {
	c, err := ParseCategory(category)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", AgentDir, err)
	}
	if err := os.WriteFile(s.notePath(c), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s note: %w", c, err)
	}
	return nil
}

// WriteAppend appends content below the existing note, separated by a
// horizontal rule and a timestamped heading so repeated appends stay readable
// and re-parseable. Prior content is preserved verbatim.
func (s *Store) WriteAppend(category, content string) error {
	c, err := ParseCategory(category)
	if err != nil {
		return err
	}

	existing, err := s.Read(category)
	if err != nil && err != ErrNoteNotFound {
		return err
	}
	if err == ErrNoteNotFound {
		return s.Write(category, content)
	}

	block := fmt.Sprintf("%s\n\n---\n\n## Update (%s)\n\n%s",
		existing, s.now().Format(time.RFC3339), content)

	if err := os.WriteFile(s.notePath(c), []byte(block), 0644); err != nil {
		return fmt.Errorf("failed to append %s note: %w", c, err)
	}
	return nil
}

// Read returns the note content, or ErrNoteNotFound if the category has never
// been written. An existing empty note reads as ("", nil).
func (s *Store) Read(category string) (string, error) {
	c, err := ParseCategory(category)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(s.notePath(c))
	if os.IsNotExist(err) {
		return "", ErrNoteNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s note: %w", c, err)
	}
	return string(data), nil
}

// List reports which categories currently have a note on disk.
func (s *Store) List() map[Category]bool {
	out := make(map[Category]bool, 5)
	for _, c := range Categories() {
		_, err := os.Stat(s.notePath(c))
		out[c] = err == nil
	}
	return out
}

// ProgressEntry holds the optional fields of a progress log block.
type ProgressEntry struct {
	Achievements []string
	NextSteps    []string
	Blockers     []string
}

// LogProgress appends a structured Markdown block to the progress note. It
// never replaces existing content.
func (s *Store) LogProgress(summary string, entry ProgressEntry) error {
	if strings.TrimSpace(summary) == "" {
		return fmt.Errorf("progress summary cannot be empty")
	}

	var sb strings.Builder
	sb.WriteString(summary)
	writeSection := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n\n### " + title + "\n")
		for _, item := range items {
			sb.WriteString("- " + item + "\n")
		}
	}
	writeSection("Achievements", entry.Achievements)
	writeSection("Next Steps", entry.NextSteps)
	writeSection("Blockers", entry.Blockers)

	return s.WriteAppend(string(CategoryProgress), sb.String())
}
