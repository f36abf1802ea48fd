package workspace

import (
	"errors"
	"testing"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "docs/readme.md", want: "docs/readme.md"},
		{in: "/docs/readme.md", want: "docs/readme.md"},
		{in: "docs//sub/../readme.md", want: "docs/readme.md"},
		{in: "../../etc/passwd", want: "etc/passwd"},
		{in: `docs\win\file.txt`, want: "docs/win/file.txt"},
		{in: "", want: ""},
		{in: ".", want: ""},
	}
	for _, tt := range tests {
		if got := CleanPath(tt.in); got != tt.want {
			t.Errorf("CleanPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("docs/readme.md", KindFile, "hello")

	if rec.ID == "" {
		t.Error("NewRecord() left ID empty")
	}
	if rec.Name != "readme.md" || rec.Path != "docs/readme.md" || rec.ParentPath != "docs" {
		t.Errorf("record = %+v, want derived name and parent", rec)
	}
	if rec.CreatedAt.IsZero() || !rec.CreatedAt.Equal(rec.UpdatedAt) {
		t.Errorf("timestamps = %v / %v, want equal and set", rec.CreatedAt, rec.UpdatedAt)
	}

	root := NewRecord("top.txt", KindFile, "")
	if root.ParentPath != "" {
		t.Errorf("root-level ParentPath = %q, want empty", root.ParentPath)
	}
}

// storeUnderTest lets the same CRUD suite run against every Store
// implementation.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create and find", func(t *testing.T) {
		s := newStore(t)
		rec := NewRecord("docs/readme.md", KindFile, "hello")
		if err := s.Create(rec); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		got, err := s.FindByPath("docs/readme.md")
		if err != nil {
			t.Fatalf("FindByPath() error = %v", err)
		}
		if got.ID != rec.ID || got.Content != "hello" || got.Kind != KindFile {
			t.Errorf("found record = %+v, want the created one", got)
		}
	})

	t.Run("find missing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.FindByPath("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByPath on missing path error = %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate path rejected", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(NewRecord("a.txt", KindFile, "")); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := s.Create(NewRecord("a.txt", KindFile, "")); err == nil {
			t.Error("second Create at the same path succeeded")
		}
	})

	t.Run("update content", func(t *testing.T) {
		s := newStore(t)
		rec := NewRecord("a.txt", KindFile, "v1")
		if err := s.Create(rec); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		content := "v2"
		if err := s.Update(rec.ID, Patch{Content: &content}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		got, _ := s.FindByPath("a.txt")
		if got.Content != "v2" {
			t.Errorf("Content = %q, want %q", got.Content, "v2")
		}
		if got.UpdatedAt.Before(got.CreatedAt) {
			t.Error("UpdatedAt went backwards")
		}
	})

	t.Run("update path moves record", func(t *testing.T) {
		s := newStore(t)
		rec := NewRecord("docs/a.txt", KindFile, "x")
		if err := s.Create(rec); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		name, newPath := "b.txt", "docs/b.txt"
		if err := s.Update(rec.ID, Patch{Name: &name, Path: &newPath}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if _, err := s.FindByPath("docs/a.txt"); !errors.Is(err, ErrNotFound) {
			t.Error("old path still resolves after move")
		}
		got, err := s.FindByPath("docs/b.txt")
		if err != nil {
			t.Fatalf("FindByPath(new) error = %v", err)
		}
		if got.Name != "b.txt" || got.ParentPath != "docs" {
			t.Errorf("moved record = %+v", got)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		s := newStore(t)
		content := "x"
		if err := s.Update("missing-id", Patch{Content: &content}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update on unknown id error = %v, want ErrNotFound", err)
		}
	})

	t.Run("list direct and recursive", func(t *testing.T) {
		s := newStore(t)
		for _, p := range []string{"docs", "docs/guide", "src"} {
			if err := s.Create(NewRecord(p, KindFolder, "")); err != nil {
				t.Fatalf("Create(%s) error = %v", p, err)
			}
		}
		for _, p := range []string{"docs/readme.md", "docs/guide/intro.md", "src/main.go"} {
			if err := s.Create(NewRecord(p, KindFile, "")); err != nil {
				t.Fatalf("Create(%s) error = %v", p, err)
			}
		}

		direct, err := s.List("docs", false)
		if err != nil {
			t.Fatalf("List(direct) error = %v", err)
		}
		wantDirect := []string{"docs/guide", "docs/readme.md"}
		if len(direct) != len(wantDirect) {
			t.Fatalf("direct children = %v, want %v", paths(direct), wantDirect)
		}
		for i, p := range wantDirect {
			if direct[i].Path != p {
				t.Errorf("direct[%d].Path = %q, want %q (sorted)", i, direct[i].Path, p)
			}
		}

		rec, err := s.List("docs", true)
		if err != nil {
			t.Fatalf("List(recursive) error = %v", err)
		}
		if len(rec) != 3 {
			t.Errorf("recursive listing = %v, want 3 entries", paths(rec))
		}

		all, err := s.List("", true)
		if err != nil {
			t.Fatalf("List(root) error = %v", err)
		}
		if len(all) != 6 {
			t.Errorf("root listing = %v, want all 6 entries", paths(all))
		}
	})
}

func paths(recs []FileRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Path
	}
	return out
}

func TestMemStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewMemStore()
	})
}
