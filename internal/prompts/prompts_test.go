package prompts

import (
	"strings"
	"testing"
)

func TestDefaultRegistryBuiltins(t *testing.T) {
	r := DefaultRegistry()

	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "orchestrator" || ids[1] != "worker" {
		t.Fatalf("IDs() = %v, want [orchestrator worker]", ids)
	}

	for _, id := range ids {
		p, err := r.Get(id)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", id, err)
		}
		if p.Content == "" || p.Description == "" {
			t.Errorf("prompt %s incomplete: %+v", id, p)
		}
	}

	if _, err := r.Get("nope"); err == nil {
		t.Error("Get of unknown prompt succeeded")
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(&Prompt{ID: "x", Content: "v1"})
	r.Register(&Prompt{ID: "x", Content: "v2"})

	p, err := r.Get("x")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Content != "v2" {
		t.Errorf("Content = %q, want v2", p.Content)
	}
}

func TestRender(t *testing.T) {
	base := "You are a test agent."

	if got := Render(base, nil); got != base {
		t.Errorf("Render with no tools = %q, want base unchanged", got)
	}

	got := Render(base, []string{"read_file", "write_file"})
	if !strings.HasPrefix(got, base) {
		t.Error("rendered prompt does not start with the base prompt")
	}
	for _, want := range []string{"- read_file", "- write_file"} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered prompt lacks %q", want)
		}
	}
}
