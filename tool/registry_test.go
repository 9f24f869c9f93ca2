package tool

import (
	"strings"
	"testing"
)

func objectSchema(name string) Schema {
	return Schema{
		Name:        name,
		Description: "test tool",
		Input: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"path": {Type: "string", Description: "file path"},
			},
			Required: []string{"path"},
		},
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(objectSchema("read_file")); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if !r.Has("read_file") {
		t.Error("registered schema not found")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Schema{Name: ""}); err == nil {
		t.Error("expected error for empty name")
	}

	bad := objectSchema("bad")
	bad.Input.Type = "array"
	if err := r.Register(bad); err == nil {
		t.Error("expected error for non-object input schema")
	}

	if err := r.Register(objectSchema("dup")); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	err := r.Register(objectSchema("dup"))
	if err == nil {
		t.Fatal("expected error for duplicate registration")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Errorf("unexpected duplicate error: %v", err)
	}
}

func TestRegistrySchemasSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.Register(objectSchema(name)); err != nil {
			t.Fatalf("Register(%s) error: %v", name, err)
		}
	}

	got := r.Schemas()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("Schemas() returned %d schemas, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("Schemas()[%d].Name = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestSchemaEstimatedSize(t *testing.T) {
	s := objectSchema("read_file")
	n := s.EstimatedSize()
	if n <= 0 {
		t.Fatalf("EstimatedSize() = %d, want > 0", n)
	}
	// The serialized form must at least cover the name and description.
	if n < len(s.Name)+len(s.Description) {
		t.Errorf("EstimatedSize() = %d, smaller than name+description", n)
	}
}
