package jsonx

import "testing"

func TestCloneMap(t *testing.T) {
	orig := map[string]any{
		"name": "backend",
		"repository": map[string]any{
			"branch": "main",
		},
		"tech_stack": []any{"Go", "TypeScript"},
		"total":      float64(3),
	}

	cp := CloneMap(orig)

	cp["name"] = "changed"
	cp["repository"].(map[string]any)["branch"] = "dev"
	cp["tech_stack"].([]any)[0] = "Rust"

	if orig["name"] != "backend" {
		t.Errorf("top-level value changed: %v", orig["name"])
	}
	if orig["repository"].(map[string]any)["branch"] != "main" {
		t.Error("nested map was not deep-copied")
	}
	if orig["tech_stack"].([]any)[0] != "Go" {
		t.Error("nested slice was not deep-copied")
	}
}

func TestCloneMapNil(t *testing.T) {
	if CloneMap(nil) != nil {
		t.Error("CloneMap(nil) should return nil")
	}
}
