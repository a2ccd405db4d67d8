package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultCatalog verifies the embedded catalog loads with the six
// standard groups in their display order.
func TestDefaultCatalog(t *testing.T) {
	c := Default()
	want := []MuscleGroup{"Chest", "Back", "Shoulders", "Arms", "Legs", "Core"}
	got := c.Groups()
	if len(got) != len(want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("groups[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !c.Contains("Chest", "Barbell Flat Bench Press") {
		t.Error("Chest should contain Barbell Flat Bench Press")
	}
	if c.Contains("Chest", "barbell flat bench press") {
		t.Error("lookups must be exact-name")
	}
}

// TestExerciseInSeveralGroups verifies an exercise can be attributed to more
// than one group (deadlifts count for both back and legs).
func TestExerciseInSeveralGroups(t *testing.T) {
	groups := Default().GroupsOf("Conventional Deadlifts")
	if len(groups) != 2 || groups[0] != "Back" || groups[1] != "Legs" {
		t.Errorf("GroupsOf(Conventional Deadlifts) = %v, want [Back Legs]", groups)
	}
}

// TestGroupsReturnsCopy verifies callers cannot mutate the catalog through Groups.
func TestGroupsReturnsCopy(t *testing.T) {
	c := Default()
	g := c.Groups()
	g[0] = "Mutated"
	if c.Groups()[0] != "Chest" {
		t.Error("catalog was mutated through Groups() result")
	}
}

// TestParseRejectsDuplicates verifies duplicate group names are rejected.
func TestParseRejectsDuplicates(t *testing.T) {
	doc := `
groups:
  - name: Chest
    exercises: [Push-Ups]
  - name: Chest
    exercises: [Dips]
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for duplicate group")
	}
}

// TestParseRejectsEmpty verifies a catalog must define at least one named group.
func TestParseRejectsEmpty(t *testing.T) {
	if _, err := Parse([]byte("groups: []\n")); err == nil {
		t.Error("expected error for empty catalog")
	}
	if _, err := Parse([]byte("groups:\n  - name: \"\"\n")); err == nil {
		t.Error("expected error for unnamed group")
	}
}

// TestLoadFromFile verifies a custom catalog file is read from disk.
func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
groups:
  - name: Upper
    exercises: [Bench Press, Rows]
  - name: Lower
    exercises: [Squat]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Has("Upper") || !c.Has("Lower") || c.Has("Core") {
		t.Errorf("groups = %v", c.Groups())
	}
	entries := c.Entries()
	if entries[0].Exercises[0] != "Bench Press" || entries[0].Exercises[1] != "Rows" {
		t.Errorf("entries[0].Exercises = %v, want sorted", entries[0].Exercises)
	}
}

// TestLoadMissingFile verifies a missing catalog file returns an error.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/catalog.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
