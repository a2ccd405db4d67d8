package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// MuscleGroup names a catalog category such as "Chest" or "Legs".
type MuscleGroup string

// Catalog maps muscle groups to the exercise names attributed to them.
// Lookups are exact-name. A Catalog is never modified after construction,
// so it can be shared between goroutines.
type Catalog struct {
	groups    []MuscleGroup
	exercises map[MuscleGroup]map[string]struct{}
}

type fileGroup struct {
	Name      string   `yaml:"name"`
	Exercises []string `yaml:"exercises"`
}

type fileCatalog struct {
	Groups []fileGroup `yaml:"groups"`
}

// New builds a catalog from an ordered list of groups. The order of groups is
// preserved by Groups and by everything derived from it.
func New(groups []MuscleGroup, exercises map[MuscleGroup][]string) (*Catalog, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("catalog has no muscle groups")
	}
	c := &Catalog{
		groups:    make([]MuscleGroup, 0, len(groups)),
		exercises: make(map[MuscleGroup]map[string]struct{}, len(groups)),
	}
	for _, g := range groups {
		if strings.TrimSpace(string(g)) == "" {
			return nil, fmt.Errorf("catalog contains an empty muscle group name")
		}
		if _, dup := c.exercises[g]; dup {
			return nil, fmt.Errorf("duplicate muscle group %q", g)
		}
		set := make(map[string]struct{}, len(exercises[g]))
		for _, name := range exercises[g] {
			set[name] = struct{}{}
		}
		c.groups = append(c.groups, g)
		c.exercises[g] = set
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	groups := make([]MuscleGroup, 0, len(fc.Groups))
	exercises := make(map[MuscleGroup][]string, len(fc.Groups))
	for _, g := range fc.Groups {
		mg := MuscleGroup(g.Name)
		groups = append(groups, mg)
		exercises[mg] = append(exercises[mg], g.Exercises...)
	}
	return New(groups, exercises)
}

// Load reads a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in catalog of six muscle groups.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic("catalog: embedded default catalog is invalid: " + err.Error())
	}
	return c
}

// Groups returns the muscle groups in catalog order.
func (c *Catalog) Groups() []MuscleGroup {
	out := make([]MuscleGroup, len(c.groups))
	copy(out, c.groups)
	return out
}

// Has reports whether group is defined in the catalog.
func (c *Catalog) Has(group MuscleGroup) bool {
	_, ok := c.exercises[group]
	return ok
}

// Contains reports whether exercise is attributed to group.
func (c *Catalog) Contains(group MuscleGroup, exercise string) bool {
	_, ok := c.exercises[group][exercise]
	return ok
}

// Exercises returns the exercise names of group, in no particular order.
func (c *Catalog) Exercises(group MuscleGroup) []string {
	set := c.exercises[group]
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	return out
}

// GroupsOf returns every group the exercise is attributed to, in catalog order.
func (c *Catalog) GroupsOf(exercise string) []MuscleGroup {
	var out []MuscleGroup
	for _, g := range c.groups {
		if c.Contains(g, exercise) {
			out = append(out, g)
		}
	}
	return out
}

// Entry is the JSON view of one catalog group.
type Entry struct {
	Group     MuscleGroup `json:"group"`
	Exercises []string    `json:"exercises"`
}

// Entries returns the catalog as an ordered list, exercises sorted by name.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.groups))
	for _, g := range c.groups {
		ex := c.Exercises(g)
		sort.Strings(ex)
		out = append(out, Entry{Group: g, Exercises: ex})
	}
	return out
}
