package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServiceGroup is a named set of mutually exclusive service offerings.
// A cart may hold at most one distinct service from each group.
type ServiceGroup struct {
	Name     string   `json:"name"`
	Services []string `json:"services"`
}

// Catalog holds the service exclusivity groups. It is built once at startup
// and never mutated afterwards.
type Catalog struct {
	groups []ServiceGroup
	// byService maps a service name to the indexes of every group that
	// contains it. A service may belong to zero, one, or several groups.
	byService map[string][]int
}

// Default returns the catalog of service groups the gym operates with.
func Default() *Catalog {
	return New([]ServiceGroup{
		{Name: "gym-access", Services: []string{"Gym per Session", "Gym per Month", "Gym + Treadmill"}},
		{Name: "treadmill", Services: []string{"Monthly Treadmill", "Gym + Treadmill"}},
		{Name: "personal-instructor", Services: []string{"P.I per Month", "P.I per Session"}},
		{Name: "dance-studio", Services: []string{"Dance Studio for Student", "Dance Studio for Regular"}},
		{Name: "taekwondo", Services: []string{"Taekwando per Session", "Taekwando per Month"}},
	})
}

// New builds a catalog from the given groups.
func New(groups []ServiceGroup) *Catalog {
	c := &Catalog{
		groups:    make([]ServiceGroup, len(groups)),
		byService: make(map[string][]int),
	}
	copy(c.groups, groups)

	for i, g := range c.groups {
		for _, s := range g.Services {
			c.byService[s] = append(c.byService[s], i)
		}
	}
	return c
}

// LoadFile reads service groups from a JSON file. Used when the deployment
// overrides the built-in catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var groups []ServiceGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	return New(groups), nil
}

// Groups returns a copy of the configured service groups.
func (c *Catalog) Groups() []ServiceGroup {
	out := make([]ServiceGroup, len(c.groups))
	copy(out, c.groups)
	return out
}

// HasConflict reports whether adding candidate to a cart already holding
// cartNames would violate an exclusivity rule. A service absent from every
// group is unconstrained. Re-adding the exact same service never conflicts.
func (c *Catalog) HasConflict(cartNames []string, candidate string) bool {
	return len(c.ConflictingItems(cartNames, candidate)) > 0
}

// ConflictingItems returns the cart item names that clash with candidate,
// in cart order, so callers can tell the user what to remove. Empty result
// means the add is allowed. Inputs are never mutated.
func (c *Catalog) ConflictingItems(cartNames []string, candidate string) []string {
	groupIdxs := c.byService[candidate]
	if len(groupIdxs) == 0 {
		return nil
	}

	var conflicts []string
	for _, name := range cartNames {
		if name == candidate {
			continue
		}
		for _, gi := range groupIdxs {
			if containsService(c.groups[gi].Services, name) {
				conflicts = append(conflicts, name)
				break
			}
		}
	}
	return conflicts
}

func containsService(services []string, name string) bool {
	for _, s := range services {
		if s == name {
			return true
		}
	}
	return false
}
