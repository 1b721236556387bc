// Package catalog holds the static table of models known to the daemon.
// It maps friendly names like "gpt2-small" to descriptors the fetcher can
// acquire. Pure lookup; entries never change after construction.
package catalog

import (
	"sort"
	"strings"

	"llamad/pkg/types"
)

// Catalog is an immutable set of registry entries.
type Catalog struct {
	entries []types.RegistryEntry
	byName  map[string]types.RegistryEntry
}

// New builds a catalog from the given entries. Callers usually pass
// BuiltinEntries(modelsDir); tests pass their own small tables.
func New(entries []types.RegistryEntry) *Catalog {
	c := &Catalog{
		entries: make([]types.RegistryEntry, len(entries)),
		byName:  make(map[string]types.RegistryEntry, len(entries)),
	}
	copy(c.entries, entries)
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].Popularity > c.entries[j].Popularity
	})
	for _, e := range c.entries {
		c.byName[e.Descriptor.Name] = e
	}
	return c
}

// Lookup returns the entry for name, if present.
func (c *Catalog) Lookup(name string) (types.RegistryEntry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// All returns every entry ordered by popularity descending.
func (c *Catalog) All() []types.RegistryEntry {
	out := make([]types.RegistryEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Search returns entries whose name, description or tags contain query,
// case-insensitively. An empty query matches everything.
func (c *Catalog) Search(query string) []types.RegistryEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []types.RegistryEntry
	for _, e := range c.entries {
		if q == "" || entryMatches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

// ByTag returns entries carrying the exact tag.
func (c *Catalog) ByTag(tag string) []types.RegistryEntry {
	var out []types.RegistryEntry
	for _, e := range c.entries {
		for _, t := range e.Tags {
			if t == tag {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Verified returns only entries marked verified.
func (c *Catalog) Verified() []types.RegistryEntry {
	var out []types.RegistryEntry
	for _, e := range c.entries {
		if e.Verified {
			out = append(out, e)
		}
	}
	return out
}

func entryMatches(e types.RegistryEntry, q string) bool {
	if strings.Contains(strings.ToLower(e.Descriptor.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Descriptor.Description), q) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}
