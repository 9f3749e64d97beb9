package rustdoc

import (
	"slices"
	"strings"
)

// PathEntry is the canonical location of an item.
type PathEntry struct {
	Path    []string
	Kind    Kind
	CrateID uint32
	Foreign bool
}

// Name returns the last path segment.
func (e PathEntry) Name() string {
	if len(e.Path) == 0 {
		return ""
	}
	return e.Path[len(e.Path)-1]
}

// Joined returns the path joined with "::".
func (e PathEntry) Joined() string {
	return strings.Join(e.Path, "::")
}

// PathIndex maps item IDs to their canonical paths. It is built once and
// never modified.
type PathIndex map[ID]PathEntry

// BuildPathIndex builds the path index from the crate's paths table.
func BuildPathIndex(c *Crate) PathIndex {
	idx := make(PathIndex, len(c.Paths))
	for id, summary := range c.Paths {
		idx[id] = PathEntry{
			Path:    summary.Path,
			Kind:    ParseKind(summary.Kind),
			CrateID: summary.CrateID,
			Foreign: summary.CrateID != 0,
		}
	}
	return idx
}

// Lookup returns the entry for id, local or foreign.
func (p PathIndex) Lookup(id ID) (PathEntry, bool) {
	e, ok := p[id]
	return e, ok
}

// Local returns the entry for id only if it belongs to the documented crate.
func (p PathIndex) Local(id ID) (PathEntry, bool) {
	e, ok := p[id]
	if !ok || e.Foreign {
		return PathEntry{}, false
	}
	return e, true
}

// Find returns the local item whose "::"-joined path equals path. When
// several match (e.g. a function and a module sharing a name), pages win
// over non-pages and the lowest ID wins among equals.
func (p PathIndex) Find(path string) (ID, bool) {
	var matches []ID
	for id, e := range p {
		if !e.Foreign && e.Joined() == path {
			matches = append(matches, id)
		}
	}
	if len(matches) == 0 {
		return 0, false
	}
	slices.SortFunc(matches, func(a, b ID) int {
		pa, pb := p[a].Kind.HasPage(), p[b].Kind.HasPage()
		if pa != pb {
			if pa {
				return -1
			}
			return 1
		}
		return int(a) - int(b)
	})
	return matches[0], true
}
