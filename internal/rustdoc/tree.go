package rustdoc

import (
	"log/slog"
	"slices"
	"strings"
)

// TreeOptions controls which items appear in the module tree.
type TreeOptions struct {
	IncludePrivate bool
}

// ModuleTree is one module in the crate's module hierarchy.
type ModuleTree struct {
	ID      ID
	Name    string
	Path    []string
	Module  *Item
	Modules []*ModuleTree
	Items   []TreeItem
	Globs   []GlobReexport
}

// TreeItem is a non-module item listed directly under a module. For
// re-exports, ID and Item refer to the target and Name is the exported name.
type TreeItem struct {
	ID       ID
	Name     string
	Kind     Kind
	Item     *Item
	Reexport bool
	Foreign  bool
	Source   string // use source path, set for re-exports
}

// GlobReexport records a `pub use path::*` in a module.
type GlobReexport struct {
	Source string
	Target *ID
}

// PathString returns the module path joined with "::".
func (m *ModuleTree) PathString() string {
	return strings.Join(m.Path, "::")
}

// Walk calls fn for m and every descendant module, depth first in
// sorted order.
func (m *ModuleTree) Walk(fn func(*ModuleTree)) {
	fn(m)
	for _, sub := range m.Modules {
		sub.Walk(fn)
	}
}

// BuildModuleTree walks the crate from its root module.
func BuildModuleTree(c *Crate, paths PathIndex, opts TreeOptions) (*ModuleTree, error) {
	root, ok := c.Index[c.Root]
	if !ok {
		return nil, &StructureError{ID: c.Root, Reason: "root module not found in index"}
	}
	if root.Inner.Module == nil {
		return nil, &StructureError{ID: c.Root, Reason: "root item is not a module"}
	}

	b := &treeBuilder{
		crate:    c,
		paths:    paths,
		opts:     opts,
		visiting: make(map[ID]bool),
	}
	return b.build(c.Root, []string{root.DisplayName()}), nil
}

type treeBuilder struct {
	crate    *Crate
	paths    PathIndex
	opts     TreeOptions
	visiting map[ID]bool
}

type itemKey struct {
	name string
	kind Kind
}

func (b *treeBuilder) build(id ID, structural []string) *ModuleTree {
	item := b.crate.Index[id]

	path := structural
	if e, ok := b.paths.Local(id); ok && len(e.Path) > 0 {
		path = e.Path
	}

	node := &ModuleTree{
		ID:     id,
		Name:   path[len(path)-1],
		Path:   path,
		Module: item,
	}

	b.visiting[id] = true
	defer delete(b.visiting, id)

	modules := make(map[string]int)
	items := make(map[itemKey]int)

	addModule := func(sub *ModuleTree) {
		if i, ok := modules[sub.Name]; ok {
			node.Modules[i] = sub
			return
		}
		modules[sub.Name] = len(node.Modules)
		node.Modules = append(node.Modules, sub)
	}
	addItem := func(ti TreeItem) {
		key := itemKey{ti.Name, ti.Kind}
		if i, ok := items[key]; ok {
			node.Items[i] = ti
			return
		}
		items[key] = len(node.Items)
		node.Items = append(node.Items, ti)
	}

	for _, childID := range item.Inner.Module.Items {
		child, ok := b.crate.Index[childID]
		if !ok || !b.visible(child) {
			continue
		}

		switch child.Kind() {
		case KindModule:
			if b.visiting[childID] {
				slog.Warn("skipping module cycle", "module", child.DisplayName(), "id", childID)
				continue
			}
			sub := b.build(childID, append(slices.Clone(path), child.DisplayName()))
			addModule(sub)

		case KindUse:
			use := child.Inner.Use
			if use.IsGlob {
				node.Globs = append(node.Globs, GlobReexport{Source: use.Source, Target: use.ID})
				continue
			}
			if ti, ok := b.reexport(use); ok {
				addItem(ti)
			}

		case KindImpl, KindVariant, KindStructField, KindOther:
			continue

		default:
			addItem(TreeItem{
				ID:   childID,
				Name: child.DisplayName(),
				Kind: child.Kind(),
				Item: child,
			})
		}
	}

	slices.SortStableFunc(node.Modules, func(a, b *ModuleTree) int {
		return strings.Compare(a.Name, b.Name)
	})
	slices.SortStableFunc(node.Items, func(a, b TreeItem) int {
		if d := a.Kind.sortOrder() - b.Kind.sortOrder(); d != 0 {
			return d
		}
		return strings.Compare(a.Name, b.Name)
	})
	return node
}

// reexport resolves a non-glob use to the item it re-exports.
func (b *treeBuilder) reexport(use *Use) (TreeItem, bool) {
	if use.ID == nil {
		return TreeItem{}, false
	}
	ti := TreeItem{
		ID:       *use.ID,
		Name:     use.Name,
		Reexport: true,
		Source:   use.Source,
	}

	target, ok := b.crate.Index[*use.ID]
	if !ok || target.CrateID != 0 {
		// Foreign target: listed, linked externally, never paged.
		e, ok := b.paths.Lookup(*use.ID)
		if !ok {
			return TreeItem{}, false
		}
		ti.Kind = e.Kind
		ti.Foreign = true
		return ti, true
	}
	if !b.visible(target) {
		return TreeItem{}, false
	}
	if target.Kind() == KindUse || target.Kind() == KindImpl || target.Kind() == KindOther {
		return TreeItem{}, false
	}
	ti.Kind = target.Kind()
	ti.Item = target
	return ti, true
}

func (b *treeBuilder) visible(item *Item) bool {
	return b.opts.IncludePrivate || item.IsPublic()
}
