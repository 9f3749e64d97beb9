package render

import (
	"slices"

	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

type sidebarData struct {
	CrateName  string
	CrateURL   string
	Version    string
	Modules    []*sidebarNode
	ModuleName string
	ModuleURL  string
	Items      []sidebarLink
}

// sidebarNode is one module in the sidebar tree.
type sidebarNode struct {
	Name     string
	URL      string
	Current  bool
	Children []*sidebarNode
}

type sidebarLink struct {
	Name    string
	URL     string
	Class   string
	Current bool
}

// sidebar builds the navigation for page p. A module is current when its
// path equals the page's module path.
func (c *Context) sidebar(p Page) sidebarData {
	modPath := p.ModulePath()
	data := sidebarData{
		CrateName: c.CrateName(),
		Version:   c.CrateVersion(),
	}
	data.CrateURL, _ = c.ResolveItemURL(c.Tree.ID, p.Depth)

	for _, sub := range c.Tree.Modules {
		if node := c.sidebarNode(sub, p.Depth, modPath); node != nil {
			data.Modules = append(data.Modules, node)
		}
	}

	module := c.moduleAt(modPath)
	if module == nil {
		return data
	}
	data.ModuleName = module.PathString()
	data.ModuleURL, _ = c.ResolveItemURL(module.ID, p.Depth)
	for _, ti := range module.Items {
		if ti.Foreign || ti.Item == nil {
			continue
		}
		url, ok := c.ResolveItemURL(ti.ID, p.Depth)
		if !ok {
			continue
		}
		data.Items = append(data.Items, sidebarLink{
			Name:    ti.Name,
			URL:     url,
			Class:   ti.Kind.String(),
			Current: p.Kind != rustdoc.KindModule && ti.ID == p.ID,
		})
	}
	return data
}

func (c *Context) sidebarNode(m *rustdoc.ModuleTree, depth int, current []string) *sidebarNode {
	url, ok := c.ResolveItemURL(m.ID, depth)
	if !ok {
		return nil
	}
	node := &sidebarNode{
		Name:    m.Name,
		URL:     url,
		Current: slices.Equal(m.Path, current),
	}
	for _, sub := range m.Modules {
		if child := c.sidebarNode(sub, depth, current); child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// moduleAt finds the tree node whose path equals path.
func (c *Context) moduleAt(path []string) *rustdoc.ModuleTree {
	var found *rustdoc.ModuleTree
	c.Tree.Walk(func(m *rustdoc.ModuleTree) {
		if found == nil && slices.Equal(m.Path, path) {
			found = m
		}
	})
	return found
}
