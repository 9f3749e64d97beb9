package rustdoc

import (
	"errors"
	"slices"
	"testing"
)

func TestBuildPathIndex(t *testing.T) {
	t.Parallel()

	crate := loadDemo(t)
	idx := BuildPathIndex(crate)

	e, ok := idx.Local(11)
	if !ok {
		t.Fatal("Circle should be local")
	}
	if e.Joined() != "demo::shapes::Circle" || e.Kind != KindStruct || e.Name() != "Circle" {
		t.Errorf("Circle entry = %+v", e)
	}

	if _, ok := idx.Local(200); ok {
		t.Error("serde_json::Value must not be local")
	}
	if e, ok := idx.Lookup(200); !ok || !e.Foreign || e.CrateID != 1 {
		t.Errorf("Value entry = %+v, %v", e, ok)
	}

	if id, ok := idx.Find("demo::shapes::unit"); !ok || id != 12 {
		t.Errorf("Find = %d, %v", id, ok)
	}
	if _, ok := idx.Find("serde_json::value::Value"); ok {
		t.Error("Find must ignore foreign paths")
	}
}

func TestBuildImplIndex(t *testing.T) {
	t.Parallel()

	crate := loadDemo(t)
	paths := BuildPathIndex(crate)
	idx := BuildImplIndex(crate, paths, false)

	if got := idx.Impls(2); !slices.Equal(got, []ID{40, 41}) {
		t.Errorf("Point impls = %v", got)
	}
	if got := idx.Implementors(4); !slices.Equal(got, []ID{41}) {
		t.Errorf("Draw implementors = %v", got)
	}
}

func TestBuildImplIndex_ForeignTargets(t *testing.T) {
	t.Parallel()

	crate, err := Load([]byte(`{"root": 0, "index": {
		"0": {"name": "c", "visibility": "public", "inner": {"module": {"items": []}}},
		"5": {"name": "Local", "visibility": "public", "inner": {"struct": {"kind": "unit", "impls": [7]}}},
		"7": {"visibility": "default", "inner": {"impl": {"trait": {"path": "Display", "id": 90},
			"for": {"resolved_path": {"path": "Local", "id": 5}}, "items": []}}},
		"8": {"visibility": "default", "inner": {"impl": {"trait": {"path": "Trait", "id": 6},
			"for": {"resolved_path": {"path": "Vec", "id": 91}}, "items": []}}},
		"6": {"name": "Trait", "visibility": "public", "inner": {"trait": {"items": [], "implementations": [8]}}}
	}, "paths": {
		"0": {"crate_id": 0, "path": ["c"], "kind": "module"},
		"5": {"crate_id": 0, "path": ["c", "Local"], "kind": "struct"},
		"6": {"crate_id": 0, "path": ["c", "Trait"], "kind": "trait"},
		"90": {"crate_id": 3, "path": ["core", "fmt", "Display"], "kind": "trait"},
		"91": {"crate_id": 4, "path": ["alloc", "vec", "Vec"], "kind": "struct"}
	}}`))
	if err != nil {
		t.Fatal(err)
	}
	paths := BuildPathIndex(crate)

	local := BuildImplIndex(crate, paths, false)
	if got := local.Impls(5); !slices.Equal(got, []ID{7}) {
		t.Errorf("Local impls = %v", got)
	}
	if got := local.Impls(91); got != nil {
		t.Errorf("foreign type should not be indexed: %v", got)
	}
	if got := local.Implementors(90); got != nil {
		t.Errorf("foreign trait should not be indexed: %v", got)
	}
	if got := local.Implementors(6); !slices.Equal(got, []ID{8}) {
		t.Errorf("Trait implementors = %v", got)
	}

	all := BuildImplIndex(crate, paths, true)
	if got := all.Impls(91); !slices.Equal(got, []ID{8}) {
		t.Errorf("with foreign, Vec impls = %v", got)
	}
}

func treeNames(items []TreeItem) []string {
	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}

func TestBuildModuleTree(t *testing.T) {
	t.Parallel()

	crate := loadDemo(t)
	paths := BuildPathIndex(crate)
	tree, err := BuildModuleTree(crate, paths, TreeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if tree.PathString() != "demo" {
		t.Errorf("root path = %s", tree.PathString())
	}
	if len(tree.Modules) != 1 || tree.Modules[0].PathString() != "demo::shapes" {
		t.Fatalf("modules = %+v", tree.Modules)
	}

	// Sorted by kind (macro, struct, enum, trait, fn, type, const, static)
	// then name; private helper filtered out; Circle re-exported.
	want := []string{"point", "Circle", "Point", "Color", "Draw", "area", "Coord", "ORIGIN", "COUNT"}
	if got := treeNames(tree.Items); !slices.Equal(got, want) {
		t.Errorf("root items = %v, want %v", got, want)
	}

	var circle TreeItem
	for _, it := range tree.Items {
		if it.Name == "Circle" {
			circle = it
		}
	}
	if !circle.Reexport || circle.ID != 11 || circle.Item == nil {
		t.Errorf("Circle re-export = %+v", circle)
	}

	if len(tree.Globs) != 1 || tree.Globs[0].Source != "std::prelude" {
		t.Errorf("globs = %+v", tree.Globs)
	}

	shapes := tree.Modules[0]
	var value TreeItem
	for _, it := range shapes.Items {
		if it.Name == "Value" {
			value = it
		}
	}
	if !value.Foreign || value.Item != nil || value.Kind != KindEnum {
		t.Errorf("foreign re-export = %+v", value)
	}
}

func TestBuildModuleTree_IncludePrivate(t *testing.T) {
	t.Parallel()

	crate := loadDemo(t)
	tree, err := BuildModuleTree(crate, BuildPathIndex(crate), TreeOptions{IncludePrivate: true})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(treeNames(tree.Items), "helper") {
		t.Error("helper should be included with IncludePrivate")
	}
}

func TestBuildModuleTree_DuplicatesLastWins(t *testing.T) {
	t.Parallel()

	crate, err := Load([]byte(`{"root": 0, "paths": {}, "index": {
		"0": {"name": "c", "visibility": "public", "inner": {"module": {"items": [1, 2]}}},
		"1": {"name": "dup", "visibility": "public", "docs": "first", "inner": {"function": {"sig": {"inputs": []}}}},
		"2": {"name": "dup", "visibility": "public", "docs": "second", "inner": {"function": {"sig": {"inputs": []}}}}
	}}`))
	if err != nil {
		t.Fatal(err)
	}
	tree, err := BuildModuleTree(crate, BuildPathIndex(crate), TreeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Items) != 1 || tree.Items[0].ID != 2 {
		t.Errorf("items = %+v", tree.Items)
	}
}

func TestBuildModuleTree_Cycle(t *testing.T) {
	t.Parallel()

	crate, err := Load([]byte(`{"root": 0, "paths": {}, "index": {
		"0": {"name": "c", "visibility": "public", "inner": {"module": {"items": [1]}}},
		"1": {"name": "a", "visibility": "public", "inner": {"module": {"items": [0]}}}
	}}`))
	if err != nil {
		t.Fatal(err)
	}
	tree, err := BuildModuleTree(crate, BuildPathIndex(crate), TreeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Modules) != 1 || len(tree.Modules[0].Modules) != 0 {
		t.Errorf("cycle not broken: %+v", tree.Modules)
	}
	if got := tree.Modules[0].PathString(); got != "c::a" {
		t.Errorf("structural fallback path = %s", got)
	}
}

func TestBuildModuleTree_StructureErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"root missing", `{"root": 9, "index": {}, "paths": {}}`},
		{"root not module", `{"root": 0, "paths": {}, "index": {"0": {"name": "f", "visibility": "public", "inner": {"function": {"sig": {"inputs": []}}}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			crate, err := Load([]byte(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			_, err = BuildModuleTree(crate, BuildPathIndex(crate), TreeOptions{})
			if !errors.Is(err, ErrStructure) {
				t.Errorf("expected ErrStructure, got %v", err)
			}
		})
	}
}
