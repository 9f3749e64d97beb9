package render

import (
	"strings"
	"testing"

	"github.com/jcdickinson/ferrisdoc/internal/config"
	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

func loadDemo(t *testing.T) *rustdoc.Crate {
	t.Helper()
	crate, err := rustdoc.LoadFile("../rustdoc/testdata/demo.json")
	if err != nil {
		t.Fatal(err)
	}
	return crate
}

func newDemoContext(t *testing.T, cfg *config.Config) *Context {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	c, err := NewContext(loadDemo(t), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestItemURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  []string
		kind  rustdoc.Kind
		depth int
		want  string
		ok    bool
	}{
		{"top-level struct", []string{"Foo"}, rustdoc.KindStruct, 0, "struct.Foo.html", true},
		{"top-level struct at depth 2", []string{"Foo"}, rustdoc.KindStruct, 2, "../../struct.Foo.html", true},
		{"nested struct", []string{"a", "b", "Foo"}, rustdoc.KindStruct, 0, "a/b/struct.Foo.html", true},
		{"nested module", []string{"a", "b"}, rustdoc.KindModule, 0, "a/b/index.html", true},
		{"module at depth 1", []string{"demo"}, rustdoc.KindModule, 1, "../demo/index.html", true},
		{"union", []string{"a", "U"}, rustdoc.KindUnion, 0, "a/union.U.html", true},
		{"enum", []string{"a", "E"}, rustdoc.KindEnum, 0, "a/enum.E.html", true},
		{"trait", []string{"a", "T"}, rustdoc.KindTrait, 1, "../a/trait.T.html", true},
		{"function", []string{"a", "f"}, rustdoc.KindFunction, 0, "a/fn.f.html", true},
		{"type alias", []string{"a", "T"}, rustdoc.KindTypeAlias, 0, "a/type.T.html", true},
		{"constant", []string{"a", "C"}, rustdoc.KindConstant, 0, "a/constant.C.html", true},
		{"static", []string{"a", "S"}, rustdoc.KindStatic, 0, "a/static.S.html", true},
		{"macro", []string{"a", "m"}, rustdoc.KindMacro, 0, "a/macro.m.html", true},
		{"variant has no page", []string{"a", "E", "V"}, rustdoc.KindVariant, 0, "", false},
		{"impl has no page", []string{"a"}, rustdoc.KindImpl, 0, "", false},
		{"empty path", nil, rustdoc.KindStruct, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ItemURL(tt.path, tt.kind, tt.depth)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ItemURL(%v, %s, %d) = %q, %v; want %q, %v", tt.path, tt.kind, tt.depth, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestItemURL_DepthPrefix(t *testing.T) {
	t.Parallel()

	path := []string{"demo", "shapes", "Circle"}
	for depth := 0; depth <= 6; depth++ {
		first, _ := ItemURL(path, rustdoc.KindStruct, depth)
		second, _ := ItemURL(path, rustdoc.KindStruct, depth)
		if first != second {
			t.Errorf("depth %d: not deterministic: %q vs %q", depth, first, second)
		}
		if n := strings.Count(first, "../"); n != depth {
			t.Errorf("depth %d: %q has %d ../ segments", depth, first, n)
		}
		if !strings.HasSuffix(first, "demo/shapes/struct.Circle.html") {
			t.Errorf("depth %d: unexpected URL %q", depth, first)
		}
	}
}

func TestResolveItemURL(t *testing.T) {
	t.Parallel()

	c := newDemoContext(t, nil)

	tests := []struct {
		name  string
		id    rustdoc.ID
		depth int
		want  string
		ok    bool
	}{
		{"struct from root", 2, 0, "demo/struct.Point.html", true},
		{"struct from depth 2", 2, 2, "../../demo/struct.Point.html", true},
		{"crate module", 0, 1, "../demo/index.html", true},
		{"nested module", 1, 0, "demo/shapes/index.html", true},
		{"re-exported struct keeps canonical page", 11, 1, "../demo/shapes/struct.Circle.html", true},
		{"variant anchors on enum page", 22, 1, "../demo/enum.Color.html#variant.Red", true},
		{"inherent method", 42, 0, "demo/struct.Point.html#method.new", true},
		{"trait method", 24, 0, "demo/trait.Draw.html#method.draw", true},
		{"field", 20, 0, "demo/struct.Point.html#structfield.x", true},
		{"foreign item", 200, 0, "", false},
		{"private item without page", 10, 0, "", false},
		{"unknown id", 9999, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := c.ResolveItemURL(tt.id, tt.depth)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ResolveItemURL(%d, %d) = %q, %v; want %q, %v", tt.id, tt.depth, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveItemURL_IncludePrivate(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.IncludePrivate = true
	c := newDemoContext(t, cfg)

	got, ok := c.ResolveItemURL(10, 1)
	if !ok || got != "../demo/fn.helper.html" {
		t.Errorf("helper = %q, %v", got, ok)
	}
}

func TestExternalURL(t *testing.T) {
	t.Parallel()

	c := newDemoContext(t, nil)

	if got, ok := c.ExternalURL(200); !ok || got != "https://docs.rs/serde_json/1.0.0/serde_json/value/enum.Value.html" {
		t.Errorf("Value = %q, %v", got, ok)
	}
	if got, ok := c.ExternalURL(100); !ok || got != "https://doc.rust-lang.org/nightly/std/prelude/index.html" {
		t.Errorf("prelude = %q, %v", got, ok)
	}
	if _, ok := c.ExternalURL(2); ok {
		t.Error("local items must not get external URLs")
	}
	if got := c.LinkFor(200, 3); strings.Contains(got, "../") {
		t.Errorf("foreign link must be absolute, got %q", got)
	}
}

func TestExternalURL_Fallbacks(t *testing.T) {
	t.Parallel()

	crate := loadDemo(t)
	crate.ExternalCrates[1] = rustdoc.ExternalCrate{Name: "serde_json"}
	crate.ExternalCrates[2] = rustdoc.ExternalCrate{Name: "std"}

	cfg := config.Default()
	cfg.ExternalBaseURL = "https://docs.example.com/"
	c, err := NewContext(crate, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := c.ExternalURL(200); got != "https://docs.example.com/serde_json/latest/serde_json/value/enum.Value.html" {
		t.Errorf("Value = %q", got)
	}
	if got, _ := c.ExternalURL(100); got != "https://doc.rust-lang.org/stable/std/prelude/index.html" {
		t.Errorf("prelude = %q", got)
	}

	delete(crate.ExternalCrates, 1)
	if got, ok := c.ExternalURL(200); ok {
		t.Errorf("unknown crate should not link, got %q", got)
	}
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	c := newDemoContext(t, nil)
	root := []string{"demo"}
	shapes := []string{"demo", "shapes"}

	tests := []struct {
		name    string
		path    string
		want    rustdoc.Kind
		modPath []string
		depth   int
		url     string
		ok      bool
	}{
		{"bare name", "Point", rustdoc.KindOther, root, 1, "../demo/struct.Point.html", true},
		{"crate path", "crate::Color", rustdoc.KindOther, shapes, 2, "../../demo/enum.Color.html", true},
		{"relative module path", "shapes::Circle", rustdoc.KindOther, root, 1, "../demo/shapes/struct.Circle.html", true},
		{"self path", "self::unit", rustdoc.KindOther, shapes, 2, "../../demo/shapes/fn.unit.html", true},
		{"super path", "super::Point", rustdoc.KindOther, shapes, 2, "../../demo/struct.Point.html", true},
		{"method", "Point::new", rustdoc.KindOther, root, 1, "../demo/struct.Point.html#method.new", true},
		{"variant", "Color::Red", rustdoc.KindOther, root, 1, "../demo/enum.Color.html#variant.Red", true},
		{"kind filter matches", "point", rustdoc.KindMacro, root, 1, "../demo/macro.point.html", true},
		{"kind filter rejects", "Point", rustdoc.KindTrait, root, 1, "", false},
		{"name fallback from another module", "Circle", rustdoc.KindOther, root, 1, "../demo/shapes/struct.Circle.html", true},
		{"foreign path", "serde_json::value::Value", rustdoc.KindOther, root, 1, "https://docs.rs/serde_json/1.0.0/serde_json/value/enum.Value.html", true},
		{"unknown", "Missing", rustdoc.KindOther, root, 1, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := c.ResolvePath(tt.path, tt.want, tt.depth, tt.modPath)
			if got != tt.url || ok != tt.ok {
				t.Errorf("ResolvePath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.url, tt.ok)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	c := newDemoContext(t, nil)

	tests := []struct {
		path string
		want Resolution
		ok   bool
	}{
		{"demo::shapes::Circle", Resolution{ID: 11, Path: "demo::shapes::Circle", Kind: "struct", URL: "demo/shapes/struct.Circle.html"}, true},
		{"struct@Point", Resolution{ID: 2, Path: "demo::Point", Kind: "struct", URL: "demo/struct.Point.html"}, true},
		{"point!", Resolution{ID: 9, Path: "demo::point", Kind: "macro", URL: "demo/macro.point.html"}, true},
		{"Point::new", Resolution{ID: 42, Path: "Point::new", Kind: "function", URL: "demo/struct.Point.html#method.new"}, true},
		{
			"serde_json::value::Value",
			Resolution{ID: 200, Path: "serde_json::value::Value", Kind: "enum", URL: "https://docs.rs/serde_json/1.0.0/serde_json/value/enum.Value.html", External: true},
			true,
		},
		{"trait@Point", Resolution{}, false},
		{"helper", Resolution{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, ok := c.Resolve(tt.path)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Resolve(%q) = %+v, %v; want %+v, %v", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}
