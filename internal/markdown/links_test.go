package markdown

import (
	"testing"

	"github.com/jcdickinson/ferrisdoc/internal/rustdoc"
)

func TestIsRustPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"Foo", true},
		{"foo::Bar", true},
		{"crate::foo::Bar", true},
		{"struct@Foo", true},
		{"::crate_root::Item", true},
		{"Vec::new()", true},
		{"vec!", true},
		{"https://example.com", false},
		{"/path/to/file", false},
		{"foo#section", false},
		{"struct.Foo.html", false},
		{"", false},
		{"   ", false},
		{"self", false},
		{"None", false},
		{"9lives", false},
	}
	for _, tt := range tests {
		if got := IsRustPath(tt.in); got != tt.want {
			t.Errorf("IsRustPath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStripDisambiguator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		wantKind rustdoc.Kind
		wantPath string
	}{
		{"Foo", rustdoc.KindOther, "Foo"},
		{"struct@Foo", rustdoc.KindStruct, "Foo"},
		{"enum@Bar", rustdoc.KindEnum, "Bar"},
		{"trait@Baz", rustdoc.KindTrait, "Baz"},
		{"fn@func", rustdoc.KindFunction, "func"},
		{"mod@module", rustdoc.KindModule, "module"},
		{"macro@mac", rustdoc.KindMacro, "mac"},
		{"func()", rustdoc.KindFunction, "func"},
		{"mac!", rustdoc.KindMacro, "mac"},
	}
	for _, tt := range tests {
		kind, path := StripDisambiguator(tt.in)
		if kind != tt.wantKind || path != tt.wantPath {
			t.Errorf("StripDisambiguator(%q) = (%v, %q), want (%v, %q)", tt.in, kind, path, tt.wantKind, tt.wantPath)
		}
	}
}

func TestPreprocessShortcutLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		known map[string]string
		want  string
	}{
		{"simple", "See [`Foo`] for details", nil, "See [`Foo`](Foo) for details"},
		{"path", "Link [`foo::Bar`] here", nil, "Link [`foo::Bar`](foo::Bar) here"},
		{"disambiguated", "Use [`fn@run`].", nil, "Use [`fn@run`](fn@run)."},
		{"already inline", "See [`Foo`](other) here", nil, "See [`Foo`](other) here"},
		{"already reference", "See [`Foo`][ref] here", nil, "See [`Foo`][ref] here"},
		{
			"has definition",
			"See [`HashMap`] for details.\n\n[`HashMap`]: std::collections::HashMap",
			nil,
			"See [`HashMap`] for details.\n\n[`HashMap`]: std::collections::HashMap",
		},
		{
			"definition without backticks",
			"See [`HashMap`] for details.\n\n[HashMap]: std::collections::HashMap",
			nil,
			"See [`HashMap`] for details.\n\n[HashMap]: std::collections::HashMap",
		},
		{"definition line", "[`Foo`]: some::path", nil, "[`Foo`]: some::path"},
		{"inside fence", "```\nlet x = [`Foo`];\n```", nil, "```\nlet x = [`Foo`];\n```"},
		{"plain known", "A [Point] here", map[string]string{"Point": "x.html"}, "A [Point](Point) here"},
		{"plain unknown", "A [x] task", map[string]string{"Point": "x.html"}, "A [x] task"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PreprocessShortcutLinks(tt.in, tt.known); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
