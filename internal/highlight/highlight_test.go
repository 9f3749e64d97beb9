package highlight

import (
	"strings"
	"testing"
)

func TestHighlight_TextIsEscapedOnly(t *testing.T) {
	t.Parallel()

	h := New()
	for _, lang := range []string{"text", "plain", "plaintext", "txt", "TEXT"} {
		got := h.Highlight(`a < b && "c" > d`, lang)
		want := `a &lt; b &amp;&amp; &quot;c&quot; &gt; d`
		if got != want {
			t.Errorf("Highlight(%q) = %q, want %q", lang, got, want)
		}
	}
}

func TestHighlight_Rust(t *testing.T) {
	t.Parallel()

	h := New()
	got := h.Highlight("fn main() { let v: Vec<u8> = vec![]; }", "rust")
	if !strings.Contains(got, `<span class="`) {
		t.Errorf("expected class spans, got %q", got)
	}
	if strings.Contains(got, "Vec<u8>") {
		t.Errorf("generics must be escaped, got %q", got)
	}
	if strings.Contains(got, "<pre") {
		t.Errorf("output must not be wrapped in <pre>, got %q", got)
	}
}

func TestHighlight_UnknownLanguageFallsBack(t *testing.T) {
	t.Parallel()

	h := New()
	got := h.Highlight("<x>", "definitely-not-a-language")
	if got != "&lt;x&gt;" {
		t.Errorf("got %q", got)
	}
}

func TestLanguage(t *testing.T) {
	t.Parallel()

	h := New()
	tests := []struct {
		info string
		want string
	}{
		{"", "rust"},
		{"rust", "rust"},
		{"ignore", "rust"},
		{"no_run", "rust"},
		{"rust,ignore", "rust"},
		{"should_panic,edition2021", "rust"},
		{"compile_fail", "rust"},
		{"toml", "toml"},
		{"text", "text"},
		{"Python", "python"},
	}
	for _, tt := range tests {
		if got := h.Language(tt.info); got != tt.want {
			t.Errorf("Language(%q) = %q, want %q", tt.info, got, tt.want)
		}
	}

	py := New(WithPrimaryLanguage("python"))
	if got := py.Language(""); got != "python" {
		t.Errorf("primary language override: got %q", got)
	}
}

func TestCSS(t *testing.T) {
	t.Parallel()

	css, err := New(WithStyle("monokai")).CSS()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("expected .chroma rules, got %q", css[:min(len(css), 200)])
	}
}
