package markdown

import (
	"strings"
	"testing"
)

func TestRewriteLinks_InlineLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo](old/path) for details."
	got := RewriteLinks(src, map[string]string{"old/path": "../crate/struct.Foo.html"})
	want := "See [Foo](../crate/struct.Foo.html) for details."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteLinks_ReferenceStyleLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo][ref] for details.\n\n[ref]: old/path"
	got := RewriteLinks(src, map[string]string{"old/path": "../new.html"})
	if !strings.Contains(got, "[ref]: ../new.html") {
		t.Errorf("reference link not rewritten: %q", got)
	}
}

func TestRewriteLinks_EmptyMap(t *testing.T) {
	t.Parallel()
	src := "Hello [world](url)."
	got := RewriteLinks(src, nil)
	if got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
	got = RewriteLinks(src, map[string]string{})
	if got != src {
		t.Errorf("expected unchanged for empty map, got %q", got)
	}
}

func TestRewriteLinks_NoMatchingLinks(t *testing.T) {
	t.Parallel()
	src := "Check [this](keep-me) out."
	got := RewriteLinks(src, map[string]string{"other": "x.html"})
	if got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
}

func TestRewriteLinks_MultipleLinks(t *testing.T) {
	t.Parallel()
	src := "[A](a-dest) and [B](b-dest) together."
	got := RewriteLinks(src, map[string]string{
		"a-dest": "a.html",
		"b-dest": "b.html",
	})
	if !strings.Contains(got, "(a.html)") {
		t.Error("link A not rewritten")
	}
	if !strings.Contains(got, "(b.html)") {
		t.Error("link B not rewritten")
	}
}

func TestRewriteLinks_BacktickKeys(t *testing.T) {
	t.Parallel()
	src := "See [`Point`](Point) here."
	got := RewriteLinks(src, map[string]string{"`Point`": "../demo/struct.Point.html"})
	want := "See [`Point`](../demo/struct.Point.html) here."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteLinks_TitlesAndAngleBrackets(t *testing.T) {
	t.Parallel()
	src := "[A](a \"the a\") and [B](<b>).\n\n[c]: a \"ref title\""
	got := RewriteLinks(src, map[string]string{"a": "a.html", "b": "b.html"})
	want := "[A](a.html \"the a\") and [B](b.html).\n\n[c]: a.html \"ref title\""
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteLinks_SkipsFencedCode(t *testing.T) {
	t.Parallel()
	src := "[Foo](Foo)\n\n```\nlet s = \"[x](Foo)\";\n```"
	got := RewriteLinks(src, map[string]string{"Foo": "struct.Foo.html"})
	want := "[Foo](struct.Foo.html)\n\n```\nlet s = \"[x](Foo)\";\n```"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
