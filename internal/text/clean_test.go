package text

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses spaces", "Hello    world", "Hello world"},
		{"tabs become spaces", "Hello\t\tworld", "Hello world"},
		{"strips tags", "<p>Hello</p><p>world</p>", "Hello world"},
		{"drops script content", "<script>var x = 1;</script>Text", "Text"},
		{"drops style content", `<STYLE type="text/css">p { color: red }</STYLE>Body`, "Body"},
		{"named entities", "Fish &amp; chips &mdash; cheap", "Fish & chips — cheap"},
		{"quote entities", "He said &ldquo;hi&rdquo;&hellip;", `He said "hi"...`},
		{"numeric references", "&#65;&#x42;&#X43;", "ABC"},
		{"invalid numeric reference", "a&#1114112;b", "ab"},
		{"encoded markup is removed too", "&lt;b&gt;bold&lt;/b&gt;", "bold"},
		{"escaped newline", `line one\nline two`, "line one\nline two"},
		{"escaped tab and return", `a\tb\rc`, "a bc"},
		{"stray backslash", `C:\path`, "C:path"},
		{"control characters", "a\x00b\x07c\x7f", "abc"},
		{"carriage returns", "one\r\n\r\ntwo", "one\n\ntwo"},
		{"spaces around newlines", "a  \n  b", "a\nb"},
		{"excess blank lines", "one\n\n\n\n\ntwo", "one\n\ntwo"},
		{"trims", "  \n padded \n ", "padded"},
		{"empty", "", ""},
		{"whitespace only", " \t\n\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"Plain text.",
		"<div>Some <b>bold</b> text</div>\n\n\n\nNext",
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;after",
		"&amp;amp;amp;",
		`double \\n escape`,
		"&#92;n is a backslash n",
		"&#9;tab &#10;&#10;&#10;&#10;lines",
		"mixed \t \n \t spacing \r\n\r\n\r\n end",
		"&lt; not a tag &gt; but it looks like one",
		"a < b and c > d",
		"\x01\x02&#1;&#x2;",
		"a &" + strings.Repeat("amp;", 20) + "lt;b",
		"&" + strings.Repeat("amp;", 50) + "lt;i&" + strings.Repeat("amp;", 50) + "gt;x",
		"",
	}

	for _, in := range inputs {
		once := CleanText(in)
		if twice := CleanText(once); twice != once {
			t.Errorf("CleanText not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCleanTextDeeplyNestedEntities(t *testing.T) {
	for _, n := range []int{1, 16, 17, 20, 64} {
		raw := "a &" + strings.Repeat("amp;", n) + "lt;b"
		if got := CleanText(raw); got != "a <b" {
			t.Errorf("%d levels: CleanText = %q, want %q", n, got, "a <b")
		}
	}
}

func BenchmarkCleanText(b *testing.B) {
	text := ""
	for i := 0; i < 200; i++ {
		text += "<p>Hello &amp; welcome to <b>the</b> test sentence number one.</p>\n"
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CleanText(text)
	}
}
