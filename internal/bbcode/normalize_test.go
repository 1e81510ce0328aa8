package bbcode_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/blackwell-systems/modmirror/internal/bbcode"
)

func TestNormalize_Golden(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name: "mod_page",
			input: "[center][size=5][b]Cool Mod[/b][/size][/center]<br />\n" +
				"A mod that does things.<br /><br /><br /><br />\n" +
				"[hr]\n" +
				"[list]\n" +
				"[*]Feature one\n" +
				"[*][i]Feature two[/i]\n" +
				"[/list]\n" +
				"[url=https://example.com]Homepage[/url]",
		},
		{
			name: "spoiler_quote",
			input: "[spoiler=Install]Drop it in Data.[/spoiler]\n" +
				"[spoiler]secret[/spoiler]\n" +
				"[quote=Alice]line one\n" +
				"line two  [/quote]\n" +
				"[quote]plain[/quote]\n" +
				"[url]https://nexusmods.com[/url] [img]https://x/y.png[/img] [s]old[/s] [u]under[/u] [unknown]keep[/unknown]",
		},
	}

	g := goldie.New(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Assert(t, tt.name, []byte(bbcode.Normalize(tt.input)))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", bbcode.Placeholder},
		{"whitespace only", "  \n\t ", bbcode.Placeholder},
		{"only formatting tags", "[center][/center]", bbcode.Placeholder},
		{"bold", "[b]hi[/b]", "**hi**"},
		{"uppercase tags", "[B]hi[/B] [I]x[/I]", "**hi** *x*"},
		{"line break", "line1<br>line2", "line1\nline2"},
		{"self-closing break", "a<BR/>b", "a\nb"},
		{"crlf and blank runs", "[B]bold\r\nacross[/B]\r\n\r\n\r\n\r\nend", "**bold\nacross**\n\nend"},
		{"labeled link", "[url=https://x.io]site[/url]", "[site](https://x.io)"},
		{"bare link", "[url]https://x.io[/url]", "<https://x.io>"},
		{"image", "[img]https://x.io/a.png[/img]", "![Image](https://x.io/a.png)"},
		{"color stripped", "[color=#ff0000]red[/color]", "red"},
		{"numbered list", "[list=1][*]one[*]two[/list]", "* one\n* two"},
		{"list after text", "Features:[list][*]a[/list]", "Features:\n* a"},
		{"unterminated item", "[*]dangling", "[*]dangling"},
		{"unknown tag kept", "[youtube]abc[/youtube]", "[youtube]abc[/youtube]"},
		{"tag revealed by stripping", "[[u]b]x[/b]", "**x**"},
		{"quote blank line", "[quote]a\n\nb[/quote]", "> a\n>\n> b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bbcode.Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"[b]bold[/b] and [i]italic[/i]",
		"[list][*]a[*]b[/list]",
		"[spoiler=T][quote=Q]x[/quote][/spoiler]",
		"[[u]b]x[/b]",
		"[url=https://a]b[/url]\n\n\n\nc",
		"[size=3][b][i]nested[/i][/b][/size]",
		"[hr][hr]",
		bbcode.Placeholder,
	}

	for _, in := range inputs {
		once := bbcode.Normalize(in)
		assert.Equal(t, once, bbcode.Normalize(once), "input %q", in)
	}
}
