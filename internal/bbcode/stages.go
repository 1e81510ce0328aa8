package bbcode

import (
	"regexp"
	"strings"
)

var (
	brTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTag = regexp.MustCompile(`(?i)\[hr\]`)

	titledSpoiler = regexp.MustCompile(`(?is)\[spoiler=(.*?)\](.*?)\[/spoiler\]`)
	plainSpoiler  = regexp.MustCompile(`(?is)\[spoiler\](.*?)\[/spoiler\]`)

	titledQuote = regexp.MustCompile(`(?is)\[quote=(.*?)\](.*?)\s*\[/quote\]`)
	plainQuote  = regexp.MustCompile(`(?is)\[quote\](.*?)\s*\[/quote\]`)

	listMarker = regexp.MustCompile(`(?i)\[\*\]|\[/list\]`)
	listTag    = regexp.MustCompile(`(?i)\[/?list(=[^\]]*)?\]`)

	boldTag   = regexp.MustCompile(`(?is)\[b\](.*?)\[/b\]`)
	italicTag = regexp.MustCompile(`(?is)\[i\](.*?)\[/i\]`)
	strikeTag = regexp.MustCompile(`(?is)\[s\](.*?)\[/s\]`)

	imgTag       = regexp.MustCompile(`(?is)\[img\](.*?)\[/img\]`)
	labeledLink  = regexp.MustCompile(`(?is)\[url=(.*?)\](.*?)\[/url\]`)
	bareLink     = regexp.MustCompile(`(?is)\[url\](.*?)\[/url\]`)
	formatTag    = regexp.MustCompile(`(?i)\[/?(size|color|font|u|center|right|left|indent)(=[^\]]*)?\]`)
	blankRunExpr = regexp.MustCompile(`\n{3,}`)
)

func lineBreaks(s string) string {
	s = brTag.ReplaceAllString(s, "\n")
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func horizontalRules(s string) string {
	return hrTag.ReplaceAllString(s, "\n---\n")
}

func spoilers(s string) string {
	s = titledSpoiler.ReplaceAllString(s, "<details><summary>${1}</summary>\n\n${2}\n\n</details>")
	return plainSpoiler.ReplaceAllString(s, "<details><summary>Spoiler</summary>\n\n${1}\n\n</details>")
}

func quotes(s string) string {
	s = replaceSubmatch(titledQuote, s, func(m []string) string {
		return "> **" + strings.TrimSpace(m[1]) + " wrote:**\n" + quoteLines(m[2])
	})
	return replaceSubmatch(plainQuote, s, func(m []string) string {
		return quoteLines(m[1])
	})
}

// quoteLines prefixes every line of body with "> ".
func quoteLines(body string) string {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

// lists turns each "[*]" item, up to the next "[*]" or "[/list]", into a
// "* " line, then drops the list container tags. An item with no
// terminator is left as written.
func lists(s string) string {
	markers := listMarker.FindAllStringIndex(s, -1)
	if len(markers) == 0 {
		return listTag.ReplaceAllString(s, "")
	}

	var b strings.Builder
	last := 0
	for i, m := range markers {
		if s[m[0]:m[1]] != "[*]" || i+1 == len(markers) {
			continue
		}
		end := markers[i+1][0]
		b.WriteString(s[last:m[0]])
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
		b.WriteString("* ")
		b.WriteString(strings.TrimSpace(s[m[1]:end]))
		b.WriteByte('\n')
		last = end
	}
	b.WriteString(s[last:])
	return listTag.ReplaceAllString(b.String(), "")
}

func emphasis(s string) string {
	s = boldTag.ReplaceAllString(s, "**${1}**")
	s = italicTag.ReplaceAllString(s, "*${1}*")
	return strikeTag.ReplaceAllString(s, "~~${1}~~")
}

func images(s string) string {
	return imgTag.ReplaceAllString(s, "![Image](${1})")
}

func links(s string) string {
	s = labeledLink.ReplaceAllString(s, "[${2}](${1})")
	return bareLink.ReplaceAllString(s, "<${1}>")
}

func stripFormatting(s string) string {
	return formatTag.ReplaceAllString(s, "")
}

func collapse(s string) string {
	return strings.TrimSpace(blankRunExpr.ReplaceAllString(s, "\n\n"))
}

// replaceSubmatch is ReplaceAllStringFunc with access to capture groups.
func replaceSubmatch(re *regexp.Regexp, s string, fn func([]string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		groups := make([]string, len(m)/2)
		for g := range groups {
			if m[2*g] >= 0 {
				groups[g] = s[m[2*g]:m[2*g+1]]
			}
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(fn(groups))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
