// Package bbcode converts Nexus-style bracket markup into GitHub-flavored
// Markdown.
package bbcode

// Placeholder is returned for empty descriptions.
const Placeholder = "No description provided."

// Stage is one pure text transform of the pipeline.
type Stage func(string) string

// Pipeline lists the stages in the order they must run: line breaks first,
// then block constructs, inline constructs, residual tag stripping and
// whitespace cleanup.
var Pipeline = []Stage{
	lineBreaks,
	horizontalRules,
	spoilers,
	quotes,
	lists,
	emphasis,
	images,
	links,
	stripFormatting,
	collapse,
}

// Normalize converts markup to Markdown. It runs the pipeline until the
// text stops changing, so a tag assembled by an earlier pass (for example
// "[[u]b]" once "[u]" is stripped) is converted too, and the result is a
// fixed point: Normalize(Normalize(x)) == Normalize(x).
func Normalize(markup string) string {
	out := markup
	for {
		next := apply(out)
		if next == out {
			break
		}
		out = next
	}
	if out == "" {
		return Placeholder
	}
	return out
}

func apply(s string) string {
	for _, stage := range Pipeline {
		s = stage(s)
	}
	return s
}
