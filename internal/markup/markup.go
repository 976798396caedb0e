// Package markup turns raw chat message text into styled runs. It recognizes
// a small markdown subset: code fences, blank lines, paragraphs and, inside
// paragraphs, URLs, bold, italic, strong emphasis, underline and inline code.
//
// Tokenize never fails. Text that does not match any rule is kept as plain
// text and a message with no usable content becomes a bold "(Unknown)" run.
package markup

import "strings"

// Shrug is passed through verbatim: a message containing it renders as
// exactly this text.
const Shrug = `¯\_(ツ)_/¯`

// Placeholder is the text shown for messages without usable content.
const Placeholder = "(Unknown)"

// Run is a contiguous span of text sharing one style. Text may contain
// newlines; the wrapper splits on them.
type Run struct {
	Text  string
	Style Style
}

// Options configures Tokenize.
type Options struct {
	// Colors resolves named colors, e.g. "blue" for links.
	Colors ColorMap
	// Italic reports whether the sink can render italics. Without it italic
	// text is underlined instead.
	Italic bool
}

// DefaultOptions uses DefaultPalette and assumes italic support.
func DefaultOptions() Options {
	return Options{Colors: DefaultPalette.ColorMap(), Italic: true}
}

// Tokenize converts raw message text into styled runs.
func Tokenize(raw string, opts Options) []Run {
	if strings.Contains(raw, Shrug) {
		return []Run{{Text: Shrug, Style: Normal}}
	}

	blocks := Blocks(Normalize(raw))
	if len(blocks) > 0 && blocks[0].Kind == BlankLine {
		blocks = blocks[1:]
	}

	var runs []Run
	for _, b := range blocks {
		switch b.Kind {
		case CodeFence:
			runs = append(runs, Run{Text: b.Text, Style: Reverse})
		case BlankLine:
			runs = append(runs, Run{Text: "\n", Style: Normal})
		case Paragraph:
			runs = appendSpans(runs, b.Text, Normal, opts)
		}
	}
	if len(runs) == 0 {
		return []Run{{Text: Placeholder, Style: Bold}}
	}
	return runs
}

// appendSpans tokenizes text inline. Delimited spans are tokenized again so
// nested markers combine their styles with the outer one.
func appendSpans(runs []Run, text string, outer Style, opts Options) []Run {
	for _, sp := range Spans(text) {
		style := outer.Merge(spanStyle(sp.Kind, opts))
		switch sp.Kind {
		case PlainText, URL, InlineCode:
			runs = appendRun(runs, Run{Text: sp.Text, Style: style})
		case Underlined, StrongEmphasis, Strong, Emphasis:
			runs = appendSpans(runs, sp.Text, style, opts)
		}
	}
	return runs
}

// appendRun adds r, coalescing with the previous run when styles match.
func appendRun(runs []Run, r Run) []Run {
	if r.Text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Style == r.Style && runs[n-1].Text != "\n" {
		runs[n-1].Text += r.Text
		return runs
	}
	return append(runs, r)
}

func spanStyle(kind SpanKind, opts Options) Style {
	emphasis := Underline
	if opts.Italic {
		emphasis = Italic
	}
	switch kind {
	case URL:
		return Underline.Merge(opts.Colors["blue"])
	case Underlined:
		return Underline
	case StrongEmphasis:
		return Bold | emphasis
	case Strong:
		return Bold
	case Emphasis:
		return emphasis
	case InlineCode:
		return Reverse
	default:
		return Normal
	}
}
