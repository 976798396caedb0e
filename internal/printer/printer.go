// Package printer writes rendered scroll-back messages as ANSI styled text
// for non-interactive output.
package printer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"

	"github.com/baaaaaaaka/termchat/internal/markup"
	"github.com/baaaaaaaka/termchat/internal/scrollback"
	"github.com/baaaaaaaka/termchat/internal/textwidth"
	"github.com/baaaaaaaka/termchat/internal/wrap"
)

// ansiNames keeps the basic colors on the terminal's own palette.
var ansiNames = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

type Printer struct {
	out     *termenv.Output
	palette markup.Palette
}

// New writes to w. Without options the color profile is detected from w.
func New(w io.Writer, palette markup.Palette, opts ...termenv.OutputOption) *Printer {
	return &Printer{out: termenv.NewOutput(w, opts...), palette: palette}
}

func (p *Printer) Write(msgs []scrollback.Rendered) error {
	bw := bufio.NewWriter(p.out)
	for _, m := range msgs {
		for _, l := range m.Lines {
			if _, err := fmt.Fprintln(bw, p.FormatLine(m, l)); err != nil {
				return fmt.Errorf("write line: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// FormatLine lays out one display line of m. The first line starts with the
// author label padded to the indent and a ": " separator; later lines are
// indented.
func (p *Printer) FormatLine(m scrollback.Rendered, l wrap.Line) string {
	var b strings.Builder
	if l.First {
		label := textwidth.Truncate(l.Header, m.Indent)
		label += strings.Repeat(" ", m.Indent-textwidth.String(label))
		b.WriteString(p.headerStyle(l.Role).Styled(label))
		b.WriteString(": ")
	} else {
		b.WriteString(strings.Repeat(" ", m.Indent))
	}
	for i, f := range l.Fragments {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.style(f.Style).Styled(f.Text))
	}
	return b.String()
}

func (p *Printer) headerStyle(role string) termenv.Style {
	st := p.out.String().Bold()
	if c := p.color(role); c != nil {
		st = st.Foreground(c)
	}
	return st
}

func (p *Printer) style(s markup.Style) termenv.Style {
	st := p.out.String()
	if s&markup.Bold != 0 {
		st = st.Bold()
	}
	if s&markup.Italic != 0 {
		st = st.Italic()
	}
	if s&markup.Underline != 0 {
		st = st.Underline()
	}
	if s&markup.Reverse != 0 {
		st = st.Reverse()
	}
	if c := p.color(p.palette.Name(s)); c != nil {
		st = st.Foreground(c)
	}
	return st
}

// color resolves a palette name to a terminal color, or nil when the name is
// unknown.
func (p *Printer) color(name string) termenv.Color {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	if idx, ok := ansiNames[name]; ok {
		return p.out.Color(idx)
	}
	hex := tcell.GetColor(name).Hex()
	if hex < 0 {
		return nil
	}
	return p.out.Color(fmt.Sprintf("#%06x", hex))
}
