// Package wrap lays styled runs out into fixed-width display lines.
package wrap

import (
	"errors"
	"strings"

	"github.com/baaaaaaaka/termchat/internal/markup"
	"github.com/baaaaaaaka/termchat/internal/textwidth"
)

// MinWidth is the smallest width Wrap accepts.
const MinWidth = 2

// headerReserve is the number of columns the first line gives up to the
// author label separator.
const headerReserve = 2

var ErrWidthTooSmall = errors.New("wrap width must be at least 2")

// Fragment is an unbreakable piece of styled text. It never contains a
// newline.
type Fragment struct {
	Text  string
	Style markup.Style
}

// Line is one display row. Header and Role are only set on the first line of
// a message.
type Line struct {
	First     bool
	Header    string
	Role      string
	Fragments []Fragment
}

// Width returns the columns the line occupies with one space between
// fragments.
func (l Line) Width() int {
	w := 0
	for i, f := range l.Fragments {
		if i > 0 {
			w++
		}
		w += textwidth.String(f.Text)
	}
	return w
}

// Text joins the fragments with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Fragments))
	for i, f := range l.Fragments {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}

// Limit returns the column budget of a line.
func Limit(width int, first bool) int {
	if first {
		return width - headerReserve
	}
	return width
}

// Wrap splits runs into words, breaks over-long words and fills lines
// greedily. The first line is width-2 columns wide and carries the author and
// role; later lines use the full width.
func Wrap(runs []markup.Run, width int, author, role string) ([]Line, error) {
	if width < MinWidth {
		return nil, ErrWidthTooSmall
	}
	words := splitWords(runs, width-headerReserve)

	lines := []Line{}
	cur := Line{First: true, Header: author, Role: role}
	used := 0
	flush := func() {
		lines = append(lines, cur)
		cur = Line{}
		used = 0
	}

	for _, w := range words {
		if w.brk {
			flush()
			continue
		}
		text := strings.TrimRight(w.text, " \t")
		if text == "" {
			continue
		}
		need := textwidth.String(text)
		if len(cur.Fragments) > 0 {
			need++
		}
		if used+need > Limit(width, cur.First) && (len(cur.Fragments) > 0 || cur.First) {
			flush()
			need = textwidth.String(text)
		}
		cur.Fragments = append(cur.Fragments, Fragment{Text: text, Style: w.style})
		used += need
	}
	if len(cur.Fragments) > 0 || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines, nil
}

type word struct {
	text  string
	style markup.Style
	brk   bool
}

var breakWord = word{brk: true}

// splitWords turns runs into words and break markers. Reverse (code) runs
// keep each line whole; everything else splits on spaces.
func splitWords(runs []markup.Run, usable int) []word {
	var out []word
	for _, r := range runs {
		if r.Text == "\n" {
			out = append(out, breakWord)
			continue
		}
		if !strings.Contains(r.Text, "\n") {
			out = appendWords(out, r.Text, r.Style, usable)
			continue
		}

		lines := strings.Split(r.Text, "\n")
		trailing := lines[len(lines)-1] == ""
		if trailing {
			lines = lines[:len(lines)-1]
		}
		for i, ln := range lines {
			if i > 0 {
				out = append(out, breakWord)
			}
			if r.Style&markup.Reverse != 0 {
				if ln != "" {
					out = appendChunked(out, ln, r.Style, usable)
				}
				continue
			}
			out = appendWords(out, ln, r.Style, usable)
		}
		if trailing {
			out = append(out, breakWord)
		}
	}
	return out
}

func appendWords(out []word, text string, style markup.Style, usable int) []word {
	for _, w := range strings.Split(text, " ") {
		if w == "" {
			continue
		}
		out = appendChunked(out, w, style, usable)
	}
	return out
}

// appendChunked adds text as one word, or, when it is at least usable columns
// wide, as chunks of at most usable-1 columns separated by forced breaks.
func appendChunked(out []word, text string, style markup.Style, usable int) []word {
	if textwidth.String(text) < usable {
		return append(out, word{text: text, style: style})
	}
	chunks := Chunk(text, max(1, usable-1))
	for i, c := range chunks {
		if i > 0 {
			out = append(out, breakWord)
		}
		out = append(out, word{text: c, style: style})
	}
	return out
}

// Chunk splits s into pieces of at most size display columns. A piece always
// holds at least one scalar, so a wide scalar may exceed a size of 1.
func Chunk(s string, size int) []string {
	var (
		chunks []string
		start  int
		used   int
	)
	for i, r := range s {
		w := textwidth.Rune(r)
		if used > 0 && used+w > size {
			chunks = append(chunks, s[start:i])
			start, used = i, 0
		}
		used += w
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}
