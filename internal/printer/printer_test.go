package printer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/baaaaaaaka/termchat/internal/markup"
	"github.com/baaaaaaaka/termchat/internal/scrollback"
)

func render(t *testing.T, width int, author, body string) scrollback.Rendered {
	t.Helper()
	r, err := scrollback.Render(scrollback.Message{Author: author, Role: "red", Body: body}, width, markup.DefaultOptions())
	require.NoError(t, err)
	return r
}

func TestWritePlainLayout(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, markup.DefaultPalette, termenv.WithProfile(termenv.Ascii))

	r := render(t, 20, "bob", "one two three four five six")
	require.NoError(t, p.Write([]scrollback.Rendered{r}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(r.Lines))
	require.True(t, strings.HasPrefix(lines[0], "bob: one"), lines[0])
	for _, l := range lines[1:] {
		require.True(t, strings.HasPrefix(l, "   "), l)
	}
	for _, l := range lines {
		require.LessOrEqual(t, len(l), 20, l)
	}
}

func TestFormatLineTruncatesWideAuthor(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, markup.DefaultPalette, termenv.WithProfile(termenv.Ascii))

	r := render(t, 10, "averyveryverylongname", "hi")
	got := p.FormatLine(r, r.Lines[0])
	require.Equal(t, "avery: hi", got)
}

func TestStyledOutputUsesEscapes(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, markup.DefaultPalette, termenv.WithProfile(termenv.ANSI))

	r := render(t, 40, "bob", "**loud** quiet")
	line := p.FormatLine(r, r.Lines[0])
	require.Contains(t, line, "\x1b[")
	require.Contains(t, line, "loud")
	require.Contains(t, line, "quiet")
}

func TestColorLookup(t *testing.T) {
	p := New(&bytes.Buffer{}, markup.DefaultPalette, termenv.WithProfile(termenv.TrueColor))

	require.Nil(t, p.color(""))
	require.Nil(t, p.color("not-a-color"))
	require.NotNil(t, p.color("Red"))
	require.NotNil(t, p.color("orange"))
}
