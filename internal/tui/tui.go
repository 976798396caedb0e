package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"go.uber.org/zap"

	"github.com/baaaaaaaka/termchat/internal/markup"
	"github.com/baaaaaaaka/termchat/internal/scrollback"
	"github.com/baaaaaaaka/termchat/internal/transcript"
	"github.com/baaaaaaaka/termchat/internal/wrap"
)

var errQuit = errors.New("quit")

const (
	defaultResizeDebounce = 80 * time.Millisecond
	statusHeight          = 1
)

var newScreen = tcell.NewScreen

// cells measures terminal cells. Ambiguous-width runes count as narrow,
// matching textwidth, whatever the locale asks for.
var cells = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

type Options struct {
	Buffer  *scrollback.Buffer
	Palette markup.Palette
	Title   string
	Version string
	// Feed delivers new messages. The viewer appends them to Buffer.
	Feed <-chan []transcript.Message
	// Errors are shown on the status line.
	Errors         <-chan error
	ResizeDebounce time.Duration
	Logger         *zap.Logger
}

type uiEvent struct {
	when time.Time
	kind string
}

func (e *uiEvent) When() time.Time { return e.when }

type row struct {
	line   wrap.Line
	indent int
}

type uiState struct {
	rows      []row
	scroll    int
	follow    bool
	status    string
	statusErr bool
	narrow    bool
}

// Run shows the buffer full screen until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Buffer == nil {
		return errors.New("Buffer is required")
	}
	if opts.Palette == nil {
		opts.Palette = markup.DefaultPalette
	}
	if opts.ResizeDebounce <= 0 {
		opts.ResizeDebounce = defaultResizeDebounce
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("tui")

	screen, err := newScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	state := &uiState{follow: true}
	reflow(screen, state, opts, log)

	done := make(chan struct{})
	defer close(done)

	statusCh := make(chan error, 1)
	post := func(kind string) {
		_ = screen.PostEvent(&uiEvent{when: time.Now(), kind: kind})
	}

	if opts.Feed != nil {
		go func() {
			for {
				select {
				case batch, ok := <-opts.Feed:
					if !ok {
						return
					}
					for _, m := range batch {
						opts.Buffer.Append(m)
					}
					post("feed")
				case <-done:
					return
				}
			}
		}()
	}
	if opts.Errors != nil {
		go func() {
			for {
				select {
				case err, ok := <-opts.Errors:
					if !ok {
						return
					}
					select {
					case <-statusCh:
					default:
					}
					statusCh <- err
					post("status")
				case <-done:
					return
				}
			}
		}()
	}

	go func() {
		select {
		case <-ctx.Done():
			post("quit")
		case <-done:
		}
	}()

	var resizeTimer *time.Timer
	defer func() {
		if resizeTimer != nil {
			resizeTimer.Stop()
		}
	}()

	for {
		draw(screen, state, opts)
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch tev := ev.(type) {
		case *uiEvent:
			switch tev.kind {
			case "quit":
				return ctx.Err()
			case "feed":
				state.rows = buildRows(opts.Buffer)
			case "status":
				select {
				case err := <-statusCh:
					state.status = err.Error()
					state.statusErr = true
				default:
				}
			case "reflow":
				reflow(screen, state, opts, log)
			}
		case *tcell.EventResize:
			screen.Sync()
			if resizeTimer == nil {
				resizeTimer = time.AfterFunc(opts.ResizeDebounce, func() { post("reflow") })
			} else {
				resizeTimer.Reset(opts.ResizeDebounce)
			}
		case *tcell.EventKey:
			if err := handleKey(screen, state, tev); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		}
	}
}

// reflow re-renders the buffer at the screen width. Screens narrower than
// scrollback.MinWidth keep the previous layout.
func reflow(screen tcell.Screen, state *uiState, opts Options, log *zap.Logger) {
	w, _ := screen.Size()
	state.narrow = w < scrollback.MinWidth
	if !state.narrow && w != opts.Buffer.Width() {
		if err := opts.Buffer.Reflow(w); err != nil {
			log.Warn("reflow failed", zap.Int("width", w), zap.Error(err))
		}
	}
	state.rows = buildRows(opts.Buffer)
}

func buildRows(buf *scrollback.Buffer) []row {
	var rows []row
	for _, m := range buf.Messages() {
		for _, l := range m.Lines {
			rows = append(rows, row{line: l, indent: m.Indent})
		}
	}
	return rows
}

func handleKey(screen tcell.Screen, state *uiState, ev *tcell.EventKey) error {
	_, h := screen.Size()
	viewH := max(1, h-statusHeight)

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyESC:
		return errQuit
	case tcell.KeyUp:
		scrollBy(state, viewH, -1)
	case tcell.KeyDown:
		scrollBy(state, viewH, 1)
	case tcell.KeyPgUp:
		scrollBy(state, viewH, -viewH)
	case tcell.KeyPgDn:
		scrollBy(state, viewH, viewH)
	case tcell.KeyHome:
		state.follow = false
		state.scroll = 0
	case tcell.KeyEnd:
		state.follow = true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return errQuit
		case 'k':
			scrollBy(state, viewH, -1)
		case 'j':
			scrollBy(state, viewH, 1)
		case 'g':
			state.follow = false
			state.scroll = 0
		case 'G':
			state.follow = true
		case 'c':
			state.status = ""
			state.statusErr = false
		}
	}
	return nil
}

// scrollBy moves the view. Reaching the bottom turns follow mode back on.
func scrollBy(state *uiState, viewH, delta int) {
	maxScroll := max(0, len(state.rows)-viewH)
	if state.follow {
		state.scroll = maxScroll
	}
	state.scroll = clamp(state.scroll+delta, 0, maxScroll)
	state.follow = state.scroll == maxScroll
}

func draw(screen tcell.Screen, state *uiState, opts Options) {
	screen.Clear()
	w, h := screen.Size()
	viewH := max(0, h-statusHeight)

	maxScroll := max(0, len(state.rows)-viewH)
	if state.follow {
		state.scroll = maxScroll
	}
	state.scroll = clamp(state.scroll, 0, maxScroll)

	for i := 0; i < viewH; i++ {
		idx := state.scroll + i
		if idx >= len(state.rows) {
			break
		}
		drawRow(screen, i, w, state.rows[idx], opts.Palette)
	}
	drawStatus(screen, state, opts)
	screen.Show()
}

func drawRow(screen tcell.Screen, y, w int, r row, palette markup.Palette) {
	x := r.indent
	if r.line.First {
		label := truncate(r.line.Header, r.indent)
		writeText(screen, 0, y, w, label, headerStyle(r.line.Role))
		x = writeText(screen, r.indent, y, w, ": ", tcell.StyleDefault)
	}
	for i, f := range r.line.Fragments {
		if i > 0 {
			x++
		}
		x = writeText(screen, x, y, w, f.Text, cellStyle(f.Style, palette))
	}
}

func drawStatus(screen tcell.Screen, state *uiState, opts Options) {
	w, h := screen.Size()
	if h <= 0 {
		return
	}
	y := h - 1
	base := tcell.StyleDefault.Reverse(true)
	writeText(screen, 0, y, w, padRight("", w), base)

	right := fmt.Sprintf("%d msgs", opts.Buffer.Len())
	if state.follow {
		right += "  FOLLOW"
	} else {
		right += fmt.Sprintf("  %d/%d", state.scroll+1, max(1, len(state.rows)))
	}
	right = truncate(right, w)
	rightX := max(0, w-displayWidth(right))

	left, style := statusText(state, opts)
	writeText(screen, 0, y, rightX, truncate(left, max(0, rightX-1)), style)
	writeText(screen, rightX, y, w, right, base.Bold(true))
}

func statusText(state *uiState, opts Options) (string, tcell.Style) {
	base := tcell.StyleDefault.Reverse(true)
	switch {
	case state.status != "" && state.statusErr:
		return "Error: " + state.status, tcell.StyleDefault.Bold(true).Foreground(tcell.ColorRed)
	case state.status != "":
		return state.status, base
	case state.narrow:
		return "window too narrow", base.Bold(true)
	}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "termchat"
	}
	return title + " " + versionLabel(opts.Version) + "  q quit  j/k scroll  G follow", base
}

func headerStyle(role string) tcell.Style {
	st := tcell.StyleDefault.Bold(true)
	if c := tcell.GetColor(strings.ToLower(role)); role != "" && c != tcell.ColorDefault {
		st = st.Foreground(c)
	}
	return st
}

func cellStyle(s markup.Style, palette markup.Palette) tcell.Style {
	st := tcell.StyleDefault
	if s&markup.Bold != 0 {
		st = st.Bold(true)
	}
	if s&markup.Italic != 0 {
		st = st.Italic(true)
	}
	if s&markup.Underline != 0 {
		st = st.Underline(true)
	}
	if s&markup.Reverse != 0 {
		st = st.Reverse(true)
	}
	if name := palette.Name(s); name != "" {
		st = st.Foreground(tcell.GetColor(name))
	}
	return st
}

// writeText draws text grapheme by grapheme and stops before maxX. It
// returns the column after the last drawn cell. Lines are laid out with
// textwidth, which counts every scalar; a grapheme here never takes more
// cells than that, so a wrapped line always fits its row.
func writeText(screen tcell.Screen, x, y, maxX int, text string, style tcell.Style) int {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		width := cells.StringWidth(g.Str())
		if width == 0 {
			continue
		}
		if x+width > maxX {
			break
		}
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += width
	}
	return x
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if displayWidth(s) <= width {
		return s
	}
	return cells.Truncate(s, width, "")
}

func padRight(s string, width int) string {
	if displayWidth(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-displayWidth(s))
}

func displayWidth(s string) int {
	return cells.StringWidth(s)
}

func versionLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		v = "dev"
	}
	if strings.EqualFold(v, "dev") {
		return v
	}
	if strings.HasPrefix(strings.ToLower(v), "v") {
		return v
	}
	return "v" + v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
