package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/termchat/internal/markup"
	"github.com/baaaaaaaka/termchat/internal/scrollback"
	"github.com/baaaaaaaka/termchat/internal/textwidth"
	"github.com/baaaaaaaka/termchat/internal/transcript"
)

func newTestScreen(t *testing.T, w, h int) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(func() { screen.Fini() })
	return screen
}

type sizedScreen struct {
	tcell.Screen
}

func (s *sizedScreen) Init() error {
	if err := s.Screen.Init(); err != nil {
		return err
	}
	s.Screen.SetSize(40, 10)
	return nil
}

func useScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	prevNewScreen := newScreen
	newScreen = func() (tcell.Screen, error) {
		return &sizedScreen{Screen: screen}, nil
	}
	t.Cleanup(func() { newScreen = prevNewScreen })
	return screen
}

func newTestBuffer(t *testing.T, width int, bodies ...string) *scrollback.Buffer {
	t.Helper()
	buf, err := scrollback.New(scrollback.Options{
		Capacity: 50,
		Width:    width,
		Markup:   markup.DefaultOptions(),
	})
	if err != nil {
		t.Fatalf("scrollback.New: %v", err)
	}
	for _, b := range bodies {
		buf.Append(scrollback.Message{Author: "bob", Role: "blue", Body: b})
	}
	return buf
}

func readScreenLine(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var buf strings.Builder
	for x := 0; x < w; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		if ch == 0 {
			ch = ' '
		}
		buf.WriteRune(ch)
	}
	return buf.String()
}

func waitForLine(t *testing.T, screen tcell.Screen, y int, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(readScreenLine(screen, y), want) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("line %d never contained %q, got %q", y, want, readScreenLine(screen, y))
}

func TestHandleKeyQuit(t *testing.T) {
	screen := newTestScreen(t, 40, 10)
	for _, ev := range []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'q', 0),
		tcell.NewEventKey(tcell.KeyESC, 0, 0),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, 0),
	} {
		if err := handleKey(screen, &uiState{}, ev); !errors.Is(err, errQuit) {
			t.Fatalf("expected quit error for %v, got %v", ev.Name(), err)
		}
	}
}

func TestHandleKeyScrollingLeavesAndRestoresFollow(t *testing.T) {
	screen := newTestScreen(t, 40, 5)
	state := &uiState{rows: make([]row, 20), follow: true}

	if err := handleKey(screen, state, tcell.NewEventKey(tcell.KeyRune, 'k', 0)); err != nil {
		t.Fatalf("handleKey: %v", err)
	}
	if state.follow || state.scroll != 15 {
		t.Fatalf("after k: follow=%v scroll=%d", state.follow, state.scroll)
	}

	_ = handleKey(screen, state, tcell.NewEventKey(tcell.KeyPgUp, 0, 0))
	if state.scroll != 11 {
		t.Fatalf("after PgUp: scroll=%d", state.scroll)
	}

	_ = handleKey(screen, state, tcell.NewEventKey(tcell.KeyRune, 'g', 0))
	if state.scroll != 0 || state.follow {
		t.Fatalf("after g: follow=%v scroll=%d", state.follow, state.scroll)
	}

	_ = handleKey(screen, state, tcell.NewEventKey(tcell.KeyPgDn, 0, 0))
	_ = handleKey(screen, state, tcell.NewEventKey(tcell.KeyPgDn, 0, 0))
	_ = handleKey(screen, state, tcell.NewEventKey(tcell.KeyPgDn, 0, 0))
	_ = handleKey(screen, state, tcell.NewEventKey(tcell.KeyPgDn, 0, 0))
	if !state.follow || state.scroll != 16 {
		t.Fatalf("after PgDn: follow=%v scroll=%d", state.follow, state.scroll)
	}

	_ = handleKey(screen, state, tcell.NewEventKey(tcell.KeyHome, 0, 0))
	_ = handleKey(screen, state, tcell.NewEventKey(tcell.KeyRune, 'G', 0))
	if !state.follow {
		t.Fatalf("G should enable follow")
	}
}

func TestDrawShowsHeaderAndIndent(t *testing.T) {
	screen := newTestScreen(t, 20, 6)
	buf := newTestBuffer(t, 20, "one two three four five six")
	state := &uiState{follow: true, rows: buildRows(buf)}

	draw(screen, state, Options{Buffer: buf, Palette: markup.DefaultPalette})

	if got := readScreenLine(screen, 0); !strings.HasPrefix(got, "bob: one two three") {
		t.Fatalf("first line=%q", got)
	}
	if got := readScreenLine(screen, 1); !strings.HasPrefix(got, "   four five six") {
		t.Fatalf("second line=%q", got)
	}
	_, _, style, _ := screen.GetContent(0, 0)
	if fg, _, _ := style.Decompose(); fg != tcell.ColorBlue {
		t.Fatalf("header color=%v", fg)
	}
	if got := readScreenLine(screen, 5); !strings.Contains(got, "FOLLOW") {
		t.Fatalf("status line=%q", got)
	}
}

func TestDrawFollowShowsNewestRows(t *testing.T) {
	screen := newTestScreen(t, 20, 3)
	buf := newTestBuffer(t, 20, "first", "second", "third")
	state := &uiState{follow: true, rows: buildRows(buf)}

	draw(screen, state, Options{Buffer: buf})

	if got := readScreenLine(screen, 0); !strings.Contains(got, "second") {
		t.Fatalf("row 0=%q", got)
	}
	if got := readScreenLine(screen, 1); !strings.Contains(got, "third") {
		t.Fatalf("row 1=%q", got)
	}
}

func TestDrawShowsStatusError(t *testing.T) {
	screen := newTestScreen(t, 40, 4)
	buf := newTestBuffer(t, 40)
	state := &uiState{follow: true, status: "Bad filepath", statusErr: true}

	draw(screen, state, Options{Buffer: buf})

	if got := readScreenLine(screen, 3); !strings.HasPrefix(got, "Error: Bad filepath") {
		t.Fatalf("status line=%q", got)
	}
	_, _, style, _ := screen.GetContent(0, 3)
	if fg, _, attrs := style.Decompose(); fg != tcell.ColorRed || attrs&tcell.AttrBold == 0 {
		t.Fatalf("status style fg=%v attrs=%v", fg, attrs)
	}
}

func TestCellStyleMapsAttributes(t *testing.T) {
	palette := markup.DefaultPalette
	red := palette.ColorMap()["red"]
	st := cellStyle(markup.Bold|markup.Underline|markup.Reverse|markup.Italic|red, palette)
	fg, _, attrs := st.Decompose()
	for _, want := range []tcell.AttrMask{tcell.AttrBold, tcell.AttrUnderline, tcell.AttrReverse, tcell.AttrItalic} {
		if attrs&want == 0 {
			t.Fatalf("missing attr %v in %v", want, attrs)
		}
	}
	if fg != tcell.ColorRed {
		t.Fatalf("foreground=%v", fg)
	}
	if cellStyle(markup.Normal, palette) != tcell.StyleDefault {
		t.Fatalf("normal style should be default")
	}
}

func TestHeaderStyleIgnoresUnknownRole(t *testing.T) {
	if fg, _, _ := headerStyle("moderator").Decompose(); fg != tcell.ColorDefault {
		t.Fatalf("foreground=%v", fg)
	}
	if fg, _, _ := headerStyle("Green").Decompose(); fg != tcell.ColorGreen {
		t.Fatalf("foreground=%v", fg)
	}
}

func TestWriteTextHandlesWideAndCombining(t *testing.T) {
	screen := newTestScreen(t, 10, 1)

	x := writeText(screen, 0, 0, 10, "a日e\u0301", tcell.StyleDefault)
	if x != 4 {
		t.Fatalf("x=%d want 4", x)
	}
	ch, comb, _, _ := screen.GetContent(3, 0)
	if ch != 'e' || len(comb) != 1 || comb[0] != '\u0301' {
		t.Fatalf("cell 3=%q %q", ch, comb)
	}

	if x := writeText(screen, 0, 0, 2, "a日", tcell.StyleDefault); x != 1 {
		t.Fatalf("wide rune past limit drawn, x=%d", x)
	}
}

func TestTextHelpers(t *testing.T) {
	if got := truncate("hello", 3); got != "hel" {
		t.Fatalf("truncate=%q", got)
	}
	if got := truncate("日本語", 3); got != "日" {
		t.Fatalf("truncate wide=%q", got)
	}
	if got := truncate("x", 0); got != "" {
		t.Fatalf("truncate zero=%q", got)
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight=%q", got)
	}
	if got := versionLabel("1.2.0"); got != "v1.2.0" {
		t.Fatalf("versionLabel=%q", got)
	}
	if got := versionLabel(""); got != "dev" {
		t.Fatalf("versionLabel empty=%q", got)
	}
}

func TestRunRequiresBuffer(t *testing.T) {
	if err := Run(context.Background(), Options{}); err == nil {
		t.Fatalf("expected error without buffer")
	}
}

func TestRunQuit(t *testing.T) {
	screen := useScreen(t)
	buf := newTestBuffer(t, 80, "hello")

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', 0))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Run(ctx, Options{Buffer: buf}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if buf.Width() != 40 {
		t.Fatalf("buffer not reflowed to screen width: %d", buf.Width())
	}
}

func TestRunContextCancel(t *testing.T) {
	useScreen(t)
	buf := newTestBuffer(t, 40)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	if err := Run(ctx, Options{Buffer: buf}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunAppendsFeedAndShowsErrors(t *testing.T) {
	screen := useScreen(t)
	buf := newTestBuffer(t, 40)
	feed := make(chan []transcript.Message, 1)
	errs := make(chan error, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result := make(chan error, 1)
	go func() {
		result <- Run(ctx, Options{Buffer: buf, Feed: feed, Errors: errs})
	}()

	feed <- []transcript.Message{{
		Author: &transcript.Author{Name: "alice"},
		Body:   "hi there",
	}}
	waitForLine(t, screen, 0, "alice: hi there")

	errs <- errors.New("watch failed")
	waitForLine(t, screen, 9, "Error: watch failed")

	_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', 0))
	if err := <-result; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if buf.Len() != 1 {
		t.Fatalf("buffer len=%d", buf.Len())
	}
}

func TestRunReflowsAfterResize(t *testing.T) {
	screen := useScreen(t)
	buf := newTestBuffer(t, 40, "some words here")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result := make(chan error, 1)
	go func() {
		result <- Run(ctx, Options{Buffer: buf, ResizeDebounce: 10 * time.Millisecond})
	}()

	waitForLine(t, screen, 0, "bob: some words here")
	screen.SetSize(24, 10)
	_ = screen.PostEvent(tcell.NewEventResize(24, 10))

	deadline := time.Now().Add(2 * time.Second)
	for buf.Width() != 24 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if buf.Width() != 24 {
		t.Fatalf("width=%d want 24", buf.Width())
	}

	_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', 0))
	if err := <-result; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestDrawnWidthNeverExceedsLayoutWidth(t *testing.T) {
	screen := newTestScreen(t, 80, 1)
	for _, s := range []string{
		"plain ascii",
		"日本語テキスト",
		"ｆｕｌｌｗｉｄｔｈ",
		"emoji 😀🎉",
		"e\u0301 combining",
		"flag 🇯🇵 and zwj 👩\u200d💻",
		"ambiguous ±§¶",
		"hangul 한국어",
	} {
		drawn := writeText(screen, 0, 0, 80, s, tcell.StyleDefault)
		if laid := textwidth.String(s); drawn > laid {
			t.Fatalf("%q drawn in %d cells, laid out in %d", s, drawn, laid)
		}
	}
}

func TestAmbiguousRunesDrawNarrow(t *testing.T) {
	screen := newTestScreen(t, 10, 1)
	if got := writeText(screen, 0, 0, 10, "±§¶", tcell.StyleDefault); got != 3 {
		t.Fatalf("drawn width = %d, want 3", got)
	}
	if got := displayWidth("±§¶"); got != textwidth.String("±§¶") {
		t.Fatalf("displayWidth = %d, want %d", got, textwidth.String("±§¶"))
	}
}
