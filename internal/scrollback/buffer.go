// Package scrollback keeps the most recent chat messages rendered at the
// current viewport width and re-flows them when the width changes.
package scrollback

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/baaaaaaaka/termchat/internal/markup"
	"github.com/baaaaaaaka/termchat/internal/textwidth"
	"github.com/baaaaaaaka/termchat/internal/wrap"
)

// MinWidth is the narrowest viewport a Buffer renders into. Half of it is
// always left for message text after the author indent.
const MinWidth = 2 * wrap.MinWidth

var (
	ErrCapacity = errors.New("scrollback capacity must be at least 1")
	ErrWidth    = fmt.Errorf("viewport width must be at least %d", MinWidth)
)

type Options struct {
	Capacity int
	Width    int
	Markup   markup.Options
	Logger   *zap.Logger
}

// Rendered is one message laid out for a specific width. Indent is the
// column where message text starts; the header label is drawn before it.
type Rendered struct {
	Author string
	Indent int
	Lines  []wrap.Line
}

// Buffer is safe for concurrent use. Every method holds a single lock, so a
// reader never sees a half-rebuilt buffer.
type Buffer struct {
	mu       sync.Mutex
	width    int
	markup   markup.Options
	log      *zap.Logger
	sources  *ring[Source]
	rendered *ring[Rendered]
}

func New(opts Options) (*Buffer, error) {
	if opts.Capacity < 1 {
		return nil, ErrCapacity
	}
	if opts.Width < MinWidth {
		return nil, ErrWidth
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Buffer{
		width:    opts.Width,
		markup:   opts.Markup,
		log:      log.Named("scrollback"),
		sources:  newRing[Source](opts.Capacity),
		rendered: newRing[Rendered](opts.Capacity),
	}, nil
}

// Render runs src through the tokenizer and the wrapper at viewport width.
func Render(src Source, width int, opts markup.Options) (Rendered, error) {
	author := src.AuthorName()
	indent := min(textwidth.String(author), width/2)
	lines, err := wrap.Wrap(markup.Tokenize(src.Text(), opts), width-indent, author, src.TopRole())
	if err != nil {
		return Rendered{}, fmt.Errorf("render message from %q: %w", author, err)
	}
	return Rendered{Author: author, Indent: indent, Lines: lines}, nil
}

// Append stores src and renders it at the current width. When the buffer is
// full the oldest message is evicted.
func (b *Buffer) Append(src Source) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, evicted := b.sources.push(src); evicted {
		b.log.Debug("evicted oldest message", zap.Int("capacity", len(b.sources.items)))
	}
	b.renderLocked(src)
}

func (b *Buffer) renderLocked(src Source) {
	r, err := Render(src, b.width, b.markup)
	if err != nil {
		// Unreachable while width >= MinWidth.
		b.log.Error("render failed", zap.Error(err))
		return
	}
	b.rendered.push(r)
}

// Reflow re-renders every retained message at width, in arrival order.
func (b *Buffer) Reflow(width int) error {
	if width < MinWidth {
		return ErrWidth
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width = width
	b.rendered.clear()
	b.sources.each(b.renderLocked)
	b.log.Debug("reflowed", zap.Int("width", width), zap.Int("messages", b.rendered.len()))
	return nil
}

// Lines flattens the rendered messages into display lines, oldest first.
func (b *Buffer) Lines() []wrap.Line {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []wrap.Line
	b.rendered.each(func(r Rendered) {
		out = append(out, r.Lines...)
	})
	return out
}

// Messages returns the rendered messages, oldest first.
func (b *Buffer) Messages() []Rendered {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Rendered, 0, b.rendered.len())
	b.rendered.each(func(r Rendered) {
		out = append(out, r)
	})
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rendered.len()
}

func (b *Buffer) Width() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width
}

func (b *Buffer) Capacity() int { return len(b.sources.items) }
