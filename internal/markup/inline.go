package markup

import "regexp"

// SpanKind classifies an inline segment of a paragraph.
type SpanKind int

const (
	PlainText SpanKind = iota
	URL
	Underlined
	StrongEmphasis
	Strong
	Emphasis
	InlineCode
)

func (k SpanKind) String() string {
	switch k {
	case PlainText:
		return "plain"
	case URL:
		return "url"
	case Underlined:
		return "underline"
	case StrongEmphasis:
		return "strongemphasis"
	case Strong:
		return "bold"
	case Emphasis:
		return "italic"
	case InlineCode:
		return "inlinecode"
	default:
		return "unknown"
	}
}

// Span is one inline segment. Text is the content without its markers.
type Span struct {
	Kind SpanKind
	Text string
}

type inlineRule struct {
	kind SpanKind
	re   *regexp.Regexp
	// wordStart is set when an alternative starts with \b before '_'. Such
	// an alternative can match at the start of a slice where it did not match
	// inside the longer text.
	wordStart bool
}

// inlineRules are tried in priority order; the leftmost match wins and ties
// go to the earlier rule.
var inlineRules = []inlineRule{
	{URL, regexp.MustCompile(`(https?://.)?(www\.)?[-a-zA-Z0-9@:%._+~#=]{2,256}\.[a-z]{2,6}\b([-a-zA-Z0-9@:%_+.~#?&/=]*)`), false},
	{Underlined, regexp.MustCompile(`__([^\s*].*?)__|\b__([^\s_].*?)__\b`), true},
	{StrongEmphasis, regexp.MustCompile(`\*\*\*([^\s*].*?)\*\*\*|\b___([^\s_].*?)___\b`), true},
	{Strong, regexp.MustCompile(`\*\*([^\s*].*?)\*\*`), false},
	{Emphasis, regexp.MustCompile(`\*([^\s*].*?)\*|\b_([^\s_].*?)_\b`), true},
	{InlineCode, regexp.MustCompile("`([^`\n]+)`"), false},
}

// ruleCursor remembers the next match of one rule so a rule is searched
// again only after the scan has moved past that match.
type ruleCursor struct {
	searched bool
	from     int
	loc      []int
}

func (c *ruleCursor) stale(rule inlineRule, text string, pos int) bool {
	switch {
	case !c.searched:
		return true
	case c.loc != nil && c.loc[0] < pos:
		return true
	case rule.wordStart && c.from < pos && text[pos] == '_':
		return true
	}
	return false
}

// search finds the leftmost match in text[pos:]. Locations are stored
// relative to text.
func (c *ruleCursor) search(rule inlineRule, text string, pos int) {
	c.searched, c.from, c.loc = true, pos, nil
	loc := rule.re.FindStringSubmatchIndex(text[pos:])
	if loc == nil || loc[1] == loc[0] {
		return
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += pos
		}
	}
	c.loc = loc
}

// Spans splits paragraph text into inline spans. Text between matches is
// returned as PlainText. Each step matches as if the text began where the
// previous span ended.
func Spans(text string) []Span {
	var spans []Span
	cursors := make([]ruleCursor, len(inlineRules))
	pos := 0
	for pos < len(text) {
		kind, loc := nextMatch(text, pos, cursors)
		if loc == nil {
			break
		}
		start, end := loc[0], loc[1]
		if start > pos {
			spans = append(spans, Span{Kind: PlainText, Text: text[pos:start]})
		}
		spans = append(spans, Span{Kind: kind, Text: spanContent(kind, text, loc)})
		pos = end
	}
	if pos < len(text) {
		spans = append(spans, Span{Kind: PlainText, Text: text[pos:]})
	}
	return spans
}

func nextMatch(text string, pos int, cursors []ruleCursor) (SpanKind, []int) {
	var (
		bestKind SpanKind
		best     []int
	)
	for i, rule := range inlineRules {
		c := &cursors[i]
		if c.stale(rule, text, pos) {
			c.search(rule, text, pos)
		}
		if c.loc == nil {
			continue
		}
		if best == nil || c.loc[0] < best[0] {
			bestKind, best = rule.kind, c.loc
		}
	}
	return bestKind, best
}

// spanContent returns the whole match for URLs and the first captured group
// for delimited spans.
func spanContent(kind SpanKind, s string, loc []int) string {
	if kind == URL {
		return s[loc[0]:loc[1]]
	}
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] >= 0 {
			return s[loc[i]:loc[i+1]]
		}
	}
	return s[loc[0]:loc[1]]
}
