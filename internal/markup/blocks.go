package markup

import "strings"

const fence = "```"

// BlockKind classifies a block of normalized message text.
type BlockKind int

const (
	Paragraph BlockKind = iota
	CodeFence
	BlankLine
)

func (k BlockKind) String() string {
	switch k {
	case Paragraph:
		return "paragraph"
	case CodeFence:
		return "codefence"
	case BlankLine:
		return "blankline"
	default:
		return "unknown"
	}
}

// Block is one block-level segment. Text keeps its trailing newline.
type Block struct {
	Kind BlockKind
	Text string
}

// Normalize isolates every code fence delimiter onto its own line and makes
// sure non-empty text ends with a newline.
func Normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var lines []string
	for _, line := range splitLines(raw) {
		if line == fence || !strings.Contains(line, fence) {
			lines = append(lines, line)
			continue
		}
		for i, seg := range strings.Split(line, fence) {
			if i > 0 {
				lines = append(lines, fence)
				seg = strings.TrimLeft(seg, " \t")
			}
			if seg != "" {
				lines = append(lines, seg)
			}
		}
	}

	out := strings.Join(lines, "\n")
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// splitLines splits on newlines and drops the empty tail left by a final
// newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Blocks segments normalized text into paragraphs, code fences and blank
// lines. An unterminated fence runs to the end of the text.
func Blocks(normalized string) []Block {
	var (
		blocks []Block
		para   []string
		code   []string
		inCode bool
	)
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		blocks = append(blocks, Block{Kind: Paragraph, Text: strings.Join(para, "\n") + "\n"})
		para = nil
	}
	flushCode := func() {
		if len(code) > 0 {
			blocks = append(blocks, Block{Kind: CodeFence, Text: strings.Join(code, "\n") + "\n"})
		}
		code = nil
	}

	for _, line := range splitLines(normalized) {
		if inCode {
			if line == fence {
				flushCode()
				inCode = false
				continue
			}
			code = append(code, line)
			continue
		}
		switch {
		case line == fence:
			flushPara()
			inCode = true
		case strings.TrimSpace(line) == "":
			flushPara()
			blocks = append(blocks, Block{Kind: BlankLine, Text: "\n"})
		default:
			para = append(para, line)
		}
	}
	flushPara()
	if inCode {
		flushCode()
	}
	return blocks
}
