// Package transcript stores chat messages as JSON Lines, one message per
// line, and feeds them to the scroll-back buffer.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/baaaaaaaka/termchat/internal/scrollback"
)

type Author struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	TopRole     string `json:"topRole,omitempty"`
}

type Message struct {
	ID         string    `json:"id,omitempty"`
	Time       time.Time `json:"time"`
	Author     *Author   `json:"author,omitempty"`
	Body       string    `json:"text"`
	Attachment string    `json:"attachment,omitempty"`
}

func (m Message) AuthorName() string {
	if m.Author == nil {
		return scrollback.UnknownAuthor
	}
	return scrollback.AuthorLabel(m.Author.DisplayName, m.Author.Name)
}

func (m Message) TopRole() string {
	if m.Author == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(m.Author.TopRole))
}

// Text is the message body with an attachment note on its own line.
func (m Message) Text() string {
	if m.Attachment == "" {
		return m.Body
	}
	note := "[file] " + filepath.Base(m.Attachment)
	if m.Body == "" {
		return note
	}
	return m.Body + "\n" + note
}

// Result is what a read produced. Offset is the byte position just after the
// last complete line; a partially written final line is left for later.
type Result struct {
	Messages []Message
	Offset   int64
	Skipped  int
}

// Read loads the last maxMessages messages of the transcript at path
// (all of them when maxMessages <= 0). A missing file reads as empty.
func Read(path string, maxMessages int) (Result, error) {
	return ReadFrom(path, 0, maxMessages)
}

// ReadFrom reads complete lines starting at byte offset. When the file is
// shorter than offset it was truncated, and reading restarts at 0.
func ReadFrom(path string, offset int64, maxMessages int) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, nil
		}
		return Result{}, err
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return Result{}, err
	}

	res := Result{Offset: offset}
	reader := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return res, err
		}
		if err == io.EOF {
			// Incomplete trailing line: not consumed.
			break
		}
		res.Offset += int64(len(line))
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		msg, ok := parseLine(line)
		if !ok {
			res.Skipped++
			continue
		}
		appendMessage(&res.Messages, msg, maxMessages)
	}
	return res, nil
}

func appendMessage(ring *[]Message, msg Message, maxMessages int) {
	if maxMessages > 0 && len(*ring) >= maxMessages {
		*ring = append((*ring)[1:], msg)
		return
	}
	*ring = append(*ring, msg)
}

func parseLine(line []byte) (Message, bool) {
	var msg Message
	if json.Unmarshal(line, &msg) != nil {
		return Message{}, false
	}
	if msg.Body == "" && msg.Attachment == "" {
		return Message{}, false
	}
	return msg, true
}
