package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/baaaaaaaka/termchat/internal/ids"
)

// ErrBadAttachment means an attachment path could not be resolved to a
// readable regular file.
var ErrBadAttachment = errors.New("bad filepath")

var userHomeDir = os.UserHomeDir

// Append writes msg as one JSON line at the end of the transcript. Writers
// on the same file are serialized with a lock file. Missing ID and Time are
// filled in.
func Append(path string, msg Message) (Message, error) {
	if msg.ID == "" {
		id, err := ids.New()
		if err != nil {
			return Message{}, err
		}
		msg.ID = id
	}
	if msg.Time.IsZero() {
		msg.Time = time.Now().UTC()
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return Message{}, fmt.Errorf("marshal message: %w", err)
	}
	b = append(b, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Message{}, fmt.Errorf("create transcript dir: %w", err)
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return Message{}, fmt.Errorf("lock transcript: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Message{}, fmt.Errorf("open transcript: %w", err)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return Message{}, fmt.Errorf("write transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		return Message{}, fmt.Errorf("close transcript: %w", err)
	}
	return msg, nil
}

// ResolveAttachment returns an absolute path for p. It tries p as given and
// then relative to the user's home directory.
func ResolveAttachment(p string) (string, error) {
	if p == "" {
		return "", ErrBadAttachment
	}
	candidates := []string{p}
	if !filepath.IsAbs(p) {
		if home, err := userHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, p))
		}
	}
	for _, c := range candidates {
		st, err := os.Stat(c)
		if err != nil || !st.Mode().IsRegular() {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		return abs, nil
	}
	return "", fmt.Errorf("%w: %s", ErrBadAttachment, p)
}
