package transcript

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FollowConfig configures a Follower.
type FollowConfig struct {
	Path string
	// Offset is where reading resumes, normally Result.Offset of the
	// initial Read.
	Offset   int64
	Debounce time.Duration
	Logger   *zap.Logger
}

// Follower tails a transcript file and delivers messages appended to it.
type Follower struct {
	fsWatcher *fsnotify.Watcher
	path      string
	offset    int64
	debounce  time.Duration
	log       *zap.Logger
	batches   chan []Message
	errs      chan error
	done      chan struct{}
	stopOnce  sync.Once
}

const DefaultDebounce = 100 * time.Millisecond

func NewFollower(cfg FollowConfig) (*Follower, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("resolve transcript path: %w", err)
	}
	return &Follower{
		fsWatcher: fsw,
		path:      path,
		offset:    cfg.Offset,
		debounce:  cfg.Debounce,
		log:       log.Named("follow"),
		batches:   make(chan []Message),
		errs:      make(chan error, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start watches the transcript's directory so the file may be created later.
// Each batch on the returned channel holds the messages of one debounced
// change, in file order.
func (f *Follower) Start() (<-chan []Message, error) {
	dir := filepath.Dir(f.path)
	if err := f.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	go f.loop()
	return f.batches, nil
}

// Errors reports read and watch failures. Only the latest unread error is
// kept.
func (f *Follower) Errors() <-chan error { return f.errs }

func (f *Follower) Stop() error {
	var err error
	f.stopOnce.Do(func() {
		close(f.done)
		err = f.fsWatcher.Close()
	})
	return err
}

func (f *Follower) loop() {
	var (
		timer   *time.Timer
		pending bool
	)
	defer close(f.batches)

	for {
		select {
		case event, ok := <-f.fsWatcher.Events:
			if !ok {
				return
			}
			if !f.isRelevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(f.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(f.debounce)
			}
			pending = true

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				pending = false
				if !f.poll() {
					return
				}
			}

		case err, ok := <-f.fsWatcher.Errors:
			if !ok {
				return
			}
			f.report(err)

		case <-f.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// poll reads new lines and delivers them. It returns false once stopped.
func (f *Follower) poll() bool {
	res, err := ReadFrom(f.path, f.offset, 0)
	if err != nil {
		f.report(fmt.Errorf("read transcript: %w", err))
		return true
	}
	if res.Offset < f.offset {
		f.log.Info("transcript truncated, rereading", zap.String("path", f.path))
	}
	f.offset = res.Offset
	if res.Skipped > 0 {
		f.log.Warn("skipped malformed lines", zap.Int("count", res.Skipped))
	}
	if len(res.Messages) == 0 {
		return true
	}
	f.log.Debug("new messages", zap.Int("count", len(res.Messages)), zap.Int64("offset", f.offset))
	select {
	case f.batches <- res.Messages:
		return true
	case <-f.done:
		return false
	}
}

func (f *Follower) report(err error) {
	f.log.Warn("follow error", zap.Error(err))
	select {
	case <-f.errs:
	default:
	}
	select {
	case f.errs <- err:
	default:
	}
}

func (f *Follower) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == f.path
}
