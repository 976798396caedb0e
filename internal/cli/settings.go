package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/baaaaaaaka/termchat/internal/config"
	"github.com/baaaaaaaka/termchat/internal/logging"
	"github.com/baaaaaaaka/termchat/internal/markup"
)

// settings is the config file merged with command line overrides.
type settings struct {
	cfg     config.Config
	palette markup.Palette
	markup  markup.Options
	log     *zap.Logger
}

func loadSettings(root *rootOptions) (*settings, error) {
	store, err := config.NewStore(root.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}

	if root.logLevel != "" {
		cfg.LogLevel = root.logLevel
	}
	if root.logFile != "" {
		cfg.LogFile = root.logFile
	}
	if root.noItalic {
		off := false
		cfg.Italic = &off
	}

	logPath := cfg.LogFile
	if logPath == "" {
		if p, err := logging.DefaultPath(); err == nil {
			logPath = p
		}
	}
	log, err := logging.New(cfg.EffectiveLogLevel(), logPath)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	return &settings{
		cfg:     cfg,
		palette: cfg.EffectivePalette(),
		markup:  cfg.MarkupOptions(),
		log:     log,
	}, nil
}

func (s *settings) close() {
	_ = s.log.Sync()
}

// defaultTranscriptPath is used when no transcript argument is given.
func defaultTranscriptPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(base, "termchat", "transcript.jsonl"), nil
}

func resolveTranscriptPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return defaultTranscriptPath()
}
