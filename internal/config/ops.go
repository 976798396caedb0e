package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/baaaaaaaka/termchat/internal/markup"
)

// maxPaletteColors is the largest color index a markup.Style can carry.
const maxPaletteColors = 0xff

// Default returns a config with every optional field filled in.
func Default() Config {
	italic := true
	return Config{
		Version:          CurrentVersion,
		Capacity:         DefaultCapacity,
		Italic:           &italic,
		Palette:          append([]string(nil), markup.DefaultPalette...),
		LogLevel:         DefaultLogLevel,
		FollowDebounceMS: DefaultFollowDebounceMS,
	}
}

func (c Config) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be at least 1, got %d", c.Capacity)
	}
	if c.FollowDebounceMS < 0 {
		return fmt.Errorf("followDebounceMs must not be negative, got %d", c.FollowDebounceMS)
	}
	seen := map[string]bool{}
	for _, name := range c.Palette {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return fmt.Errorf("palette contains an empty color name")
		}
		if seen[key] {
			return fmt.Errorf("palette color %q listed twice", name)
		}
		seen[key] = true
	}
	if n := len(c.EffectivePalette()); n > maxPaletteColors {
		return fmt.Errorf("palette has %d colors with the defaults added, at most %d allowed", n, maxPaletteColors)
	}
	return nil
}

func (c Config) EffectiveCapacity() int {
	if c.Capacity <= 0 {
		return DefaultCapacity
	}
	return c.Capacity
}

func (c Config) ItalicEnabled() bool {
	return c.Italic == nil || *c.Italic
}

// EffectivePalette always contains the default colors; configured names
// come first so they keep stable indexes.
func (c Config) EffectivePalette() markup.Palette {
	out := markup.Palette{}
	seen := map[string]bool{}
	add := func(name string) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, key)
	}
	for _, name := range c.Palette {
		add(name)
	}
	for _, name := range markup.DefaultPalette {
		add(name)
	}
	return out
}

func (c Config) EffectiveLogLevel() string {
	if strings.TrimSpace(c.LogLevel) == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

func (c Config) FollowDebounce() time.Duration {
	ms := c.FollowDebounceMS
	if ms <= 0 {
		ms = DefaultFollowDebounceMS
	}
	return time.Duration(ms) * time.Millisecond
}

// MarkupOptions builds tokenizer options from the palette and italic flag.
func (c Config) MarkupOptions() markup.Options {
	return markup.Options{
		Colors: c.EffectivePalette().ColorMap(),
		Italic: c.ItalicEnabled(),
	}
}
