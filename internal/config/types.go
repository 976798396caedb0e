package config

const CurrentVersion = 1

const (
	DefaultCapacity         = 100
	DefaultLogLevel         = "info"
	DefaultFollowDebounceMS = 100
)

type Config struct {
	Version int `json:"version"`
	// Capacity is how many messages the scroll-back keeps.
	Capacity int `json:"capacity,omitempty"`
	// Italic is nil when unset; the terminal is then assumed to support it.
	Italic           *bool    `json:"italic,omitempty"`
	Palette          []string `json:"palette,omitempty"`
	LogLevel         string   `json:"logLevel,omitempty"`
	LogFile          string   `json:"logFile,omitempty"`
	FollowDebounceMS int      `json:"followDebounceMs,omitempty"`
}
