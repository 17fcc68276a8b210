package models

import (
	"net/url"
	"strings"
)

// Mode selects what a run produces
type Mode string

const (
	ModeInvites       Mode = "invites"        // one RSVP invitation per event
	ModeAggregate     Mode = "aggregate"      // one calendar per source
	ModeTeamCalendars Mode = "team-calendars" // one calendar per team
)

// Config holds application configuration
type Config struct {
	Sources         []ICalSource `yaml:"sources"`
	OutputDir       string       `yaml:"output_dir"`
	ExcludeKeywords []string     `yaml:"exclude_keywords,omitempty"` // nil = mode default
	UpdateInterval  int          `yaml:"update_interval"`            // minutes
	ListenAddr      string       `yaml:"listen_addr"`
	Workers         int          `yaml:"workers"`
	Log             LogConfig    `yaml:"log"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file,omitempty"` // rotating debug log, disabled when empty
	MaxSizeMB int    `yaml:"max_size_mb"`
	KeepDays  int    `yaml:"keep_days"`
}

// ICalSource represents a named iCal calendar source
type ICalSource struct {
	ID   string `yaml:"id"`   // Unique identifier, defaults to URL
	Name string `yaml:"name"` // Display name
	URL  string `yaml:"url"`  // iCal URL
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Sources:        []ICalSource{},
		OutputDir:      "invites",
		UpdateInterval: 30,
		ListenAddr:     ":8080",
		Workers:        4,
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
			KeepDays:  14,
		},
	}
}

// NeedsConfiguration returns true if the config needs initial setup
func (c *Config) NeedsConfiguration() bool {
	return len(c.Sources) == 0
}

// KeywordsFor returns the configured exclusion keywords, or the mode
// default when none are configured.
func (c *Config) KeywordsFor(mode Mode) []string {
	if c.ExcludeKeywords != nil {
		return c.ExcludeKeywords
	}
	return DefaultExcludeKeywords(mode)
}

// DefaultExcludeKeywords returns the keywords excluded when the caller gives none.
// Team calendars only drop school trainings; the other modes also skip the
// youngest age groups.
func DefaultExcludeKeywords(mode Mode) []string {
	if mode == ModeTeamCalendars {
		return []string{"Schultraining"}
	}
	return []string{"U9", "U10", "Schultraining"}
}

// SourceFromURL builds a source whose ID is the URL itself
func SourceFromURL(rawURL string) ICalSource {
	return ICalSource{ID: rawURL, Name: SourceName(rawURL), URL: rawURL}
}

// Validate checks if the iCal source has required fields
func (s *ICalSource) Validate() bool {
	return s.URL != ""
}

// Identifier returns the ID used to tag events of this source
func (s ICalSource) Identifier() string {
	if s.ID != "" {
		return s.ID
	}
	return s.URL
}

// SourceName derives a display name for a feed URL
func SourceName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "Calendar"
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "google"):
		return "Google Calendar"
	case strings.Contains(host, "vereinsplaner"):
		return "Vereinsplaner"
	}
	if stem := pathStem(u.Path); stem != "" {
		return stem
	}
	return "Calendar"
}

// pathStem returns the last path element without its extension
func pathStem(p string) string {
	base := p[strings.LastIndex(p, "/")+1:]
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
