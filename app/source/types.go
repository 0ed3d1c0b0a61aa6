package source

import "time"

type Kind string

const (
	KindFeed Kind = "feed"
	KindOPML Kind = "opml"
)

type Config struct {
	Name     string         `yaml:"-"`
	URL      string         `yaml:"url,omitempty"`
	Path     string         `yaml:"path,omitempty"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters,omitempty"`
}

type ConfigSettings struct {
	Enabled         bool   `yaml:"enabled"`
	Kind            Kind   `yaml:"kind,omitempty"`
	Encoding        string `yaml:"encoding,omitempty"`
	RefreshInterval int    `yaml:"refresh_interval,omitempty"`
	MaxItems        int    `yaml:"max_items,omitempty"`
	Timeout         int    `yaml:"timeout,omitempty"`
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes,omitempty"`
	Excludes []string `yaml:"excludes,omitempty"`
}

// Location returns where the source document is read from: the URL when
// present, otherwise the local path.
func (c *Config) Location() string {
	if c.URL != "" {
		return c.URL
	}
	return c.Path
}

func (c *Config) RefreshEvery() time.Duration {
	return time.Duration(c.Settings.RefreshInterval) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Settings.Timeout) * time.Second
}
