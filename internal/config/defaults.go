package config

import (
	"strings"

	"github.com/TickyWill/BiblioMeter-sub001/internal/names"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
)

// Default values.
const (
	DefaultWorkers   = 4
	DefaultDelimiter = ","
	DefaultOutputDir = "results"
	DefaultDatabase  = "results/runs.db"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Defaults returns a configuration with every default filled in.
func Defaults() *Config {
	return &Config{
		Search: Search{
			Depth:   resolve.DefaultDepth,
			Workers: DefaultWorkers,
		},
		Names: Names{MinHyphenTokenLength: names.DefaultMinHyphenTokenLength},
		Inputs: Inputs{
			RegistryDir:  "registry",
			Authors:      "authors.csv",
			Publications: "publications.csv",
			Delimiter:    DefaultDelimiter,
		},
		Output: Output{
			Dir:      DefaultOutputDir,
			Database: DefaultDatabase,
		},
		Log: Log{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// normalize fills zero values a config file may have cleared.
func (c *Config) normalize() {
	if c.Search.Depth == 0 {
		c.Search.Depth = resolve.DefaultDepth
	}
	if c.Search.Workers == 0 {
		c.Search.Workers = DefaultWorkers
	}
	if c.Names.MinHyphenTokenLength == 0 {
		c.Names.MinHyphenTokenLength = names.DefaultMinHyphenTokenLength
	}
	if c.Inputs.Delimiter == "" {
		c.Inputs.Delimiter = DefaultDelimiter
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
