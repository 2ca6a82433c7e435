// Package config handles workspace configuration: institute parameters,
// search settings, and the locations of input tables and outputs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the workspace configuration, stored as bibliometer.yml or
// bibliometer.toml.
type Config struct {
	Institute Institute `yaml:"institute" toml:"institute"`
	Search    Search    `yaml:"search" toml:"search"`
	Names     Names     `yaml:"names" toml:"names"`
	Inputs    Inputs    `yaml:"inputs" toml:"inputs"`
	Output    Output    `yaml:"output" toml:"output"`
	Log       Log       `yaml:"log" toml:"log"`
}

// Institute holds institute-specific parameters.
type Institute struct {
	Name                 string   `yaml:"name" toml:"name"`
	Institutions         []string `yaml:"institutions" toml:"institutions"`
	MainInstitutionIndex int      `yaml:"main_institution_index" toml:"main_institution_index"`
	// AffiliationColumns restricts the registry columns carried as staff
	// attributes. Empty keeps every extra column.
	AffiliationColumns []string `yaml:"affiliation_columns,omitempty" toml:"affiliation_columns,omitempty"`
}

// MainInstitution returns the institution reports are produced for.
func (i Institute) MainInstitution() string {
	if i.MainInstitutionIndex < 0 || i.MainInstitutionIndex >= len(i.Institutions) {
		return ""
	}
	return i.Institutions[i.MainInstitutionIndex]
}

// Search configures the registry search.
type Search struct {
	Depth      int      `yaml:"depth" toml:"depth"`
	Workers    int      `yaml:"workers" toml:"workers"`
	TraceNames []string `yaml:"trace_names,omitempty" toml:"trace_names,omitempty"` // "LAST INITIALS" keys to trace
}

// Names configures display-name normalization.
type Names struct {
	MinHyphenTokenLength int `yaml:"min_hyphen_token_length" toml:"min_hyphen_token_length"`
}

// Inputs locates the input tables. Relative paths resolve against the
// config file's directory.
type Inputs struct {
	RegistryDir     string `yaml:"registry_dir" toml:"registry_dir"`
	Authors         string `yaml:"authors" toml:"authors"`
	Publications    string `yaml:"publications" toml:"publications"`
	TemporaryRoster string `yaml:"temporary_roster,omitempty" toml:"temporary_roster,omitempty"`
	ExternalRoster  string `yaml:"external_roster,omitempty" toml:"external_roster,omitempty"`
	Spelling        string `yaml:"spelling_corrections,omitempty" toml:"spelling_corrections,omitempty"`
	Metadata        string `yaml:"metadata_corrections,omitempty" toml:"metadata_corrections,omitempty"`
	Removals        string `yaml:"removals,omitempty" toml:"removals,omitempty"`
	HomonymChoices  string `yaml:"homonym_choices,omitempty" toml:"homonym_choices,omitempty"`
	Delimiter       string `yaml:"delimiter" toml:"delimiter"`
}

// Output locates the results.
type Output struct {
	Dir      string `yaml:"dir" toml:"dir"`
	Database string `yaml:"database" toml:"database"`
}

// Log configures the CLI logger.
type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // console or json
}

// File names searched for by Find, in order.
var FileNames = []string{"bibliometer.yml", "bibliometer.yaml", "bibliometer.toml"}

// ErrConfigNotFound is returned by Find when no config file exists up the tree.
var ErrConfigNotFound = errors.New("no bibliometer config found")

// Find walks up from start looking for a config file.
// Returns the config file path.
func Find(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		for _, name := range FileNames {
			candidate := filepath.Join(abs, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrConfigNotFound
		}
		abs = parent
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a config file over the defaults and resolves relative paths
// against the file's directory. The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Defaults()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.normalize()
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Save writes the configuration, choosing the format from the extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// resolvePaths makes every configured path absolute relative to base.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{
		&c.Inputs.RegistryDir, &c.Inputs.Authors, &c.Inputs.Publications,
		&c.Inputs.TemporaryRoster, &c.Inputs.ExternalRoster,
		&c.Inputs.Spelling, &c.Inputs.Metadata, &c.Inputs.Removals,
		&c.Inputs.HomonymChoices,
		&c.Output.Dir, &c.Output.Database,
	} {
		if *p == "" {
			continue
		}
		expanded := ExpandPath(*p)
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(base, expanded)
		}
		*p = expanded
	}
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
