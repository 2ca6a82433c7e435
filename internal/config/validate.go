package config

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// ValidLogLevels and ValidLogFormats list the accepted log settings.
var (
	ValidLogLevels  = []string{"debug", "info", "warn", "error"}
	ValidLogFormats = []string{"console", "json"}
)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Search.Depth < 1 {
		errs = append(errs, fmt.Errorf("search.depth must be >= 1, got %d", c.Search.Depth))
	}
	if c.Search.Workers < 1 {
		errs = append(errs, fmt.Errorf("search.workers must be >= 1, got %d", c.Search.Workers))
	}
	if c.Names.MinHyphenTokenLength < 1 {
		errs = append(errs, fmt.Errorf("names.min_hyphen_token_length must be >= 1, got %d", c.Names.MinHyphenTokenLength))
	}
	if len(c.Institute.Institutions) > 0 &&
		(c.Institute.MainInstitutionIndex < 0 || c.Institute.MainInstitutionIndex >= len(c.Institute.Institutions)) {
		errs = append(errs, fmt.Errorf("institute.main_institution_index %d out of range (0-%d)",
			c.Institute.MainInstitutionIndex, len(c.Institute.Institutions)-1))
	}
	if utf8.RuneCountInString(c.Inputs.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("inputs.delimiter must be a single character, got %q", c.Inputs.Delimiter))
	}
	if c.Inputs.Authors == "" {
		errs = append(errs, errors.New("inputs.authors is required"))
	}
	if c.Inputs.RegistryDir == "" {
		errs = append(errs, errors.New("inputs.registry_dir is required"))
	}
	if !contains(ValidLogLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("invalid log.level: %s (valid: %v)", c.Log.Level, ValidLogLevels))
	}
	if !contains(ValidLogFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("invalid log.format: %s (valid: %v)", c.Log.Format, ValidLogFormats))
	}

	return errors.Join(errs...)
}

// ValidateInputs checks that the configured input files exist. Optional
// inputs are checked only when set.
func (c *Config) ValidateInputs() error {
	var errs []error

	if err := requireDir(c.Inputs.RegistryDir); err != nil {
		errs = append(errs, fmt.Errorf("inputs.registry_dir: %w", err))
	}
	for name, path := range map[string]string{
		"inputs.authors":              c.Inputs.Authors,
		"inputs.publications":         c.Inputs.Publications,
		"inputs.temporary_roster":     c.Inputs.TemporaryRoster,
		"inputs.external_roster":      c.Inputs.ExternalRoster,
		"inputs.spelling_corrections": c.Inputs.Spelling,
		"inputs.metadata_corrections": c.Inputs.Metadata,
		"inputs.removals":             c.Inputs.Removals,
		"inputs.homonym_choices":      c.Inputs.HomonymChoices,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			errs = append(errs, fmt.Errorf("%s: path does not exist: %s", name, path))
		}
	}

	return errors.Join(errs...)
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
