package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/TickyWill/BiblioMeter-sub001/internal/correction"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/roster"
	"github.com/TickyWill/BiblioMeter-sub001/internal/staff"
)

// Column names of the input tables.
const (
	ColStaffID          = "staff_id"
	ColLastName         = "last_name"
	ColFirstInitials    = "first_initials"
	ColNewLastName      = "new_last_name"
	ColNewFirstInitials = "new_first_initials"
	ColPubID            = "pub_id"
	ColAuthorIdx        = "author_idx"
	ColAuthor           = "author"
	ColPubYear          = "pub_year"
	ColYear             = "year"
	ColFirstAuthor      = "first_author"
	ColTitle            = "title"
	ColISSN             = "issn"
	ColDOI              = "doi"
)

// Loader reads the input tables.
type Loader struct {
	Delimiter rune
	// Attributes restricts the registry columns kept as staff attributes.
	// Empty keeps all of them.
	Attributes []string
}

// NewLoader returns a Loader for a one-character delimiter string.
func NewLoader(delimiter string, attributes []string) Loader {
	l := Loader{Delimiter: ',', Attributes: attributes}
	if r := []rune(delimiter); len(r) == 1 {
		l.Delimiter = r[0]
	}
	return l
}

func (l Loader) read(path string, required ...string) (*Table, error) {
	t, err := ReadTable(path, l.Delimiter)
	if err != nil {
		return nil, err
	}
	if err := t.Require(required...); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadRegistry reads a directory of <YYYY>.csv registry files. Files whose
// stem is not a 4-digit year are ignored.
func (l Loader) LoadRegistry(dir string) (*staff.Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading registry dir: %w", err)
	}

	byYear := make(map[string][]staff.Record)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		year := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !staff.ValidYear(year) {
			continue
		}

		t, err := l.read(filepath.Join(dir, e.Name()), ColStaffID, ColLastName, ColFirstInitials)
		if err != nil {
			return nil, err
		}
		skip := []string{ColStaffID, ColLastName, ColFirstInitials}
		records := make([]staff.Record, 0, len(t.Rows))
		for _, row := range t.Rows {
			records = append(records, staff.Record{
				StaffID:    t.Get(row, ColStaffID),
				LastName:   t.Get(row, ColLastName),
				Initials:   t.Get(row, ColFirstInitials),
				Attributes: t.Extra(row, skip, l.Attributes),
			})
		}
		byYear[year] = records
	}

	return staff.NewRegistry(byYear)
}

// RegistryYears lists the year files present in a registry directory,
// most recent first, without parsing them.
func RegistryYears(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading registry dir: %w", err)
	}
	var years []string
	for _, e := range entries {
		year := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") && staff.ValidYear(year) {
			years = append(years, year)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years, nil
}

// LoadAuthors reads the author-rows table. Names are left raw; see
// reference.Normalize.
func (l Loader) LoadAuthors(path string) ([]reference.AuthorRow, error) {
	t, err := l.read(path, ColPubID, ColAuthorIdx, ColAuthor, ColPubYear)
	if err != nil {
		return nil, err
	}

	rows := make([]reference.AuthorRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		idx, err := atoi(t, row, ColAuthorIdx, i)
		if err != nil {
			return nil, err
		}
		year, err := atoi(t, row, ColPubYear, i)
		if err != nil {
			return nil, err
		}
		rows = append(rows, reference.AuthorRow{
			PubID:     t.Get(row, ColPubID),
			AuthorIdx: idx,
			Author:    t.Get(row, ColAuthor),
			PubYear:   year,
		})
	}
	return rows, nil
}

// LoadPublications reads the publications table.
func (l Loader) LoadPublications(path string) ([]reference.Publication, error) {
	t, err := l.read(path, ColPubID, ColYear, ColFirstAuthor, ColTitle, ColISSN, ColDOI)
	if err != nil {
		return nil, err
	}

	pubs := make([]reference.Publication, 0, len(t.Rows))
	for i, row := range t.Rows {
		year, err := atoi(t, row, ColYear, i)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, reference.Publication{
			ID:          t.Get(row, ColPubID),
			Year:        year,
			FirstAuthor: t.Get(row, ColFirstAuthor),
			Title:       t.Get(row, ColTitle),
			ISSN:        t.Get(row, ColISSN),
			DOI:         t.Get(row, ColDOI),
		})
	}
	return pubs, nil
}

// LoadRoster reads a supplementary roster. An empty path yields nil.
func (l Loader) LoadRoster(kind roster.Kind, path string) (*roster.Roster, error) {
	if path == "" {
		return nil, nil
	}
	t, err := l.read(path, ColLastName, ColFirstInitials)
	if err != nil {
		return nil, err
	}

	skip := []string{ColLastName, ColFirstInitials}
	entries := make([]roster.Entry, 0, len(t.Rows))
	for _, row := range t.Rows {
		entries = append(entries, roster.Entry{
			LastName:   t.Get(row, ColLastName),
			Initials:   t.Get(row, ColFirstInitials),
			Attributes: t.Extra(row, skip, nil),
		})
	}
	return roster.New(kind, entries), nil
}

// LoadCorrections reads the three correction tables. Empty paths are skipped.
func (l Loader) LoadCorrections(spelling, metadata, removals string) (correction.Tables, error) {
	var tables correction.Tables

	if spelling != "" {
		t, err := l.read(spelling, ColLastName, ColFirstInitials, ColNewLastName, ColNewFirstInitials)
		if err != nil {
			return tables, err
		}
		for _, row := range t.Rows {
			tables.Spelling = append(tables.Spelling, correction.Spelling{
				From: correction.Key(t.Get(row, ColLastName), t.Get(row, ColFirstInitials)),
				To:   correction.Key(t.Get(row, ColNewLastName), t.Get(row, ColNewFirstInitials)),
			})
		}
	}

	if metadata != "" {
		t, err := l.read(metadata, ColPubYear, ColLastName, ColFirstInitials, ColNewLastName, ColNewFirstInitials)
		if err != nil {
			return tables, err
		}
		for i, row := range t.Rows {
			year, err := atoi(t, row, ColPubYear, i)
			if err != nil {
				return tables, err
			}
			tables.Metadata = append(tables.Metadata, correction.MetadataFix{
				PubYear: year,
				From:    correction.Key(t.Get(row, ColLastName), t.Get(row, ColFirstInitials)),
				To:      correction.Key(t.Get(row, ColNewLastName), t.Get(row, ColNewFirstInitials)),
			})
		}
	}

	if removals != "" {
		t, err := l.read(removals, ColLastName, ColFirstInitials)
		if err != nil {
			return tables, err
		}
		for _, row := range t.Rows {
			tables.Removals = append(tables.Removals, correction.Key(t.Get(row, ColLastName), t.Get(row, ColFirstInitials)))
		}
	}

	return tables, nil
}

// LoadHomonymChoices reads the homonym-choice table. An empty path yields nil.
func (l Loader) LoadHomonymChoices(path string) ([]correction.HomonymChoice, error) {
	if path == "" {
		return nil, nil
	}
	t, err := l.read(path, ColPubID, ColAuthorIdx, ColStaffID)
	if err != nil {
		return nil, err
	}

	choices := make([]correction.HomonymChoice, 0, len(t.Rows))
	for i, row := range t.Rows {
		idx, err := atoi(t, row, ColAuthorIdx, i)
		if err != nil {
			return nil, err
		}
		choices = append(choices, correction.HomonymChoice{
			PubID:     t.Get(row, ColPubID),
			AuthorIdx: idx,
			StaffID:   t.Get(row, ColStaffID),
		})
	}
	return choices, nil
}

// atoi parses an integer cell; i is the data row index (header excluded).
func atoi(t *Table, row []string, column string, i int) (int, error) {
	v := t.Get(row, column)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: row %d: invalid %s %q", t.Name, i+2, column, v)
	}
	return n, nil
}
