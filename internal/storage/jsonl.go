// Package storage reads the input tables and persists resolution results as
// JSONL files and a SQLite run store.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TickyWill/BiblioMeter-sub001/internal/fingerprint"
	"github.com/TickyWill/BiblioMeter-sub001/internal/reference"
	"github.com/TickyWill/BiblioMeter-sub001/internal/resolve"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// Output file names written by WriteOutputs.
const (
	SubmittedFile    = "submitted.jsonl"
	OrphansFile      = "orphans.jsonl"
	FingerprintsFile = "fingerprints.jsonl"
	HomonymsFile     = "homonyms.jsonl"
)

// ReadJSONL reads all values from a JSONL file. A missing file yields an
// empty slice.
func ReadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		out = append(out, v)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	return out, nil
}

// WriteJSONL writes values to a JSONL file atomically (temp file + rename).
func WriteJSONL[T any](path string, values []T) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmpFile)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, v := range values {
		if err := enc.Encode(v); err != nil {
			tmpFile.Close()
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	success = true
	return nil
}

// Outputs groups the result sets written to the output directory.
type Outputs struct {
	Submitted    []resolve.Submission
	Orphans      []reference.AuthorRow
	Fingerprints []fingerprint.Entry
	Homonyms     []resolve.Submission
}

// WriteOutputs writes every result set as JSONL under dir.
func WriteOutputs(dir string, out Outputs) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := WriteJSONL(filepath.Join(dir, SubmittedFile), out.Submitted); err != nil {
		return err
	}
	if err := WriteJSONL(filepath.Join(dir, OrphansFile), out.Orphans); err != nil {
		return err
	}
	if err := WriteJSONL(filepath.Join(dir, FingerprintsFile), out.Fingerprints); err != nil {
		return err
	}
	return WriteJSONL(filepath.Join(dir, HomonymsFile), out.Homonyms)
}
