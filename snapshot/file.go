// Package snapshot persists schema snapshots as YAML documents.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/shibukawa/mysqltools"
)

// Sentinel errors
var (
	ErrSnapshotRead  = errors.New("failed to read schema snapshot")
	ErrSnapshotWrite = errors.New("failed to write schema snapshot")
)

// TimestampLayout is the time part of generated snapshot file names.
const TimestampLayout = "Mon_02_Jan_2006_15_04_05"

// File is the on-disk form of a snapshot.
type File struct {
	Database string              `yaml:"database"`
	TakenAt  time.Time           `yaml:"taken_at"`
	Tables   mysqltools.Snapshot `yaml:"tables"`
}

// FileName returns "<database>_<timestamp>.yaml" with the timestamp in UTC.
func FileName(database string, now time.Time) string {
	return database + "_" + now.UTC().Format(TimestampLayout) + ".yaml"
}

// Write stores file in dir under a generated name and returns the full path.
func Write(dir string, file File) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create directory %s: %w", ErrSnapshotWrite, dir, err)
	}

	path := filepath.Join(dir, FileName(file.Database, file.TakenAt))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSnapshotWrite, err)
	}
	defer f.Close()

	if err := Encode(f, file); err != nil {
		return "", err
	}

	return path, nil
}

// Encode writes file as YAML.
func Encode(w io.Writer, file File) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()

	if file.Tables == nil {
		file.Tables = mysqltools.Snapshot{}
	}

	if err := encoder.Encode(file); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotWrite, err)
	}

	return nil
}

// Read loads a snapshot written by Write.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotRead, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSnapshotRead, path, err)
	}

	if file.Tables == nil {
		file.Tables = mysqltools.Snapshot{}
	}

	return &file, nil
}
