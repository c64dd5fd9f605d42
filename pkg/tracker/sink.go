package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultOutputPath is where the usage map is written unless configured.
const DefaultOutputPath = "resource_usage_map.json"

// Sink persists a finished usage map.
type Sink interface {
	Write(u *UsageMap) error
}

// FileSink writes the usage map as indented JSON, replacing any previous file.
type FileSink struct {
	Path string
}

// Write encodes u with four-space indentation and renames it into place.
func (s FileSink) Write(u *UsageMap) error {
	data, err := Encode(u)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", s.Path, err)
	}
	return nil
}

// Encode renders u exactly as FileSink writes it.
func Encode(u *UsageMap) ([]byte, error) {
	compact, err := u.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "    "); err != nil {
		return nil, fmt.Errorf("indenting usage map: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ReadFile loads a usage map written by FileSink.
func ReadFile(path string) (*UsageMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a usage map document.
func Decode(data []byte) (*UsageMap, error) {
	u := NewUsageMap()
	if err := json.Unmarshal(data, u); err != nil {
		return nil, err
	}
	return u, nil
}
