// Package savefile reads and writes versioned game saves. Saves are JSON,
// optionally zstd-compressed when the path ends in .zst, and are validated
// against the embedded schema before any decoding into game types.
package savefile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	CurrentVersion = 1
	schemaURL      = "https://rigtycoon.local/schema/save_v1.json"
)

var (
	ErrSchema             = errors.New("save does not match schema")
	ErrUnsupportedVersion = errors.New("unsupported save version")
)

//go:embed save_v1.schema.json
var schemaV1 []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaV1)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Version peeks at save_version without decoding the rest.
func Version(raw []byte) (int, error) {
	var head struct {
		SaveVersion *int `json:"save_version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if head.SaveVersion == nil {
		return 0, fmt.Errorf("%w: missing save_version", ErrSchema)
	}
	return *head.SaveVersion, nil
}

// Validate checks the version and then the full document against the schema.
func Validate(raw []byte) error {
	v, err := Version(raw)
	if err != nil {
		return err
	}
	if v != CurrentVersion {
		return fmt.Errorf("%w: %d (this build reads %d)", ErrUnsupportedVersion, v, CurrentVersion)
	}
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("compile save schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Write stores raw at path through a temp file and rename, so a crash never
// leaves a half-written save behind.
func Write(path string, raw []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := encode(tmp, raw, compressed(path)); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func encode(w io.Writer, raw []byte, compress bool) error {
	if !compress {
		_, err := w.Write(raw)
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(raw); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Read loads and validates the save at path, returning its JSON bytes.
func Read(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		r = dec
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := Validate(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}
