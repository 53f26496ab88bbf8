// Package tuning overlays a YAML tuning file onto the default game options.
//
// Only keys present in the file change; map-valued settings such as
// harsh_prob merge key by key, list-valued settings replace the default list.
package tuning

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"rigtycoon/internal/game"

	"gopkg.in/yaml.v3"
)

type document struct {
	StartDate    string `yaml:"start_date"`
	game.Options `yaml:",inline"`
}

// Load reads path and applies it over base. An empty path returns base
// unchanged after validation.
func Load(path string, base game.Options) (game.Options, error) {
	if strings.TrimSpace(path) == "" {
		return base, base.Validate()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	opts, err := Apply(raw, base)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return opts, nil
}

func Apply(raw []byte, base game.Options) (game.Options, error) {
	doc := document{Options: base}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("tuning: %w", err)
	}
	opts := doc.Options
	opts.Logger = base.Logger
	if doc.StartDate != "" {
		d, err := time.Parse("2006-01-02", doc.StartDate)
		if err != nil {
			return base, fmt.Errorf("tuning: start_date: %w", err)
		}
		opts.StartDate = d
	}
	if err := opts.Validate(); err != nil {
		return base, err
	}
	return opts, nil
}
