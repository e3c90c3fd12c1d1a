// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package store persists ledstrip configurations.
//
// A configuration is saved and loaded as a whole, in the packed form produced
// by Marshal.
package store

import (
	"context"

	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/support/fmtutil"
	"github.com/danjacques/goledstrip/support/logging"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Load when no configuration has been saved.
var ErrNotFound = errors.New("no stored configuration")

// Store loads and saves a single ledstrip configuration.
type Store interface {
	// Load returns the saved configuration, or ErrNotFound.
	Load(c context.Context) (ledstrip.Config, error)
	// Save replaces the saved configuration with cfg.
	Save(c context.Context, cfg *ledstrip.Config) error
	// Close releases the store's resources.
	Close() error
}

// LoadOrDefault loads the configuration from st, falling back to
// ledstrip.DefaultConfig if none has been saved.
func LoadOrDefault(c context.Context, st Store) (ledstrip.Config, error) {
	cfg, err := st.Load(c)
	switch errors.Cause(err) {
	case nil:
		return cfg, nil
	case ErrNotFound:
		return ledstrip.DefaultConfig(), nil
	default:
		return ledstrip.Config{}, err
	}
}

// logRecord emits the configured LEDs of cfg and its packed form at debug
// level.
func logRecord(logger logging.L, what string, cfg *ledstrip.Config, data []byte) {
	logger.Debugf("%s configuration (%d bytes packed):\n%s", what, len(data), fmtutil.Hex(data))
	for i, d := range cfg.LEDs {
		if d.IsConfigured() {
			w := d.Words()
			logger.Debugf("  LED %02d %s %s", i, fmtutil.Words(w[:]), d)
		}
	}
}
