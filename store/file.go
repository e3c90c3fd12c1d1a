// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/support/logging"
	"github.com/danjacques/goledstrip/support/stagingdir"

	"github.com/pkg/errors"
)

// File stores a configuration in a single file.
//
// Saves are atomic: readers observe either the previous or the new
// configuration, never a partial write.
type File struct {
	// Path is the path of the configuration file.
	Path string

	// Logger, if not nil, is the logger to use to log events.
	Logger logging.L
}

var _ Store = (*File)(nil)

// Load implements Store.
func (f *File) Load(c context.Context) (ledstrip.Config, error) {
	if err := c.Err(); err != nil {
		return ledstrip.Config{}, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledstrip.Config{}, ErrNotFound
		}
		return ledstrip.Config{}, errors.Wrapf(err, "read %q", f.Path)
	}

	cfg, err := Unmarshal(data)
	if err != nil {
		return ledstrip.Config{}, errors.Wrapf(err, "decode %q", f.Path)
	}
	logRecord(logging.Must(f.Logger), "Loaded", &cfg, data)
	return cfg, nil
}

// Save implements Store.
func (f *File) Save(c context.Context, cfg *ledstrip.Config) error {
	if err := c.Err(); err != nil {
		return err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	// Stage alongside the destination so the final rename stays on one
	// filesystem.
	sd, err := stagingdir.New(filepath.Dir(f.Path), ".ledstrip-staging")
	if err != nil {
		return err
	}
	defer func() {
		if err := sd.Destroy(); err != nil {
			logging.Must(f.Logger).Warnf("Failed to remove staging directory: %s", err)
		}
	}()

	name := filepath.Base(f.Path)
	if err := sd.WriteFile(name, data, 0644); err != nil {
		return err
	}
	if err := sd.Commit(name, f.Path); err != nil {
		return err
	}

	logRecord(logging.Must(f.Logger), "Saved", cfg, data)
	return nil
}

// Close implements Store.
func (f *File) Close() error { return nil }
