// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package stagingdir stages files in a private temporary directory and
// publishes them atomically.
package stagingdir

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// D manages a staging directory.
//
// Files are written into D, then individually committed into place with an
// atomic rename. When finished, D is destroyed along with anything that was
// not committed.
//
// The staging directory must be on the same filesystem as every commit
// destination.
type D struct {
	// path is the path of the staging directory.
	path string
}

// New creates a new staging directory underneath of tempDir, named with the
// specified prefix.
func New(tempDir, prefix string) (*D, error) {
	stagingPath, err := os.MkdirTemp(tempDir, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "create staging directory")
	}
	return &D{path: stagingPath}, nil
}

// Path returns the path of name within the staging directory.
func (sd *D) Path(name string) string {
	if sd.path == "" {
		panic("staging directory has been destroyed")
	}
	return filepath.Join(sd.path, name)
}

// WriteFile writes data to name within the staging directory and syncs it to
// stable storage.
func (sd *D) WriteFile(name string, data []byte, perm os.FileMode) error {
	fd, err := os.OpenFile(sd.Path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return errors.Wrapf(err, "create staged file %q", name)
	}

	if _, err := fd.Write(data); err != nil {
		_ = fd.Close()
		return errors.Wrapf(err, "write staged file %q", name)
	}
	if err := fd.Sync(); err != nil {
		_ = fd.Close()
		return errors.Wrapf(err, "sync staged file %q", name)
	}
	return fd.Close()
}

// Commit atomically moves the staged file name to dest, replacing anything
// already there.
func (sd *D) Commit(name, dest string) error {
	src := sd.Path(name)
	if err := os.Rename(src, dest); err != nil {
		return errors.Wrapf(err, "moving staged file into place (%q => %q)", src, dest)
	}
	return nil
}

// Destroy purges the staging directory and its contents.
func (sd *D) Destroy() error {
	if sd.path == "" {
		// There is nothing to destroy.
		return nil
	}

	if err := os.RemoveAll(sd.path); err != nil {
		return err
	}
	sd.path = ""
	return nil
}
