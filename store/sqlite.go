// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/support/logging"

	// Registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DefaultProfile is the profile used by SQLite when none is specified.
const DefaultProfile = "default"

// SQLite stores named configuration profiles in a SQLite database.
type SQLite struct {
	db      *sql.DB
	profile string
	logger  logging.L
}

var _ Store = (*SQLite)(nil)

// SQLiteOptions configures OpenSQLite.
type SQLiteOptions struct {
	// Profile is the name of the configuration to load and save. If empty,
	// DefaultProfile is used.
	Profile string

	// Logger, if not nil, is the logger to use to log events.
	Logger logging.L
}

// OpenSQLite opens (creating if necessary) the database at path.
func OpenSQLite(path string, opts SQLiteOptions) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "open database %q", path)
	}
	// A single writer keeps saves serialized.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "initialize schema")
	}

	s := SQLite{
		db:      db,
		profile: opts.Profile,
		logger:  logging.Must(opts.Logger),
	}
	if s.profile == "" {
		s.profile = DefaultProfile
	}
	return &s, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ledstrip_config (
			profile TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	return err
}

// Profile returns the name of the profile this store reads and writes.
func (s *SQLite) Profile() string { return s.profile }

// Load implements Store.
func (s *SQLite) Load(c context.Context) (ledstrip.Config, error) {
	var data []byte
	err := s.db.QueryRowContext(c, `
		SELECT payload FROM ledstrip_config WHERE profile = ?
	`, s.profile).Scan(&data)
	switch {
	case err == sql.ErrNoRows:
		return ledstrip.Config{}, ErrNotFound
	case err != nil:
		return ledstrip.Config{}, errors.Wrapf(err, "query profile %q", s.profile)
	}

	cfg, err := Unmarshal(data)
	if err != nil {
		return ledstrip.Config{}, errors.Wrapf(err, "decode profile %q", s.profile)
	}
	logRecord(s.logger, "Loaded", &cfg, data)
	return cfg, nil
}

// Save implements Store.
func (s *SQLite) Save(c context.Context, cfg *ledstrip.Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Unix()
	_, err = s.db.ExecContext(c, `
		INSERT INTO ledstrip_config (profile, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, s.profile, data, now, now)
	if err != nil {
		return errors.Wrapf(err, "save profile %q", s.profile)
	}

	logRecord(s.logger, "Saved", cfg, data)
	return nil
}

// Profiles lists every saved profile name, in order.
func (s *SQLite) Profiles(c context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(c, `SELECT profile FROM ledstrip_config ORDER BY profile`)
	if err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scan profile")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the profile. It returns false if nothing was saved.
func (s *SQLite) Delete(c context.Context) (bool, error) {
	res, err := s.db.ExecContext(c, `DELETE FROM ledstrip_config WHERE profile = ?`, s.profile)
	if err != nil {
		return false, errors.Wrapf(err, "delete profile %q", s.profile)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Close implements Store.
func (s *SQLite) Close() error { return s.db.Close() }
