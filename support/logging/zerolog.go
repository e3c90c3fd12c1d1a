// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Zerolog returns an L that writes to zl.
func Zerolog(zl zerolog.Logger) L { return zerologL{zl} }

type zerologL struct {
	zl zerolog.Logger
}

func (l zerologL) Error(args ...interface{}) { l.zl.Error().Msg(fmt.Sprint(args...)) }
func (l zerologL) Warn(args ...interface{})  { l.zl.Warn().Msg(fmt.Sprint(args...)) }
func (l zerologL) Info(args ...interface{})  { l.zl.Info().Msg(fmt.Sprint(args...)) }
func (l zerologL) Debug(args ...interface{}) { l.zl.Debug().Msg(fmt.Sprint(args...)) }

func (l zerologL) Errorf(f string, args ...interface{}) { l.zl.Error().Msgf(f, args...) }
func (l zerologL) Warnf(f string, args ...interface{})  { l.zl.Warn().Msgf(f, args...) }
func (l zerologL) Infof(f string, args ...interface{})  { l.zl.Info().Msgf(f, args...) }
func (l zerologL) Debugf(f string, args ...interface{}) { l.zl.Debug().Msgf(f, args...) }

// Setup describes how a process-wide zerolog.Logger is built.
type Setup struct {
	// Level is a zerolog level name ("debug", "info", ...). Empty means "info".
	Level string
	// Format is "console" or "json". Empty means "console".
	Format string
	// Output is where logs are written. If nil, os.Stderr is used.
	Output io.Writer
}

// New builds a zerolog.Logger from s.
func (s *Setup) New() (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if s.Level != "" {
		var err error
		if level, err = zerolog.ParseLevel(strings.ToLower(s.Level)); err != nil {
			return zerolog.Nop(), errors.Wrapf(err, "invalid log level %q", s.Level)
		}
	}

	out := s.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(s.Format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	case "json":
	default:
		return zerolog.Nop(), errors.Errorf("unknown log format %q", s.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}
