// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package ledsim defines the logic for the "ledsim" simulator app.
//
// The simulator drives a LED strip from scripted vehicle telemetry and shows
// the result in the terminal. The strip configuration is read from a YAML
// file and may be persisted to a file or SQLite store. Frames can be recorded
// to a frame log and played back later.
package ledsim

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/danjacques/goledstrip/driver/framelog"
	"github.com/danjacques/goledstrip/driver/preview"
	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/pixel"
	"github.com/danjacques/goledstrip/store"
	"github.com/danjacques/goledstrip/support/logging"
	"github.com/danjacques/goledstrip/vehicle"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

// Options are the simulator's command-line options.
type Options struct {
	// ConfigPath is the YAML configuration file. If empty, DefaultConfig is
	// used.
	ConfigPath string

	// Store, StorePath, and Profile override the configured store.
	Store     StoreKind
	StorePath string
	Profile   string
	// Reset applies the file configuration even if the store holds one.
	Reset bool
	// Save writes the strip configuration to the store before rendering.
	Save bool

	// Record is the path of a frame log to record to.
	Record string
	// Play is the path of a frame log to play back instead of simulating.
	Play string
	// Speed scales playback time.
	Speed float64

	// Preview draws frames on the terminal.
	Preview bool
	// Screen is the terminal to preview on. If nil, the process terminal is
	// used.
	Screen tcell.Screen

	// Duration, if > 0, stops the simulator after this long.
	Duration time.Duration
	// MetricsAddr, if not empty, is the address to serve Prometheus metrics on.
	MetricsAddr string

	// LogLevel overrides the configured log level.
	LogLevel string
	// LogOutput, if not nil, receives log output.
	LogOutput io.Writer
}

func (o *Options) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigPath, "config", "c", "", "YAML configuration file.")
	fs.Var(&o.Store, "store", "Configuration store: none, file, or sqlite.")
	fs.StringVar(&o.StorePath, "store-path", "", "Path of the configuration store.")
	fs.StringVar(&o.Profile, "profile", "", "SQLite store profile.")
	fs.BoolVar(&o.Reset, "reset", false, "Apply the file configuration even if one is stored.")
	fs.BoolVar(&o.Save, "save", false, "Save the strip configuration to the store.")
	fs.StringVar(&o.Record, "record", "", "Record frames to this frame log.")
	fs.StringVar(&o.Play, "play", "", "Play back this frame log instead of simulating.")
	fs.Float64Var(&o.Speed, "speed", 1, "Playback speed.")
	fs.BoolVarP(&o.Preview, "preview", "p", false, "Draw the strip in the terminal.")
	fs.DurationVarP(&o.Duration, "duration", "d", 0, "Stop after this long (0 runs until interrupted).")
	fs.StringVar(&o.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address.")
	fs.StringVarP(&o.LogLevel, "log-level", "l", "", "Log level (debug, info, warn, error).")
}

// Main is the main entry point.
func Main() {
	var opts Options
	opts.addFlags(pflag.CommandLine)
	pflag.Parse()

	c, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := Run(c, &opts); err != nil {
		fmt.Fprintf(os.Stderr, "ledsim: %s\n", err)
		cancel()
		os.Exit(1)
	}
}

// Run runs the simulator until c is cancelled, Duration elapses, or the
// preview is closed.
func Run(c context.Context, opts *Options) error {
	cfg := DefaultConfig()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = LoadConfig(opts.ConfigPath); err != nil {
			return err
		}
	}
	if opts.Store != "" {
		cfg.Store.Kind = opts.Store
	}
	if opts.StorePath != "" {
		cfg.Store.Path = opts.StorePath
	}
	if opts.Profile != "" {
		cfg.Store.Profile = opts.Profile
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, closeLog, err := setupLogging(&cfg.Log, opts)
	if err != nil {
		return err
	}
	defer closeLog()

	c, cancel := context.WithCancel(c)
	defer cancel()
	if opts.Duration > 0 {
		c, cancel = context.WithTimeout(c, opts.Duration)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	ledstrip.RegisterMonitoring(reg)
	framelog.RegisterMonitoring(reg)
	if opts.MetricsAddr != "" {
		srv := http.Server{
			Addr:    opts.MetricsAddr,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorf("Metrics server failed: %s", err)
			}
		}()
		defer srv.Close()
		logger.Infof("Serving metrics on %s.", opts.MetricsAddr)
	}

	layout, err := cfg.BufferLayout()
	if err != nil {
		return err
	}

	sim := simulator{
		cfg:    cfg,
		opts:   opts,
		layout: layout,
		logger: logger,
		script: &Script{Cycle: cfg.Script.Cycle.Duration(), Start: time.Now()},
		driver: &logDriver{logger: logger, every: int64(cfg.FrameRate)},
	}

	if opts.Preview {
		screen := opts.Screen
		if screen == nil {
			if screen, err = tcell.NewScreen(); err != nil {
				return errors.Wrap(err, "opening terminal")
			}
		}
		if err := screen.Init(); err != nil {
			return errors.Wrap(err, "initializing terminal")
		}
		defer screen.Fini()
		go watchKeys(screen, cancel)

		if sim.preview, err = preview.New(preview.Options{
			Screen:  screen,
			OriginX: 1,
			OriginY: 1,
			Caption: sim.caption,
			Logger:  logging.Component(logger, "preview"),
		}); err != nil {
			return err
		}
		sim.driver = sim.preview
	}

	if opts.Play != "" {
		return sim.play(c)
	}
	return sim.simulate(c)
}

type simulator struct {
	cfg    *Config
	opts   *Options
	layout pixel.BufferLayout
	logger logging.L

	script  *Script
	driver  ledstrip.Driver
	preview *preview.Driver

	snap vehicle.Snapshot
}

func (sim *simulator) caption() string {
	if sim.opts.Play != "" {
		return "playback of " + sim.opts.Play
	}
	sim.script.Snapshot(&sim.snap)
	return Summary(&sim.snap)
}

func (sim *simulator) simulate(c context.Context) error {
	st, err := openStore(&sim.cfg.Store, logging.Component(sim.logger, "store"))
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	policy, err := sim.cfg.StripPolicy()
	if err != nil {
		return err
	}

	driver := sim.driver
	var rec *framelog.Recorder
	if sim.opts.Record != "" {
		if rec, err = framelog.Create(sim.opts.Record, framelog.RecorderOptions{
			Next:   driver,
			Logger: logging.Component(sim.logger, "framelog"),
		}); err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				sim.logger.Warnf("Failed to close frame log: %s", err)
			}
		}()
		driver = rec
	}

	strip, err := ledstrip.New(ledstrip.Options{
		Driver:    driver,
		Vehicle:   sim.script,
		Policy:    policy,
		FrameRate: sim.cfg.FrameRate,
		Layout:    sim.layout,
		Logger:    logging.Component(sim.logger, "ledstrip"),
	})
	if err != nil {
		return err
	}
	if err := sim.loadStrip(c, st, strip); err != nil {
		return err
	}

	stripCfg := strip.Config()
	if sim.preview != nil {
		sim.preview.SetLayout(&stripCfg.LEDs)
	}
	counts := strip.Counts()
	sim.logger.Infof("Simulating %d LEDs (length %d, %d ring, %d larson) at %d FPS.",
		counts.Count, counts.Length, counts.Ring, counts.Larson, sim.cfg.FrameRate)

	interval := time.Second / time.Duration(sim.cfg.FrameRate)
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	strip.Enable(time.Now())
	defer strip.Disable()
	for {
		select {
		case <-c.Done():
			if rec != nil {
				sim.logger.Infof("Recorded %d frames (%d bytes) to session %s.",
					rec.Frames(), rec.Bytes(), rec.Session())
			}
			return nil
		case now := <-ticker.C:
			strip.Update(now)
		}
	}
}

// loadStrip loads the stored configuration into strip, falling back to the
// file configuration.
func (sim *simulator) loadStrip(c context.Context, st store.Store, strip *ledstrip.Strip) error {
	loaded := false
	if st != nil && !sim.opts.Reset {
		stored, err := st.Load(c)
		switch {
		case errors.Cause(err) == store.ErrNotFound:
			sim.logger.Infof("No stored configuration; using the configuration file.")
		case err != nil:
			return errors.Wrap(err, "loading stored configuration")
		default:
			if err := strip.LoadConfig(stored); err != nil {
				return err
			}
			loaded = true
		}
	}
	if !loaded {
		if err := sim.cfg.Apply(strip); err != nil {
			return err
		}
	}

	if st != nil && sim.opts.Save {
		stripCfg := strip.Config()
		if err := st.Save(c, &stripCfg); err != nil {
			return errors.Wrap(err, "saving configuration")
		}
	}
	return nil
}

func (sim *simulator) play(c context.Context) error {
	r, err := framelog.Open(sim.opts.Play)
	if err != nil {
		return err
	}
	defer r.Close()

	if sim.preview != nil {
		t, err := sim.cfg.Table()
		if err != nil {
			return err
		}
		sim.preview.SetLayout(&t)
	}

	sim.logger.Infof("Playing session %s recorded at %s.", r.Session, r.Started)
	p := framelog.Player{
		Driver: sim.driver,
		Speed:  sim.opts.Speed,
		Layout: sim.layout,
		Logger: logging.Component(sim.logger, "framelog"),
	}
	switch _, err := p.Play(c, r); errors.Cause(err) {
	case nil, context.Canceled, context.DeadlineExceeded:
		return nil
	default:
		return err
	}
}

func openStore(sc *StoreConfig, logger logging.L) (store.Store, error) {
	switch sc.Kind {
	case StoreNone, "":
		return nil, nil
	case StoreFile:
		if sc.Path == "" {
			return nil, errors.New("the file store requires a path")
		}
		return &store.File{Path: sc.Path, Logger: logger}, nil
	case StoreSQLite:
		if sc.Path == "" {
			return nil, errors.New("the sqlite store requires a path")
		}
		return store.OpenSQLite(sc.Path, store.SQLiteOptions{
			Profile: sc.Profile,
			Logger:  logger,
		})
	default:
		return nil, errors.Errorf("unknown store kind %q", sc.Kind)
	}
}

func setupLogging(lc *LogConfig, opts *Options) (logging.L, func(), error) {
	closeLog := func() {}

	setup := logging.Setup{
		Level:  lc.Level,
		Format: lc.Format,
		Output: opts.LogOutput,
	}
	switch {
	case setup.Output != nil:
	case lc.File != "":
		fd, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening log file")
		}
		setup.Output = fd
		closeLog = func() { _ = fd.Close() }
	case opts.Preview:
		// Log lines would draw over the preview.
		setup.Output = io.Discard
	}

	zl, err := setup.New()
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return logging.Zerolog(zl), closeLog, nil
}

// watchKeys cancels the simulator when the user presses Escape, Ctrl-C, or
// "q".
func watchKeys(screen tcell.Screen, cancel context.CancelFunc) {
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				cancel()
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

// logDriver is a ledstrip.Driver that logs a sample of the frames it is
// given.
type logDriver struct {
	logger logging.L
	every  int64
	frames int64
}

func (d *logDriver) Ready() bool { return true }

func (d *logDriver) Write(buf *pixel.Buffer) error {
	if d.every > 0 && d.frames%d.every == 0 {
		d.logger.Debugf("Frame %d: %v", d.frames, buf.Pixels())
	}
	d.frames++
	return nil
}
