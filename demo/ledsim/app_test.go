// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package ledsim

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/danjacques/goledstrip/driver/framelog"
	"github.com/danjacques/goledstrip/ledconfig"
	"github.com/danjacques/goledstrip/ledstrip"
	"github.com/danjacques/goledstrip/store"

	"github.com/gdamore/tcell/v2"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Run", func() {
	var (
		tdir string
		logs bytes.Buffer
		c    context.Context
	)

	BeforeEach(func() {
		var err error
		tdir, err = os.MkdirTemp("", "ledsim_test")
		Expect(err).ToNot(HaveOccurred())

		logs.Reset()
		c = context.Background()
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tdir)).To(Succeed())
	})

	writeConfig := func(text string) string {
		path := filepath.Join(tdir, "ledsim.yaml")
		Expect(os.WriteFile(path, []byte(text), 0644)).To(Succeed())
		return path
	}

	It("records frames that can be played back", func() {
		record := filepath.Join(tdir, "frames.log")
		Expect(Run(c, &Options{
			Record:    record,
			Duration:  200 * time.Millisecond,
			LogOutput: &logs,
		})).To(Succeed())
		Expect(logs.String()).To(ContainSubstring("Recorded"))

		r, err := framelog.Open(record)
		Expect(err).ToNot(HaveOccurred())
		defer r.Close()

		frames := 0
		var last *framelog.Frame
		for {
			f, err := r.Next()
			if err == io.EOF {
				break
			}
			Expect(err).ToNot(HaveOccurred())
			Expect(f.Pixels).To(HaveLen(len(DefaultConfig().LEDs)))
			last = f
			frames++
		}
		Expect(frames).To(BeNumerically(">=", 2))

		// Disabling the strip writes a final black frame.
		for _, p := range last.Pixels {
			Expect(p.Packed()).To(BeZero())
		}

		logs.Reset()
		screen := tcell.NewSimulationScreen("UTF-8")
		Expect(Run(c, &Options{
			Play:      record,
			Speed:     100,
			Preview:   true,
			Screen:    screen,
			LogOutput: &logs,
		})).To(Succeed())
		Expect(logs.String()).To(ContainSubstring("Finished playback"))
	})

	It("stops playback when the context is cancelled", func() {
		record := filepath.Join(tdir, "frames.log")
		Expect(Run(c, &Options{Record: record, Duration: 100 * time.Millisecond, LogOutput: &logs})).To(Succeed())

		cc, cancel := context.WithCancel(c)
		cancel()
		Expect(Run(cc, &Options{Play: record, LogOutput: &logs})).To(Succeed())
	})

	It("fails to play a missing frame log", func() {
		Expect(Run(c, &Options{Play: filepath.Join(tdir, "missing"), LogOutput: &logs})).ToNot(Succeed())
	})

	It("saves and reloads the configuration in a file store", func() {
		path := filepath.Join(tdir, "leds.bin")
		Expect(Run(c, &Options{
			Store:     StoreFile,
			StorePath: path,
			Save:      true,
			Duration:  50 * time.Millisecond,
			LogOutput: &logs,
		})).To(Succeed())

		fs := store.File{Path: path}
		cfg, err := fs.Load(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(ledconfig.Encode(cfg.LEDs[0])).To(Equal(DefaultConfig().LEDs[0]))

		// A stored configuration takes precedence over the file unless reset.
		one := ledstrip.DefaultConfig()
		one.LEDs[0], err = ledconfig.Decode("2,2:1::C::0")
		Expect(err).ToNot(HaveOccurred())
		Expect(fs.Save(c, &one)).To(Succeed())

		logs.Reset()
		Expect(Run(c, &Options{
			Store:     StoreFile,
			StorePath: path,
			Duration:  50 * time.Millisecond,
			LogOutput: &logs,
		})).To(Succeed())
		Expect(logs.String()).To(ContainSubstring("Simulating 1 LEDs"))

		logs.Reset()
		Expect(Run(c, &Options{
			Store:     StoreFile,
			StorePath: path,
			Reset:     true,
			Duration:  50 * time.Millisecond,
			LogOutput: &logs,
		})).To(Succeed())
		Expect(logs.String()).To(ContainSubstring("Simulating 16 LEDs"))
	})

	It("uses a SQLite store profile from the configuration file", func() {
		dbPath := filepath.Join(tdir, "leds.db")
		path := writeConfig(`
leds:
  - "0,0:2::C::0"
  - "1,0:2::C::0"
store:
  kind: sqlite
  path: ` + dbPath + `
  profile: bench
log:
  format: json
`)
		Expect(Run(c, &Options{
			ConfigPath: path,
			Save:       true,
			Duration:   50 * time.Millisecond,
			LogOutput:  &logs,
		})).To(Succeed())
		Expect(logs.String()).To(ContainSubstring(`"level":"info"`))
		Expect(logs.String()).To(ContainSubstring("Simulating 2 LEDs"))
		Expect(logs.String()).To(ContainSubstring(`"component":"ledstrip"`))

		st, err := store.OpenSQLite(dbPath, store.SQLiteOptions{Profile: "bench"})
		Expect(err).ToNot(HaveOccurred())
		defer st.Close()

		cfg, err := st.Load(c)
		Expect(err).ToNot(HaveOccurred())
		Expect(ledconfig.Encode(cfg.LEDs[1])).To(Equal("1,0:2::C::0"))
	})

	It("rejects bad options", func() {
		Expect(Run(c, &Options{ConfigPath: filepath.Join(tdir, "missing.yaml")})).ToNot(Succeed())
		Expect(Run(c, &Options{Store: StoreFile, LogOutput: &logs, Duration: time.Millisecond})).ToNot(Succeed())
		Expect(Run(c, &Options{LogLevel: "chatty", LogOutput: &logs})).ToNot(Succeed())
		Expect(Run(c, &Options{ConfigPath: writeConfig("policy: {ring_min_hz: 0}\n"), LogOutput: &logs})).ToNot(Succeed())
	})
})
