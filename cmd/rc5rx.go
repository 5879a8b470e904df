package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"rc5rx/pkg/app"
	"rc5rx/pkg/app/config"
	"rc5rx/pkg/rc5"
	"rc5rx/pkg/replay"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"
)

const defaultConfigFile = "/opt/rc5rx/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// flags are kept across restarts, the configuration file is read again
	var flags config.FlagConfig

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "RC5 infrared receiver",
		Version: app.VERSION,
		Description: "Decode RC5 remote control frames from an IR receiver module on a gpio line" +
			"\n and publish them to mqtt and a web service." +
			"\n The receiver is disabled while the local IR transmitter is active (txguard pin).",
		UsageText: "rc5rx [--config <file>] [--log standard|debug|trace]" +
			"\n   rc5rx replay --file <capture.yaml> [--width 13]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the receiver and use the configuration file rc5rx.yaml" +
			"\n\t\trc5rx --config /opt/rc5rx/config/rc5rx.yaml",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &flags.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &flags.LogLevel, Usage: "`LEVEL` defines the log level (standard|debug|trace)"},
		},
		Action: func(ctx *cli.Context) error {
			return run(flags)
		},
		Commands: []*cli.Command{
			{
				Name:  "replay",
				Usage: "decode a recorded edge capture",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "capture `FILE` (yaml)"},
					&cli.IntFlag{Name: "width", Aliases: []string{"w"}, Value: rc5.LegacyWidth, Usage: "frame width in bits"},
				},
				Action: func(ctx *cli.Context) error {
					return runReplay(ctx.String("file"), ctx.Int("width"))
				},
			},
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
}

// run starts the receiver. SIGHUP reloads the configuration file and restarts the app,
// SIGINT, SIGTERM or a lost line terminate it.
func run(flags config.FlagConfig) error {
	for {
		cfg := config.NewConfig()
		cfg.Flag = flags

		restart, err := serve(cfg)
		if err != nil || !restart {
			return err
		}
	}
}

// serve runs one app instance until a signal arrives. It reports whether a restart was requested.
func serve(cfg *config.Config) (restart bool, err error) {
	if err = cfg.LoadConfig(); err != nil {
		return false, err
	}

	debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)
	defer func() {
		if cfg.Debug.File != os.Stderr && cfg.Debug.File != os.Stdout {
			debug.InfoLog.Printf("closing debug file %s", cfg.Debug.FileString)
			_ = cfg.Debug.File.Close()
		}
	}()

	a, err := app.New(cfg)
	if err != nil {
		return false, err
	}
	defer func() {
		debug.InfoLog.Printf("closing app %s", app.Version())
		_ = a.Close()
	}()

	debug.InfoLog.Printf("starting app %s", app.Version())
	if err = a.Run(); err != nil {
		return false, err
	}

	// capture exit signals to ensure resources are released on exit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		if sig == syscall.SIGHUP {
			debug.InfoLog.Print("Got SIGHUP signal. Restarting...")
			return true, nil
		}
		debug.InfoLog.Printf("Got %s signal. Aborting...", sig)
	case <-a.Shutdown():
		debug.InfoLog.Print("frame service stopped, shutting down")
	}

	return false, nil
}

// runReplay decodes a capture file and prints the frames to stdout.
func runReplay(file string, width int) error {
	capt, err := replay.LoadFile(file)
	if err != nil {
		return fmt.Errorf("capture %q: %w", file, err)
	}

	timing := rc5.DefaultTiming()
	timing.Width = width
	if capt.TickFrequency != 0 {
		timing.TickFrequency = capt.TickFrequency
	}

	d, err := rc5.New(timing)
	if err != nil {
		return err
	}

	frames := capt.Run(d)
	for _, raw := range frames {
		f, _ := rc5.ParseFrame(raw, width)
		fmt.Println(f)
	}

	s := d.Stats()
	fmt.Printf("%d frames, resets: timing %d, framing %d, timeout %d, overrun %d\n",
		len(frames), s.TimingOutOfRange, s.FramingInconsistency, s.SignalTimeout, s.FrameOverrun)
	return nil
}
