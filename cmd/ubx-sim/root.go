package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ubx-sim/internal/config"
	"ubx-sim/internal/logger"
)

type options struct {
	configPath  string
	envFile     string
	baud        int
	pty         bool
	ptyLink     string
	record      string
	replay      string
	replaySpeed float64
	loop        bool
	mirror      string
	logLevel    string
	logJSON     bool
}

func newRootCmd() (*cobra.Command, *options) {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "ubx-sim [port]",
		Short: "Emulate a u-blox GNSS receiver speaking UBX on a serial port.",
		Long: `ubx-sim answers UBX configuration and poll messages the way a u-blox ` +
			`receiver does and streams simulated navigation solutions at the ` +
			`configured rates. It serves a real serial port, a pseudo terminal, ` +
			`or a recorded session.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnv(o.envFile); err != nil {
				return err
			}
			cfg, err := o.buildConfig(cmd, args)
			if err != nil {
				return err
			}
			log := logger.New("ubx-sim", logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON, NoColor: cfg.Log.NoColor}, nil)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := run(ctx, cfg, log); err != nil {
				log.Error().Err(err).Msg("ubx-sim failed")
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "path to YAML config")
	f.StringVar(&o.envFile, "env-file", ".env", "dotenv file with UBXSIM_* overrides (ignored if missing)")
	f.IntVarP(&o.baud, "baudrate", "b", 115200, "initial host port baud rate")
	f.BoolVar(&o.pty, "pty", false, "serve a pseudo terminal instead of a device")
	f.StringVar(&o.ptyLink, "pty-link", "", "symlink to create for the pseudo terminal")
	f.StringVar(&o.record, "record", "", "record the session to this log file")
	f.StringVar(&o.replay, "replay", "", "replay host input from this log file")
	f.Float64Var(&o.replaySpeed, "replay-speed", 1, "replay speed multiplier")
	f.BoolVar(&o.loop, "loop", false, "loop the replay log")
	f.StringVar(&o.mirror, "mirror", "", "mirror transmitted frames to this UDP host:port")
	f.StringVar(&o.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	f.BoolVar(&o.logJSON, "log-json", false, "log JSON instead of console output")
	return cmd, o
}

func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// buildConfig reads the optional config file and lays the command line over
// it. Only flags that were given on the command line override the file.
func (o *options) buildConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.Read(o.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("config load failed: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if len(args) == 1 {
		cfg.Serial.Device = args[0]
	}
	if flags.Changed("baudrate") || cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = o.baud
	}
	if flags.Changed("pty") {
		cfg.Serial.PTY = o.pty
	}
	if o.ptyLink != "" {
		cfg.Serial.PTYLink = o.ptyLink
		cfg.Serial.PTY = true
	}
	if o.record != "" {
		cfg.Record.Enable = true
		cfg.Record.Path = o.record
	}
	if o.replay != "" {
		cfg.Replay.Enable = true
		cfg.Replay.Path = o.replay
	}
	if flags.Changed("replay-speed") {
		cfg.Replay.Speed = o.replaySpeed
	}
	if flags.Changed("loop") {
		cfg.Replay.Loop = o.loop
	}
	if o.mirror != "" {
		cfg.Mirror.Enable = true
		cfg.Mirror.Dest = o.mirror
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = o.logJSON
	}

	if err := config.DefaultAndValidate(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
