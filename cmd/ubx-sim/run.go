package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/ratelimit"

	"ubx-sim/internal/config"
	"ubx-sim/internal/nav"
	"ubx-sim/internal/receiver"
	"ubx-sim/internal/replay"
	"ubx-sim/internal/serialport"
	"ubx-sim/internal/timepulse"
	"ubx-sim/internal/ubx"
	"ubx-sim/internal/udp"
)

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn().Err(err).Msg("close failed")
			}
		}
	}()

	tr, err := openTransport(ctx, cfg, log)
	if err != nil {
		return err
	}
	if c, ok := tr.(io.Closer); ok {
		closers = append(closers, c)
	}

	if cfg.Record.Enable {
		w, err := replay.CreateWriter(cfg.Record.Path)
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		rec := replay.NewRecorder(tr, w)
		closers = append(closers, rec)
		tr = rec
		log.Info().Str("path", cfg.Record.Path).Str("session", w.Session()).Msg("recording session")
	}

	var mirror *udp.Mirror
	if cfg.Mirror.Enable {
		b, err := udp.NewBroadcaster(cfg.Mirror.Dest)
		if err != nil {
			return fmt.Errorf("mirror: %w", err)
		}
		closers = append(closers, b)
		mirror = udp.NewMirror(tr, b, log.With().Str("component", "mirror").Logger())
		tr = mirror
		log.Info().Str("dest", b.Dest()).Msg("mirroring transmitted frames")
	}

	r, err := receiver.New(receiverConfig(cfg), tr, receiver.SystemClock{}, log.With().Str("component", "receiver").Logger())
	if err != nil {
		return err
	}

	var pulser *timepulse.Pulser
	if cfg.TimePulse.Enable {
		line, err := timepulse.OpenGPIO(cfg.TimePulse.Chip, *cfg.TimePulse.Line, "ubx-sim")
		if err != nil {
			return fmt.Errorf("timepulse: %w", err)
		}
		pulser = timepulse.NewPulser(line, time.Now())
		closers = append(closers, pulser)
		r.SetPulser(pulser)
		log.Info().Str("chip", cfg.TimePulse.Chip).Int("line", *cfg.TimePulse.Line).Msg("time pulse enabled")
	}

	err = r.Run(ctx)
	if mirror != nil {
		log.Info().Uint64("failures", mirror.Failures()).Msg("mirror stopped")
	}
	if pulser != nil {
		log.Info().Uint64("edges", pulser.Edges()).Msg("time pulse stopped")
	}
	return err
}

func openTransport(ctx context.Context, cfg config.Config, log zerolog.Logger) (receiver.Transport, error) {
	switch {
	case cfg.Replay.Enable:
		recs, err := replay.ReadFile(cfg.Replay.Path)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		src, err := replay.NewSource(recs, cfg.Replay.Speed, cfg.Replay.Loop, cfg.Serial.ReadTimeout, nil)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", cfg.Replay.Path, err)
		}
		log.Info().Str("path", cfg.Replay.Path).Float64("speed", cfg.Replay.Speed).Bool("loop", cfg.Replay.Loop).Msg("replaying session")
		return src, nil

	case cfg.Serial.PTY:
		p, err := serialport.OpenPTY(cfg.Serial.Baud, cfg.Serial.ReadTimeout, cfg.Serial.PTYLink)
		if err != nil {
			return nil, err
		}
		log.Info().Str("device", p.Name()).Int("baud", p.Baud()).Msg("pseudo terminal ready")
		return p, nil

	default:
		rl := ratelimit.New(cfg.Serial.RetryPerMinute, ratelimit.Per(time.Minute))
		p, err := serialport.OpenWithRetry(ctx, rl, cfg.Serial.OpenRetries, log, func() (*serialport.Port, error) {
			return serialport.Open(cfg.Serial.Device, cfg.Serial.Baud, cfg.Serial.ReadTimeout)
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("device", p.Name()).Int("baud", p.Baud()).Msg("serial port open")
		return p, nil
	}
}

func receiverConfig(cfg config.Config) receiver.Config {
	rc := cfg.Receiver
	return receiver.Config{
		PortID:        uint8(*rc.PortID),
		Baud:          cfg.Serial.Baud,
		MeasRateMs:    uint16(rc.MeasRateMs),
		NavRate:       uint16(rc.NavRate),
		MaxPayload:    rc.MaxPayload,
		AckUnknownCfg: rc.AckUnknownCfg,
		Messages:      rc.MessageRates(),
		Version: ubx.MonVer{
			SWVersion:  rc.Version.Software,
			HWVersion:  rc.Version.Hardware,
			Extensions: rc.Version.Extensions,
		},
		Nav: nav.Config{
			CenterLatDeg: cfg.Sim.CenterLatDeg,
			CenterLonDeg: cfg.Sim.CenterLonDeg,
			AltMSLM:      cfg.Sim.AltMSLM,
			GeoidSepM:    cfg.Sim.GeoidSepM,
			RadiusM:      cfg.Sim.RadiusM,
			Period:       cfg.Sim.Period,
			TTFF:         cfg.Sim.TTFF,
			NumSV:        uint8(cfg.Sim.NumSV),
		},
	}
}
