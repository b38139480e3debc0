package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ubx-sim/internal/config"
	"ubx-sim/internal/replay"
	"ubx-sim/internal/ubx"
)

func parse(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	cmd, o := newRootCmd()
	require.NoError(t, cmd.ParseFlags(args))
	return o.buildConfig(cmd, cmd.Flags().Args())
}

func TestBuildConfig_Flags(t *testing.T) {
	cfg, err := parse(t, "/dev/ttyUSB0", "-b", "9600", "--log-level", "debug")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Device)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Millisecond, cfg.Serial.ReadTimeout)

	cfg, err = parse(t, "--pty-link", "/tmp/ubx0")
	require.NoError(t, err)
	assert.True(t, cfg.Serial.PTY)
	assert.Equal(t, 115200, cfg.Serial.Baud)

	_, err = parse(t)
	require.Error(t, err)
}

func TestBuildConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	yaml := "serial:\n  device: /dev/ttyS1\n  baud: 38400\nreceiver:\n  messages:\n    NAV-PVT: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := parse(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS1", cfg.Serial.Device)
	assert.Equal(t, 38400, cfg.Serial.Baud)

	// An explicit flag beats the file; the default does not.
	cfg, err = parse(t, "--config", path, "-b", "57600", "/dev/ttyS2")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS2", cfg.Serial.Device)
	assert.Equal(t, 57600, cfg.Serial.Baud)

	rc := receiverConfig(cfg)
	assert.Equal(t, uint8(ubx.PortUART1), rc.PortID)
	assert.Equal(t, 57600, rc.Baud)
	assert.Equal(t, map[ubx.Identity]uint8{ubx.IDNavPVT: 1}, rc.Messages)
	assert.Equal(t, "ROM CORE 3.01 (107888)", rc.Version.SWVersion)
	assert.Equal(t, uint8(9), rc.Nav.NumSV)
	require.NoError(t, rc.Validate())
}

func TestBuildConfig_RecordAndReplayConflict(t *testing.T) {
	_, err := parse(t, "--record", "a.log", "--replay", "b.log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record and replay cannot both be enabled")
}

func TestLoadEnv_MissingFileIgnored(t *testing.T) {
	require.NoError(t, loadEnv(filepath.Join(t.TempDir(), "nope.env")))
	require.NoError(t, loadEnv(""))

	path := filepath.Join(t.TempDir(), "x.env")
	require.NoError(t, os.WriteFile(path, []byte("UBXSIM_TEST_VALUE=42\n"), 0o644))
	t.Setenv("UBXSIM_TEST_VALUE", "")
	os.Unsetenv("UBXSIM_TEST_VALUE")
	require.NoError(t, loadEnv(path))
	assert.Equal(t, "42", os.Getenv("UBXSIM_TEST_VALUE"))
}

func TestRun_ReplayToEOF(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "session.log")
	w, err := replay.CreateWriter(logPath)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(time.Now(), replay.DirRx, ubx.EncodeFrame(ubx.IDCfgRst, []byte{0, 0, 0, 0})))
	require.NoError(t, w.WriteRecord(time.Now(), replay.DirRx, ubx.EncodeFrame(ubx.IDMonVer, nil)))
	require.NoError(t, w.Close())

	cfg := config.Default()
	cfg.Replay.Enable = true
	cfg.Replay.Path = logPath
	cfg.Mirror.Enable = true
	cfg.Mirror.Dest = "127.0.0.1:4999"
	require.NoError(t, config.DefaultAndValidate(&cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, run(ctx, cfg, zerolog.Nop()))
	require.NoError(t, ctx.Err())
}
