package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ubx-sim/internal/ubx"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_RequiresDevice(t *testing.T) {
	path := writeTempConfig(t, "serial: {}\n")
	_, err := Load(path)
	requireErrEq(t, err, "serial.device is required unless serial.pty or replay is enabled")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "serial:\n  device: /dev/ttyUSB0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Serial.Baud != 115200 {
		t.Fatalf("baud=%d want 115200", cfg.Serial.Baud)
	}
	if cfg.Serial.ReadTimeout != 10*time.Millisecond {
		t.Fatalf("read_timeout=%s want 10ms", cfg.Serial.ReadTimeout)
	}
	if *cfg.Receiver.PortID != ubx.PortUART1 {
		t.Fatalf("port_id=%d want %d", *cfg.Receiver.PortID, ubx.PortUART1)
	}
	if cfg.Receiver.MeasRateMs != 1000 || cfg.Receiver.NavRate != 1 {
		t.Fatalf("rate=%d/%d want 1000/1", cfg.Receiver.MeasRateMs, cfg.Receiver.NavRate)
	}
	if cfg.Receiver.MaxPayload != 0 {
		t.Fatalf("max_payload=%d want 0 (unlimited)", cfg.Receiver.MaxPayload)
	}
	if cfg.Receiver.Version.Software == "" || len(cfg.Receiver.Version.Extensions) == 0 {
		t.Fatalf("expected version defaults applied")
	}
	if cfg.Sim.Period <= 0 || cfg.Sim.RadiusM <= 0 || cfg.Sim.NumSV <= 0 {
		t.Fatalf("expected sim defaults applied")
	}
	if cfg.Log.Level != "info" || cfg.Replay.Speed != 1 || cfg.TimePulse.Chip != "gpiochip0" {
		t.Fatalf("unexpected defaults: log=%q speed=%v chip=%q", cfg.Log.Level, cfg.Replay.Speed, cfg.TimePulse.Chip)
	}
}

func TestLoad_MaxPayload(t *testing.T) {
	for _, tc := range []struct {
		yaml string
		want int
	}{
		{"serial:\n  pty: true\nreceiver:\n  max_payload: 0\n", 0},
		{"serial:\n  pty: true\nreceiver:\n  max_payload: 512\n", 512},
	} {
		cfg, err := Load(writeTempConfig(t, tc.yaml))
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Receiver.MaxPayload != tc.want {
			t.Fatalf("max_payload=%d want %d", cfg.Receiver.MaxPayload, tc.want)
		}
	}
}

func TestLoad_ExplicitPortZero(t *testing.T) {
	path := writeTempConfig(t, "serial:\n  pty: true\nreceiver:\n  port_id: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *cfg.Receiver.PortID != 0 {
		t.Fatalf("port_id=%d want 0", *cfg.Receiver.PortID)
	}
}

func TestLoad_Messages(t *testing.T) {
	path := writeTempConfig(t, `
serial:
  device: /dev/ttyS0
receiver:
  messages:
    NAV-PVT: 1
    nav-status: 5
    "0x01,0x21": 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	rates := cfg.Receiver.MessageRates()
	want := map[ubx.Identity]uint8{ubx.IDNavPVT: 1, ubx.IDNavStatus: 5, ubx.IDNavTimeUTC: 0}
	if len(rates) != len(want) {
		t.Fatalf("rates=%v want %v", rates, want)
	}
	for id, r := range want {
		if got, ok := rates[id]; !ok || got != r {
			t.Fatalf("rate[%s]=%d,%v want %d", id, got, ok, r)
		}
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name  string
		extra string
		want  string
	}{
		{
			name:  "DeviceAndPTY",
			extra: "serial:\n  device: /dev/ttyS0\n  pty: true\n",
			want:  "serial.device and serial.pty cannot both be set",
		},
		{
			name:  "PortRange",
			extra: "serial:\n  pty: true\nreceiver:\n  port_id: 6\n",
			want:  "receiver.port_id must be 0..5",
		},
		{
			name:  "MeasRateTooFast",
			extra: "serial:\n  pty: true\nreceiver:\n  meas_rate_ms: 10\n",
			want:  "receiver.meas_rate_ms must be 25..65535",
		},
		{
			name:  "UnknownMessage",
			extra: "serial:\n  pty: true\nreceiver:\n  messages:\n    NAV-BOGUS: 1\n",
			want:  `receiver.messages: unknown message "NAV-BOGUS"`,
		},
		{
			name:  "MessageRateRange",
			extra: "serial:\n  pty: true\nreceiver:\n  messages:\n    NAV-PVT: 300\n",
			want:  "receiver.messages.NAV-PVT must be 0..255",
		},
		{
			name:  "TimePulseLine",
			extra: "serial:\n  pty: true\ntimepulse:\n  enable: true\n",
			want:  "timepulse.line is required when timepulse.enable is true",
		},
		{
			name:  "RecordPath",
			extra: "serial:\n  pty: true\nrecord:\n  enable: true\n",
			want:  "record.path is required when record.enable is true",
		},
		{
			name:  "ReplaySpeed",
			extra: "replay:\n  enable: true\n  path: s.log\n  speed: -1\n",
			want:  "replay.speed must be > 0",
		},
		{
			name:  "RecordAndReplay",
			extra: "record:\n  enable: true\n  path: a.log\nreplay:\n  enable: true\n  path: b.log\n",
			want:  "record and replay cannot both be enabled",
		},
		{
			name:  "MirrorDest",
			extra: "serial:\n  pty: true\nmirror:\n  enable: true\n",
			want:  "mirror.dest is required when mirror.enable is true",
		},
		{
			name:  "LogLevel",
			extra: "serial:\n  pty: true\nlog:\n  level: loud\n",
			want:  "log.level must be one of trace, debug, info, warn, error, off",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempConfig(t, tc.extra)
			_, err := Load(path)
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_ReplayNeedsNoDevice(t *testing.T) {
	path := writeTempConfig(t, "replay:\n  enable: true\n  path: s.log\n  loop: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Replay.Loop || cfg.Replay.Speed != 1 {
		t.Fatalf("replay=%+v", cfg.Replay)
	}
}

func TestLoad_LogLevelsMatchLogger(t *testing.T) {
	for _, level := range []string{"off", "disabled", "none", "warning", "DEBUG"} {
		path := writeTempConfig(t, "serial:\n  pty: true\nlog:\n  level: "+level+"\n")
		if _, err := Load(path); err != nil {
			t.Fatalf("level %q: Load() error: %v", level, err)
		}
	}
}

func TestDefaultAndValidate_AfterOverride(t *testing.T) {
	cfg := Default()
	if err := DefaultAndValidate(&cfg); err == nil {
		t.Fatalf("expected error without a device")
	}
	cfg.Serial.Device = "/dev/ttyACM0"
	cfg.Serial.Baud = 9600
	if err := DefaultAndValidate(&cfg); err != nil {
		t.Fatalf("DefaultAndValidate() error: %v", err)
	}
	if cfg.Serial.Baud != 9600 {
		t.Fatalf("override lost: baud=%d", cfg.Serial.Baud)
	}
}
