package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ubx-sim/internal/logger"
	"ubx-sim/internal/ubx"
)

type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Receiver  ReceiverConfig  `yaml:"receiver"`
	Sim       SimConfig       `yaml:"sim"`
	TimePulse TimePulseConfig `yaml:"timepulse"`
	Record    RecordConfig    `yaml:"record"`
	Replay    ReplayConfig    `yaml:"replay"`
	Mirror    MirrorConfig    `yaml:"mirror"`
	Log       LogConfig       `yaml:"log"`
}

type SerialConfig struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// PTY creates a pseudo terminal instead of opening Device. PTYLink, if
	// set, is a symlink pointed at the slave side.
	PTY     bool   `yaml:"pty"`
	PTYLink string `yaml:"pty_link"`

	OpenRetries    int `yaml:"open_retries"`
	RetryPerMinute int `yaml:"retry_per_minute"`
}

type ReceiverConfig struct {
	// PortID is a pointer so that 0 (DDC) can be told apart from unset.
	PortID        *int           `yaml:"port_id"`
	MeasRateMs    int            `yaml:"meas_rate_ms"`
	NavRate       int            `yaml:"nav_rate"`
	MaxPayload    int            `yaml:"max_payload"`
	AckUnknownCfg bool           `yaml:"ack_unknown_cfg"`
	Messages      map[string]int `yaml:"messages"`
	Version       VersionConfig  `yaml:"version"`
}

type VersionConfig struct {
	Software   string   `yaml:"software"`
	Hardware   string   `yaml:"hardware"`
	Extensions []string `yaml:"extensions"`
}

type SimConfig struct {
	CenterLatDeg float64       `yaml:"center_lat_deg"`
	CenterLonDeg float64       `yaml:"center_lon_deg"`
	AltMSLM      float64       `yaml:"alt_msl_m"`
	GeoidSepM    float64       `yaml:"geoid_sep_m"`
	RadiusM      float64       `yaml:"radius_m"`
	Period       time.Duration `yaml:"period"`
	TTFF         time.Duration `yaml:"ttff"`
	NumSV        int           `yaml:"num_sv"`
}

type TimePulseConfig struct {
	Enable bool   `yaml:"enable"`
	Chip   string `yaml:"chip"`
	Line   *int   `yaml:"line"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type ReplayConfig struct {
	Enable bool    `yaml:"enable"`
	Path   string  `yaml:"path"`
	Speed  float64 `yaml:"speed"`
	Loop   bool    `yaml:"loop"`
}

type MirrorConfig struct {
	Enable bool   `yaml:"enable"`
	Dest   string `yaml:"dest"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	JSON    bool   `yaml:"json"`
	NoColor bool   `yaml:"no_color"`
}

func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read parses the file without applying defaults or validating.
func Read(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns a configuration with every default applied and nothing
// validated.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// DefaultAndValidate fills unset fields and checks the result. Callers that
// override fields after Load (CLI flags) run it again.
func DefaultAndValidate(cfg *Config) error {
	applyDefaults(cfg)
	return validate(cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Serial.Baud <= 0 {
		cfg.Serial.Baud = 115200
	}
	if cfg.Serial.ReadTimeout <= 0 {
		cfg.Serial.ReadTimeout = 10 * time.Millisecond
	}
	if cfg.Serial.OpenRetries <= 0 {
		cfg.Serial.OpenRetries = 1
	}
	if cfg.Serial.RetryPerMinute <= 0 {
		cfg.Serial.RetryPerMinute = 12
	}

	if cfg.Receiver.PortID == nil {
		p := int(ubx.PortUART1)
		cfg.Receiver.PortID = &p
	}
	if cfg.Receiver.MeasRateMs == 0 {
		cfg.Receiver.MeasRateMs = 1000
	}
	if cfg.Receiver.NavRate == 0 {
		cfg.Receiver.NavRate = 1
	}
	if cfg.Receiver.Version.Software == "" {
		cfg.Receiver.Version.Software = "ROM CORE 3.01 (107888)"
	}
	if cfg.Receiver.Version.Hardware == "" {
		cfg.Receiver.Version.Hardware = "00080000"
	}
	if cfg.Receiver.Version.Extensions == nil {
		cfg.Receiver.Version.Extensions = []string{"FWVER=SPG 3.01", "PROTVER=18.00", "GPS;GLO;GAL;BDS", "SBAS;IMES;QZSS"}
	}

	// Simulator defaults (Thalwil, CH).
	if cfg.Sim.CenterLatDeg == 0 && cfg.Sim.CenterLonDeg == 0 {
		cfg.Sim.CenterLatDeg = 47.2952
		cfg.Sim.CenterLonDeg = 8.5646
	}
	if cfg.Sim.AltMSLM == 0 {
		cfg.Sim.AltMSLM = 430
	}
	if cfg.Sim.GeoidSepM == 0 {
		cfg.Sim.GeoidSepM = 48
	}
	if cfg.Sim.RadiusM <= 0 {
		cfg.Sim.RadiusM = 500
	}
	if cfg.Sim.Period <= 0 {
		cfg.Sim.Period = 120 * time.Second
	}
	if cfg.Sim.TTFF < 0 {
		cfg.Sim.TTFF = 0
	}
	if cfg.Sim.NumSV <= 0 {
		cfg.Sim.NumSV = 9
	}

	if cfg.TimePulse.Chip == "" {
		cfg.TimePulse.Chip = "gpiochip0"
	}
	if cfg.Replay.Speed == 0 {
		cfg.Replay.Speed = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func validate(cfg *Config) error {
	if !cfg.Replay.Enable && !cfg.Serial.PTY && cfg.Serial.Device == "" {
		return fmt.Errorf("serial.device is required unless serial.pty or replay is enabled")
	}
	if cfg.Serial.PTY && cfg.Serial.Device != "" {
		return fmt.Errorf("serial.device and serial.pty cannot both be set")
	}

	if p := *cfg.Receiver.PortID; p < 0 || p >= ubx.NumPorts {
		return fmt.Errorf("receiver.port_id must be 0..%d", ubx.NumPorts-1)
	}
	if cfg.Receiver.MeasRateMs < ubx.MinMeasRateMs || cfg.Receiver.MeasRateMs > 0xFFFF {
		return fmt.Errorf("receiver.meas_rate_ms must be %d..65535", ubx.MinMeasRateMs)
	}
	if cfg.Receiver.NavRate < 1 || cfg.Receiver.NavRate > 127 {
		return fmt.Errorf("receiver.nav_rate must be 1..127")
	}
	if cfg.Receiver.MaxPayload < 0 || cfg.Receiver.MaxPayload > ubx.MaxPayloadLen {
		return fmt.Errorf("receiver.max_payload must be 0..%d", ubx.MaxPayloadLen)
	}
	for name, rate := range cfg.Receiver.Messages {
		if _, ok := ubx.ParseName(name); !ok {
			return fmt.Errorf("receiver.messages: unknown message %q", name)
		}
		if rate < 0 || rate > 0xFF {
			return fmt.Errorf("receiver.messages.%s must be 0..255", name)
		}
	}

	if cfg.Sim.CenterLatDeg < -89 || cfg.Sim.CenterLatDeg > 89 {
		return fmt.Errorf("sim.center_lat_deg must be within -89..89")
	}
	if cfg.Sim.NumSV > 0xFF {
		return fmt.Errorf("sim.num_sv must be <= 255")
	}

	if cfg.TimePulse.Enable && cfg.TimePulse.Line == nil {
		return fmt.Errorf("timepulse.line is required when timepulse.enable is true")
	}

	if cfg.Record.Enable && cfg.Record.Path == "" {
		return fmt.Errorf("record.path is required when record.enable is true")
	}
	if cfg.Replay.Enable {
		if cfg.Replay.Path == "" {
			return fmt.Errorf("replay.path is required when replay.enable is true")
		}
		if cfg.Replay.Speed < 0 {
			return fmt.Errorf("replay.speed must be > 0")
		}
	}
	if cfg.Record.Enable && cfg.Replay.Enable {
		return fmt.Errorf("record and replay cannot both be enabled")
	}

	if cfg.Mirror.Enable && cfg.Mirror.Dest == "" {
		return fmt.Errorf("mirror.dest is required when mirror.enable is true")
	}

	if _, ok := logger.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("log.level must be one of trace, debug, info, warn, error, off")
	}
	return nil
}

// MessageRates resolves the receiver.messages table to identities.
func (c ReceiverConfig) MessageRates() map[ubx.Identity]uint8 {
	out := make(map[ubx.Identity]uint8, len(c.Messages))
	for name, rate := range c.Messages {
		if id, ok := ubx.ParseName(name); ok {
			out[id] = uint8(rate)
		}
	}
	return out
}
