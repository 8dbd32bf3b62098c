package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel     = "WXSBRIDGE_LOG_LEVEL"
	EnvLogTimestamp = "WXSBRIDGE_LOG_TIMESTAMP"
	EnvLogNoColor   = "WXSBRIDGE_LOG_NOCOLOR"
	EnvLogBypass    = "WXSBRIDGE_LOG_BYPASS"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config is the resolved logger setup.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	// Bypass writes raw JSON lines instead of the console format.
	Bypass bool
	Out    io.Writer
}

// envOverrides is seeded with the profile defaults; env.Parse only touches
// fields whose variable is set.
type envOverrides struct {
	Level     string `env:"WXSBRIDGE_LOG_LEVEL"`
	Timestamp bool   `env:"WXSBRIDGE_LOG_TIMESTAMP"`
	NoColor   bool   `env:"WXSBRIDGE_LOG_NOCOLOR"`
	Bypass    bool   `env:"WXSBRIDGE_LOG_BYPASS"`
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		applyEnvOverrides(&cfg)
		Apply(cfg)
	})
}

// Apply installs cfg as the global zerolog logger.
func Apply(cfg Config) {
	log.Logger = New(cfg)
	zerolog.SetGlobalLevel(cfg.Level)
}

// New builds a logger from cfg without touching global state.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if !cfg.Bypass {
		out = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    cfg.NoColor,
			TimeFormat: time.RFC3339,
		}
	}
	ctx := zerolog.New(out).Level(cfg.Level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	return ctx.Logger()
}

func defaultConfig(profile Profile) Config {
	cfg := Config{Out: os.Stderr}
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
		cfg.Timestamp = false
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

// applyEnvOverrides leaves cfg untouched if any variable fails to parse.
func applyEnvOverrides(cfg *Config) {
	raw := envOverrides{
		Timestamp: cfg.Timestamp,
		NoColor:   cfg.NoColor,
		Bypass:    cfg.Bypass,
	}
	if err := env.Parse(&raw); err != nil {
		return
	}
	if lvl, ok := parseLevel(raw.Level); ok {
		cfg.Level = lvl
	}
	cfg.Timestamp = raw.Timestamp
	cfg.NoColor = raw.NoColor
	cfg.Bypass = raw.Bypass
}

// parseLevel accepts zerolog level names plus a few operator aliases.
func parseLevel(raw string) (zerolog.Level, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "":
		return zerolog.InfoLevel, false
	case "diagnostics":
		return zerolog.TraceLevel, true
	case "warning":
		return zerolog.WarnLevel, true
	case "disable", "off", "none", "inactive":
		return zerolog.Disabled, true
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return zerolog.InfoLevel, false
	}
	return lvl, true
}
