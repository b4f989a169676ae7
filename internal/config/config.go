// Package config loads the lircd2tomld daemon configuration file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/John-Robertt/lircd2toml-go/internal/logging"
	"github.com/rs/zerolog"
)

type Daemon struct {
	Listen            string
	ReadHeaderTimeout time.Duration
	ConvertTimeout    time.Duration
	FetchTimeout      time.Duration
	ShutdownTimeout   time.Duration

	// MaxBodyBytes caps POST /api/convert request bodies.
	MaxBodyBytes int64
	// Workers bounds per-request conversion concurrency; 0 means NumCPU.
	Workers int

	LogLevel zerolog.Level
	LogJSON  bool
}

func Default() Daemon {
	return Daemon{
		Listen:            "127.0.0.1:25600",
		ReadHeaderTimeout: 5 * time.Second,
		ConvertTimeout:    30 * time.Second,
		FetchTimeout:      15 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		MaxBodyBytes:      2 << 20,
		LogLevel:          zerolog.InfoLevel,
	}
}

type fileConfig struct {
	Listen            string `toml:"listen"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	ConvertTimeout    string `toml:"convert_timeout"`
	FetchTimeout      string `toml:"fetch_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
	MaxBodyBytes      int64  `toml:"max_body_bytes"`
	Workers           int    `toml:"workers"`
	LogLevel          string `toml:"log_level"`
	LogJSON           bool   `toml:"log_json"`
}

// Load reads path on top of Default. Keys missing from the file keep their
// default value; unknown keys are rejected.
func Load(path string) (Daemon, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Daemon{}, fmt.Errorf("load daemon config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Daemon{}, fmt.Errorf("load daemon config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("listen") {
		if v := strings.TrimSpace(raw.Listen); v != "" {
			cfg.Listen = v
		}
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"read_header_timeout", raw.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"convert_timeout", raw.ConvertTimeout, &cfg.ConvertTimeout},
		{"fetch_timeout", raw.FetchTimeout, &cfg.FetchTimeout},
		{"shutdown_timeout", raw.ShutdownTimeout, &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Daemon{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		if v <= 0 {
			return Daemon{}, fmt.Errorf("parse %s: must be positive", d.key)
		}
		*d.dst = v
	}

	if meta.IsDefined("max_body_bytes") {
		if raw.MaxBodyBytes <= 0 {
			return Daemon{}, fmt.Errorf("parse max_body_bytes: must be positive")
		}
		cfg.MaxBodyBytes = raw.MaxBodyBytes
	}

	if meta.IsDefined("workers") {
		if raw.Workers < 0 {
			return Daemon{}, fmt.Errorf("parse workers: must not be negative")
		}
		cfg.Workers = raw.Workers
	}

	if meta.IsDefined("log_level") {
		lvl, ok := logging.ParseLevel(raw.LogLevel)
		if !ok {
			return Daemon{}, fmt.Errorf("parse log_level: unknown level %q", raw.LogLevel)
		}
		cfg.LogLevel = lvl
	}

	if meta.IsDefined("log_json") {
		cfg.LogJSON = raw.LogJSON
	}

	return cfg, nil
}
