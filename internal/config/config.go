// Package config resolves the coordinator's startup configuration from an optional TOML file overlaid by CLI
// flags, per spec.md §6's defaults.
package config

import (
	"flag"

	"github.com/BurntSushi/toml"
)

// Config holds the coordinator's startup configuration.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	LogLevel        string `toml:"log_level"`
	InvokeTimeoutMS int    `toml:"invoke_timeout_ms"`
	TickIntervalMS  int    `toml:"tick_interval_ms"`
}

// Default returns the configuration used when neither a config file nor flags override anything.
func Default() Config {
	return Config{
		Host:            "localhost",
		Port:            8765,
		LogLevel:        "info",
		InvokeTimeoutMS: 5000,
		TickIntervalMS:  50,
	}
}

// Load reads a TOML file at path (if non-empty) into the defaults, then parses args against a flag.FlagSet seeded
// from the resulting values, so flags take precedence over the file, which takes precedence over defaults.
func Load(args []string, path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	fs := flag.NewFlagSet("xnode-coordinatord", flag.ContinueOnError)
	fs.String("config", path, "path to a TOML config file")
	host := fs.String("host", cfg.Host, "listen host")
	port := fs.Int("port", cfg.Port, "listen port")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	invokeTimeoutMS := fs.Int("invoke-timeout-ms", cfg.InvokeTimeoutMS, "per-invocation deadline in milliseconds")
	tickIntervalMS := fs.Int("tick-interval-ms", cfg.TickIntervalMS, "delay between outer ticks of a Running tree, in milliseconds")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Host = *host
	cfg.Port = *port
	cfg.LogLevel = *logLevel
	cfg.InvokeTimeoutMS = *invokeTimeoutMS
	cfg.TickIntervalMS = *tickIntervalMS

	return cfg, nil
}
