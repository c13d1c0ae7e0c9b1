package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the cellbin configuration file
// (~/.config/cellbin/config.yaml). Numeric fields are pointers so an
// explicit zero can be distinguished from "not set".
type Config struct {
	// Encoding defaults
	Block *int `yaml:"block"`
	Black *int `yaml:"black"`
	Alpha *int `yaml:"alpha"`

	Workers *int `yaml:"workers"`

	// Server
	ServerAddress string `yaml:"server_address"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cellbin", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or cannot be parsed.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}
	}
	return cfg
}

func parseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEncodeConfig applies config file defaults to encode command
// variables when the corresponding CLI flag was not explicitly set.
func applyEncodeConfig(c *cli.Command, cfg Config, block, black, alpha, workers *int) {
	if cfg.Block != nil && !c.IsSet("block") {
		*block = *cfg.Block
	}
	if cfg.Black != nil && !c.IsSet("black") {
		*black = *cfg.Black
	}
	if cfg.Alpha != nil && !c.IsSet("alpha") {
		*alpha = *cfg.Alpha
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		*workers = *cfg.Workers
	}
	applyLogConfig(c, cfg)
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	applyLogConfig(c, cfg)
}

func applyLogConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}
