package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// Duration is a time.Duration written as a string such as "10s" in config files.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config represents the configuration of a chat node
type Config struct {
	// Default config file location
	configFile string

	// Network settings. Empty ListenIP and zero Port are resolved at startup.
	Network struct {
		ListenIP       string   `json:"listen_ip" toml:"listen_ip"`
		Port           int      `json:"port" toml:"port"`
		ProbeAddress   string   `json:"probe_address" toml:"probe_address"`
		Codec          string   `json:"codec" toml:"codec"`
		RequestTimeout Duration `json:"request_timeout" toml:"request_timeout"`
		CallTimeout    Duration `json:"call_timeout" toml:"call_timeout"`
	} `json:"network" toml:"network"`

	// Contacts directory. An empty path keeps contacts in memory only.
	Directory struct {
		Path string `json:"path" toml:"path"`
	} `json:"directory" toml:"directory"`
}

// NewEmptyConfig generates a new configuration with default settings
func NewEmptyConfig(configFile string) *Config {
	cfg := &Config{}

	cfg.configFile = configFile

	cfg.Network.ListenIP = ""
	cfg.Network.Port = 0
	cfg.Network.ProbeAddress = "8.8.8.8:80"
	cfg.Network.Codec = "json"
	cfg.Network.RequestTimeout = Duration{10 * time.Second}
	cfg.Network.CallTimeout = Duration{0}

	cfg.Directory.Path = ""

	return cfg
}

func NewConfigFromFile(configFile string) (*Config, error) {
	cfg := NewEmptyConfig(configFile)
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) File() string {
	return c.configFile
}

func (c *Config) isTOML() bool {
	return strings.EqualFold(filepath.Ext(c.configFile), ".toml")
}

// Save saves the configuration to a file
func (c *Config) Save() error {
	log.Infof("Saving config to %s", c.configFile)

	if c.isTOML() {
		buf := new(bytes.Buffer)
		if err := toml.NewEncoder(buf).Encode(c); err != nil {
			return err
		}
		return os.WriteFile(c.configFile, buf.Bytes(), 0644)
	}

	// We'll marshall our structure to JSON and write it into a file
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.configFile, data, 0644)
}

func (c *Config) Load() error {
	log.Infof("Loading config from %s", c.configFile)
	data, err := os.ReadFile(c.configFile)
	if err != nil {
		return err
	}

	if c.isTOML() {
		_, err = toml.Decode(string(data), c)
		return err
	}

	return json.Unmarshal(data, c)
}
