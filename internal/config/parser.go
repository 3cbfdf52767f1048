// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cdot65/redistribution-client-checker/internal/models"
	"github.com/spf13/viper"
)

const (
	// DefaultSSHPort is the PAN-OS management SSH port.
	DefaultSSHPort = 22
	// DefaultTimeout bounds the SSH dial and each prompt read.
	DefaultTimeout = 30 * time.Second
	// DefaultPingCount is how many probe packets to send.
	DefaultPingCount = 4
	// DefaultPingTimeout bounds the whole probe.
	DefaultPingTimeout = 5 * time.Second
)

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")
	return &Parser{v: v}
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.CheckerConfig, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a reader (useful for testing).
func (p *Parser) LoadReader(content string) (*models.CheckerConfig, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

func (p *Parser) parse() (*models.CheckerConfig, error) {
	cfg := &models.CheckerConfig{}

	cfg.Panorama = models.PanoramaConfig{
		Hostname: p.v.GetString("panorama.hostname"),
		Username: p.v.GetString("panorama.username"),
		Password: p.expandEnv(p.v.GetString("panorama.password")),
		Port:     p.v.GetInt("panorama.port"),
		Timeout:  p.v.GetDuration("panorama.timeout"),
	}

	// Parse optional ping config.
	if p.v.IsSet("ping") {
		if p.v.GetBool("ping.enabled") {
			cfg.Ping = &models.PingConfig{
				Count:   p.v.GetInt("ping.count"),
				Timeout: p.v.GetDuration("ping.timeout"),
			}
		}
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR.
func (p *Parser) expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// ApplyDefaults fills in zero-valued settings. Called after flag overrides
// as well, so defaults hold regardless of where values came from.
func ApplyDefaults(cfg *models.CheckerConfig) {
	if cfg.Panorama.Port == 0 {
		cfg.Panorama.Port = DefaultSSHPort
	}
	if cfg.Panorama.Timeout == 0 {
		cfg.Panorama.Timeout = DefaultTimeout
	}
	if cfg.Ping != nil {
		if cfg.Ping.Count == 0 {
			cfg.Ping.Count = DefaultPingCount
		}
		if cfg.Ping.Timeout == 0 {
			cfg.Ping.Timeout = DefaultPingTimeout
		}
	}
}

// Validate performs validation on the merged configuration.
func Validate(cfg *models.CheckerConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.Panorama.Hostname == "" {
		return fmt.Errorf("panorama.hostname is required")
	}

	if cfg.Panorama.Username == "" {
		return fmt.Errorf("panorama.username is required")
	}

	if cfg.Panorama.Password == "" {
		return fmt.Errorf("panorama.password is required")
	}

	return nil
}
