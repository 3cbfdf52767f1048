package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cdot65/redistribution-client-checker/internal/config"
	"github.com/cdot65/redistribution-client-checker/internal/models"
	"github.com/cdot65/redistribution-client-checker/internal/services/runner"
	"github.com/howeyc/gopass"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the redistribution check",
	Long: `Run the complete check workflow:
1. Probe the appliance (if configured)
2. Open a CLI session and read the redistribution service status
3. When the service is up on default certificates, survey the
   redistribution clients over the XML API
4. Print a summary table of the connected firewalls`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return err
	}

	// Credentials may be incomplete until the prompt.
	if cfg.Panorama.Password == "" {
		pass, err := gopass.GetPasswdPrompt("Password: ", true, os.Stdin, os.Stdout)
		if err != nil {
			log.Error().Err(err).Msg("failed to read password")
			return err
		}
		cfg.Panorama.Password = string(pass)
	}

	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	log.Info().
		Str("host", cfg.Panorama.Hostname).
		Str("user", cfg.Panorama.Username).
		Msg("configuration loaded")

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	runnerSvc := runner.New(log.Logger)
	if err := runnerSvc.Run(ctx, *cfg); err != nil {
		log.Error().Err(err).Msg("check failed")
		return err
	}

	return nil
}

// loadConfig merges the config file (when given) with flag overrides.
func loadConfig() (*models.CheckerConfig, error) {
	cfg := &models.CheckerConfig{}

	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configFile)
		}
		parsed, err := config.NewParser().LoadFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = parsed
	}

	if hostname != "" {
		cfg.Panorama.Hostname = hostname
	}
	if username != "" {
		cfg.Panorama.Username = username
	}
	if password != "" {
		cfg.Panorama.Password = password
	}

	config.ApplyDefaults(cfg)
	return cfg, nil
}
