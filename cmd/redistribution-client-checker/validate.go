package main

import (
	"fmt"
	"os"

	"github.com/cdot65/redistribution-client-checker/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file without connecting to the appliance.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		log.Error().Msg("config file is required")
		return cmd.Help()
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.Error().Str("file", configFile).Msg("config file not found")
		return fmt.Errorf("config file not found: %s", configFile)
	}

	cfg, err := config.NewParser().LoadFile(configFile)
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to parse config")
		return err
	}

	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Hostname: %s\n", cfg.Panorama.Hostname)
	fmt.Printf("  Username: %s\n", cfg.Panorama.Username)
	fmt.Printf("  Password: (configured)\n")
	fmt.Printf("  SSH Port: %d\n", cfg.Panorama.Port)
	fmt.Printf("  Timeout: %s\n", cfg.Panorama.Timeout)
	fmt.Println()
	fmt.Println("Optional Features:")
	fmt.Printf("  Reachability Probe: %v\n", cfg.Ping != nil)

	if cfg.Ping != nil {
		fmt.Println()
		fmt.Println("Probe Configuration:")
		fmt.Printf("  Count: %d\n", cfg.Ping.Count)
		fmt.Printf("  Timeout: %s\n", cfg.Ping.Timeout)
	}

	return nil
}
