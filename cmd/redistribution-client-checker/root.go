package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Configuration flags.
	configFile string
	hostname   string
	username   string
	password   string
	debug      bool
	quiet      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "redistribution-client-checker",
	Short: "Report redistribution status of Panorama-managed firewalls",
	Long: `redistribution-client-checker interacts with a Panorama appliance to report
on its redistribution service:
  - Reads the service status and SSL configuration over the PAN-OS CLI
  - Surveys redistribution clients and connected firewalls over the XML API
  - Prints a summary table of each firewall's identity and redistribution role

One-shot invocation; credentials come from flags, a config file, or a prompt.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	rootCmd.PersistentFlags().StringVar(&hostname, "hostname", "", "hostname of the Panorama appliance")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "username for the Panorama appliance")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "password for the Panorama appliance")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(validateCmd)
}

func setupLogging() {
	// Set output format. Logs go to stderr so the table stays clean on stdout.
	if jsonOutput {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		output.FormatLevel = func(i interface{}) string {
			if s, ok := i.(string); ok {
				return strings.ToUpper(s)
			}
			return ""
		}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set log level
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
