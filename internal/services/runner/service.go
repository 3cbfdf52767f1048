// Package runner orchestrates the redistribution check workflow.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cdot65/redistribution-client-checker/internal/models"
	"github.com/cdot65/redistribution-client-checker/internal/report"
	"github.com/cdot65/redistribution-client-checker/internal/services/panorama"
	"github.com/cdot65/redistribution-client-checker/internal/services/probe"
	"github.com/cdot65/redistribution-client-checker/internal/services/ssh"
	"github.com/rs/zerolog"
)

// statusCommand is sent over the CLI because the XML API response omits
// the SSL config field.
const statusCommand = "show redistribution service status"

// Service defines the interface for the check runner.
type Service interface {
	Run(ctx context.Context, cfg models.CheckerConfig) error
}

// Impl implements the runner Service interface.
type Impl struct {
	probeSvc probe.Service
	sshSvc   ssh.Service
	panSvc   panorama.Service
	logger   zerolog.Logger
	out      io.Writer
}

// New creates a new runner service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		probeSvc: probe.New(logger),
		sshSvc:   ssh.New(logger),
		panSvc:   panorama.New(logger),
		logger:   logger,
		out:      os.Stdout,
	}
}

// NewWithServices creates a new runner service with custom services (for testing).
func NewWithServices(
	logger zerolog.Logger,
	probeSvc probe.Service,
	sshSvc ssh.Service,
	panSvc panorama.Service,
	out io.Writer,
) *Impl {
	return &Impl{
		probeSvc: probeSvc,
		sshSvc:   sshSvc,
		panSvc:   panSvc,
		logger:   logger,
		out:      out,
	}
}

// Run executes the complete check workflow: probe, CLI status, then the
// XML API stage when the status gate is open, and finally the table.
func (s *Impl) Run(ctx context.Context, cfg models.CheckerConfig) error {
	s.logger.Info().
		Str("host", cfg.Panorama.Hostname).
		Msg("starting redistribution check")

	// Step 1: Reachability probe (if configured)
	if cfg.Ping != nil {
		if err := s.runProbe(ctx, cfg); err != nil {
			return err
		}
	}

	// Step 2: CLI session and status command
	status, err := s.fetchStatus(ctx, cfg.Panorama)
	if err != nil {
		return err
	}
	if status == nil {
		// Empty response: nothing to report, but not a failure.
		report.Render(s.out, nil)
		return nil
	}

	s.logger.Debug().
		Str("status", status.RedistributionStatus).
		Str("ssl_config", status.SSLConfig).
		Int("clients", status.NumberOfClients).
		Msg("status command parsed")

	// Step 3: Gate. The API stage only makes sense while the service is up
	// and still running on default certificates.
	if !status.Up() || !status.UsesDefaultCerts() {
		s.logger.Info().
			Str("status", status.RedistributionStatus).
			Str("ssl_config", status.SSLConfig).
			Msg("redistribution service not up on default certificates, skipping client survey")
		report.Render(s.out, nil)
		return nil
	}

	// Step 4: XML API survey
	rows, err := s.surveyClients(cfg.Panorama)
	if err != nil {
		return err
	}

	report.Render(s.out, rows)

	s.logger.Info().
		Int("devices", len(rows)).
		Msg("redistribution check completed")
	return nil
}

func (s *Impl) runProbe(ctx context.Context, cfg models.CheckerConfig) error {
	result, err := s.probeSvc.Ping(ctx, cfg.Panorama.Hostname, *cfg.Ping)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("probe failed: %w", result.Error)
	}
	if !result.Reachable {
		return fmt.Errorf("appliance %s did not answer the reachability probe", cfg.Panorama.Hostname)
	}

	s.logger.Debug().
		Int("packets_recv", result.PacketsRecv).
		Msg("appliance reachable")
	return nil
}

// fetchStatus runs the status command over the CLI. A nil report with a
// nil error means the command returned no output.
func (s *Impl) fetchStatus(ctx context.Context, cfg models.PanoramaConfig) (*models.StatusReport, error) {
	if err := s.sshSvc.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("unable to establish connection with the device: %w", err)
	}
	defer func() { _ = s.sshSvc.Close() }()

	result, err := s.sshSvc.Run(ctx, statusCommand)
	if err != nil {
		return nil, fmt.Errorf("status command failed: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("status command failed: %w", result.Error)
	}

	if strings.TrimSpace(result.Output) == "" {
		s.logger.Warn().Msg("no output received from the status command")
		return nil, nil
	}

	status := report.ParseStatus(result.Output)
	return &status, nil
}

func (s *Impl) surveyClients(cfg models.PanoramaConfig) ([]models.DeviceRow, error) {
	if err := s.panSvc.Connect(cfg); err != nil {
		return nil, err
	}

	clients, err := s.panSvc.RedistributionClients()
	if err != nil {
		return nil, err
	}

	devices, err := s.panSvc.ConnectedDevices()
	if err != nil {
		return nil, err
	}
	s.logger.Debug().
		Int("connected_devices", len(devices)).
		Int("redistribution_clients", len(clients)).
		Msg("panorama inventory retrieved")

	rows := make([]models.DeviceRow, 0, len(clients))
	for _, client := range clients {
		row, err := s.panSvc.FirewallRow(client.Host)
		if err != nil {
			return nil, fmt.Errorf("surveying firewall %s: %w", client.Host, err)
		}
		rows = append(rows, *row)
	}

	return rows, nil
}
