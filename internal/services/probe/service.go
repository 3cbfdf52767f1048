// Package probe checks appliance reachability before a session is attempted.
package probe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/cdot65/redistribution-client-checker/internal/models"
	"github.com/go-ping/ping"
	"github.com/rs/zerolog"
)

// Service defines the interface for the reachability probe.
type Service interface {
	Ping(ctx context.Context, host string, cfg models.PingConfig) (*models.PingResult, error)
}

// Pinger runs one probe and reports received packets.
type Pinger interface {
	Run() error
	PacketsRecv() int
}

// PingerFactory creates Pingers.
type PingerFactory interface {
	NewPinger(host string, count int, timeout time.Duration) (Pinger, error)
}

// DefaultPingerFactory is the default ICMP pinger factory.
type DefaultPingerFactory struct{}

// NewPinger creates a new ICMP pinger.
func (f *DefaultPingerFactory) NewPinger(host string, count int, timeout time.Duration) (Pinger, error) {
	p, err := ping.NewPinger(host)
	if err != nil {
		return nil, err
	}
	if runtime.GOOS == "windows" {
		p.SetPrivileged(true)
	}
	p.Count = count
	p.Timeout = timeout
	return &defaultPinger{p: p}, nil
}

type defaultPinger struct {
	p *ping.Pinger
}

func (d *defaultPinger) Run() error {
	return d.p.Run()
}

func (d *defaultPinger) PacketsRecv() int {
	return d.p.Statistics().PacketsRecv
}

// Impl implements the probe Service interface.
type Impl struct {
	factory PingerFactory
	logger  zerolog.Logger
}

// New creates a new probe service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		factory: &DefaultPingerFactory{},
		logger:  logger,
	}
}

// NewWithPingerFactory creates a new probe service with a custom factory (for testing).
func NewWithPingerFactory(logger zerolog.Logger, factory PingerFactory) *Impl {
	return &Impl{
		factory: factory,
		logger:  logger,
	}
}

// Ping sends cfg.Count ICMP packets at host; one reply means reachable.
func (s *Impl) Ping(ctx context.Context, host string, cfg models.PingConfig) (*models.PingResult, error) {
	result := &models.PingResult{}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result, nil
	}

	s.logger.Debug().
		Str("host", host).
		Int("count", cfg.Count).
		Dur("timeout", cfg.Timeout).
		Msg("probing appliance")

	pinger, err := s.factory.NewPinger(host, cfg.Count, cfg.Timeout)
	if err != nil {
		result.Error = fmt.Errorf("creating pinger: %w", err)
		return result, nil
	}

	if err := pinger.Run(); err != nil {
		result.Error = fmt.Errorf("probe failed: %w", err)
		return result, nil
	}

	result.PacketsRecv = pinger.PacketsRecv()
	result.Reachable = result.PacketsRecv > 0

	s.logger.Debug().
		Bool("reachable", result.Reachable).
		Int("packets_recv", result.PacketsRecv).
		Msg("probe completed")

	return result, nil
}
