// Package panorama drives the Panorama XML API for redistribution checks.
package panorama

import (
	"fmt"

	"github.com/PaloAltoNetworks/pango"
	"github.com/cdot65/redistribution-client-checker/internal/models"
	"github.com/cdot65/redistribution-client-checker/internal/xmlmap"
	"github.com/rs/zerolog"
)

// Operational commands, in the API's XML form.
const (
	cmdRedistClients    = "<show><redistribution><service><client>all</client></service></redistribution></show>"
	cmdDevicesConnected = "<show><devices><connected/></devices></show>"
	cmdSystemInfo       = "<show><system><info/></system></show>"
)

// Service defines the interface for XML API operations.
type Service interface {
	Connect(cfg models.PanoramaConfig) error
	RedistributionClients() ([]models.RedistClient, error)
	ConnectedDevices() ([]models.ConnectedDevice, error)
	FirewallRow(serial string) (*models.DeviceRow, error)
}

// Conn is an authenticated API connection. FirewallOp addresses a managed
// firewall by serial through Panorama's target routing.
type Conn interface {
	Op(cmd string) ([]byte, error)
	FirewallOp(serial, cmd string) ([]byte, error)
}

// ClientFactory builds API connections.
type ClientFactory interface {
	Connect(cfg models.PanoramaConfig) (Conn, error)
}

// DefaultClientFactory is the default pango-backed factory.
type DefaultClientFactory struct{}

// Connect initializes a pango Panorama client, which also validates the
// supplied credentials against the appliance.
func (f *DefaultClientFactory) Connect(cfg models.PanoramaConfig) (Conn, error) {
	p := &pango.Panorama{
		Client: pango.Client{
			Hostname: cfg.Hostname,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	}
	if err := p.Initialize(); err != nil {
		return nil, err
	}
	return &pangoConn{panorama: p}, nil
}

type pangoConn struct {
	panorama *pango.Panorama
}

func (c *pangoConn) Op(cmd string) ([]byte, error) {
	return c.panorama.Op(cmd, "", nil, nil)
}

func (c *pangoConn) FirewallOp(serial, cmd string) ([]byte, error) {
	fw := &pango.Firewall{
		Client: pango.Client{
			Hostname: c.panorama.Hostname,
			ApiKey:   c.panorama.ApiKey,
			Target:   serial,
		},
	}
	if err := fw.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing firewall %s: %w", serial, err)
	}
	return fw.Op(cmd, "", nil, nil)
}

// Impl implements the XML API Service interface.
type Impl struct {
	factory ClientFactory
	logger  zerolog.Logger
	conn    Conn
}

// New creates a new Panorama API service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		factory: &DefaultClientFactory{},
		logger:  logger,
	}
}

// NewWithClientFactory creates a new Panorama API service with a custom factory (for testing).
func NewWithClientFactory(logger zerolog.Logger, factory ClientFactory) *Impl {
	return &Impl{
		factory: factory,
		logger:  logger,
	}
}

// Connect authenticates against the XML API.
func (s *Impl) Connect(cfg models.PanoramaConfig) error {
	s.logger.Debug().Str("host", cfg.Hostname).Msg("validating API credentials")

	conn, err := s.factory.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Panorama: %w", err)
	}

	s.conn = conn
	s.logger.Debug().Msg("successfully connected to Panorama with credentials")
	return nil
}

// RedistributionClients lists the redistribution clients known to Panorama.
func (s *Impl) RedistributionClients() ([]models.RedistClient, error) {
	m, err := s.op(cmdRedistClients)
	if err != nil {
		return nil, fmt.Errorf("listing redistribution clients: %w", err)
	}

	var clients []models.RedistClient
	for _, entry := range xmlmap.Entries(m, "response.result.entry") {
		clients = append(clients, models.RedistClient{
			Host:    xmlmap.Str(entry, "host"),
			Port:    xmlmap.Str(entry, "port"),
			Vsys:    xmlmap.Str(entry, "vsys"),
			Version: xmlmap.Str(entry, "version"),
			Status:  xmlmap.Str(entry, "status"),
		})
	}

	s.logger.Debug().Int("count", len(clients)).Msg("redistribution clients retrieved")
	return clients, nil
}

// ConnectedDevices lists the firewalls currently connected to Panorama.
func (s *Impl) ConnectedDevices() ([]models.ConnectedDevice, error) {
	m, err := s.op(cmdDevicesConnected)
	if err != nil {
		return nil, fmt.Errorf("listing connected devices: %w", err)
	}

	var devices []models.ConnectedDevice
	for _, entry := range xmlmap.Entries(m, "response.result.devices.entry") {
		devices = append(devices, models.ConnectedDevice{
			Serial:   xmlmap.Str(entry, "serial"),
			Hostname: xmlmap.Str(entry, "hostname"),
		})
	}

	s.logger.Debug().Int("count", len(devices)).Msg("connected devices retrieved")
	return devices, nil
}

// FirewallRow gathers one firewall's system info and redistribution role.
func (s *Impl) FirewallRow(serial string) (*models.DeviceRow, error) {
	if s.conn == nil {
		return nil, fmt.Errorf("not connected")
	}

	redistRaw, err := s.conn.FirewallOp(serial, cmdRedistClients)
	if err != nil {
		return nil, fmt.Errorf("querying redistribution clients on %s: %w", serial, err)
	}
	redistMap, err := xmlmap.FromBytes(redistRaw)
	if err != nil {
		return nil, fmt.Errorf("parsing redistribution response from %s: %w", serial, err)
	}

	infoRaw, err := s.conn.FirewallOp(serial, cmdSystemInfo)
	if err != nil {
		return nil, fmt.Errorf("querying system info on %s: %w", serial, err)
	}
	infoMap, err := xmlmap.FromBytes(infoRaw)
	if err != nil {
		return nil, fmt.Errorf("parsing system info from %s: %w", serial, err)
	}

	systems := xmlmap.Entries(infoMap, "response.result.system")
	if len(systems) == 0 {
		return nil, fmt.Errorf("system info missing from %s response", serial)
	}
	info := systems[0]

	row := &models.DeviceRow{
		Hostname:         xmlmap.Str(info, "hostname"),
		IPAddress:        xmlmap.Str(info, "ip-address"),
		Serial:           xmlmap.Str(info, "serial"),
		Model:            xmlmap.Str(info, "model"),
		SWVersion:        xmlmap.Str(info, "sw-version"),
		AppVersion:       xmlmap.Str(info, "app-version"),
		DeviceCertStatus: xmlmap.Str(info, "device-certificate-status"),
		// A firewall with its own redistribution clients acts as a server.
		RedistServer: xmlmap.HasValue(redistMap, "response.result"),
	}

	s.logger.Debug().
		Str("serial", serial).
		Str("hostname", row.Hostname).
		Bool("redist_server", row.RedistServer).
		Msg("firewall row assembled")

	return row, nil
}

func (s *Impl) op(cmd string) (map[string]interface{}, error) {
	if s.conn == nil {
		return nil, fmt.Errorf("not connected")
	}
	raw, err := s.conn.Op(cmd)
	if err != nil {
		return nil, err
	}
	return xmlmap.FromBytes(raw)
}
