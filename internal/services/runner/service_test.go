package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cdot65/redistribution-client-checker/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock implementations
type mockProbe struct {
	pingFunc func(ctx context.Context, host string, cfg models.PingConfig) (*models.PingResult, error)
	called   bool
}

func (m *mockProbe) Ping(ctx context.Context, host string, cfg models.PingConfig) (*models.PingResult, error) {
	m.called = true
	if m.pingFunc != nil {
		return m.pingFunc(ctx, host, cfg)
	}
	return &models.PingResult{Reachable: true, PacketsRecv: 4}, nil
}

type mockSSH struct {
	connectFunc func(ctx context.Context, cfg models.PanoramaConfig) error
	runFunc     func(ctx context.Context, command string) (*models.CommandResult, error)
	closed      bool
}

func (m *mockSSH) Connect(ctx context.Context, cfg models.PanoramaConfig) error {
	if m.connectFunc != nil {
		return m.connectFunc(ctx, cfg)
	}
	return nil
}

func (m *mockSSH) Run(ctx context.Context, command string) (*models.CommandResult, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, command)
	}
	return &models.CommandResult{Command: command}, nil
}

func (m *mockSSH) Close() error {
	m.closed = true
	return nil
}

type mockPanorama struct {
	connectFunc         func(cfg models.PanoramaConfig) error
	redistClientsFunc   func() ([]models.RedistClient, error)
	connectedDevsFunc   func() ([]models.ConnectedDevice, error)
	firewallRowFunc     func(serial string) (*models.DeviceRow, error)
	connectCalled       bool
	firewallRowRequests []string
}

func (m *mockPanorama) Connect(cfg models.PanoramaConfig) error {
	m.connectCalled = true
	if m.connectFunc != nil {
		return m.connectFunc(cfg)
	}
	return nil
}

func (m *mockPanorama) RedistributionClients() ([]models.RedistClient, error) {
	if m.redistClientsFunc != nil {
		return m.redistClientsFunc()
	}
	return nil, nil
}

func (m *mockPanorama) ConnectedDevices() ([]models.ConnectedDevice, error) {
	if m.connectedDevsFunc != nil {
		return m.connectedDevsFunc()
	}
	return nil, nil
}

func (m *mockPanorama) FirewallRow(serial string) (*models.DeviceRow, error) {
	m.firewallRowRequests = append(m.firewallRowRequests, serial)
	if m.firewallRowFunc != nil {
		return m.firewallRowFunc(serial)
	}
	return &models.DeviceRow{Serial: serial}, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testConfig() models.CheckerConfig {
	return models.CheckerConfig{
		Panorama: models.PanoramaConfig{
			Hostname: "panorama.example.com",
			Username: "admin",
			Password: "secret",
			Port:     22,
			Timeout:  30 * time.Second,
		},
	}
}

const statusUpDefaultCerts = `Redistribution service:      up
        SSL config:          Default certificates
        number of clients:   2
`

func statusSSH(output string) *mockSSH {
	return &mockSSH{
		runFunc: func(ctx context.Context, command string) (*models.CommandResult, error) {
			return &models.CommandResult{Command: command, Output: output}, nil
		},
	}
}

func TestRun_HappyPath(t *testing.T) {
	sshSvc := statusSSH(statusUpDefaultCerts)
	panSvc := &mockPanorama{
		redistClientsFunc: func() ([]models.RedistClient, error) {
			return []models.RedistClient{
				{Host: "013101001234"},
				{Host: "013101005678"},
			}, nil
		},
		connectedDevsFunc: func() ([]models.ConnectedDevice, error) {
			return []models.ConnectedDevice{{Serial: "013101001234"}}, nil
		},
		firewallRowFunc: func(serial string) (*models.DeviceRow, error) {
			return &models.DeviceRow{
				Hostname:     "fw-" + serial,
				Serial:       serial,
				RedistServer: serial == "013101001234",
			}, nil
		},
	}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), &mockProbe{}, sshSvc, panSvc, &out)
	err := svc.Run(context.Background(), testConfig())

	require.NoError(t, err)
	assert.True(t, sshSvc.closed)
	assert.Equal(t, []string{"013101001234", "013101005678"}, panSvc.firewallRowRequests)
	assert.Contains(t, out.String(), "fw-013101001234")
	assert.Contains(t, out.String(), "fw-013101005678")
}

func TestRun_ProbeSkippedWhenNotConfigured(t *testing.T) {
	probeSvc := &mockProbe{}
	sshSvc := statusSSH(statusUpDefaultCerts)
	panSvc := &mockPanorama{}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), probeSvc, sshSvc, panSvc, &out)
	err := svc.Run(context.Background(), testConfig())

	require.NoError(t, err)
	assert.False(t, probeSvc.called)
}

func TestRun_ProbeUnreachable(t *testing.T) {
	probeSvc := &mockProbe{
		pingFunc: func(ctx context.Context, host string, cfg models.PingConfig) (*models.PingResult, error) {
			return &models.PingResult{Reachable: false}, nil
		},
	}

	cfg := testConfig()
	cfg.Ping = &models.PingConfig{Count: 4, Timeout: 5 * time.Second}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), probeSvc, &mockSSH{}, &mockPanorama{}, &out)
	err := svc.Run(context.Background(), cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not answer the reachability probe")
	assert.Empty(t, out.String())
}

func TestRun_ConnectFailed(t *testing.T) {
	sshSvc := &mockSSH{
		connectFunc: func(ctx context.Context, cfg models.PanoramaConfig) error {
			return errors.New("connection refused")
		},
	}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), &mockProbe{}, sshSvc, &mockPanorama{}, &out)
	err := svc.Run(context.Background(), testConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to establish connection")
	assert.Empty(t, out.String())
}

func TestRun_EmptyStatusOutput(t *testing.T) {
	sshSvc := statusSSH("  \n")
	panSvc := &mockPanorama{}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), &mockProbe{}, sshSvc, panSvc, &out)
	err := svc.Run(context.Background(), testConfig())

	require.NoError(t, err)
	assert.False(t, panSvc.connectCalled)
	assert.Contains(t, out.String(), "No connected redistribution clients to report.")
}

func TestRun_GateClosed_ServiceDown(t *testing.T) {
	sshSvc := statusSSH(`Redistribution service:      down
        SSL config:          Default certificates
`)
	panSvc := &mockPanorama{}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), &mockProbe{}, sshSvc, panSvc, &out)
	err := svc.Run(context.Background(), testConfig())

	require.NoError(t, err)
	assert.False(t, panSvc.connectCalled)
	assert.Contains(t, out.String(), "No connected redistribution clients to report.")
}

func TestRun_GateClosed_CustomCerts(t *testing.T) {
	sshSvc := statusSSH(`Redistribution service:      up
        SSL config:          Custom CA issued
`)
	panSvc := &mockPanorama{}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), &mockProbe{}, sshSvc, panSvc, &out)
	err := svc.Run(context.Background(), testConfig())

	require.NoError(t, err)
	assert.False(t, panSvc.connectCalled)
}

func TestRun_APIConnectFailed(t *testing.T) {
	sshSvc := statusSSH(statusUpDefaultCerts)
	panSvc := &mockPanorama{
		connectFunc: func(cfg models.PanoramaConfig) error {
			return errors.New("invalid credentials")
		},
	}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), &mockProbe{}, sshSvc, panSvc, &out)
	err := svc.Run(context.Background(), testConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	// No table on credential failure.
	assert.Empty(t, out.String())
}

func TestRun_FirewallSurveyFailed(t *testing.T) {
	sshSvc := statusSSH(statusUpDefaultCerts)
	panSvc := &mockPanorama{
		redistClientsFunc: func() ([]models.RedistClient, error) {
			return []models.RedistClient{{Host: "013101001234"}}, nil
		},
		firewallRowFunc: func(serial string) (*models.DeviceRow, error) {
			return nil, errors.New("device not connected")
		},
	}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), &mockProbe{}, sshSvc, panSvc, &out)
	err := svc.Run(context.Background(), testConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "surveying firewall 013101001234")
	assert.Empty(t, out.String())
}

func TestRun_NoRedistClients(t *testing.T) {
	sshSvc := statusSSH(statusUpDefaultCerts)
	panSvc := &mockPanorama{}

	var out bytes.Buffer
	svc := NewWithServices(testLogger(), &mockProbe{}, sshSvc, panSvc, &out)
	err := svc.Run(context.Background(), testConfig())

	require.NoError(t, err)
	assert.True(t, panSvc.connectCalled)
	assert.Contains(t, out.String(), "No connected redistribution clients to report.")
}
