// Package ssh provides the interactive PAN-OS CLI channel to the appliance.
package ssh

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/cdot65/redistribution-client-checker/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

// prompt marks the end of PAN-OS operational command output.
const prompt = ">"

// pagerOffCommand disables paging so long output arrives in one read.
const pagerOffCommand = "set cli pager off"

// Service defines the interface for the CLI session.
type Service interface {
	Connect(ctx context.Context, cfg models.PanoramaConfig) error
	Run(ctx context.Context, command string) (*models.CommandResult, error)
	Close() error
}

// Channel is an established interactive CLI session.
type Channel interface {
	Send(line string) error
	ReadUntil(ctx context.Context, marker string) (string, error)
	Close() error
}

// Dialer opens Channels to an appliance.
type Dialer interface {
	Dial(ctx context.Context, cfg models.PanoramaConfig) (Channel, error)
}

// DefaultDialer is the default SSH dialer.
type DefaultDialer struct{}

// Dial opens an SSH connection with a PTY-backed shell, matching how the
// PAN-OS management CLI expects to be driven.
func (d *DefaultDialer) Dial(ctx context.Context, cfg models.PanoramaConfig) (Channel, error) {
	sshConfig := &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // management network tool
		Timeout:         cfg.Timeout,
	}

	addr := net.JoinHostPort(cfg.Hostname, strconv.Itoa(cfg.Port))

	dialer := &net.Dialer{Timeout: cfg.Timeout}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(rawConn, addr, sshConfig)
	if err != nil {
		rawConn.Close()
		return nil, err
	}
	client := ssh.NewClient(clientConn, chans, reqs)

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, err
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 9600,
		ssh.TTY_OP_OSPEED: 9600,
	}
	if err := session.RequestPty("vt100", 80, 40, modes); err != nil {
		session.Close()
		client.Close()
		return nil, err
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, err
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, err
	}

	if err := session.Shell(); err != nil {
		session.Close()
		client.Close()
		return nil, err
	}

	return newShellChannel(client, session, stdin, stdout), nil
}

type readChunk struct {
	data []byte
	err  error
}

type shellChannel struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	chunks  chan readChunk
}

func newShellChannel(client *ssh.Client, session *ssh.Session, stdin io.WriteCloser, stdout io.Reader) *shellChannel {
	ch := &shellChannel{
		client:  client,
		session: session,
		stdin:   stdin,
		chunks:  make(chan readChunk, 16),
	}
	go ch.readLoop(stdout)
	return ch
}

func (c *shellChannel) readLoop(stdout io.Reader) {
	reader := bufio.NewReader(stdout)
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			c.chunks <- readChunk{data: data}
		}
		if err != nil {
			c.chunks <- readChunk{err: err}
			return
		}
	}
}

func (c *shellChannel) Send(line string) error {
	_, err := io.WriteString(c.stdin, line+"\n")
	return err
}

// ReadUntil accumulates output until marker appears. The context bounds
// the wait; a closed stream returns what was read plus the stream error.
func (c *shellChannel) ReadUntil(ctx context.Context, marker string) (string, error) {
	var sb strings.Builder
	for {
		if strings.Contains(sb.String(), marker) {
			return sb.String(), nil
		}
		select {
		case <-ctx.Done():
			return sb.String(), ctx.Err()
		case chunk := <-c.chunks:
			if chunk.err != nil {
				return sb.String(), fmt.Errorf("session closed: %w", chunk.err)
			}
			sb.Write(chunk.data)
		}
	}
}

func (c *shellChannel) Close() error {
	c.session.Close()
	return c.client.Close()
}

// Impl implements the CLI session Service interface.
type Impl struct {
	dialer  Dialer
	logger  zerolog.Logger
	channel Channel
}

// New creates a new CLI session service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		dialer: &DefaultDialer{},
		logger: logger,
	}
}

// NewWithDialer creates a new CLI session service with a custom dialer (for testing).
func NewWithDialer(logger zerolog.Logger, dialer Dialer) *Impl {
	return &Impl{
		dialer: dialer,
		logger: logger,
	}
}

// Connect opens the session, swallows the login banner and disables paging.
func (s *Impl) Connect(ctx context.Context, cfg models.PanoramaConfig) error {
	s.logger.Debug().
		Str("host", cfg.Hostname).
		Int("port", cfg.Port).
		Str("user", cfg.Username).
		Msg("opening CLI session")

	channel, err := s.dialer.Dial(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Hostname, err)
	}

	// Banner and MOTD end at the first operational prompt.
	if _, err := channel.ReadUntil(ctx, prompt); err != nil {
		channel.Close()
		return fmt.Errorf("waiting for prompt: %w", err)
	}

	if err := channel.Send(pagerOffCommand); err != nil {
		channel.Close()
		return fmt.Errorf("disabling pager: %w", err)
	}
	if _, err := channel.ReadUntil(ctx, prompt); err != nil {
		channel.Close()
		return fmt.Errorf("disabling pager: %w", err)
	}

	s.channel = channel
	s.logger.Debug().Msg("connected successfully to the device")
	return nil
}

// Run sends one command and collects its output up to the next prompt.
func (s *Impl) Run(ctx context.Context, command string) (*models.CommandResult, error) {
	result := &models.CommandResult{Command: command}

	if s.channel == nil {
		result.Error = fmt.Errorf("session not open")
		return result, nil
	}

	s.logger.Debug().Str("command", command).Msg("sending command")

	if err := s.channel.Send(command); err != nil {
		result.Error = fmt.Errorf("sending command: %w", err)
		return result, nil
	}

	raw, err := s.channel.ReadUntil(ctx, prompt)
	if err != nil {
		result.Error = fmt.Errorf("reading command output: %w", err)
		return result, nil
	}

	result.Output = stripPrompt(raw, prompt)
	s.logger.Debug().Str("command", command).Msg("command executed")
	return result, nil
}

// Close tears down the session.
func (s *Impl) Close() error {
	if s.channel == nil {
		return nil
	}
	err := s.channel.Close()
	s.channel = nil
	return err
}

// stripPrompt drops the trailing prompt line from raw output.
func stripPrompt(raw, marker string) string {
	i := strings.LastIndex(raw, marker)
	if i < 0 {
		return raw
	}
	if j := strings.LastIndex(raw[:i], "\n"); j >= 0 {
		return raw[:j]
	}
	return ""
}
