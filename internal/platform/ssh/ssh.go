// Package ssh provides the remote executor for provisioning commands.
//
// It wraps golang.org/x/crypto/ssh with three execution modes: plain
// unprivileged commands (Exec), single privileged commands (ExecPrivileged),
// and privileged multi-step batches (ExecPrivilegedBatch). Privileged modes
// deliver the payload to a content-addressed temporary file on the remote
// host over a non-interactive session first, then execute it under sudo in a
// second session, so payload bytes never share a stream with the credential
// prompt and never pass through shell interpolation.
//
// Security: host key verification is disabled by default, which suits a
// managed private LAN where hosts are addressed directly. Configure
// HostKeyCallback when the transport crosses untrusted networks.
package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/transcodarr/transcodarr/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds SSH client configuration for one remote host.
type Config struct {
	Host string
	Port int
	User string

	// KeyPath references the private key on the local filesystem. The key
	// contents are loaded at construction and never stored elsewhere.
	KeyPath string

	// PrivateKey overrides KeyPath when non-empty (used by callers that
	// already hold key material, e.g. tests).
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used. Authentication rejections are
	// never retried.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback
}

// Result captures one remote command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Ok reports whether the command exited zero.
func (r Result) Ok() bool { return r.ExitCode == 0 }

// Client executes commands on one remote host. The private key is parsed once
// at construction; connections are opened per call and closed before return.
type Client struct {
	config *Config
	signer ssh.Signer

	// sudoPassword caches the operator's credential for the lifetime of the
	// process so a run with several privileged steps prompts at most once.
	sudoPassword []byte
	promptedSudo bool
}

// NewClient validates the configuration, loads and parses the private key,
// and returns a client. No connection is made yet.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}

	configCopy := *cfg
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // Default for a managed private LAN
	}

	key := configCopy.PrivateKey
	if len(key) == 0 {
		if configCopy.KeyPath == "" {
			return nil, fmt.Errorf("config needs a private key or key path")
		}
		data, err := os.ReadFile(configCopy.KeyPath) // #nosec G304 -- key path from operator config
		if err != nil {
			return nil, fmt.Errorf("failed to read private key %s: %w", configCopy.KeyPath, err)
		}
		key = data
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Addr returns the host:port dial address of this client.
func (c *Client) Addr() string {
	return fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
}

// Host returns the configured host.
func (c *Client) Host() string { return c.config.Host }

// Exec runs an unprivileged command. It never blocks on an interactive
// prompt: only key-based auth is attempted, and a rejection surfaces as
// ErrAuthentication. A non-zero exit is not an error; callers inspect
// Result.ExitCode.
func (c *Client) Exec(ctx context.Context, command string) (Result, error) {
	client, err := c.connect(ctx, true)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = client.Close() }()

	return c.run(ctx, client, command, nil)
}

// Ping performs a single connection and auth handshake without retries.
// The reboot orchestrator uses it to distinguish "port open" from "SSH
// service ready and key accepted".
func (c *Client) Ping(ctx context.Context) error {
	client, err := c.connect(ctx, false)
	if err != nil {
		return err
	}
	return client.Close()
}

// connect establishes the SSH connection, retrying transport failures with
// backoff when retryDial is set. Authentication failures are fatal either way.
func (c *Client) connect(ctx context.Context, retryDial bool) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User:            c.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signer)},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := c.Addr()
	dial := func() (*ssh.Client, error) {
		client, err := ssh.Dial("tcp", addr, config)
		if err != nil {
			return nil, classifyConnError(addr, err)
		}
		return client, nil
	}

	if !retryDial {
		return dial()
	}

	var client *ssh.Client
	err := retry.WithExponentialBackoff(ctx, func() error {
		var dialErr error
		client, dialErr = dial()
		if errors.Is(dialErr, ErrAuthentication) {
			return retry.Fatal(dialErr)
		}
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return client, nil
}

// run executes a command on an established connection, capturing stdout,
// stderr, and the exit status. stdin, when non-nil, is streamed to the remote
// command (used for payload delivery and sudo credential feeding).
func (c *Client) run(ctx context.Context, client *ssh.Client, command string, stdin *bytes.Reader) (Result, error) {
	session, err := client.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if stdin != nil {
		session.Stdin = stdin
	}

	if err := session.Start(command); err != nil {
		return Result{}, fmt.Errorf("failed to start command on %s: %w", c.config.Host, err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case <-ctx.Done():
		_ = session.Close()
		<-done
		return Result{}, fmt.Errorf("command on %s interrupted: %w", c.config.Host, ctx.Err())
	case err = <-done:
	}

	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
			return result, nil
		}
		return result, fmt.Errorf("command on %s failed without exit status: %w", c.config.Host, err)
	}
	return result, nil
}
