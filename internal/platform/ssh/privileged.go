package ssh

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/zeebo/blake3"
	"golang.org/x/term"
)

// payloadDir is where delivered batch scripts land on the remote host.
const payloadDir = "/tmp"

// readPassword is a seam for tests. The default implementation prompts on the
// operator's terminal with echo disabled.
var readPassword = func(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// stdinIsTerminal is a seam for tests.
var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ExecPrivileged runs a single command under sudo. It is a one-element batch:
// the same delivery-then-elevate flow applies.
func (c *Client) ExecPrivileged(ctx context.Context, command string) (Result, error) {
	return c.ExecPrivilegedBatch(ctx, "set -eu\n"+command+"\n")
}

// Deliver streams content into a content-addressed file on the remote host
// and returns its path. The transfer is a plain stdin stream: content never
// appears on a command line, so no escaping of the payload is ever needed.
// Delivering the same content twice overwrites the identical file.
func (c *Client) Deliver(ctx context.Context, content []byte) (string, error) {
	client, err := c.connect(ctx, true)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	path := payloadPath(string(content))
	res, err := c.run(ctx, client, fmt.Sprintf("cat > %s && chmod 0700 %s", path, path), bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to deliver payload to %s: %w", c.config.Host, err)
	}
	if !res.Ok() {
		return "", fmt.Errorf("failed to deliver payload to %s: %s", c.config.Host, strings.TrimSpace(res.Stderr))
	}
	return path, nil
}

// ExecPrivilegedBatch delivers a multi-step script to the remote host and
// executes it under a single sudo invocation, so a batch of N privileged
// operations costs at most one credential prompt.
//
// Delivery and elevation are deliberately separate sessions: the script body
// streams over a non-interactive stdin into a content-addressed file, and
// only the elevation session carries credential bytes. Script content can
// therefore never corrupt the prompt, and nothing from the script is ever
// interpolated into a shell command line.
//
// Without a terminal on stdin the batch runs under sudo -n and fails fast if
// a password would be required.
func (c *Client) ExecPrivilegedBatch(ctx context.Context, script string) (Result, error) {
	client, err := c.connect(ctx, true)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = client.Close() }()

	path := payloadPath(script)

	// Phase 1: deliver. The path is derived from the payload hash, so
	// delivering the same batch twice overwrites the identical file.
	deliver := fmt.Sprintf("cat > %s && chmod 0700 %s", path, path)
	res, err := c.run(ctx, client, deliver, bytes.NewReader([]byte(script)))
	if err != nil {
		return res, fmt.Errorf("failed to deliver batch payload to %s: %w", c.config.Host, err)
	}
	if !res.Ok() {
		return res, fmt.Errorf("failed to deliver batch payload to %s: %s", c.config.Host, strings.TrimSpace(res.Stderr))
	}

	// Phase 2: elevate. The payload file is removed regardless of outcome.
	password, err := c.sudoCredential()
	if err != nil {
		return Result{}, err
	}

	var execute string
	var stdin *bytes.Reader
	if password == nil {
		execute = fmt.Sprintf("sudo -n /bin/sh %s; rc=$?; rm -f %s; exit $rc", path, path)
	} else {
		execute = fmt.Sprintf("sudo -S -p '' /bin/sh %s; rc=$?; rm -f %s; exit $rc", path, path)
		stdin = bytes.NewReader(append(password, '\n'))
	}

	res, err = c.run(ctx, client, execute, stdin)
	if err != nil {
		return res, err
	}
	if !res.Ok() {
		if strings.Contains(res.Stderr, "a password is required") {
			return res, fmt.Errorf("%w: sudo on %s needs a password but no terminal is attached", ErrAuthentication, c.config.Host)
		}
		return res, &PrivilegedError{ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return res, nil
}

// sudoCredential returns the cached sudo password, prompting the operator on
// first use. It returns nil (meaning "run sudo -n") when stdin is not a
// terminal.
func (c *Client) sudoCredential() ([]byte, error) {
	if c.promptedSudo {
		return c.sudoPassword, nil
	}
	if !stdinIsTerminal() {
		c.promptedSudo = true
		c.sudoPassword = nil
		return nil, nil
	}
	password, err := readPassword(fmt.Sprintf("[sudo] password for %s@%s: ", c.config.User, c.config.Host))
	if err != nil {
		return nil, fmt.Errorf("failed to read sudo password: %w", err)
	}
	c.promptedSudo = true
	c.sudoPassword = password
	return c.sudoPassword, nil
}

// payloadPath names the remote temp file after the payload's BLAKE3 digest.
func payloadPath(script string) string {
	sum := blake3.Sum256([]byte(script))
	return fmt.Sprintf("%s/transcodarr-%x.sh", payloadDir, sum[:12])
}
