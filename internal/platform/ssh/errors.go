package ssh

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnreachable indicates the host could not be reached at the transport
// level (dial failure, reset, timeout).
var ErrUnreachable = errors.New("host unreachable")

// ErrAuthentication indicates the SSH handshake completed but key-based
// authentication was rejected. Unprivileged execution never falls back to an
// interactive prompt, so this is surfaced immediately.
var ErrAuthentication = errors.New("ssh authentication failed")

// PrivilegedError reports a privileged command or batch that ran but exited
// non-zero, including a sudo credential rejection.
type PrivilegedError struct {
	ExitCode int
	Stderr   string
}

func (e *PrivilegedError) Error() string {
	msg := fmt.Sprintf("privileged action failed with exit code %d", e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// classifyConnError maps a dial/handshake error onto the executor's error
// taxonomy. Authentication rejections are distinguished from plain
// unreachability because callers retry the latter but not the former.
func classifyConnError(addr string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "unable to authenticate") ||
		strings.Contains(msg, "no supported methods remain") ||
		strings.Contains(msg, "permission denied") {
		return fmt.Errorf("%w for %s: %v", ErrAuthentication, addr, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnreachable, addr, err)
}
