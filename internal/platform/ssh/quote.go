package ssh

import "strings"

// Quote wraps s in single quotes for safe inclusion in a remote shell command
// line. Embedded single quotes are closed, escaped, and reopened. Payload
// bodies should go through ExecPrivilegedBatch instead; Quote is for short
// arguments like paths and names that have already passed validation.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
