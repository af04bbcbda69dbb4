// Package state persists provisioning progress across process exits and host
// reboots.
//
// The store is a single JSON document (by default ~/.transcodarr/state.json)
// holding a config map, the set of completed step ids, and the pending-reboot
// flag with its resume pointer. The document is an external contract: the
// monitoring front-end reads the same file, so key names under "config"
// (nas_ip, mac_user, media_path, cache_path, jellyfin_container) must not
// change. Unknown keys in the document are ignored on read so newer writers
// stay readable.
//
// Every mutation rewrites the whole document through a temp-file-and-rename
// cycle, so a crash mid-write never leaves a truncated or half-edited file.
// A document that fails to parse is treated as absent: the store starts from
// an empty valid state rather than wedging provisioning on a corrupt file.
package state

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// document is the on-disk shape of the state file.
type document struct {
	Role           string            `json:"role,omitempty"`
	StartedAt      time.Time         `json:"started_at,omitzero"`
	PendingReboot  bool              `json:"pending_reboot"`
	ResumeStep     string            `json:"resume_step,omitempty"`
	ResumeHost     string            `json:"resume_host,omitempty"`
	CompletedSteps []string          `json:"completed_steps"`
	Config         map[string]string `json:"config"`
}

func emptyDocument() document {
	return document{
		CompletedSteps: []string{},
		Config:         map[string]string{},
	}
}

// Store is the file-backed provisioning state. It is not safe for concurrent
// use; running two installer processes against one state file is unsupported.
type Store struct {
	path string
	doc  document
}

// DefaultPath returns the conventional state file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".transcodarr", "state.json"), nil
}

// Open loads the state file at path, creating an empty store if the file does
// not exist. A file that exists but cannot be parsed is discarded and replaced
// by an empty valid state; provisioning must never become permanently stuck on
// a malformed state file.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: emptyDocument()}

	data, err := os.ReadFile(path) // #nosec G304 -- operator-controlled state path
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("state file %s is corrupt (%v); reinitializing", path, err)
		return s, nil
	}
	if doc.Config == nil {
		doc.Config = map[string]string{}
	}
	if doc.CompletedSteps == nil {
		doc.CompletedSteps = []string{}
	}
	s.doc = doc
	return s, nil
}

// Begin records the role and first-run timestamp. The timestamp is set once;
// later invocations keep the original value.
func (s *Store) Begin(role string) error {
	changed := false
	if s.doc.Role != role {
		s.doc.Role = role
		changed = true
	}
	if s.doc.StartedAt.IsZero() {
		s.doc.StartedAt = time.Now().UTC()
		changed = true
	}
	if !changed {
		return nil
	}
	return s.save()
}

// Role returns the role recorded at first run, if any.
func (s *Store) Role() string { return s.doc.Role }

// StartedAt returns the first-run timestamp, zero if the store is fresh.
func (s *Store) StartedAt() time.Time { return s.doc.StartedAt }

// Get returns the config value for key, or the empty string.
func (s *Store) Get(key string) string {
	return s.doc.Config[key]
}

// Set stores a config value and persists the document.
func (s *Store) Set(key, value string) error {
	s.doc.Config[key] = value
	return s.save()
}

// Config returns a copy of the config map.
func (s *Store) Config() map[string]string {
	out := make(map[string]string, len(s.doc.Config))
	for k, v := range s.doc.Config {
		out[k] = v
	}
	return out
}

// MarkStepComplete records a step id in the completion ledger. Recording the
// same id twice is a no-op.
func (s *Store) MarkStepComplete(id string) error {
	if s.IsStepComplete(id) {
		return nil
	}
	s.doc.CompletedSteps = append(s.doc.CompletedSteps, id)
	return s.save()
}

// IsStepComplete reports whether a step id is in the completion ledger.
func (s *Store) IsStepComplete(id string) bool {
	return slices.Contains(s.doc.CompletedSteps, id)
}

// ResetStep removes a single step from the completion ledger so the next run
// re-executes it. This is the only sanctioned way to shrink the ledger short
// of a full Reset.
func (s *Store) ResetStep(id string) error {
	idx := slices.Index(s.doc.CompletedSteps, id)
	if idx < 0 {
		return nil
	}
	s.doc.CompletedSteps = slices.Delete(s.doc.CompletedSteps, idx, idx+1)
	return s.save()
}

// CompletedSteps returns a copy of the completion ledger in recorded order.
func (s *Store) CompletedSteps() []string {
	return slices.Clone(s.doc.CompletedSteps)
}

// SetPendingReboot durably records that a reboot is about to happen and what
// must run afterwards. The flag and the resume pointer are written together;
// a pending reboot without a resume pointer is invalid by construction.
func (s *Store) SetPendingReboot(resumeStep, host string) error {
	if resumeStep == "" || host == "" {
		return fmt.Errorf("pending reboot requires a resume step and host")
	}
	s.doc.PendingReboot = true
	s.doc.ResumeStep = resumeStep
	s.doc.ResumeHost = host
	return s.save()
}

// ClearPendingReboot clears the flag and resume pointer after a successful
// wait-for-up.
func (s *Store) ClearPendingReboot() error {
	s.doc.PendingReboot = false
	s.doc.ResumeStep = ""
	s.doc.ResumeHost = ""
	return s.save()
}

// PendingReboot reports the pending-reboot flag and its resume pointer.
func (s *Store) PendingReboot() (pending bool, resumeStep, host string) {
	return s.doc.PendingReboot, s.doc.ResumeStep, s.doc.ResumeHost
}

// Reset restores the store to an empty valid state and persists it. Only an
// explicit uninstall/reset goes through here.
func (s *Store) Reset() error {
	s.doc = emptyDocument()
	return s.save()
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// save writes the document atomically: marshal, write to a temp file in the
// same directory, fsync, rename over the target.
func (s *Store) save() error {
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to chmod temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
