// Package ui renders doctor and status output with lipgloss.
//
// Rendering is pure string assembly: commands gather their data first, then
// hand it here. Color degrades automatically on non-TTY outputs.
package ui

import (
	"fmt"
	"strings"

	"github.com/transcodarr/transcodarr/internal/dispatch"
	"github.com/transcodarr/transcodarr/internal/plan"
	"github.com/transcodarr/transcodarr/internal/probe"
)

// DoctorReport carries everything the doctor command renders for one host.
type DoctorReport struct {
	Host    string
	Role    string
	Probes  []probe.Probe
	Results probe.Results
	Status  plan.Status
}

// RenderDoctor renders one host's capability table and classification.
func RenderDoctor(r DoctorReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Doctor — %s (%s)", r.Host, r.Role)))
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Capabilities"))
	b.WriteString("\n")

	for _, p := range r.Probes {
		if r.Results.Satisfied(p.ID) {
			b.WriteString(fmt.Sprintf("  %s %s\n", okStyle.Render(checkMark), p.Description))
		} else {
			b.WriteString(fmt.Sprintf("  %s %s\n", failStyle.Render(crossMark), p.Description))
		}
	}

	b.WriteString(sectionStyle.Render("Classification"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s\n", renderStatus(r.Status)))

	if missing := missingIDs(r.Probes, r.Results); len(missing) > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  pending: %s", strings.Join(missing, ", "))))
		b.WriteString("\n")
	}

	return b.String()
}

// StatusReport carries the status command's view: the local ledger plus the
// dispatcher's live host table.
type StatusReport struct {
	Role           string
	StatePath      string
	CompletedSteps []string
	RequiredSteps  []string
	PendingReboot  bool
	ResumeStep     string
	ResumeHost     string
	Workers        []dispatch.Host
	WorkersErr     error
}

// RenderStatus renders the setup ledger and the registered worker table.
func RenderStatus(r StatusReport) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Transcodarr status"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("role: %s  state: %s", r.Role, r.StatePath)))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Setup progress"))
	b.WriteString("\n")
	done := make(map[string]bool, len(r.CompletedSteps))
	for _, id := range r.CompletedSteps {
		done[id] = true
	}
	for _, id := range r.RequiredSteps {
		if done[id] {
			b.WriteString(fmt.Sprintf("  %s %s\n", okStyle.Render(checkMark), id))
		} else {
			b.WriteString(fmt.Sprintf("  %s %s\n", dimStyle.Render(pending), id))
		}
	}

	if r.PendingReboot {
		b.WriteString(sectionStyle.Render("Pending reboot"))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s %s is awaiting a restart; resume with `transcodarr setup --resume` (step %s)\n",
			warnStyle.Render(warnMark), r.ResumeHost, r.ResumeStep))
	}

	b.WriteString(sectionStyle.Render("Registered workers"))
	b.WriteString("\n")
	switch {
	case r.WorkersErr != nil:
		b.WriteString(fmt.Sprintf("  %s %s\n", failStyle.Render(crossMark), r.WorkersErr))
	case len(r.Workers) == 0:
		b.WriteString(dimStyle.Render("  none registered"))
		b.WriteString("\n")
	default:
		b.WriteString(renderWorkerTable(r.Workers))
	}

	return b.String()
}

func renderWorkerTable(workers []dispatch.Host) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-20s %-20s %6s %8s %s",
		"HOSTNAME", "NAME", "WEIGHT", "ACTIVE", "STATE")))
	b.WriteString("\n")
	for _, w := range workers {
		// State goes last and unpadded: styling adds escape codes that would
		// throw off column widths.
		state := w.State
		if state == "active" {
			state = okStyle.Render(state)
		}
		b.WriteString(fmt.Sprintf("  %-20s %-20s %6d %8d %s\n",
			w.Hostname, w.Servername, w.Weight, w.Active, state))
	}
	return b.String()
}

func renderStatus(s plan.Status) string {
	if s == plan.FullyConfigured {
		return okStyle.Render(s.String())
	}
	return warnStyle.Render(s.String())
}

func missingIDs(probes []probe.Probe, results probe.Results) []string {
	var missing []string
	for _, p := range probes {
		if !results.Satisfied(p.ID) {
			missing = append(missing, p.ID)
		}
	}
	return missing
}
