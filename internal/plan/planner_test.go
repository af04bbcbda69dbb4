package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/probe"
)

// workerResults builds a Results map with every worker probe satisfied, then
// applies overrides.
func workerResults(overrides map[string]bool) probe.Results {
	results := probe.Results{}
	for _, id := range RequiredSteps(config.RoleWorker) {
		results[id] = true
	}
	for id, v := range overrides {
		results[id] = v
	}
	return results
}

func TestClassifyWorker(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]bool
		want      Status
	}{
		{"everything satisfied", nil, FullyConfigured},
		{"no toolchain", map[string]bool{probe.IDFFmpeg: false}, FirstTime},
		{"no toolchain and nothing else either", map[string]bool{
			probe.IDHomebrew: false, probe.IDFFmpeg: false, probe.IDMountpoints: false,
			probe.IDNFSMounts: false, probe.IDMountService: false, probe.IDPower: false,
			probe.IDSSHTrust: false, probe.IDRegister: false,
		}, FirstTime},
		{"toolchain ok, trust missing", map[string]bool{probe.IDSSHTrust: false}, AddingWorker},
		{"toolchain ok, trust ok, mounts missing", map[string]bool{probe.IDNFSMounts: false}, Partial},
		{"power drifted", map[string]bool{probe.IDPower: false}, Partial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(config.RoleWorker, workerResults(tt.overrides))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyDispatcher(t *testing.T) {
	assert.Equal(t, FullyConfigured, Classify(config.RoleDispatcher, probe.Results{
		probe.IDKeypair: true, probe.IDRffmpeg: true,
	}))
	assert.Equal(t, FirstTime, Classify(config.RoleDispatcher, probe.Results{
		probe.IDKeypair: false, probe.IDRffmpeg: false,
	}))
	assert.Equal(t, Partial, Classify(config.RoleDispatcher, probe.Results{
		probe.IDKeypair: false, probe.IDRffmpeg: true,
	}))
}

func TestClassifyIsPureFunctionOfResults(t *testing.T) {
	// Same inputs, same answer; reclassification after a reboot only depends
	// on the fresh probe results handed in.
	before := workerResults(map[string]bool{probe.IDMountpoints: false})
	assert.Equal(t, Partial, Classify(config.RoleWorker, before))

	after := workerResults(nil) // mountpoints materialized after reboot
	assert.Equal(t, FullyConfigured, Classify(config.RoleWorker, after))
}

func TestPendingPreservesDependencyOrder(t *testing.T) {
	results := workerResults(map[string]bool{
		probe.IDPower:     false,
		probe.IDHomebrew:  false,
		probe.IDNFSMounts: false,
	})

	pending := Pending(config.RoleWorker, results)
	assert.Equal(t, []string{probe.IDHomebrew, probe.IDNFSMounts, probe.IDPower}, pending)
}

func TestPendingEmptyWhenFullyConfigured(t *testing.T) {
	assert.Empty(t, Pending(config.RoleWorker, workerResults(nil)))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "first-time", FirstTime.String())
	assert.Equal(t, "adding-worker", AddingWorker.String())
	assert.Equal(t, "fully-configured", FullyConfigured.String())
	assert.Equal(t, "partial", Partial.String())
	assert.Equal(t, "unknown", Status(42).String())
}
