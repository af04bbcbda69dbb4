package probe

import (
	"context"
	"fmt"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/platform/ssh"
)

// Keypair checks that the dispatch key rffmpeg uses to reach workers exists
// on the NAS.
func Keypair(dispatcher Runner, cfg *config.Config) Probe {
	command := fmt.Sprintf("test -f %s && test -f %s.pub",
		ssh.Quote(cfg.Dispatcher.DispatchKeyPath), ssh.Quote(cfg.Dispatcher.DispatchKeyPath))
	return Probe{
		ID:          IDKeypair,
		Description: "dispatch key pair present on the NAS",
		Check: func(ctx context.Context) bool {
			return succeeds(ctx, dispatcher, command)
		},
	}
}

// Rffmpeg checks that the Jellyfin container is running and answers rffmpeg
// admin commands.
func Rffmpeg(dispatcher Runner, cfg *config.Config) Probe {
	command := fmt.Sprintf("docker exec %s rffmpeg status >/dev/null 2>&1", ssh.Quote(cfg.Dispatcher.Container))
	return Probe{
		ID:          IDRffmpeg,
		Description: "rffmpeg available inside the Jellyfin container",
		Check: func(ctx context.Context) bool {
			return succeeds(ctx, dispatcher, command)
		},
	}
}

// DispatcherProbes returns the probe set for the dispatcher role, in step order.
func DispatcherProbes(dispatcher Runner, cfg *config.Config) []Probe {
	return []Probe{
		Keypair(dispatcher, cfg),
		Rffmpeg(dispatcher, cfg),
	}
}
