package configs

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/internal/reconcile"
	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/pkg/shared/config"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

// Global variables for configuration and command arguments
var (
	AppConfig *config.Config
	logger    hclog.Logger
)

// ConfigsCmd groups the SCM config maintenance commands.
var ConfigsCmd = &cobra.Command{
	Use:                   "configs",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Maintain the Semgrep SCM configs for a GitHub Enterprise Server",
}

// Init initializes the global configuration and logger for the package.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

// fetchServerConfigs lists every SCM config of the deployment and narrows
// them to the given server URL.
func fetchServerConfigs(client *semgrep.Client, ghesURL string) ([]semgrep.Config, error) {
	all, err := client.ListConfigs()
	if err != nil {
		logger.Error("failed to list SCM configs", "error", err)
		return nil, errors.NewCommandError(fmt.Errorf("failed to list SCM configs: %w", err), 2)
	}
	return reconcile.FilterConfigsByBaseURL(all, ghesURL), nil
}

// refreshStatuses runs a connectivity check for every config and writes the
// fresh result back onto the slice. A failed check degrades to a warning so
// one unreachable config never aborts the pass; the warning count is
// returned for the summary.
func refreshStatuses(client *semgrep.Client, configs []semgrep.Config, delay time.Duration) int {
	warnings := 0
	for i := range configs {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}
		check, err := client.CheckConfig(configs[i].ID)
		if err != nil {
			warnings++
			logger.Warn("connectivity check failed",
				"config", configs[i].ID, "namespace", configs[i].Namespace, "error", err)
			continue
		}
		reconcile.ApplyCheckResult(&configs[i], check)
	}
	return warnings
}

// describeStatus renders a config status for the listings.
func describeStatus(status *semgrep.Status) string {
	switch {
	case status == nil:
		return "unknown"
	case status.OK:
		return "ok"
	case status.Error != "":
		return fmt.Sprintf("failed (%s)", status.Error)
	default:
		return "failed"
	}
}
