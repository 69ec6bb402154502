package configs

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/internal/reconcile"
	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/internal/session"
	"github.com/appsec-tools/scmsync/pkg/shared"
)

type updateOptions struct {
	GhesURL string
	Orgs    []string
	Delay   time.Duration
	DryRun  bool

	subscribe        bool
	autoScan         bool
	useNetworkBroker bool
	diffEnabled      bool
}

var (
	updateOpts updateOptions

	exampleUpdateUsage = `  # Enable auto-scan on every config of the GHES instance
  scmsync configs update --auto-scan=true

  # Disable event subscription for two organizations only
  scmsync configs update --orgs acme,platform-team --subscribe=false`
)

var updateCmd = &cobra.Command{
	Use:                   "update [--orgs ORGS] [--subscribe BOOL] [--auto-scan BOOL] [--use-network-broker BOOL] [--diff-enabled BOOL] [--delay D] [--dry-run] [--ghes-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleUpdateUsage,
	Short:                 "Update settings on existing SCM configs",
	Long: `Update settings on the SCM configs of the GitHub Enterprise Server.

Only flags that were explicitly set are sent to the API; every other setting
keeps its current value.`,
	RunE: runUpdateCommand,
}

// buildPatch collects only the setting flags the user explicitly set.
func buildPatch(cmd *cobra.Command, opts *updateOptions) semgrep.ConfigPatch {
	var patch semgrep.ConfigPatch
	if cmd.Flags().Changed("subscribe") {
		patch.Subscribe = &opts.subscribe
	}
	if cmd.Flags().Changed("auto-scan") {
		patch.AutoScan = &opts.autoScan
	}
	if cmd.Flags().Changed("use-network-broker") {
		patch.UseNetworkBroker = &opts.useNetworkBroker
	}
	if cmd.Flags().Changed("diff-enabled") {
		patch.DiffEnabled = &opts.diffEnabled
	}
	return patch
}

func runUpdateCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	patch := buildPatch(cmd, &updateOpts)
	if err := validateUpdateArgs(patch); err != nil {
		logger.Error("invalid update arguments", "error", err)
		return err
	}

	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}
	ghesURL, err := sess.GhesURL(updateOpts.GhesURL)
	if err != nil {
		return err
	}
	client, err := sess.SemgrepClient()
	if err != nil {
		return err
	}

	targets, err := fetchServerConfigs(client, ghesURL)
	if err != nil {
		return err
	}
	if len(updateOpts.Orgs) > 0 {
		targets = reconcile.MatchConfigsByNamespace(targets, ghesURL, updateOpts.Orgs)
	}
	if len(targets) == 0 {
		fmt.Printf("Nothing to do: no configs match on %s\n", ghesURL)
		return nil
	}

	if updateOpts.DryRun {
		for _, cfg := range targets {
			fmt.Printf("[dry-run] would update config %s (namespace=%s)\n", cfg.ID, cfg.Namespace)
		}
		fmt.Printf("[dry-run] %d configs on %s\n", len(targets), ghesURL)
		return nil
	}

	updated, failed := 0, 0
	for i, cfg := range targets {
		if i > 0 && updateOpts.Delay > 0 {
			time.Sleep(updateOpts.Delay)
		}

		if _, err := client.PatchConfig(cfg.ID, patch); err != nil {
			failed++
			logger.Error("failed to update SCM config", "config", cfg.ID, "namespace", cfg.Namespace, "error", err)
			continue
		}
		updated++
		logger.Info("updated SCM config", "config", cfg.ID, "namespace", cfg.Namespace)
	}

	fmt.Printf("Done. Updated: %d, Failed: %d\n", updated, failed)
	return nil
}

func init() {
	updateCmd.Flags().StringVar(&updateOpts.GhesURL, "ghes-url", "", "Base URL of the GitHub Enterprise Server (overrides GHES_URL).")
	updateCmd.Flags().StringSliceVar(&updateOpts.Orgs, "orgs", nil, "Restrict the update to these organizations.")
	updateCmd.Flags().DurationVar(&updateOpts.Delay, "delay", time.Second, "Pause between config updates.")
	updateCmd.Flags().BoolVar(&updateOpts.subscribe, "subscribe", false, "Subscribe the configs to repository events.")
	updateCmd.Flags().BoolVar(&updateOpts.autoScan, "auto-scan", false, "Enable automatic scanning.")
	updateCmd.Flags().BoolVar(&updateOpts.useNetworkBroker, "use-network-broker", false, "Route SCM traffic through the network broker.")
	updateCmd.Flags().BoolVar(&updateOpts.diffEnabled, "diff-enabled", false, "Enable diff-aware scanning.")
	updateCmd.Flags().BoolVar(&updateOpts.DryRun, "dry-run", false, "Print the planned changes without mutating anything.")

	ConfigsCmd.AddCommand(updateCmd)
}
