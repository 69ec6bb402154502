package configs

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/internal/reconcile"
	"github.com/appsec-tools/scmsync/internal/session"
	"github.com/appsec-tools/scmsync/pkg/shared"
)

type deleteOptions struct {
	GhesURL string
	Orgs    []string
	Delay   time.Duration
	DryRun  bool
}

var (
	deleteOpts deleteOptions

	exampleDeleteUsage = `  # Delete the configs of two organizations (all duplicates included)
  scmsync configs delete --orgs acme,platform-team

  # Preview which configs would be removed
  scmsync configs delete --orgs acme --dry-run`
)

var deleteCmd = &cobra.Command{
	Use:                   "delete --orgs ORGS [--delay D] [--dry-run] [--ghes-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleDeleteUsage,
	Short:                 "Delete the SCM configs of the named organizations",
	Long: `Delete the SCM configs of the named organizations on the GitHub Enterprise
Server. The organization list is mandatory; the command never derives a
deletion set on its own. Duplicate configs for an organization are all
removed.`,
	RunE: runDeleteCommand,
}

func runDeleteCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if err := validateDeleteArgs(&deleteOpts); err != nil {
		logger.Error("invalid delete arguments", "error", err)
		return err
	}

	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}
	ghesURL, err := sess.GhesURL(deleteOpts.GhesURL)
	if err != nil {
		return err
	}
	client, err := sess.SemgrepClient()
	if err != nil {
		return err
	}

	serverConfigs, err := fetchServerConfigs(client, ghesURL)
	if err != nil {
		return err
	}

	targets := reconcile.MatchConfigsByNamespace(serverConfigs, ghesURL, deleteOpts.Orgs)
	if len(targets) == 0 {
		fmt.Printf("Nothing to do: no configs match the given organizations on %s\n", ghesURL)
		return nil
	}

	if deleteOpts.DryRun {
		for _, cfg := range targets {
			fmt.Printf("[dry-run] would delete config %s (namespace=%s)\n", cfg.ID, cfg.Namespace)
		}
		fmt.Printf("[dry-run] %d configs on %s\n", len(targets), ghesURL)
		return nil
	}

	deleted, failed := 0, 0
	for i, cfg := range targets {
		if i > 0 && deleteOpts.Delay > 0 {
			time.Sleep(deleteOpts.Delay)
		}

		if err := client.DeleteConfig(cfg.ID); err != nil {
			failed++
			logger.Error("failed to delete SCM config", "config", cfg.ID, "namespace", cfg.Namespace, "error", err)
			continue
		}
		deleted++
		logger.Info("deleted SCM config", "config", cfg.ID, "namespace", cfg.Namespace)
	}

	fmt.Printf("Done. Deleted: %d, Failed: %d\n", deleted, failed)
	return nil
}

func init() {
	deleteCmd.Flags().StringVar(&deleteOpts.GhesURL, "ghes-url", "", "Base URL of the GitHub Enterprise Server (overrides GHES_URL).")
	deleteCmd.Flags().StringSliceVar(&deleteOpts.Orgs, "orgs", nil, "Organizations whose configs are deleted (required).")
	deleteCmd.Flags().DurationVar(&deleteOpts.Delay, "delay", time.Second, "Pause between config deletions.")
	deleteCmd.Flags().BoolVar(&deleteOpts.DryRun, "dry-run", false, "Print the planned deletions without mutating anything.")

	ConfigsCmd.AddCommand(deleteCmd)
}
