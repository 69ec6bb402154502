package repos

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/internal/batch"
	"github.com/appsec-tools/scmsync/internal/reconcile"
	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/internal/session"
	"github.com/appsec-tools/scmsync/pkg/shared/config"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

// Global variables for configuration and command arguments
var (
	AppConfig *config.Config
	logger    hclog.Logger

	onboardOptions struct {
		GhesURL       string
		RequireScopes []string
		ChunkSize     int
		Delay         time.Duration
		CheckDelay    time.Duration
		Tags          []string
		DryRun        bool

		diffScan bool
		fullScan bool
	}

	exampleOnboardUsage = `  # Onboard every uninitialized repository behind a healthy config
  scmsync repos onboard --full-scan=true

  # Require webhook rights on the serving config and tag the repositories
  scmsync repos onboard --require-scopes manage_webhooks --tags ghes,bulk --diff-scan=true`
)

// ReposCmd groups the repository maintenance commands.
var ReposCmd = &cobra.Command{
	Use:                   "repos",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Maintain the repositories known to the Semgrep deployment",
}

var onboardCmd = &cobra.Command{
	Use:                   "onboard [--require-scopes SCOPES] [--chunk-size N] [--delay D] [--tags TAGS] [--diff-scan BOOL] [--full-scan BOOL] [--dry-run] [--ghes-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleOnboardUsage,
	Short:                 "Enable scanning for uninitialized repositories in chunks",
	Long: `Enable scanning for every uninitialized repository of the GitHub Enterprise
Server whose organization has a healthy SCM config. Repositories behind an
unhealthy or missing config are skipped and reported, never mutated.`,
	RunE: runOnboardCommand,
}

// Init initializes the global configuration and logger for the package.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

// buildSettings collects only the scan flags the user explicitly set.
func buildSettings(cmd *cobra.Command) semgrep.BulkUpdateSettings {
	settings := semgrep.BulkUpdateSettings{Tags: onboardOptions.Tags}
	if cmd.Flags().Changed("diff-scan") {
		settings.DiffScan = &onboardOptions.diffScan
	}
	if cmd.Flags().Changed("full-scan") {
		settings.FullScan = &onboardOptions.fullScan
	}
	return settings
}

func runOnboardCommand(cmd *cobra.Command, args []string) error {
	requiredScopes, err := reconcile.ParseScopeNames(onboardOptions.RequireScopes)
	if err != nil {
		return err
	}

	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}
	ghesURL, err := sess.GhesURL(onboardOptions.GhesURL)
	if err != nil {
		return err
	}
	client, err := sess.SemgrepClient()
	if err != nil {
		return err
	}

	allConfigs, err := client.ListConfigs()
	if err != nil {
		logger.Error("failed to list SCM configs", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to list SCM configs: %w", err), 2)
	}
	serverConfigs := reconcile.FilterConfigsByBaseURL(allConfigs, ghesURL)

	// scope gating needs fresh scope data, which only the check endpoint reports
	if len(requiredScopes) > 0 {
		for i := range serverConfigs {
			if i > 0 && onboardOptions.CheckDelay > 0 {
				time.Sleep(onboardOptions.CheckDelay)
			}
			check, err := client.CheckConfig(serverConfigs[i].ID)
			if err != nil {
				logger.Warn("connectivity check failed, keeping the recorded status",
					"config", serverConfigs[i].ID, "namespace", serverConfigs[i].Namespace, "error", err)
				continue
			}
			reconcile.ApplyCheckResult(&serverConfigs[i], check)
		}
	}

	notSetup := false
	repositories, err := client.SearchRepositories(semgrep.RepositoryFilter{IsSetup: &notSetup})
	if err != nil {
		logger.Error("failed to search repositories", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to search repositories: %w", err), 2)
	}

	active := repositories[:0]
	archived := 0
	for _, repo := range repositories {
		if repo.Archived {
			archived++
			continue
		}
		active = append(active, repo)
	}

	eligible, skipped := reconcile.PartitionByHealth(active, serverConfigs, requiredScopes)
	for _, repo := range skipped {
		logger.Warn("skipping repository without a healthy config", "repository", repo.Name, "url", repo.URL)
	}

	if len(eligible) == 0 {
		fmt.Printf("Nothing to do: no eligible repositories on %s (skipped: %d, archived: %d)\n",
			ghesURL, len(skipped), archived)
		return nil
	}

	settings := buildSettings(cmd)

	if onboardOptions.DryRun {
		for _, repo := range eligible {
			fmt.Printf("[dry-run] would onboard %s (%s)\n", repo.Name, repo.ID)
		}
		fmt.Printf("[dry-run] %d repositories in chunks of %d (skipped: %d, archived: %d)\n",
			len(eligible), onboardOptions.ChunkSize, len(skipped), archived)
		return nil
	}

	ids := make([]string, len(eligible))
	for i, repo := range eligible {
		ids[i] = repo.ID
	}

	runner := batch.New(logger, onboardOptions.ChunkSize, onboardOptions.Delay, 0)
	result := runner.Run(ids, func(chunk []string) error {
		updated, err := client.BulkUpdateRepositories(chunk, settings)
		if err != nil {
			return err
		}
		logger.Info("onboarded repositories", "requested", len(chunk), "updated", len(updated))
		return nil
	})

	fmt.Printf("Done. Onboarded: %d, Failed: %d, Skipped: %d, Archived: %d\n",
		result.Succeeded, result.Failed, len(skipped), archived)
	return nil
}

func init() {
	onboardCmd.Flags().StringVar(&onboardOptions.GhesURL, "ghes-url", "", "Base URL of the GitHub Enterprise Server (overrides GHES_URL).")
	onboardCmd.Flags().StringSliceVar(&onboardOptions.RequireScopes, "require-scopes", nil, "Token scopes the serving config must hold.")
	onboardCmd.Flags().IntVar(&onboardOptions.ChunkSize, "chunk-size", batch.DefaultChunkSize, "Repositories per bulk update call.")
	onboardCmd.Flags().DurationVar(&onboardOptions.Delay, "delay", time.Second, "Pause between bulk update calls.")
	onboardCmd.Flags().DurationVar(&onboardOptions.CheckDelay, "check-delay", time.Second, "Pause between config connectivity checks.")
	onboardCmd.Flags().StringSliceVar(&onboardOptions.Tags, "tags", nil, "Tags applied to every onboarded repository.")
	onboardCmd.Flags().BoolVar(&onboardOptions.diffScan, "diff-scan", false, "Enable diff scanning on the repositories.")
	onboardCmd.Flags().BoolVar(&onboardOptions.fullScan, "full-scan", false, "Enable full scanning on the repositories.")
	onboardCmd.Flags().BoolVar(&onboardOptions.DryRun, "dry-run", false, "Print the planned changes without mutating anything.")

	ReposCmd.AddCommand(onboardCmd)
}
