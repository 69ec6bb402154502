package scans

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/internal/batch"
	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/internal/session"
	"github.com/appsec-tools/scmsync/pkg/shared/config"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

// Global variables for configuration and command arguments
var (
	AppConfig *config.Config
	logger    hclog.Logger

	triggerOptions struct {
		All        bool
		ChunkSize  int
		Delay      time.Duration
		CheckDelay time.Duration
		DryRun     bool
	}

	exampleTriggerUsage = `  # Trigger a scan for every onboarded repository without a completed full scan
  scmsync scans trigger

  # Trigger scans for every onboarded repository regardless of scan history
  scmsync scans trigger --all --chunk-size 100 --delay 5s`
)

// ScansCmd groups the scan orchestration commands.
var ScansCmd = &cobra.Command{
	Use:                   "scans",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Trigger scans on the Semgrep deployment",
}

var triggerCmd = &cobra.Command{
	Use:                   "trigger [--all] [--chunk-size N] [--delay D] [--check-delay D] [--dry-run]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleTriggerUsage,
	Short:                 "Trigger scans for onboarded repositories in chunks",
	Long: `Trigger scans for onboarded repositories in chunks. By default every
repository's scan history is consulted first and repositories that already
have a completed full scan are skipped; --all triggers regardless of
history.`,
	RunE: runTriggerCommand,
}

// Init initializes the global configuration and logger for the package.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runTriggerCommand(cmd *cobra.Command, args []string) error {
	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}
	client, err := sess.SemgrepClient()
	if err != nil {
		return err
	}

	isSetup := true
	repositories, err := client.SearchRepositories(semgrep.RepositoryFilter{IsSetup: &isSetup})
	if err != nil {
		logger.Error("failed to search repositories", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to search repositories: %w", err), 2)
	}

	var ids []string
	for _, repo := range repositories {
		if repo.Archived {
			continue
		}
		ids = append(ids, repo.ID)
	}

	if len(ids) == 0 {
		fmt.Println("Nothing to do: no onboarded repositories")
		return nil
	}

	if triggerOptions.DryRun {
		mode := "repositories without a completed full scan"
		if triggerOptions.All {
			mode = "all repositories"
		}
		fmt.Printf("[dry-run] would trigger scans for up to %d repositories (%s) in chunks of %d\n",
			len(ids), mode, triggerOptions.ChunkSize)
		return nil
	}

	runner := batch.New(logger, triggerOptions.ChunkSize, triggerOptions.Delay, triggerOptions.CheckDelay)
	submit := func(chunk []string) error {
		if _, err := client.TriggerScans(chunk); err != nil {
			return err
		}
		logger.Info("triggered scans", "repositories", len(chunk))
		return nil
	}

	var result *batch.Result
	if triggerOptions.All {
		result = runner.Run(ids, submit)
	} else {
		result = runner.RunFiltered(ids, hasCompletedFullScan(client), submit)
	}

	fmt.Printf("Done. Triggered: %d, Failed: %d, Skipped: %d, Warnings: %d\n",
		result.Succeeded, result.Failed, result.Skipped, result.Warnings)
	return nil
}

// hasCompletedFullScan reports whether a repository already has a completed
// full scan in its history.
func hasCompletedFullScan(client *semgrep.Client) batch.PrecheckFunc {
	return func(repoID string) (bool, error) {
		scans, err := client.ListProjectScans(repoID,
			[]string{semgrep.ScanTypeFull}, []string{semgrep.ScanStatusCompleted})
		if err != nil {
			return false, err
		}
		return len(scans) > 0, nil
	}
}

func init() {
	triggerCmd.Flags().BoolVar(&triggerOptions.All, "all", false, "Trigger scans regardless of scan history.")
	triggerCmd.Flags().IntVar(&triggerOptions.ChunkSize, "chunk-size", batch.DefaultChunkSize, "Repositories per trigger call.")
	triggerCmd.Flags().DurationVar(&triggerOptions.Delay, "delay", time.Second, "Pause between trigger calls.")
	triggerCmd.Flags().DurationVar(&triggerOptions.CheckDelay, "check-delay", time.Second, "Pause between scan history checks.")
	triggerCmd.Flags().BoolVar(&triggerOptions.DryRun, "dry-run", false, "Print the planned work without mutating anything.")

	ScansCmd.AddCommand(triggerCmd)
}
