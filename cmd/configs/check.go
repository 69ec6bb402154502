package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/internal/reconcile"
	"github.com/appsec-tools/scmsync/internal/session"
)

var (
	checkOptions struct {
		GhesURL       string
		RequireScopes []string
		CheckDelay    time.Duration
	}

	exampleCheckUsage = `  # Check connectivity of every config for the GHES instance
  scmsync configs check

  # Additionally require contents and webhook permissions
  scmsync configs check --require-scopes read_contents,manage_webhooks`
)

var checkCmd = &cobra.Command{
	Use:                   "check [--require-scopes SCOPES] [--check-delay D] [--ghes-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleCheckUsage,
	Short:                 "Run a connectivity check on every SCM config",
	RunE:                  runCheckCommand,
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
	requiredScopes, err := reconcile.ParseScopeNames(checkOptions.RequireScopes)
	if err != nil {
		return err
	}

	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}
	ghesURL, err := sess.GhesURL(checkOptions.GhesURL)
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
	if len(targets) == 0 {
		fmt.Printf("Nothing to check: no configs on %s\n", ghesURL)
		return nil
	}

	healthy, unhealthy, checkErrors := 0, 0, 0
	for i, cfg := range targets {
		if i > 0 && checkOptions.CheckDelay > 0 {
			time.Sleep(checkOptions.CheckDelay)
		}

		result, err := client.CheckConfig(cfg.ID)
		if err != nil {
			checkErrors++
			logger.Error("connectivity check failed", "config", cfg.ID, "namespace", cfg.Namespace, "error", err)
			fmt.Printf("ERROR %s (%s): %v\n", cfg.Namespace, cfg.ID, err)
			continue
		}

		if reconcile.MeetsRequirements(&result.Status, result.TokenScopes, requiredScopes) {
			healthy++
			fmt.Printf("ok    %s (%s)\n", cfg.Namespace, cfg.ID)
			continue
		}

		unhealthy++
		reason := describeStatus(&result.Status)
		if result.Status.OK && result.TokenScopes != nil {
			missing := reconcile.MissingScopes(*result.TokenScopes, requiredScopes)
			reason = fmt.Sprintf("missing scopes: %s", strings.Join(missing, ", "))
		}
		fmt.Printf("FAIL  %s (%s): %s\n", cfg.Namespace, cfg.ID, reason)
	}

	fmt.Printf("Done. Healthy: %d, Unhealthy: %d, Errors: %d\n", healthy, unhealthy, checkErrors)
	return nil
}

func init() {
	checkCmd.Flags().StringVar(&checkOptions.GhesURL, "ghes-url", "", "Base URL of the GitHub Enterprise Server (overrides GHES_URL).")
	checkCmd.Flags().StringSliceVar(&checkOptions.RequireScopes, "require-scopes", nil, "Token scopes a config must hold to count as healthy.")
	checkCmd.Flags().DurationVar(&checkOptions.CheckDelay, "check-delay", time.Second, "Pause between connectivity checks.")

	ConfigsCmd.AddCommand(checkCmd)
}
