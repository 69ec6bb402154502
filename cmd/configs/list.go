package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/internal/reconcile"
	"github.com/appsec-tools/scmsync/internal/session"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

var (
	listOptions struct {
		GhesURL       string
		Check         bool
		RequireScopes []string
		CheckDelay    time.Duration
	}

	exampleListUsage = `  # List the SCM configs registered for the GHES instance
  scmsync configs list

  # Re-check connectivity of every config and require webhook management rights
  scmsync configs list --check --require-scopes manage_webhooks`
)

var listCmd = &cobra.Command{
	Use:                   "list [--check] [--require-scopes SCOPES] [--ghes-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleListUsage,
	Short:                 "List the SCM configs registered for the GitHub Enterprise Server",
	RunE:                  runListCommand,
}

func runListCommand(cmd *cobra.Command, args []string) error {
	requiredScopes, err := reconcile.ParseScopeNames(listOptions.RequireScopes)
	if err != nil {
		return err
	}

	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}
	ghesURL, err := sess.GhesURL(listOptions.GhesURL)
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

	warnings := 0
	if listOptions.Check {
		warnings = refreshStatuses(client, serverConfigs, listOptions.CheckDelay)
	}

	healthy := 0
	for _, cfg := range serverConfigs {
		line := fmt.Sprintf("%s  namespace=%s  autoScan=%t  status=%s",
			cfg.ID, cfg.Namespace, cfg.AutoScan, describeStatus(cfg.Status))
		if len(requiredScopes) > 0 && cfg.TokenScopes != nil {
			if missing := reconcile.MissingScopes(*cfg.TokenScopes, requiredScopes); len(missing) > 0 {
				line += fmt.Sprintf("  missingScopes=%s", strings.Join(missing, ","))
			}
		}
		fmt.Println(line)

		if reconcile.ConfigMeetsRequirements(cfg, requiredScopes) {
			healthy++
		}
	}

	fmt.Printf("Total: %d configs for %s (healthy: %d, warnings: %d)\n",
		len(serverConfigs), ghesURL, healthy, warnings)
	return nil
}

var listMissingOptions struct {
	GhesURL string
}

var listMissingCmd = &cobra.Command{
	Use:                   "list-missing [--ghes-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "List GHES organizations that have no SCM config yet",
	RunE:                  runListMissingCommand,
}

func runListMissingCommand(cmd *cobra.Command, args []string) error {
	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}

	githubClient, ghesURL, err := sess.GithubClient(listMissingOptions.GhesURL)
	if err != nil {
		return err
	}
	semgrepClient, err := sess.SemgrepClient()
	if err != nil {
		return err
	}

	organizations, err := githubClient.ListOrganizations()
	if err != nil {
		logger.Error("failed to list organizations", "server", ghesURL, "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to list organizations: %w", err), 2)
	}

	allConfigs, err := semgrepClient.ListConfigs()
	if err != nil {
		logger.Error("failed to list SCM configs", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to list SCM configs: %w", err), 2)
	}

	missing, existing := reconcile.FindMissingOrganizations(organizations, allConfigs, ghesURL)
	for _, org := range missing {
		fmt.Println(org.Login)
	}
	fmt.Printf("Total: %d of %d organizations have no SCM config on %s (%d configs present)\n",
		len(missing), len(organizations), ghesURL, len(existing))
	return nil
}

func init() {
	listCmd.Flags().StringVar(&listOptions.GhesURL, "ghes-url", "", "Base URL of the GitHub Enterprise Server (overrides GHES_URL).")
	listCmd.Flags().BoolVar(&listOptions.Check, "check", false, "Run a fresh connectivity check for every config.")
	listCmd.Flags().StringSliceVar(&listOptions.RequireScopes, "require-scopes", nil, "Token scopes a config must hold to count as healthy.")
	listCmd.Flags().DurationVar(&listOptions.CheckDelay, "check-delay", time.Second, "Pause between connectivity checks.")

	listMissingCmd.Flags().StringVar(&listMissingOptions.GhesURL, "ghes-url", "", "Base URL of the GitHub Enterprise Server (overrides GHES_URL).")

	ConfigsCmd.AddCommand(listCmd)
	ConfigsCmd.AddCommand(listMissingCmd)
}
