package orgs

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/internal/session"
	"github.com/appsec-tools/scmsync/pkg/shared/config"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

// Global variables for configuration and command arguments
var (
	AppConfig *config.Config
	logger    hclog.Logger

	listOptions struct {
		GhesURL string
	}

	exampleListUsage = `  # List all organizations on the GHES instance from the environment
  scmsync orgs list

  # List all organizations on an explicit GHES instance
  scmsync orgs list --ghes-url https://ghes.example.com`
)

// OrgsCmd groups the organization inspection commands.
var OrgsCmd = &cobra.Command{
	Use:                   "orgs",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Inspect organizations on the GitHub Enterprise Server",
}

var listCmd = &cobra.Command{
	Use:                   "list [--ghes-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleListUsage,
	Short:                 "List every organization on the GitHub Enterprise Server",
	Long: `List every organization on the GitHub Enterprise Server.

The endpoint requires a site-admin token; set it with the GHES_TOKEN
environment variable.`,
	RunE: runListCommand,
}

// Init initializes the global configuration and logger for the package.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runListCommand(cmd *cobra.Command, args []string) error {
	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}

	client, ghesURL, err := sess.GithubClient(listOptions.GhesURL)
	if err != nil {
		return err
	}

	organizations, err := client.ListOrganizations()
	if err != nil {
		logger.Error("failed to list organizations", "server", ghesURL, "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to list organizations: %w", err), 2)
	}

	for _, org := range organizations {
		fmt.Println(org.Login)
	}
	fmt.Printf("Total: %d organizations on %s\n", len(organizations), ghesURL)
	return nil
}

func init() {
	listCmd.Flags().StringVar(&listOptions.GhesURL, "ghes-url", "", "Base URL of the GitHub Enterprise Server (overrides GHES_URL).")
	OrgsCmd.AddCommand(listCmd)
}
