package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/internal/github"
	"github.com/appsec-tools/scmsync/internal/reconcile"
	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/internal/session"
	"github.com/appsec-tools/scmsync/pkg/shared"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
	"github.com/appsec-tools/scmsync/pkg/shared/files"
)

type createOptions struct {
	GhesURL     string
	Org         string
	ScmID       int64
	Subscribe   bool
	AutoScan    bool
	DiffEnabled bool
	DryRun      bool
}

var (
	createOpts createOptions

	exampleCreateUsage = `  # Create a config for one organization using the GHES_TOKEN credential
  scmsync configs create --org platform-team

  # Create a config reusing the credential stored on config 12345
  scmsync configs create --org platform-team --scm-id 12345`
)

var createCmd = &cobra.Command{
	Use:                   "create --org ORG [--scm-id ID] [--dry-run] [--ghes-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleCreateUsage,
	Short:                 "Create an SCM config for one organization",
	RunE:                  runCreateCommand,
}

func runCreateCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if err := validateCreateArgs(&createOpts); err != nil {
		logger.Error("invalid create arguments", "error", err)
		return err
	}

	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}
	ghesURL, err := sess.GhesURL(createOpts.GhesURL)
	if err != nil {
		return err
	}

	request := semgrep.CreateConfigRequest{
		Type:        semgrep.ScmTypeGithubEnterprise,
		Namespace:   createOpts.Org,
		BaseURL:     ghesURL,
		ScmConfigID: createOpts.ScmID,
		Subscribe:   createOpts.Subscribe,
		AutoScan:    createOpts.AutoScan,
		DiffEnabled: createOpts.DiffEnabled,
	}
	if createOpts.ScmID == 0 {
		if sess.GhesToken() == "" {
			return errors.NewValidationError("no credential for the new config; set GHES_TOKEN or pass --scm-id to reuse a stored one")
		}
		request.AccessToken = sess.GhesToken()
	}

	if createOpts.DryRun {
		fmt.Printf("[dry-run] would create config for %q on %s (subscribe=%t, autoScan=%t, diffEnabled=%t)\n",
			createOpts.Org, ghesURL, createOpts.Subscribe, createOpts.AutoScan, createOpts.DiffEnabled)
		return nil
	}

	client, err := sess.SemgrepClient()
	if err != nil {
		return err
	}

	created, err := client.CreateConfig(request)
	if err != nil {
		logger.Error("failed to create SCM config", "namespace", createOpts.Org, "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to create SCM config for %q: %w", createOpts.Org, err), 2)
	}

	fmt.Printf("Created config %s for %s on %s\n", created.ID, created.Namespace, ghesURL)
	return nil
}

type createMissingOptions struct {
	GhesURL     string
	Orgs        []string
	OrgsFile    string
	ScmID       int64
	Delay       time.Duration
	Subscribe   bool
	AutoScan    bool
	DiffEnabled bool
	DryRun      bool
}

var (
	createMissingOpts createMissingOptions

	exampleCreateMissingUsage = `  # Create configs for every GHES organization that has none
  scmsync configs create-missing

  # Restrict the run to organizations listed in a file
  scmsync configs create-missing --orgs-file orgs.txt --scm-id 12345

  # Preview without mutating anything
  scmsync configs create-missing --dry-run`
)

var createMissingCmd = &cobra.Command{
	Use:                   "create-missing [--orgs ORGS | --orgs-file PATH] [--scm-id ID] [--delay D] [--dry-run] [--ghes-url URL]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleCreateMissingUsage,
	Short:                 "Create SCM configs for every organization that has none",
	RunE:                  runCreateMissingCommand,
}

func runCreateMissingCommand(cmd *cobra.Command, args []string) error {
	if err := validateCreateMissingArgs(&createMissingOpts); err != nil {
		logger.Error("invalid create-missing arguments", "error", err)
		return err
	}

	orgNames := createMissingOpts.Orgs
	if createMissingOpts.OrgsFile != "" {
		var err error
		orgNames, err = files.ReadOrgList(createMissingOpts.OrgsFile)
		if err != nil {
			return errors.NewValidationError("failed to read the organization list: %v", err)
		}
		if len(orgNames) == 0 {
			return errors.NewValidationError("the organization list %q is empty", createMissingOpts.OrgsFile)
		}
	}

	sess, err := session.New(AppConfig, logger)
	if err != nil {
		return err
	}
	ghesURL, err := sess.GhesURL(createMissingOpts.GhesURL)
	if err != nil {
		return err
	}
	if createMissingOpts.ScmID == 0 && sess.GhesToken() == "" {
		return errors.NewValidationError("no credential for new configs; set GHES_TOKEN or pass --scm-id to reuse a stored one")
	}

	semgrepClient, err := sess.SemgrepClient()
	if err != nil {
		return err
	}

	// an explicit org list skips server discovery entirely
	var candidates []github.Organization
	if len(orgNames) > 0 {
		for _, name := range orgNames {
			candidates = append(candidates, github.Organization{Login: name})
		}
	} else {
		githubClient, _, err := sess.GithubClient(createMissingOpts.GhesURL)
		if err != nil {
			return err
		}
		candidates, err = githubClient.ListOrganizations()
		if err != nil {
			logger.Error("failed to list organizations", "server", ghesURL, "error", err)
			return errors.NewCommandError(fmt.Errorf("failed to list organizations: %w", err), 2)
		}
	}

	allConfigs, err := semgrepClient.ListConfigs()
	if err != nil {
		logger.Error("failed to list SCM configs", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to list SCM configs: %w", err), 2)
	}

	missing, _ := reconcile.FindMissingOrganizations(candidates, allConfigs, ghesURL)
	if len(missing) == 0 {
		fmt.Printf("Nothing to do: every candidate organization already has a config on %s\n", ghesURL)
		return nil
	}

	if createMissingOpts.DryRun {
		names := make([]string, len(missing))
		for i, org := range missing {
			names[i] = org.Login
		}
		fmt.Printf("[dry-run] would create %d configs on %s (subscribe=%t, autoScan=%t, diffEnabled=%t): %s\n",
			len(missing), ghesURL,
			createMissingOpts.Subscribe, createMissingOpts.AutoScan, createMissingOpts.DiffEnabled,
			strings.Join(names, ", "))
		return nil
	}

	created, failed := 0, 0
	for i, org := range missing {
		if i > 0 && createMissingOpts.Delay > 0 {
			time.Sleep(createMissingOpts.Delay)
		}

		request := semgrep.CreateConfigRequest{
			Type:        semgrep.ScmTypeGithubEnterprise,
			Namespace:   org.Login,
			BaseURL:     ghesURL,
			ScmConfigID: createMissingOpts.ScmID,
			Subscribe:   createMissingOpts.Subscribe,
			AutoScan:    createMissingOpts.AutoScan,
			DiffEnabled: createMissingOpts.DiffEnabled,
		}
		if createMissingOpts.ScmID == 0 {
			request.AccessToken = sess.GhesToken()
		}

		config, err := semgrepClient.CreateConfig(request)
		if err != nil {
			failed++
			logger.Error("failed to create SCM config", "namespace", org.Login, "error", err)
			continue
		}
		created++
		logger.Info("created SCM config", "id", config.ID, "namespace", config.Namespace)
	}

	fmt.Printf("Done. Created: %d, Failed: %d\n", created, failed)
	return nil
}

func init() {
	createCmd.Flags().StringVar(&createOpts.GhesURL, "ghes-url", "", "Base URL of the GitHub Enterprise Server (overrides GHES_URL).")
	createCmd.Flags().StringVar(&createOpts.Org, "org", "", "Name of the organization to create the config for.")
	createCmd.Flags().Int64Var(&createOpts.ScmID, "scm-id", 0, "Existing config id whose stored credential is reused.")
	createCmd.Flags().BoolVar(&createOpts.Subscribe, "subscribe", true, "Subscribe the config to repository events.")
	createCmd.Flags().BoolVar(&createOpts.AutoScan, "auto-scan", false, "Enable automatic scanning for the config.")
	createCmd.Flags().BoolVar(&createOpts.DiffEnabled, "diff-enabled", false, "Enable diff-aware scanning for the config.")
	createCmd.Flags().BoolVar(&createOpts.DryRun, "dry-run", false, "Print the planned change without mutating anything.")

	createMissingCmd.Flags().StringVar(&createMissingOpts.GhesURL, "ghes-url", "", "Base URL of the GitHub Enterprise Server (overrides GHES_URL).")
	createMissingCmd.Flags().StringSliceVar(&createMissingOpts.Orgs, "orgs", nil, "Explicit organizations to consider instead of discovering them.")
	createMissingCmd.Flags().StringVar(&createMissingOpts.OrgsFile, "orgs-file", "", "File with one organization per line ('#' starts a comment).")
	createMissingCmd.Flags().Int64Var(&createMissingOpts.ScmID, "scm-id", 0, "Existing config id whose stored credential is reused.")
	createMissingCmd.Flags().DurationVar(&createMissingOpts.Delay, "delay", time.Second, "Pause between config creations.")
	createMissingCmd.Flags().BoolVar(&createMissingOpts.Subscribe, "subscribe", true, "Subscribe new configs to repository events.")
	createMissingCmd.Flags().BoolVar(&createMissingOpts.AutoScan, "auto-scan", false, "Enable automatic scanning for new configs.")
	createMissingCmd.Flags().BoolVar(&createMissingOpts.DiffEnabled, "diff-enabled", false, "Enable diff-aware scanning for new configs.")
	createMissingCmd.Flags().BoolVar(&createMissingOpts.DryRun, "dry-run", false, "Print the planned changes without mutating anything.")

	ConfigsCmd.AddCommand(createCmd)
	ConfigsCmd.AddCommand(createMissingCmd)
}
