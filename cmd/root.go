package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/appsec-tools/scmsync/cmd/configs"
	"github.com/appsec-tools/scmsync/cmd/orgs"
	"github.com/appsec-tools/scmsync/cmd/repos"
	"github.com/appsec-tools/scmsync/cmd/scans"
	"github.com/appsec-tools/scmsync/cmd/version"
	"github.com/appsec-tools/scmsync/pkg/shared/config"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
	"github.com/appsec-tools/scmsync/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "scmsync [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Scmsync reconciles GitHub Enterprise Server organizations with Semgrep SCM configs.",
		Long: `Scmsync is a batch utility that keeps a Semgrep deployment in sync with a
self-hosted GitHub Enterprise Server: it discovers organizations, creates and
maintains the matching SCM configs, onboards repositories, and triggers scans.
Every invocation fetches fresh inventories; nothing is persisted between runs.
`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(orgs.OrgsCmd)
	rootCmd.AddCommand(configs.ConfigsCmd)
	rootCmd.AddCommand(repos.ReposCmd)
	rootCmd.AddCommand(scans.ScansCmd)
}

// Execute runs the root command and maps the returned error to a process
// exit code. Validation failures exit 1; commands signal fatal execution
// errors through CommandError.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		var cmdErr *errors.CommandError
		if stderrors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = config.DefaultConfigFile
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.NewLogger(AppConfig, "scmsync")

	version.Init(AppConfig)
	orgs.Init(AppConfig, log)
	configs.Init(AppConfig, log)
	repos.Init(AppConfig, log)
	scans.Init(AppConfig, log)
}
