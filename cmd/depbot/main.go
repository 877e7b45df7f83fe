package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// failureReporter is implemented by controllers that can end in a fatal error.
type failureReporter interface {
	Failed() bool
}

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "depbot",
		Short: "Automated dependency update bot",
		Long: `A dependency update bot for repositories hosted on GitHub or GitLab.

It detects outdated direct dependencies, upgrades each one on its own
branch and opens one pull or merge request per upgraded dependency,
skipping the ones that already have an up-to-date request.

Usage:
  depbot run owner/name                  Update a github.com repository
  depbot run gitlab.com/group/project    Update a GitLab project`,
		SilenceUsage: true,
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().String("token", "",
		"Auth token for the Git provider (overrides config and env vars)")
	cmd.PersistentFlags().Bool("dry-run", false,
		"List the updates that would be made without pushing anything")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, controllers []entities.Controller) {
	for _, controller := range controllers {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Args:  cobra.ExactArgs(1),
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}
		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	appContext := injectAppContext()
	cobraRoot := buildRootCommand()
	addSubcommands(cobraRoot, appContext.GetControllers())

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'depbot': %s", err)
	}

	for _, controller := range appContext.GetControllers() {
		if reporter, ok := controller.(failureReporter); ok && reporter.Failed() {
			os.Exit(1)
		}
	}
}
