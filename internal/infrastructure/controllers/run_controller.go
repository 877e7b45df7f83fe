package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/depbot/internal/domain/commands"
	"github.com/rios0rios0/depbot/internal/domain/entities"
)

// RunController handles the "run" subcommand.
type RunController struct {
	command commands.Run
	// failed is set when the last Execute hit a fatal error.
	failed bool
}

// NewRunController creates a new RunController.
func NewRunController(command commands.Run) *RunController {
	return &RunController{command: command}
}

// GetBind returns the Cobra command metadata for the run controller.
func (it *RunController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "run <repository>",
		Short: "Open one request per outdated dependency of a repository",
		Long: `Clone the repository, install its dependencies, find the outdated
direct dependencies (minor and patch only) and open one pull or merge
request per dependency that does not already have an up-to-date one.

The repository can be given as owner/name (github.com), host/owner/name
or a clone URL.`,
	}
}

// Execute runs one update cycle against the repository given in args.
func (it *RunController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	it.failed = false

	if len(args) == 0 {
		logger.Error("a repository is required, e.g. depbot run owner/name")
		it.failed = true
		return
	}

	configPath, _ := cmd.Flags().GetString("config")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	token, _ := cmd.Flags().GetString("token")

	if configPath == "" {
		if found, err := entities.FindConfigFile(); err == nil {
			configPath = found
		} else {
			logger.Debugf("No config file found, using defaults: %v", err)
		}
	}
	if configPath != "" {
		logger.Infof("Using config file: %s", configPath)
	}

	settings, err := entities.NewSettings(ctx, configPath)
	if err != nil {
		logger.Errorf("failed to load config: %v", err)
		it.failed = true
		return
	}

	report, runErr := it.command.Execute(ctx, settings, commands.RunOptions{
		Repository: args[0],
		Token:      token,
		DryRun:     dryRun,
		Verbose:    verbose,
	})
	if report != nil {
		for _, outcome := range report.Outcomes {
			logger.Info(outcome.String())
		}
	}
	if runErr != nil {
		logger.Errorf("Run failed: %v", runErr)
		it.failed = true
	}
}

// Failed reports whether the last run ended with a fatal error.
func (it *RunController) Failed() bool {
	return it.failed
}
