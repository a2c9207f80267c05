package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/qiitabrowser/internal/cmd/output"
	"github.com/agentstation/qiitabrowser/internal/config"
	"github.com/agentstation/qiitabrowser/pkg/errors"
)

// Execute runs the qiitabrowser CLI with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "qiitabrowser",
		Short:   "Qiita reader",
		Version: a.version,
		Long: `qiitabrowser reads articles and profiles from the Qiita v2 API.

Responses are cached on disk, and an access token from QIITA_ACCESS_TOKEN
or the config file is sent with every request when configured.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	// Add global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default is $HOME/.qiitabrowser.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringP("format", "o", "", "output format: table, json, yaml")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("qiitabrowser {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if configFile := mustGetString(cmd, "config"); configFile != "" {
		cfg, err := config.Load(config.Options{ConfigFile: configFile})
		if err != nil {
			return errors.WrapResource("load", "config", configFile, err)
		}
		a.config = cfg
	}

	format := mustGetString(cmd, "format")
	if format != "" {
		if _, err := output.ParseFormat(format); err != nil {
			return err
		}
	}

	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		format,
		mustGetString(cmd, "log-level"),
	)

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// ExitOnError is a helper that prints an error with a hint and exits.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	if errors.IsCanceled(err) || errors.Is(err, context.Canceled) {
		os.Exit(exitInterrupted)
	}
	_, _ = os.Stderr.WriteString(err.Error() + "\n")
	if h := hint(err); h != "" {
		_, _ = os.Stderr.WriteString(h + "\n")
	}
	os.Exit(1)
}

// exitInterrupted is the conventional status after SIGINT.
const exitInterrupted = 130

// hint suggests what the user can do about err.
func hint(err error) string {
	switch {
	case errors.IsValidationError(err):
		return "Run 'qiitabrowser --help' for usage."
	case errors.Is(err, errors.ErrAPIKeyRequired):
		return "Set " + config.EnvAccessToken + " to a valid Qiita access token."
	case errors.IsRateLimited(err):
		return "Qiita rate limit reached, try again later."
	case errors.IsTimeout(err):
		return "The request timed out, check your connection."
	case errors.IsUnavailable(err):
		return "Qiita is unavailable, try again later."
	case errors.IsNotFound(err):
		return "Check the id and try again."
	}
	return ""
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
