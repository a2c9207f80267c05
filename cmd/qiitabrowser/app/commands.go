package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/qiitabrowser/cmd/qiitabrowser/cmd/cache"
	"github.com/agentstation/qiitabrowser/cmd/qiitabrowser/cmd/favorites"
	"github.com/agentstation/qiitabrowser/cmd/qiitabrowser/cmd/items"
	"github.com/agentstation/qiitabrowser/cmd/qiitabrowser/cmd/profile"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(items.NewCommand(a))
	rootCmd.AddCommand(favorites.NewCommand(a))
	rootCmd.AddCommand(profile.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(cache.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("qiitabrowser %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
