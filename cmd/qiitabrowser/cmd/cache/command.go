// Package cache provides the cache command.
package cache

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/qiitabrowser/internal/appcontext"
	"github.com/agentstation/qiitabrowser/internal/cmd/output"
	"github.com/agentstation/qiitabrowser/internal/transport"
)

// NewCommand creates the cache command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "cache",
		GroupID: "management",
		Short:   "Show HTTP cache status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := Info(app)
			if err != nil {
				return err
			}
			return output.FormatAny(cmd.OutOrStdout(), info, app.OutputFormat())
		},
	}
}

// Info describes the response cache of the application.
func Info(app appcontext.Interface) (output.CacheInfo, error) {
	a, err := app.Application()
	if err != nil {
		return output.CacheInfo{}, err
	}
	c, err := a.Registry().Cache()
	if err != nil {
		return output.CacheInfo{}, err
	}
	return output.NewCacheInfo(c, writable(c)), nil
}

// writable checks the cache directory by creating a temporary file.
func writable(c transport.Cache) bool {
	if c.Dir() == "" {
		return true
	}
	f, err := os.CreateTemp(c.Dir(), ".writecheck-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
