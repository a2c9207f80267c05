// Package profile provides the profile command.
package profile

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/qiitabrowser/internal/appcontext"
	"github.com/agentstation/qiitabrowser/internal/cmd/output"
	"github.com/agentstation/qiitabrowser/pkg/constants"
	"github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// NewCommand creates the profile command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "profile",
		GroupID: "core",
		Short:   "Show the signed-in user",
		Long: `Profile fetches the owner of the configured access token and publishes
it to the profile channel. Without a token the placeholder profile is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			u, err := Fetch(ctx, app)
			if err != nil {
				return err
			}
			return output.FormatAny(cmd.OutOrStdout(), u, app.OutputFormat())
		},
	}
}

// Fetch refreshes the profile channel and returns its retained value.
func Fetch(ctx context.Context, app appcontext.Interface) (qiita.User, error) {
	a, err := app.Application()
	if err != nil {
		return qiita.User{}, err
	}

	if app.Config().AccessToken == "" {
		app.Logger().Warn().Err(errors.ErrAPIKeyRequired).Msg("No access token configured, showing placeholder profile")
		return a.Hub().Profile().Value(), nil
	}

	rc, err := a.Registry().RestClient()
	if err != nil {
		return qiita.User{}, err
	}
	u, err := rc.AuthenticatedUser().Execute(ctx)
	if err != nil {
		return qiita.User{}, err
	}

	a.Hub().Profile().Publish(u)
	return a.Hub().Profile().Value(), nil
}
