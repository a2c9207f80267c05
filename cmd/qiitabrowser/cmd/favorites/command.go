// Package favorites provides the favorites command. Favorites are the
// items the signed-in user has stocked on Qiita.
package favorites

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/qiitabrowser"
	"github.com/agentstation/qiitabrowser/internal/appcontext"
	"github.com/agentstation/qiitabrowser/internal/cmd/output"
	"github.com/agentstation/qiitabrowser/internal/rest"
	"github.com/agentstation/qiitabrowser/pkg/constants"
	"github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// NewCommand creates the favorites command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"stocks"},
		GroupID: "core",
		Short:   "List, add and remove favorites",
		Long: `Favorites lists the items stocked by the owner of the access token and
publishes them to the favorites channel. The add and remove subcommands
stock or unstock an item and publish the toggle.`,
		Example: `  qiitabrowser favorites
  qiitabrowser favorites add c686397e4a0f4f11683d
  qiitabrowser favorites remove c686397e4a0f4f11683d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			list, err := List(ctx, app, page, perPage)
			if err != nil {
				return err
			}
			return output.FormatItems(cmd.OutOrStdout(), list, app.OutputFormat())
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPerPage, "items per page (max 100)")

	cmd.AddCommand(newToggleCommand(app, "add", "Stock an item", true))
	cmd.AddCommand(newToggleCommand(app, "remove", "Unstock an item", false))

	return cmd
}

func newToggleCommand(app appcontext.Interface, use, short string, faved bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <item-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			ev, err := Set(ctx, app, args[0], faved)
			if err != nil {
				return err
			}
			return output.FormatAny(cmd.OutOrStdout(), ev, app.OutputFormat())
		},
	}
}

// List fetches the stocks of the signed-in user, publishes them to the
// favorites channel and returns the list that channel retains.
func List(ctx context.Context, app appcontext.Interface, page, perPage int) ([]qiita.FavableItem, error) {
	a, rc, err := client(app)
	if err != nil {
		return nil, err
	}

	u, err := rc.AuthenticatedUser().Execute(ctx)
	if err != nil {
		return nil, err
	}
	a.Hub().Profile().Publish(u)

	stocks, err := rc.UserStocks(u.ID, page, perPage).Execute(ctx)
	if err != nil {
		return nil, err
	}

	faved := make(map[string]bool, len(stocks))
	for _, it := range stocks {
		faved[it.ID] = true
	}
	a.Hub().Favorites().Publish(qiita.Favable(stocks, faved))

	app.Logger().Debug().Str("user_id", u.ID).Int("count", len(stocks)).Msg("Favorites published")
	return a.Hub().Favorites().Value(), nil
}

// Set stocks or unstocks the item and publishes the toggle through the
// hub. Unstocking an item that is not stocked still publishes the toggle.
func Set(ctx context.Context, app appcontext.Interface, itemID string, faved bool) (qiita.FavEvent, error) {
	a, rc, err := client(app)
	if err != nil {
		return qiita.FavEvent{}, err
	}

	item, err := rc.Item(itemID).Execute(ctx)
	if err != nil {
		if errors.IsNotFound(err) {
			return qiita.FavEvent{}, errors.NewNotFoundError("item", itemID)
		}
		return qiita.FavEvent{}, err
	}

	if faved {
		_, err = rc.Stock(itemID).Execute(ctx)
	} else {
		_, err = rc.Unstock(itemID).Execute(ctx)
		if errors.IsNotFound(err) {
			app.Logger().Debug().Str("item_id", itemID).Msg("Item was not stocked")
			err = nil
		}
	}
	if err != nil {
		return qiita.FavEvent{}, err
	}

	return a.Hub().ToggleFavorite(item, faved), nil
}

// client returns the application and its REST client. Stocks belong to a
// user, so an access token is required.
func client(app appcontext.Interface) (qiitabrowser.Application, *rest.Client, error) {
	if app.Config().AccessToken == "" {
		return nil, nil, errors.NewAuthenticationError(qiita.ServiceName, "bearer",
			"no access token configured", errors.ErrAPIKeyRequired)
	}
	a, err := app.Application()
	if err != nil {
		return nil, nil, err
	}
	rc, err := a.Registry().RestClient()
	if err != nil {
		return nil, nil, err
	}
	return a, rc, nil
}
