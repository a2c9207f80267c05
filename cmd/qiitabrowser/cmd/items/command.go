// Package items provides the items command.
package items

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/qiitabrowser/internal/appcontext"
	"github.com/agentstation/qiitabrowser/internal/cmd/output"
	"github.com/agentstation/qiitabrowser/pkg/constants"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// NewCommand creates the items command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var page, perPage int

	cmd := &cobra.Command{
		Use:     "items",
		GroupID: "core",
		Short:   "List recent items",
		Long: `Items fetches a page of recent Qiita items, publishes them to the
item channel together with their favorite state, and prints the list the
channel holds afterwards.`,
		Example: `  qiitabrowser items                  # First page
  qiitabrowser items --page 2 -o json # Second page as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()

			list, err := Fetch(ctx, app, page, perPage)
			if err != nil {
				return err
			}
			return output.FormatItems(cmd.OutOrStdout(), list, app.OutputFormat())
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&perPage, "per-page", constants.DefaultPerPage, "items per page (max 100)")

	return cmd
}

// Fetch loads a page of items, publishes it to the item channel and
// returns the list a new subscriber of that channel observes.
func Fetch(ctx context.Context, app appcontext.Interface, page, perPage int) ([]qiita.FavableItem, error) {
	a, err := app.Application()
	if err != nil {
		return nil, err
	}
	rc, err := a.Registry().RestClient()
	if err != nil {
		return nil, err
	}

	res := <-rc.Items(page, perPage).Observe(ctx)
	if res.Err != nil {
		return nil, res.Err
	}

	h := a.Hub()
	h.Items().Publish(qiita.Favable(res.Value, h.FavedIDs()))

	sub := h.Items().Subscribe()
	defer sub.Cancel()
	list, err := sub.Recv(ctx)
	if err != nil {
		return nil, err
	}

	app.Logger().Debug().Int("page", page).Int("count", len(list)).Msg("Items published")
	return list, nil
}
