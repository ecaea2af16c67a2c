package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sigil/internal/domain"
)

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var users map[string]domain.Credential
			err := appCtx.Do(cmd.Context(), "users", func(ctx context.Context) (err error) {
				users, err = appCtx.Store.LoadAll()
				return err
			})
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users registered.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tEMAIL\tID")
			for _, name := range slices.Sorted(maps.Keys(users)) {
				u := users[name]
				fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Name, u.Email, u.ID)
			}
			return tw.Flush()
		},
	}
}
