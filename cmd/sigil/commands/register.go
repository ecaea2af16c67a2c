package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sigil/internal/domain"
	"sigil/internal/services/identity"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [name] [email]",
		Short: "Create an identity and log in as it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cred     domain.Credential
				replaced domain.IdentityID
			)
			err := appCtx.Do(cmd.Context(), "register", func(ctx context.Context) error {
				users, err := appCtx.Store.LoadAll()
				if err != nil {
					return err
				}
				replaced = users[strings.TrimSpace(args[0])].ID
				cred, err = appCtx.Sessions.Register(ctx, args[0], args[1])
				return err
			})
			if err != nil {
				return err
			}
			pub, err := identity.ParsePublicIdentity(cred.PublicKey)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registered %s.\n", cred.Name)
			fmt.Fprintf(out, "ID: %s\n", cred.ID)
			fmt.Fprintf(out, "Fingerprint: %s\n", pub.Fingerprint())
			if replaced != "" {
				fmt.Fprintf(out, "Replaced: %s\n", replaced)
			}
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [name]",
		Short: "Switch the current session to a registered name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cred domain.Credential
			err := appCtx.Do(cmd.Context(), "login", func(ctx context.Context) (err error) {
				cred, err = appCtx.Sessions.Login(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", cred.Name, cred.ID)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Do(cmd.Context(), "logout", appCtx.Sessions.Logout); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cred domain.Credential
			err := appCtx.Do(cmd.Context(), "whoami", func(ctx context.Context) (err error) {
				cred, err = appCtx.Sessions.CurrentSession(ctx)
				return err
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name: %s\n", cred.Name)
			fmt.Fprintf(out, "Email: %s\n", cred.Email)
			fmt.Fprintf(out, "ID: %s\n", cred.ID)
			fmt.Fprintf(out, "Public key: %s\n", cred.PublicKey)
			return nil
		},
	}
}
