package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sigil/internal/services/identity"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := currentIdentity(cmd, "fingerprint")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\nFingerprint: %s\n", kp.ID(), kp.Fingerprint())
			return nil
		},
	}
}

// currentIdentity restores the key pair of the current session.
func currentIdentity(cmd *cobra.Command, op string) (kp *identity.KeyPair, err error) {
	err = appCtx.Do(cmd.Context(), op, func(ctx context.Context) error {
		kp, err = appCtx.Sessions.Identity(ctx)
		return err
	})
	return kp, err
}
