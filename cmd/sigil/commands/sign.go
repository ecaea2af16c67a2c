package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sigil/internal/services/identity"
)

var errBadSignature = errors.New("signature does not verify")

func signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign [message]",
		Short: "Sign a message as the current identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := currentIdentity(cmd, "sign")
			if err != nil {
				return err
			}
			sig, err := kp.Sign(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "verify [public-key] [message] [signature]",
		Short:       "Check a signature against a base64 SPKI public key",
		Args:        cobra.ExactArgs(3),
		Annotations: map[string]string{annotationNoStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := identity.ParsePublicIdentity(args[0])
			if err != nil {
				return err
			}
			if !pub.Verify(args[1], args[2]) {
				return fmt.Errorf("%w for %s", errBadSignature, pub.ID())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Valid signature by %s.\n", pub.ID())
			return nil
		},
	}
}
