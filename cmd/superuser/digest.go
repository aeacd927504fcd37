package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/superuser-module-go/review"
)

func newDigestCmd() *cobra.Command {
	var flags actionFlags
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the canonical review digest of an action",
		Long:  "Prints the digest a reviewer approves and the EIP-191 hash that is actually signed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := flags.action()
			if err != nil {
				return err
			}
			digest, err := review.Digest(action, flags.nonce)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version:      %d\n", review.DigestVersion)
			fmt.Fprintf(out, "digest:       %s\n", digest.Hex())
			fmt.Fprintf(out, "signing hash: %s\n", review.MessageHash(digest).Hex())
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
