package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/weisyn/superuser-module-go/review"
	"github.com/weisyn/superuser-module-go/utils"
	"github.com/weisyn/superuser-module-go/verifier"
	"github.com/weisyn/superuser-module-go/wallet"
)

// reviewKeyEnv 未指定 --key 时读取的环境变量
const reviewKeyEnv = "SUPERUSER_REVIEW_KEY"

func newSignCmd() *cobra.Command {
	var (
		flags actionFlags
		key   string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign an action as the reviewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = os.Getenv(reviewKeyEnv)
			}
			if key == "" {
				return fmt.Errorf("--key or %s is required", reviewKeyEnv)
			}
			w, err := wallet.NewWalletFromPrivateKey(key)
			if err != nil {
				return err
			}
			action, err := flags.action()
			if err != nil {
				return err
			}
			sig, err := w.SignReview(action, flags.nonce)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reviewer:  %s\n", w.Address().Hex())
			fmt.Fprintf(out, "signature: %s\n", hexutil.Encode(sig))
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&key, "key", "", "Reviewer private key as hex (defaults to $"+reviewKeyEnv+")")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		flags    actionFlags
		reviewer string
		sig      string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a raw-key reviewer signature over an action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := utils.ParseAddress(reviewer)
			if err != nil {
				return fmt.Errorf("--reviewer: %w", err)
			}
			blob, err := hexutil.Decode(sig)
			if err != nil {
				return fmt.Errorf("--signature: %w", err)
			}
			action, err := flags.action()
			if err != nil {
				return err
			}

			policy := review.NewPolicy(verifier.ECDSA{}, r)
			ok, err := policy.Verify(cmd.Context(), action, flags.nonce, blob)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("signature is not valid for reviewer %s at nonce %d", r.Hex(), flags.nonce)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "Reviewer address")
	cmd.Flags().StringVar(&sig, "signature", "", "Signature as 0x-hex")
	_ = cmd.MarkFlagRequired("reviewer")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}
