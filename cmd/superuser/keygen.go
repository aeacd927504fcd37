package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/weisyn/superuser-module-go/utils"
	"github.com/weisyn/superuser-module-go/wallet"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a reviewer key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := wallet.NewWallet()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address:     %s\n", w.Address().Hex())
			fmt.Fprintf(out, "base58:      %s\n", utils.FormatBase58(w.Address()))
			fmt.Fprintf(out, "private key: %s\n", hexutil.Encode(crypto.FromECDSA(w.PrivateKey())))
			return nil
		},
	}
}
