package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/weisyn/superuser-module-go/target"
	"github.com/weisyn/superuser-module-go/utils"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "superuser",
		Short:         "Super-user authorization module tooling",
		Long:          "Offline helpers for reviewers (digest, sign, verify) and a status check against a configured protected account.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newKeygenCmd(),
		newDigestCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newStatusCmd(),
	)
	return root
}

// actionFlags 描述动作的公共参数
type actionFlags struct {
	to        string
	value     string
	data      string
	operation string
	nonce     uint64
}

func (f *actionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.to, "to", "", "Destination address (0x-hex or Base58Check)")
	fs.StringVar(&f.value, "value", "0", "Value in base units (decimal or 0x-hex)")
	fs.StringVar(&f.data, "data", "0x", "Call payload as 0x-hex")
	fs.StringVar(&f.operation, "operation", "call", "Call mode: call | delegatecall")
	fs.Uint64Var(&f.nonce, "nonce", 0, "Module nonce the review is bound to")
}

func (f *actionFlags) action() (target.Action, error) {
	var a target.Action

	if f.to == "" {
		return a, fmt.Errorf("--to is required")
	}
	to, err := utils.ParseAddress(f.to)
	if err != nil {
		return a, fmt.Errorf("--to: %w", err)
	}
	a.To = to

	value, ok := new(big.Int).SetString(f.value, 0)
	if !ok {
		return a, fmt.Errorf("--value: invalid integer %q", f.value)
	}
	a.Value = value

	a.Data, err = hexutil.Decode(f.data)
	if err != nil {
		return a, fmt.Errorf("--data: %w", err)
	}

	a.Operation, err = parseCallMode(f.operation)
	if err != nil {
		return a, err
	}
	return a, nil
}

func parseCallMode(s string) (target.CallMode, error) {
	switch strings.ToLower(s) {
	case "call", "0":
		return target.Call, nil
	case "delegatecall", "delegate", "1":
		return target.DelegateCall, nil
	default:
		return 0, fmt.Errorf("--operation: unknown call mode %q", s)
	}
}
