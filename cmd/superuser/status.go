package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/superuser-module-go/config"
)

func newStatusCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configured module state and whether the target is ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Load(path)
			if err != nil {
				return err
			}
			rt, err := config.Open(s, nil, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			m := rt.Executor
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "module:   %s\n", m.Address().Hex())
			fmt.Fprintf(out, "target:   %s\n", m.Target().Hex())
			fmt.Fprintf(out, "reviewer: %s\n", m.Reviewer().Hex())
			if rt.Owned != nil {
				fmt.Fprintf(out, "owner:    %s\n", rt.Owned.Owner().Hex())
			} else {
				fmt.Fprintln(out, "owner:    (fixed)")
			}
			for _, p := range m.SuperUsers() {
				fmt.Fprintf(out, "super user: %s\n", p.Hex())
			}
			fmt.Fprintf(out, "ready:    %t\n", m.IsReady(cmd.Context()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "superuser.yaml", "Path to the YAML configuration")
	return cmd
}
