// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/fundvm/utils"
	"github.com/ava-labs/fundvm/vm"
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Apply blocks to the local database",
}

var applyBlockCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Execute a JSON block on top of the last committed block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read block: %w", err)
		}
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			blk, err := v.ParseBlock(b)
			if err != nil {
				return err
			}
			executed, err := v.Accept(ctx, blk)
			if err != nil {
				return err
			}
			return printValue(cmd, executed, func() {
				utils.Outf("{{yellow}}height:{{/}} %d {{yellow}}state changes:{{/}} %d\n", executed.Height, executed.StateChanges)
				for i, r := range executed.Results {
					tx := blk.Txs[i]
					utils.Outf(outStatus(r.Success)+" {{yellow}}tx:{{/}} %s {{yellow}}action:{{/}} %s", r.TxID, v.Registry().Name(tx.Action.GetTypeID()))
					if !r.Success {
						utils.Outf(" {{red}}%s{{/}}", r.Error)
						if r.Persisted {
							utils.Outf(" {{magenta}}(persisted){{/}}")
						}
					}
					utils.Outf("\n")
				}
				for _, h := range executed.HookResults {
					utils.Outf(outStatus(h.Error == "")+" {{yellow}}hook:{{/}} %s {{yellow}}outputs:{{/}} %d", h.Hook, len(h.Outputs))
					if h.Error != "" {
						utils.Outf(" {{red}}%s{{/}}", h.Error)
					}
					utils.Outf("\n")
				}
			})
		})
	},
}

var heightCmd = &cobra.Command{
	Use:   "height",
	Short: "Print the height of the last committed block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			height, err := v.Height(ctx)
			if err != nil {
				return err
			}
			return printValue(cmd, map[string]uint64{"height": height}, func() {
				utils.Outf("{{yellow}}height:{{/}} %d\n", height)
			})
		})
	},
}

func init() {
	blockCmd.AddCommand(applyBlockCmd, heightCmd)
	rootCmd.AddCommand(blockCmd)
}
