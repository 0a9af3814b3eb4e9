// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/fundvm/genesis"
	"github.com/ava-labs/fundvm/utils"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Manage genesis documents",
}

var generateGenesisCmd = &cobra.Command{
	Use:   "generate <authority> <treasury>",
	Short: "Write a default genesis document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := parseAddresses(args...)
		if err != nil {
			return err
		}
		networkID, err := cmd.Flags().GetUint32("network-id")
		if err != nil {
			return err
		}
		out, err := cmd.Flags().GetString("out")
		if err != nil {
			return err
		}

		g := genesis.NewDefaultGenesis(addrs[0], addrs[1])
		g.NetworkID = networkID
		if err := g.Verify(); err != nil {
			return err
		}
		b, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal genesis: %w", err)
		}
		if err := os.WriteFile(out, b, 0o600); err != nil {
			return err
		}
		utils.Outf("{{green}}created genesis:{{/}} %s\n", out)
		return nil
	},
}

func init() {
	generateGenesisCmd.Flags().String("out", "genesis.json", "Path the genesis is written to")
	generateGenesisCmd.Flags().Uint32("network-id", 1, "Network id of the chain")
	genesisCmd.AddCommand(generateGenesisCmd)
	rootCmd.AddCommand(genesisCmd)
}
