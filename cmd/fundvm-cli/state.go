// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ava-labs/fundvm/storage"
	"github.com/ava-labs/fundvm/utils"
	"github.com/ava-labs/fundvm/vm"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <asset> <account>",
	Short: "Print the free and reserved balance of an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := parseAddresses(args...)
		if err != nil {
			return err
		}
		asset, account := addrs[0], addrs[1]
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			meta, exists, err := v.Asset(ctx, asset)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("asset %s not found", asset)
			}
			bal, err := v.Balance(ctx, asset, account)
			if err != nil {
				return err
			}
			return printValue(cmd, bal, func() {
				utils.Outf(
					"{{yellow}}free:{{/}} %s %s {{yellow}}reserved:{{/}} %s %s\n",
					utils.FormatBalance(bal.Free, meta.Decimals), meta.Symbol,
					utils.FormatBalance(bal.Reserved, meta.Decimals), meta.Symbol,
				)
			})
		})
	},
}

var ammCmd = &cobra.Command{
	Use:   "amm",
	Short: "Inspect constant product pools",
}

var ammPoolCmd = &cobra.Command{
	Use:   "pool <asset> <asset>",
	Short: "Print the reserves of the pool trading a pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := parseAddresses(args...)
		if err != nil {
			return err
		}
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			pair, pool, err := v.AMMPool(ctx, addrs[0], addrs[1])
			if err != nil {
				return err
			}
			return printValue(cmd, pool, func() {
				utils.Outf("{{yellow}}%s:{{/}} %d\n", pair.A, pool.ReserveA)
				utils.Outf("{{yellow}}%s:{{/}} %d\n", pair.B, pool.ReserveB)
				utils.Outf("{{yellow}}lp asset:{{/}} %s\n", pool.LPAsset)
			})
		})
	},
}

var lbpCmd = &cobra.Command{
	Use:   "lbp",
	Short: "Inspect liquidity bootstrapping pools",
}

var lbpPoolCmd = &cobra.Command{
	Use:   "pool <asset> <asset>",
	Short: "Print the ongoing pool trading a pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := parseAddresses(args...)
		if err != nil {
			return err
		}
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			pool, err := v.LBPPool(ctx, addrs[0], addrs[1])
			if err != nil {
				return err
			}
			return printValue(cmd, pool, func() {
				utils.Outf("{{yellow}}id:{{/}} %d {{yellow}}status:{{/}} %s\n", pool.ID, pool.Status)
				utils.Outf("{{yellow}}supply:{{/}} %s %d (weight %d)\n", pool.SupplyAsset, pool.SupplyBalance, pool.SupplyWeight)
				utils.Outf("{{yellow}}target:{{/}} %s %d (weight %d)\n", pool.TargetAsset, pool.TargetBalance, pool.TargetWeight)
				utils.Outf(
					"{{yellow}}blocks:{{/}} %d-%d {{yellow}}step:{{/}} %d/%d\n",
					pool.StartBlock, pool.EndBlock, pool.CurrentStep, pool.Steps,
				)
			})
		})
	},
}

var icoCmd = &cobra.Command{
	Use:   "ico",
	Short: "Inspect fundraising projects",
}

var icoProjectCmd = &cobra.Command{
	Use:   "project <index>",
	Short: "Print a fundraising project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid project index %q: %w", args[0], err)
		}
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			pr, err := v.Project(ctx, uint32(index))
			if err != nil {
				return err
			}
			return printValue(cmd, pr, func() {
				printProject(pr)
			})
		})
	},
}

func printProject(pr *storage.Project) {
	utils.Outf("{{yellow}}project %d:{{/}} %s (%s) {{yellow}}status:{{/}} %s\n", pr.Index, pr.ProjectName, pr.TokenSymbol, pr.Status)
	utils.Outf("{{yellow}}initiator:{{/}} %s\n", pr.Initiator)
	utils.Outf("{{yellow}}raised:{{/}} %d/%d of %s\n", pr.TotalRaised, pr.ExchangeTarget, pr.ExchangeAsset)
	utils.Outf("{{yellow}}sold:{{/}} %d/%d\n", pr.TokensSold, pr.AmountOffered)
	if pr.StartBlock != 0 {
		utils.Outf("{{yellow}}blocks:{{/}} %d-%d\n", pr.StartBlock, pr.Deadline())
	}
	if len(pr.ExcludedAreas) > 0 {
		utils.Outf("{{yellow}}excluded areas:{{/}} %s\n", strings.Join(pr.ExcludedAreas, ","))
	}
	if pr.RewardComputed {
		utils.Outf("{{yellow}}reward:{{/}} %d\n", pr.Reward)
	}
}

func init() {
	ammCmd.AddCommand(ammPoolCmd)
	lbpCmd.AddCommand(lbpPoolCmd)
	icoCmd.AddCommand(icoProjectCmd)
	rootCmd.AddCommand(balanceCmd, ammCmd, lbpCmd, icoCmd)
}
