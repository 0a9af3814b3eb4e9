// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fundvm-cli",
	Short: "FundVM CLI for applying blocks and inspecting state",
	Long:  `A CLI application that generates genesis documents, applies blocks to a local FundVM database and reads its state.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (FUNDVM_* variables override it)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text or json)")
}

func main() {
	Execute()
}
