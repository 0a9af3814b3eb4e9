// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/cobra"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/config"
	"github.com/ava-labs/fundvm/genesis"
	"github.com/ava-labs/fundvm/vm"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(file)
}

// openVM opens the database named by the config. Logs go to stderr so
// that json output stays parseable.
func openVM(ctx context.Context, cmd *cobra.Command) (*vm.VM, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(cfg.GenesisFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis: %w", err)
	}
	g, err := genesis.Load(b)
	if err != nil {
		return nil, fmt.Errorf("failed to load genesis: %w", err)
	}
	log := logging.NewLogger(
		"fundvm-cli",
		logging.NewWrappedCore(cfg.GetLogLevel(), os.Stderr, logging.Colors.ConsoleEncoder()),
	)
	return vm.New(ctx, cfg, g, vm.WithLogger(log))
}

// withVM runs [f] against an opened vm and always shuts it down.
func withVM(cmd *cobra.Command, f func(ctx context.Context, v *vm.VM) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	v, err := openVM(ctx, cmd)
	if err != nil {
		return err
	}
	err = f(ctx, v)
	if shutdownErr := v.Shutdown(); err == nil {
		err = shutdownErr
	}
	return err
}

func isJSONOutputRequested(cmd *cobra.Command) (bool, error) {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return false, fmt.Errorf("failed to get output format: %w", err)
	}
	return strings.ToLower(output) == "json", nil
}

// printValue writes [v] as indented json when requested, otherwise runs
// [text].
func printValue(cmd *cobra.Command, v any, text func()) error {
	isJSON, err := isJSONOutputRequested(cmd)
	if err != nil {
		return err
	}
	if !isJSON {
		text()
		return nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

func parseAddresses(args ...string) ([]codec.Address, error) {
	addrs := make([]codec.Address, len(args))
	for i, arg := range args {
		addr, err := codec.StringToAddress(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", arg, err)
		}
		addrs[i] = addr
	}
	return addrs, nil
}

func outStatus(ok bool) string {
	if ok {
		return "{{green}}success{{/}}"
	}
	return "{{red}}failed{{/}}"
}
