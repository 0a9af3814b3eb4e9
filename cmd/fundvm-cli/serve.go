// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/fundvm/utils"
	"github.com/ava-labs/fundvm/vm"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream accepted blocks over websockets and accept submitted blocks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withVM(cmd, func(ctx context.Context, v *vm.VM) error {
			cfg := v.Config()
			s := vm.NewStreamingServer(v, cfg.StreamingAddress, cfg.Streaming)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := s.Start(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return s.Shutdown(shutdownCtx)
			})
			utils.Outf("{{green}}streaming on{{/}} ws://%s\n", cfg.StreamingAddress)

			if err := g.Wait(); err != nil {
				return err
			}
			v.Logger().Info("streaming server stopped", zap.String("address", cfg.StreamingAddress))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
