// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"errors"
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

var (
	ErrClosed          = errors.New("closed")
	ErrMessageTooLarge = errors.New("message too large")
	ErrUnknownOp       = errors.New("unknown op")
	ErrUnknownTopic    = errors.New("unknown topic")
	ErrRateLimited     = errors.New("submission rate exceeded")
	ErrNoSubmissions   = errors.New("server does not accept submissions")
)

type ServerConfig struct {
	ReadBufferSize     int           `mapstructure:"readBufferSize"`
	WriteBufferSize    int           `mapstructure:"writeBufferSize"`
	WriteWait          time.Duration `mapstructure:"writeWait"`
	PongWait           time.Duration `mapstructure:"pongWait"`
	PingPeriod         time.Duration `mapstructure:"pingPeriod"` // must be less than PongWait
	MaxPendingMessages int           `mapstructure:"maxPendingMessages"`
	MaxReadMessageSize int           `mapstructure:"maxReadMessageSize"`
	MaxWriteBatchSize  int           `mapstructure:"maxWriteBatchSize"`
	TargetWriteLatency time.Duration `mapstructure:"targetWriteLatency"`
	ReadHeaderTimeout  time.Duration `mapstructure:"readHeaderTimeout"`
	// SubmitRate is the sustained number of submit frames a connection may
	// send per second, 0 is unlimited. SubmitBurst bounds short bursts.
	SubmitRate  float64 `mapstructure:"submitRate"`
	SubmitBurst int     `mapstructure:"submitBurst"`
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:     units.KiB,
		WriteBufferSize:    units.KiB,
		WriteWait:          10 * time.Second,
		PongWait:           60 * time.Second,
		PingPeriod:         54 * time.Second,
		MaxPendingMessages: 1024,
		MaxReadMessageSize: 4 * units.MiB,
		MaxWriteBatchSize:  4 * units.MiB,
		TargetWriteLatency: 10 * time.Millisecond,
		ReadHeaderTimeout:  5 * time.Second,
		SubmitRate:         10,
		SubmitBurst:        10,
	}
}
