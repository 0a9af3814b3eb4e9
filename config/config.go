// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/viper"

	"github.com/ava-labs/fundvm/pebble"
	"github.com/ava-labs/fundvm/pubsub"
)

const EnvPrefix = "FUNDVM"

var (
	ErrInvalidPebbleConfig    = errors.New("invalid pebble config")
	ErrInvalidStreamingConfig = errors.New("invalid streaming config")
	ErrMissingGenesis         = errors.New("missing genesis file")
)

type Config struct {
	LogLevel    string `mapstructure:"logLevel"`
	DataDir     string `mapstructure:"dataDir"` // empty keeps state in memory
	GenesisFile string `mapstructure:"genesisFile"`

	Pebble pebble.Config `mapstructure:"pebble"`

	StreamingAddress string              `mapstructure:"streamingAddress"`
	Streaming        pubsub.ServerConfig `mapstructure:"streaming"`
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:    logging.Info.String(),
		GenesisFile: "genesis.json",
		Pebble:      pebble.NewDefaultConfig(),

		StreamingAddress: "127.0.0.1:9651",
		Streaming:        pubsub.NewDefaultServerConfig(),
	}
}

func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("dataDir", d.DataDir)
	v.SetDefault("genesisFile", d.GenesisFile)
	v.SetDefault("pebble.cacheSize", d.Pebble.CacheSize)
	v.SetDefault("pebble.bytesPerSync", d.Pebble.BytesPerSync)
	v.SetDefault("pebble.memTableSize", d.Pebble.MemTableSize)
	v.SetDefault("pebble.maxOpenFiles", d.Pebble.MaxOpenFiles)
	v.SetDefault("pebble.sync", d.Pebble.Sync)
	v.SetDefault("streamingAddress", d.StreamingAddress)
	v.SetDefault("streaming.readBufferSize", d.Streaming.ReadBufferSize)
	v.SetDefault("streaming.writeBufferSize", d.Streaming.WriteBufferSize)
	v.SetDefault("streaming.writeWait", d.Streaming.WriteWait)
	v.SetDefault("streaming.pongWait", d.Streaming.PongWait)
	v.SetDefault("streaming.pingPeriod", d.Streaming.PingPeriod)
	v.SetDefault("streaming.maxPendingMessages", d.Streaming.MaxPendingMessages)
	v.SetDefault("streaming.maxReadMessageSize", d.Streaming.MaxReadMessageSize)
	v.SetDefault("streaming.maxWriteBatchSize", d.Streaming.MaxWriteBatchSize)
	v.SetDefault("streaming.targetWriteLatency", d.Streaming.TargetWriteLatency)
	v.SetDefault("streaming.readHeaderTimeout", d.Streaming.ReadHeaderTimeout)
	v.SetDefault("streaming.submitRate", d.Streaming.SubmitRate)
	v.SetDefault("streaming.submitBurst", d.Streaming.SubmitBurst)
}

// Load reads the defaults, then [file] (if any), then FUNDVM_* environment
// variables, in increasing priority.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if _, err := logging.ToLevel(c.LogLevel); err != nil {
		return err
	}
	if c.GenesisFile == "" {
		return ErrMissingGenesis
	}
	if c.Pebble.CacheSize <= 0 || c.Pebble.MemTableSize <= 0 || c.Pebble.MaxOpenFiles <= 0 {
		return ErrInvalidPebbleConfig
	}
	if c.Streaming.PingPeriod >= c.Streaming.PongWait || c.Streaming.MaxPendingMessages <= 0 ||
		c.Streaming.MaxWriteBatchSize <= 0 || c.Streaming.SubmitRate < 0 ||
		(c.Streaming.SubmitRate > 0 && c.Streaming.SubmitBurst <= 0) {
		return ErrInvalidStreamingConfig
	}
	return nil
}

func (c *Config) GetLogLevel() logging.Level {
	l, err := logging.ToLevel(c.LogLevel)
	if err != nil {
		return logging.Info
	}
	return l
}

// InMemory reports whether state is kept in memory instead of on disk.
func (c *Config) InMemory() bool { return c.DataDir == "" }
