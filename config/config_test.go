// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	require := require.New(t)

	c, err := Load("")
	require.NoError(err)
	require.Equal(NewDefaultConfig(), c)
	require.True(c.InMemory())
	require.Equal(logging.Info, c.GetLogLevel())
}

func TestLoadFileAndEnv(t *testing.T) {
	require := require.New(t)

	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(file, []byte(`{
		"logLevel": "debug",
		"dataDir": "/var/lib/fundvm",
		"pebble": {"cacheSize": 1024, "sync": false}
	}`), 0o600))
	t.Setenv("FUNDVM_GENESISFILE", "/etc/fundvm/genesis.json")

	c, err := Load(file)
	require.NoError(err)
	require.Equal(logging.Debug, c.GetLogLevel())
	require.Equal("/var/lib/fundvm", c.DataDir)
	require.Equal("/etc/fundvm/genesis.json", c.GenesisFile)
	require.Equal(1024, c.Pebble.CacheSize)
	require.False(c.Pebble.Sync)
	require.Equal(NewDefaultConfig().Pebble.MaxOpenFiles, c.Pebble.MaxOpenFiles)
	require.False(c.InMemory())
}

func TestLoadErrors(t *testing.T) {
	require := require.New(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(err, "failed to read config file")

	t.Setenv("FUNDVM_PEBBLE_MAXOPENFILES", "0")
	_, err = Load("")
	require.ErrorIs(err, ErrInvalidPebbleConfig)
}

func TestValidateLogLevel(t *testing.T) {
	c := NewDefaultConfig()
	c.LogLevel = "loud"
	require.Error(t, c.Validate())
}

func TestLoadStreaming(t *testing.T) {
	require := require.New(t)

	t.Setenv("FUNDVM_STREAMINGADDRESS", "0.0.0.0:9700")
	t.Setenv("FUNDVM_STREAMING_PONGWAIT", "30s")
	t.Setenv("FUNDVM_STREAMING_PINGPERIOD", "20s")
	c, err := Load("")
	require.NoError(err)
	require.Equal("0.0.0.0:9700", c.StreamingAddress)
	require.Equal(30*time.Second, c.Streaming.PongWait)
	require.Equal(20*time.Second, c.Streaming.PingPeriod)
	require.Equal(NewDefaultConfig().Streaming.MaxWriteBatchSize, c.Streaming.MaxWriteBatchSize)
	require.Equal(NewDefaultConfig().Streaming.SubmitRate, c.Streaming.SubmitRate)

	t.Setenv("FUNDVM_STREAMING_PINGPERIOD", "2m")
	_, err = Load("")
	require.ErrorIs(err, ErrInvalidStreamingConfig)
}

func TestValidateSubmitRate(t *testing.T) {
	require := require.New(t)

	c := NewDefaultConfig()
	c.Streaming.SubmitRate = 0
	c.Streaming.SubmitBurst = 0
	require.NoError(c.Validate())

	c.Streaming.SubmitRate = 5
	require.ErrorIs(c.Validate(), ErrInvalidStreamingConfig)

	c.Streaming.SubmitRate = -1
	c.Streaming.SubmitBurst = 1
	require.ErrorIs(c.Validate(), ErrInvalidStreamingConfig)
}
