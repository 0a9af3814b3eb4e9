// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/config"
	"github.com/ava-labs/fundvm/pubsub"
)

func readStream(t *testing.T, conn *websocket.Conn) [][]byte {
	require := require.New(t)

	require.NoError(conn.SetReadDeadline(time.Now().Add(5 * time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(err)
	raw, err := pubsub.ParseBatchMessage(pubsub.NewDefaultServerConfig().MaxWriteBatchSize, b)
	require.NoError(err)
	return raw
}

// readMessages reads until [n] stream messages arrived on [conn].
func readMessages(t *testing.T, conn *websocket.Conn, n int) []*StreamMessage {
	var msgs []*StreamMessage
	for len(msgs) < n {
		for _, raw := range readStream(t, conn) {
			msg := &StreamMessage{}
			require.NoError(t, json.Unmarshal(raw, msg))
			msgs = append(msgs, msg)
		}
	}
	require.Len(t, msgs, n)
	return msgs
}

func dialStream(t *testing.T, srv *httptest.Server, topics ...string) *websocket.Conn {
	require := require.New(t)

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	t.Cleanup(func() { _ = conn.Close() })

	writeFrames(t, conn, &pubsub.Frame{Op: pubsub.OpSubscribe, Topics: topics})
	notice := &pubsub.Notice{}
	require.NoError(json.Unmarshal(readStream(t, conn)[0], notice))
	require.Empty(notice.Error)
	require.Equal(topics, notice.Topics)
	return conn
}

func writeFrames(t *testing.T, conn *websocket.Conn, frames ...*pubsub.Frame) {
	msgs := make([][]byte, len(frames))
	for i, f := range frames {
		b, err := json.Marshal(f)
		require.NoError(t, err)
		msgs[i] = b
	}
	batch, err := pubsub.CreateBatchMessage(msgs)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, batch))
}

func TestStreamingServer(t *testing.T) {
	require := require.New(t)

	vm := newTestVM(t, config.NewDefaultConfig(), testGenesis())
	defer func() { require.NoError(vm.Shutdown()) }()

	cfg := pubsub.NewDefaultServerConfig()
	cfg.TargetWriteLatency = time.Millisecond
	s := NewStreamingServer(vm, "", cfg)
	srv := httptest.NewServer(s)
	defer srv.Close()

	blocks := dialStream(t, srv, TopicBlocks)
	hooks := dialStream(t, srv, TopicHooks)

	blk := transferBlock(t, vm, 1, 250)
	b, err := json.Marshal(blk)
	require.NoError(err)
	writeFrames(t, blocks,
		&pubsub.Frame{Op: pubsub.OpSubmit, Payload: b},
		&pubsub.Frame{Op: pubsub.OpSubmit, Payload: []byte(`{"height":5,"txs":[]}`)},
	)

	var accepted, results []*StreamMessage
	for _, msg := range readMessages(t, blocks, 3) {
		switch msg.Type {
		case MessageBlock:
			accepted = append(accepted, msg)
		case MessageResult:
			results = append(results, msg)
		}
	}
	require.Len(accepted, 1)
	require.Equal(uint64(1), accepted[0].Height)
	require.Equal(uint64(1), accepted[0].Block.Height)
	require.Len(results, 2)
	require.Empty(results[0].Error)
	require.Equal(1, results[0].Block.Succeeded())
	require.Contains(results[1].Error, chain.ErrInvalidHeight.Error())
	require.Nil(results[1].Block)

	// The hooks topic only carries the end-of-block summary.
	summary := readMessages(t, hooks, 1)[0]
	require.Equal(MessageHooks, summary.Type)
	require.Equal(uint64(1), summary.Height)
	require.Nil(summary.Block)
}
