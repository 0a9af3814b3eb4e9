// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func testConfig() ServerConfig {
	cfg := NewDefaultServerConfig()
	cfg.TargetWriteLatency = time.Millisecond
	return cfg
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readBatch(t *testing.T, conn *websocket.Conn) [][]byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	msgs, err := ParseBatchMessage(NewDefaultServerConfig().MaxWriteBatchSize, msg)
	require.NoError(t, err)
	return msgs
}

func readN(t *testing.T, conn *websocket.Conn, n int) [][]byte {
	t.Helper()
	var msgs [][]byte
	for len(msgs) < n {
		msgs = append(msgs, readBatch(t, conn)...)
	}
	require.Len(t, msgs, n)
	return msgs
}

func writeFrames(t *testing.T, conn *websocket.Conn, frames ...any) {
	t.Helper()
	msgs := make([][]byte, len(frames))
	for i, f := range frames {
		b, err := json.Marshal(f)
		require.NoError(t, err)
		msgs[i] = b
	}
	batch, err := CreateBatchMessage(msgs)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, batch))
}

func parseNotice(t *testing.T, b []byte) *Notice {
	t.Helper()
	n := &Notice{}
	require.NoError(t, json.Unmarshal(b, n))
	require.Equal(t, NoticeType, n.Type)
	return n
}

func TestServerBroadcast(t *testing.T) {
	require := require.New(t)

	server := New("", nil, logging.NoLog{}, testConfig())
	srv := httptest.NewServer(server)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(func() bool {
		return server.Len() == 1
	}, time.Second, 10*time.Millisecond)

	require.Equal(1, server.Broadcast([]byte(`{"height":1}`)))
	msgs := readBatch(t, conn)
	require.Len(msgs, 1)
	require.JSONEq(`{"height":1}`, string(msgs[0]))

	require.NoError(conn.Close())
	require.Eventually(func() bool {
		return server.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestServerTopics(t *testing.T) {
	require := require.New(t)

	server := New("", nil, logging.NoLog{}, testConfig(), "blocks", "hooks")
	srv := httptest.NewServer(server)
	defer srv.Close()

	follower := dial(t, srv)
	other := dial(t, srv)
	require.Eventually(func() bool {
		return server.Len() == 2
	}, time.Second, 10*time.Millisecond)

	writeFrames(t, follower, &Frame{Op: OpSubscribe, Topics: []string{"hooks", "blocks"}})
	n := parseNotice(t, readN(t, follower, 1)[0])
	require.Equal(OpSubscribe, n.Op)
	require.Equal([]string{"blocks", "hooks"}, n.Topics)
	require.Empty(n.Error)
	require.Equal(1, server.Subscribers("blocks"))

	// Only the follower receives the topic, both receive the broadcast.
	require.Equal(1, server.Publish("blocks", []byte(`"b1"`)))
	require.Equal(2, server.Broadcast([]byte(`"all"`)))
	require.Equal([][]byte{[]byte(`"b1"`), []byte(`"all"`)}, readN(t, follower, 2))
	require.Equal([][]byte{[]byte(`"all"`)}, readN(t, other, 1))

	writeFrames(t, follower, &Frame{Op: OpUnsubscribe, Topics: []string{"blocks"}})
	n = parseNotice(t, readN(t, follower, 1)[0])
	require.Equal([]string{"hooks"}, n.Topics)
	require.Zero(server.Publish("blocks", []byte(`"b2"`)))

	writeFrames(t, follower, &Frame{Op: OpSubscribe, Topics: []string{"blocks", "trades"}})
	n = parseNotice(t, readN(t, follower, 1)[0])
	require.Equal(ErrUnknownTopic.Error(), n.Error)
	require.Zero(server.Subscribers("blocks"))

	require.NoError(follower.Close())
	require.Eventually(func() bool {
		return server.Subscribers("hooks") == 0 && server.Len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestServerSubmit(t *testing.T) {
	require := require.New(t)

	received := make(chan string, 3)
	callback := func(msg []byte, c *Connection) {
		received <- string(msg)
		c.Send([]byte(`"ack"`))
	}
	cfg := testConfig()
	cfg.SubmitRate = 0.001
	cfg.SubmitBurst = 2
	server := New("", callback, logging.NoLog{}, cfg)
	srv := httptest.NewServer(server)
	defer srv.Close()

	conn := dial(t, srv)
	writeFrames(t, conn,
		&Frame{Op: OpSubmit, Payload: []byte(`1`)},
		&Frame{Op: OpSubmit, Payload: []byte(`2`)},
		&Frame{Op: OpSubmit, Payload: []byte(`3`)},
		&Frame{Op: "dance"},
		"text",
	)

	require.Equal("1", <-received)
	require.Equal("2", <-received)

	msgs := readN(t, conn, 5)
	require.Equal(`"ack"`, string(msgs[0]))
	require.Equal(`"ack"`, string(msgs[1]))
	require.Equal(ErrRateLimited.Error(), parseNotice(t, msgs[2]).Error)
	require.Equal(ErrUnknownOp.Error(), parseNotice(t, msgs[3]).Error)
	require.NotEmpty(parseNotice(t, msgs[4]).Error)
	require.Empty(received)
}

func TestServerWithoutCallback(t *testing.T) {
	require := require.New(t)

	server := New("", nil, logging.NoLog{}, testConfig())
	srv := httptest.NewServer(server)
	defer srv.Close()

	conn := dial(t, srv)
	writeFrames(t, conn, &Frame{Op: OpSubmit, Payload: []byte(`1`)})
	n := parseNotice(t, readN(t, conn, 1)[0])
	require.Equal(OpSubmit, n.Op)
	require.Equal(ErrNoSubmissions.Error(), n.Error)
}

func TestMessageBufferLimits(t *testing.T) {
	require := require.New(t)

	mb := NewMessageBuffer(logging.NoLog{}, 4, 8, time.Hour)
	require.ErrorIs(mb.Send([]byte("123456789")), ErrMessageTooLarge)

	require.NoError(mb.Send([]byte(`"abcd"`)))
	// overflowing the pending size flushes the first message
	require.NoError(mb.Send([]byte(`"efgh"`)))
	flushed := <-mb.Queue
	require.JSONEq(`["abcd"]`, string(flushed))

	require.NoError(mb.Close())
	require.JSONEq(`["efgh"]`, string(<-mb.Queue))
	require.ErrorIs(mb.Close(), ErrClosed)
	require.ErrorIs(mb.Send([]byte(`1`)), ErrClosed)
}

func TestParseBatchMessage(t *testing.T) {
	require := require.New(t)

	_, err := ParseBatchMessage(2, []byte(`[1,2]`))
	require.ErrorIs(err, ErrMessageTooLarge)

	_, err = ParseBatchMessage(64, []byte(`not json`))
	require.Error(err)

	msgs, err := ParseBatchMessage(64, []byte(`[1,{"a":2}]`))
	require.NoError(err)
	require.Len(msgs, 2)
	require.JSONEq(`{"a":2}`, string(msgs[1]))
}

func TestServerShutdownBeforeStart(t *testing.T) {
	require := require.New(t)

	server := New("127.0.0.1:0", nil, logging.NoLog{}, testConfig())
	require.NoError(server.Shutdown(context.Background()))
	require.ErrorIs(server.Start(), http.ErrServerClosed)
}
