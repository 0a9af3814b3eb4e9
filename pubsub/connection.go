// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"encoding/json"
	"io"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Callback handles the payload of a submit frame read from [*Connection].
// Replies are written with Connection.Send.
type Callback func([]byte, *Connection)

// Connection is a single websocket client of a Server.
type Connection struct {
	s  *Server
	id uint64

	conn *websocket.Conn
	mb   *MessageBuffer

	// limits submit frames, control frames are never limited
	limiter *rate.Limiter

	active atomic.Bool
}

func (s *Server) newConnection(conn *websocket.Conn) *Connection {
	limit := rate.Inf
	if s.config.SubmitRate > 0 {
		limit = rate.Limit(s.config.SubmitRate)
	}
	return &Connection{
		s:       s,
		id:      s.nextID.Add(1),
		conn:    conn,
		limiter: rate.NewLimiter(limit, s.config.SubmitBurst),
		mb: NewMessageBuffer(
			s.log,
			s.config.MaxPendingMessages,
			s.config.MaxWriteBatchSize,
			s.config.TargetWriteLatency,
		),
	}
}

// ID identifies the connection for the lifetime of its server.
func (c *Connection) ID() uint64 {
	return c.id
}

func (c *Connection) close() {
	if !c.active.Swap(false) {
		return
	}
	c.s.conns.remove(c)
	_ = c.mb.Close()
}

// Send queues [msg] for the connection and returns whether it was queued.
func (c *Connection) Send(msg []byte) bool {
	if !c.active.Load() {
		return false
	}
	if err := c.mb.Send(msg); err != nil {
		c.s.log.Debug("unable to send message",
			zap.Uint64("connection", c.id),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (c *Connection) notify(op string, topics []string, err error) {
	n := &Notice{Type: NoticeType, Op: op, Topics: topics}
	if topics == nil {
		n.Topics = []string{}
	}
	if err != nil {
		n.Error = err.Error()
	}
	b, err := json.Marshal(n)
	if err != nil {
		c.s.log.Warn("unable to marshal notice", zap.Error(err))
		return
	}
	c.Send(b)
}

// handle dispatches one frame read from the connection.
func (c *Connection) handle(msg []byte) {
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		c.notify("", nil, err)
		return
	}
	switch f.Op {
	case OpSubscribe, OpUnsubscribe:
		for _, topic := range f.Topics {
			if !c.s.topics.Contains(topic) {
				c.notify(f.Op, nil, ErrUnknownTopic)
				return
			}
		}
		var followed []string
		if f.Op == OpSubscribe {
			followed = c.s.conns.subscribe(c, f.Topics...)
		} else {
			followed = c.s.conns.unsubscribe(c, f.Topics...)
		}
		c.notify(f.Op, followed, nil)
	case OpSubmit:
		if c.s.callback == nil {
			c.notify(f.Op, nil, ErrNoSubmissions)
			return
		}
		if !c.limiter.Allow() {
			c.notify(f.Op, nil, ErrRateLimited)
			return
		}
		c.s.callback(f.Payload, c)
	default:
		c.notify(f.Op, nil, ErrUnknownOp)
	}
}

// readPump reads batches of frames until the connection fails. It is the
// only reader of the websocket.
func (c *Connection) readPump() {
	defer func() {
		c.close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(c.s.config.MaxReadMessageSize))
	if err := c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait))
	})
	for {
		_, reader, err := c.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				c.s.log.Debug("unexpected close in websockets",
					zap.Uint64("connection", c.id),
					zap.Error(err),
				)
			}
			return
		}
		b, err := io.ReadAll(reader)
		if err != nil {
			c.s.log.Debug("unexpected error reading bytes from websockets",
				zap.Uint64("connection", c.id),
				zap.Error(err),
			)
			return
		}
		msgs, err := ParseBatchMessage(c.s.config.MaxReadMessageSize, b)
		if err != nil {
			c.s.log.Debug("unable to read websockets message",
				zap.Uint64("connection", c.id),
				zap.Error(err),
			)
			return
		}
		for _, msg := range msgs {
			c.handle(msg)
		}
	}
}

// writePump drains the message buffer into the websocket and keeps the
// connection alive with pings. It is the only writer of the websocket.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.s.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.mb.Queue:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.s.log.Debug("closing the connection",
					zap.Uint64("connection", c.id),
					zap.String("reason", "failed to write message"),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
