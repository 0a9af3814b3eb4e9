// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server maintains the set of active clients and publishes messages to the
// clients following a topic.
//
// Connect to the server after starting using websocket.DefaultDialer.Dial().
type Server struct {
	s        *http.Server
	addr     string
	log      logging.Logger
	lock     sync.Mutex
	closed   bool
	config   ServerConfig
	upgrader websocket.Upgrader

	nextID atomic.Uint64
	conns  *registry
	topics set.Set[string]

	// invoked for the payload of every submit frame, may be nil
	callback Callback
}

// New returns a new Server instance publishing [topics]. The callback
// function [callback] is called with submitted payloads if not nil.
func New(
	addr string,
	callback Callback,
	log logging.Logger,
	config ServerConfig,
	topics ...string,
) *Server {
	return &Server{
		addr:     addr,
		log:      log,
		config:   config,
		callback: callback,
		conns:    newRegistry(),
		topics:   set.Of(topics...),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP adds a connection to the server, and starts go routines for
// reading and writing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := s.newConnection(wsConn)
	conn.active.Store(true)
	s.conns.add(conn)

	go conn.writePump()
	go conn.readPump()
}

// Publish sends [msg] to every connection following [topic] and returns
// how many accepted it.
func (s *Server) Publish(topic string, msg []byte) int {
	return s.send(s.conns.subscribersOf(topic), msg)
}

// Broadcast sends [msg] to every connection of [s].
func (s *Server) Broadcast(msg []byte) int {
	return s.send(s.conns.all(), msg)
}

func (s *Server) send(conns []*Connection, msg []byte) int {
	var sent int
	for _, conn := range conns {
		if !conn.Send(msg) {
			s.log.Verbo("dropping message to connection",
				zap.Uint64("connection", conn.id),
			)
			continue
		}
		sent++
	}
	return sent
}

// Len returns the number of live connections.
func (s *Server) Len() int {
	return s.conns.len()
}

// Subscribers returns the number of connections following [topic].
func (s *Server) Subscribers(topic string) int {
	return len(s.conns.subscribersOf(topic))
}

// Start starts the server. Returns an error if the server fails to start or
// when the server is stopped.
func (s *Server) Start() error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return http.ErrServerClosed
	}
	s.s = &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}
	srv := s.s
	s.lock.Unlock()
	return srv.ListenAndServe()
}

// Shutdown shuts down the server and returns the associated error.
func (s *Server) Shutdown(ctx context.Context) error {
	s.lock.Lock()
	s.closed = true
	srv := s.s
	s.lock.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
