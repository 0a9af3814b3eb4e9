// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/event"
	"github.com/ava-labs/fundvm/pubsub"
)

const (
	// TopicBlocks streams every accepted block with its results.
	TopicBlocks = "blocks"
	// TopicHooks streams only the end-of-block hook results of accepted
	// blocks: settlements, weight steps and expiries.
	TopicHooks = "hooks"

	MessageBlock  = "block"
	MessageHooks  = "hooks"
	MessageResult = "result"
)

// StreamMessage is the envelope of everything written to stream clients
// besides subscription notices.
type StreamMessage struct {
	Type   string               `json:"type"`
	Height uint64               `json:"height,omitempty"`
	Block  *chain.ExecutedBlock `json:"block,omitempty"`
	Hooks  []*chain.HookResult  `json:"hooks,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// StreamingServer publishes accepted blocks over websockets and accepts
// blocks submitted by clients.
type StreamingServer struct {
	vm     *VM
	server *pubsub.Server
}

func NewStreamingServer(vm *VM, addr string, cfg pubsub.ServerConfig) *StreamingServer {
	s := &StreamingServer{vm: vm}
	s.server = pubsub.New(addr, s.handleSubmit, vm.log, cfg, TopicBlocks, TopicHooks)
	vm.Subscribe(event.SubscriptionFunc[*chain.ExecutedBlock]{
		AcceptF: s.publish,
	})
	return s
}

func (s *StreamingServer) publish(_ context.Context, blk *chain.ExecutedBlock) error {
	b, err := json.Marshal(&StreamMessage{Type: MessageBlock, Height: blk.Height, Block: blk})
	if err != nil {
		return err
	}
	s.server.Publish(TopicBlocks, b)

	b, err = json.Marshal(&StreamMessage{Type: MessageHooks, Height: blk.Height, Hooks: blk.HookResults})
	if err != nil {
		return err
	}
	s.server.Publish(TopicHooks, b)
	return nil
}

func (s *StreamingServer) handleSubmit(msg []byte, c *pubsub.Connection) {
	resp := &StreamMessage{Type: MessageResult}
	blk, err := s.vm.ParseBlock(msg)
	if err == nil {
		resp.Height = blk.Height
		resp.Block, err = s.vm.Accept(context.Background(), blk)
	}
	if err != nil {
		s.vm.log.Debug("submitted block failed",
			zap.Uint64("connection", c.ID()),
			zap.Error(err),
		)
		resp.Error = err.Error()
	}
	b, err := json.Marshal(resp)
	if err != nil {
		s.vm.log.Warn("unable to marshal stream response", zap.Error(err))
		return
	}
	if !c.Send(b) {
		s.vm.log.Debug("dropped stream response", zap.Uint64("connection", c.ID()))
	}
}

func (s *StreamingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.ServeHTTP(w, r)
}

// Start blocks until the listener fails or Shutdown is called.
func (s *StreamingServer) Start() error {
	return s.server.Start()
}

func (s *StreamingServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
