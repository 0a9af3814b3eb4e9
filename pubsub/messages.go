// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import "encoding/json"

// CreateBatchMessage packs JSON messages into a single JSON array.
func CreateBatchMessage(msgs [][]byte) ([]byte, error) {
	raw := make([]json.RawMessage, len(msgs))
	for i, msg := range msgs {
		raw[i] = msg
	}
	return json.Marshal(raw)
}

// ParseBatchMessage splits a JSON array of at most [maxSize] bytes into its
// messages.
func ParseBatchMessage(maxSize int, msg []byte) ([][]byte, error) {
	if len(msg) > maxSize {
		return nil, ErrMessageTooLarge
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, err
	}
	msgs := make([][]byte, len(raw))
	for i, r := range raw {
		msgs[i] = r
	}
	return msgs, nil
}

const (
	OpSubscribe   = "subscribe"
	OpUnsubscribe = "unsubscribe"
	OpSubmit      = "submit"

	// NoticeType tags the frames the server writes in reply to control
	// frames.
	NoticeType = "notice"
)

// Frame is a single message read from a connection. Subscriptions are
// handled by the [Server]; the payload of a submit frame goes to the
// [Callback].
type Frame struct {
	Op      string          `json:"op"`
	Topics  []string        `json:"topics,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Notice answers a control frame with the resulting subscriptions, or
// reports why a frame was dropped.
type Notice struct {
	Type   string   `json:"type"`
	Op     string   `json:"op"`
	Topics []string `json:"topics"`
	Error  string   `json:"error,omitempty"`
}
