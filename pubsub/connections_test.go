// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	require := require.New(t)

	r := newRegistry()
	a := &Connection{id: 1}
	b := &Connection{id: 2}

	// Unknown connections cannot subscribe.
	require.Nil(r.subscribe(a, "blocks"))
	require.Empty(r.subscribersOf("blocks"))

	r.add(a)
	r.add(b)
	require.Equal(2, r.len())
	require.ElementsMatch([]*Connection{a, b}, r.all())

	require.Equal([]string{"blocks", "hooks"}, r.subscribe(a, "hooks", "blocks", "hooks"))
	require.Equal([]string{"blocks"}, r.subscribe(b, "blocks"))
	require.ElementsMatch([]*Connection{a, b}, r.subscribersOf("blocks"))
	require.Equal([]*Connection{a}, r.subscribersOf("hooks"))

	require.Equal([]string{"hooks"}, r.unsubscribe(a, "blocks", "missing"))
	require.Equal([]*Connection{b}, r.subscribersOf("blocks"))

	r.remove(a)
	r.remove(a)
	require.Equal(1, r.len())
	require.Empty(r.subscribersOf("hooks"))
	require.NotContains(r.subscribers, "hooks")
	require.Empty(r.unsubscribe(a, "hooks"))
}
