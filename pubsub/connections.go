// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"slices"
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
	"golang.org/x/exp/maps"
)

// registry indexes live connections by id and by the topics they follow.
type registry struct {
	lock        sync.RWMutex
	conns       map[uint64]*Connection
	subscribers map[string]set.Set[uint64]
	topics      map[uint64]set.Set[string]
}

func newRegistry() *registry {
	return &registry{
		conns:       make(map[uint64]*Connection),
		subscribers: make(map[string]set.Set[uint64]),
		topics:      make(map[uint64]set.Set[string]),
	}
}

func (r *registry) add(c *Connection) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.conns[c.id] = c
}

// remove drops [c] and every subscription it holds.
func (r *registry) remove(c *Connection) {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.conns, c.id)
	for topic := range r.topics[c.id] {
		r.unfollow(topic, c.id)
	}
	delete(r.topics, c.id)
}

// subscribe adds [topics] to the subscriptions of [c] and returns the
// resulting subscriptions, sorted.
func (r *registry) subscribe(c *Connection, topics ...string) []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.conns[c.id]; !ok {
		return nil
	}
	followed, ok := r.topics[c.id]
	if !ok {
		followed = set.NewSet[string](len(topics))
		r.topics[c.id] = followed
	}
	for _, topic := range topics {
		followed.Add(topic)
		ids, ok := r.subscribers[topic]
		if !ok {
			ids = set.NewSet[uint64](1)
			r.subscribers[topic] = ids
		}
		ids.Add(c.id)
	}
	return sorted(followed)
}

// unsubscribe removes [topics] from the subscriptions of [c] and returns
// what remains, sorted.
func (r *registry) unsubscribe(c *Connection, topics ...string) []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	followed := r.topics[c.id]
	for _, topic := range topics {
		if !followed.Contains(topic) {
			continue
		}
		followed.Remove(topic)
		r.unfollow(topic, c.id)
	}
	return sorted(followed)
}

func (r *registry) unfollow(topic string, id uint64) {
	ids := r.subscribers[topic]
	ids.Remove(id)
	if ids.Len() == 0 {
		delete(r.subscribers, topic)
	}
}

// subscribersOf returns the connections following [topic].
func (r *registry) subscribersOf(topic string) []*Connection {
	r.lock.RLock()
	defer r.lock.RUnlock()

	ids := r.subscribers[topic]
	conns := make([]*Connection, 0, ids.Len())
	for id := range ids {
		conns = append(conns, r.conns[id])
	}
	return conns
}

func (r *registry) all() []*Connection {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return maps.Values(r.conns)
}

func (r *registry) len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return len(r.conns)
}

func sorted(topics set.Set[string]) []string {
	list := topics.List()
	slices.Sort(list)
	return list
}
