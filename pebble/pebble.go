// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	_ database.KeyValueReader        = (*Database)(nil)
	_ database.KeyValueWriterDeleter = (*Database)(nil)
	_ database.Batch                 = (*batch)(nil)

	ErrClosed = errors.New("pebble database is closed")
)

type Config struct {
	CacheSize    int  `json:"cacheSize"`
	BytesPerSync int  `json:"bytesPerSync"`
	MemTableSize int  `json:"memTableSize"`
	MaxOpenFiles int  `json:"maxOpenFiles"`
	Sync         bool `json:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:    64 * units.MiB,
		BytesPerSync: 1 * units.MiB,
		MemTableSize: 16 * units.MiB,
		MaxOpenFiles: 4_096,
		Sync:         true,
	}
}

// Database is a thin wrapper around [pebble.DB] that satisfies the
// avalanchego key/value interfaces used by the block processor.
type Database struct {
	l      sync.RWMutex
	db     *pebble.DB
	closed bool

	metrics *metrics
	closing chan struct{}
	wg      sync.WaitGroup

	writeOpts *pebble.WriteOptions
}

// New opens (or creates) a pebble database at [file]. The returned registry
// carries the database metrics.
func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		metrics:   metrics,
		closing:   make(chan struct{}),
		writeOpts: &pebble.WriteOptions{Sync: cfg.Sync},
	}
	opts := &pebble.Options{
		Cache:        pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync: cfg.BytesPerSync,
		MemTableSize: uint64(cfg.MemTableSize),
		MaxOpenFiles: cfg.MaxOpenFiles,
	}
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: d.onCompactionBegin,
		CompactionEnd:   d.onCompactionEnd,
		WriteStallBegin: d.onWriteStallBegin,
		WriteStallEnd:   d.onWriteStallEnd,
	}
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.collectMetrics()
	}()
	return d, registry, nil
}

func (d *Database) Has(key []byte) (bool, error) {
	_, err := d.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Get returns a copy of the value stored at [key] or [database.ErrNotFound].
func (d *Database) Get(key []byte) ([]byte, error) {
	d.l.RLock()
	defer d.l.RUnlock()

	if d.closed {
		return nil, ErrClosed
	}
	start := time.Now()
	d.metrics.gets.Inc()
	val, closer, err := d.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	valCopy := make([]byte, len(val))
	copy(valCopy, val)
	d.metrics.getLatency.Observe(float64(time.Since(start)))
	return valCopy, nil
}

func (d *Database) Put(key []byte, value []byte) error {
	d.l.RLock()
	defer d.l.RUnlock()

	if d.closed {
		return ErrClosed
	}
	return d.db.Set(key, value, d.writeOpts)
}

func (d *Database) Delete(key []byte) error {
	d.l.RLock()
	defer d.l.RUnlock()

	if d.closed {
		return ErrClosed
	}
	return d.db.Delete(key, d.writeOpts)
}

func (d *Database) NewBatch() database.Batch {
	return &batch{d: d, b: d.db.NewBatch()}
}

func (d *Database) Close() error {
	d.l.Lock()
	if d.closed {
		d.l.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.closing)
	d.l.Unlock()

	d.wg.Wait()
	return d.db.Close()
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

type batch struct {
	d   *Database
	b   *pebble.Batch
	ops []batchOp

	size int
}

func (b *batch) Put(key []byte, value []byte) error {
	b.ops = append(b.ops, batchOp{key: key, value: value})
	b.size += len(key) + len(value)
	return b.b.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, batchOp{key: key, delete: true})
	b.size += len(key)
	return b.b.Delete(key, nil)
}

func (b *batch) Size() int {
	return b.size
}

func (b *batch) Write() error {
	b.d.l.RLock()
	defer b.d.l.RUnlock()

	if b.d.closed {
		return ErrClosed
	}
	if err := b.b.Commit(b.d.writeOpts); err != nil {
		return err
	}
	b.d.metrics.batchesWritten.Inc()
	return nil
}

func (b *batch) Reset() {
	b.b.Reset()
	b.ops = b.ops[:0]
	b.size = 0
}

func (b *batch) Replay(w database.KeyValueWriterDeleter) error {
	for _, op := range b.ops {
		if op.delete {
			if err := w.Delete(op.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(op.key, op.value); err != nil {
			return err
		}
	}
	return nil
}

func (b *batch) Inner() database.Batch {
	return b
}
