// Package bufpool provides a tiered buffer pool for I/O hot paths.
//
// Chunk intake reads one chunk-sized body per request and reassembly
// streams every chunk back out again, so the server would otherwise
// allocate and discard megabyte-scale buffers at request rate. The pool
// keeps three size tiers:
//   - Small buffers (default 4KB): JSON bodies and control responses
//   - Medium buffers (default 64KB): streaming copies and hashing
//   - Large buffers (default 1MB): chunk payloads
//
// Requests larger than the large tier are allocated directly and never
// pooled, so an occasional oversized read does not pin memory.
//
// All operations are safe for concurrent use.
//
// Usage:
//
//	buf := bufpool.Get(size)
//	defer bufpool.Put(buf)
package bufpool

import (
	"sync"
)

// Default buffer size classes. These can be overridden with NewPool.
const (
	// DefaultSmallSize covers JSON request and response bodies (4KB)
	DefaultSmallSize = 4 << 10

	// DefaultMediumSize covers streaming copy and hash buffers (64KB)
	DefaultMediumSize = 64 << 10

	// DefaultLargeSize covers chunk payloads at the default chunk size (1MB)
	DefaultLargeSize = 1 << 20
)

// Pool manages byte slice pools organized by size class. It selects the
// smallest tier that fits a request and falls back to direct allocation
// for oversized ones.
type Pool struct {
	small      sync.Pool
	medium     sync.Pool
	large      sync.Pool
	smallSize  int
	mediumSize int
	largeSize  int
}

// Config holds size-class overrides for a custom pool.
type Config struct {
	// SmallSize is the size of small buffers (default: 4KB)
	SmallSize int

	// MediumSize is the size of medium buffers (default: 64KB)
	MediumSize int

	// LargeSize is the size of large buffers (default: 1MB)
	LargeSize int
}

// NewPool creates a buffer pool. Zero or missing config values take the
// package defaults. Servers with a non-default chunk size should size the
// large tier to cover one chunk, or every chunk read bypasses the pool.
func NewPool(cfg *Config) *Pool {
	if cfg == nil {
		cfg = &Config{}
	}

	p := &Pool{
		smallSize:  cfg.SmallSize,
		mediumSize: cfg.MediumSize,
		largeSize:  cfg.LargeSize,
	}
	if p.smallSize <= 0 {
		p.smallSize = DefaultSmallSize
	}
	if p.mediumSize <= 0 {
		p.mediumSize = DefaultMediumSize
	}
	if p.largeSize <= 0 {
		p.largeSize = DefaultLargeSize
	}

	p.small = sync.Pool{
		New: func() any {
			buf := make([]byte, p.smallSize)
			return &buf
		},
	}
	p.medium = sync.Pool{
		New: func() any {
			buf := make([]byte, p.mediumSize)
			return &buf
		},
	}
	p.large = sync.Pool{
		New: func() any {
			buf := make([]byte, p.largeSize)
			return &buf
		},
	}

	return p
}

// Get returns a byte slice of exactly the requested length, backed by a
// pooled buffer whose capacity may be larger. The caller must Put the
// buffer back when done.
//
// Sizes above the large tier are allocated directly and not pooled.
func (p *Pool) Get(size int) []byte {
	var bufPtr *[]byte

	switch {
	case size <= p.smallSize:
		bufPtr = p.small.Get().(*[]byte)
	case size <= p.mediumSize:
		bufPtr = p.medium.Get().(*[]byte)
	case size <= p.largeSize:
		bufPtr = p.large.Get().(*[]byte)
	default:
		return make([]byte, size)
	}

	buf := *bufPtr
	return buf[:size]
}

// Put returns a buffer obtained from Get to the pool. The buffer must not
// be used afterwards. Buffers whose capacity matches no tier are left for
// the garbage collector.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}

	switch cap(buf) {
	case p.smallSize:
		fullBuf := buf[:cap(buf)]
		p.small.Put(&fullBuf)
	case p.mediumSize:
		fullBuf := buf[:cap(buf)]
		p.medium.Put(&fullBuf)
	case p.largeSize:
		fullBuf := buf[:cap(buf)]
		p.large.Put(&fullBuf)
	}
}

// globalPool serves callers without pool configuration of their own.
var globalPool = NewPool(nil)

// Get returns a byte slice of at least the requested size from the
// global pool. Pair with Put.
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns a buffer to the global pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}
