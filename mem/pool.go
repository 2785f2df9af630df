package mem

import (
	"errors"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

var ErrExhausted = errors.New("memory pool exhausted")

// Pool allocates column buffers. Unlike memory.Allocator, allocation
// failure is reported as an error instead of a panic, which lets
// deep-copy construction fail atomically and release partial work.
type Pool interface {
	Allocate(size int) (*memory.Buffer, error)
}

type goPool struct {
	mem memory.Allocator
}

// NewPool returns a Pool backed by the given arrow allocator.
func NewPool(mem memory.Allocator) Pool {
	return &goPool{mem: mem}
}

// Default returns a Pool backed by the default Go allocator.
func Default() Pool {
	return &goPool{mem: memory.DefaultAllocator}
}

func (p *goPool) Allocate(size int) (*memory.Buffer, error) {
	buf := memory.NewResizableBuffer(p.mem)
	buf.Resize(size)
	return buf, nil
}

// LimitedPool enforces a byte budget on top of an arrow allocator.
// Allocations beyond the budget fail with ErrExhausted; releasing a
// buffer returns its bytes to the budget.
type LimitedPool struct {
	mem memory.Allocator

	mu    sync.Mutex
	limit int64
	inUse int64
}

// NewLimitedPool returns a Pool that fails with ErrExhausted once more
// than limit bytes are outstanding.
func NewLimitedPool(mem memory.Allocator, limit int64) *LimitedPool {
	return &LimitedPool{mem: mem, limit: limit}
}

// InUse returns the number of bytes currently reserved.
func (p *LimitedPool) InUse() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

func (p *LimitedPool) Allocate(size int) (*memory.Buffer, error) {
	// Resizable buffers allocate capacity rounded up to a 64-byte
	// multiple, and Free hands back that full capacity. Reserving the
	// same rounded amount keeps credits equal to debits.
	if err := p.reserve(roundUpToMultipleOf64(int64(size))); err != nil {
		return nil, err
	}
	buf := memory.NewResizableBuffer(trackingAllocator{pool: p})
	buf.Resize(size)
	return buf, nil
}

func roundUpToMultipleOf64(v int64) int64 {
	return (v + 63) &^ 63
}

func (p *LimitedPool) reserve(size int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inUse+size > p.limit {
		return ErrExhausted
	}
	p.inUse += size
	return nil
}

func (p *LimitedPool) release(size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse -= size
}

// trackingAllocator hands freed buffer bytes back to the pool budget.
// The initial reservation is taken in Allocate above, before the
// buffer resize reaches this allocator.
type trackingAllocator struct {
	pool *LimitedPool
}

func (a trackingAllocator) Allocate(size int) []byte {
	return a.pool.mem.Allocate(size)
}

func (a trackingAllocator) Reallocate(size int, b []byte) []byte {
	return a.pool.mem.Reallocate(size, b)
}

func (a trackingAllocator) Free(b []byte) {
	a.pool.release(int64(len(b)))
	a.pool.mem.Free(b)
}
