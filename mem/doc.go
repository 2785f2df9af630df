// Package mem provides fallible buffer allocation for column storage.
//
// Column and table construction allocate through a Pool rather than a
// raw arrow memory.Allocator so that exhaustion surfaces as an error
// the caller can handle, instead of a panic:
//
//	pool := mem.Default()
//	buf, err := pool.Allocate(1024)
//
// # Budgeted allocation
//
// LimitedPool caps the number of outstanding bytes, failing with
// ErrExhausted when the budget would be exceeded:
//
//	pool := mem.NewLimitedPool(memory.DefaultAllocator, 1<<20)
//	buf, err := pool.Allocate(2 << 20) // err == mem.ErrExhausted
//
// Releasing a buffer returns its bytes to the budget.
package mem
