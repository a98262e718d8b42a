package sentlog

import (
	"context"
	"sync"

	"github.com/roach88/bulksend/internal/phone"
)

// Memory is an in-process Log. Records keeps every append in order,
// duplicates included, so tests can assert on exact write history.
type Memory struct {
	mu      sync.Mutex
	records []phone.Number
}

// NewMemory returns a Memory log pre-seeded with numbers.
func NewMemory(seed ...phone.Number) *Memory {
	return &Memory{records: append([]phone.Number(nil), seed...)}
}

// Load implements Log.
func (m *Memory) Load(context.Context) (Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := make(Set, len(m.records))
	for _, n := range m.records {
		set.Add(n)
	}
	return set, nil
}

// Record implements Log.
func (m *Memory) Record(_ context.Context, n phone.Number) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, n)
	return nil
}

// Records returns a copy of every recorded number in append order.
func (m *Memory) Records() []phone.Number {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]phone.Number(nil), m.records...)
}
