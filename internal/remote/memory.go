package remote

import (
	"context"
	"sync"
)

// Memory is an in-process DocumentStore. Read and write failures can be
// injected to exercise offline behaviour.
type Memory struct {
	mu       sync.Mutex
	docs     map[string]Document
	readErr  error
	writeErr error
	writes   int
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]Document)}
}

func (m *Memory) Read(ctx context.Context, userID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	doc, ok := m.docs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.clone(), nil
}

func (m *Memory) WriteMerge(ctx context.Context, userID string, fields Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(userID, fields); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	doc, ok := m.docs[userID]
	if !ok {
		doc = Document{}
		m.docs[userID] = doc
	}
	for k, v := range fields.clone() {
		doc[k] = v
	}
	m.writes++
	return nil
}

// FailReads makes every Read return err until called again with nil.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes every WriteMerge return err until called again with nil.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Writes counts successful merge-writes.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
