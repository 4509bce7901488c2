package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryChain keeps the chain in process memory.
type MemoryChain struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryChain returns a chain holding only the genesis entry.
func NewMemoryChain() *MemoryChain {
	return &MemoryChain{entries: []*Entry{{
		RecordedAt:  time.Now().UTC(),
		Event:       EventGenesis,
		Actor:       "system",
		PayloadHash: GenesisHash,
		PrevHash:    GenesisHash,
		Hash:        GenesisHash,
	}}}
}

// Append implements Chain.
func (c *MemoryChain) Append(_ context.Context, event, subject, actor string, payload any) (*Entry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tip := c.entries[len(c.entries)-1]
	e := &Entry{
		Seq:         tip.Seq + 1,
		RecordedAt:  now(),
		Event:       event,
		Subject:     subject,
		Actor:       actor,
		PayloadHash: digest(raw),
		PrevHash:    tip.Hash,
	}
	e.Hash = e.computeHash()
	c.entries = append(c.entries, e)
	return e, nil
}

// Get implements Chain.
func (c *MemoryChain) Get(_ context.Context, seq int) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if seq < 0 || seq >= len(c.entries) {
		return nil, fmt.Errorf("seq %d out of range", seq)
	}
	e := *c.entries[seq]
	return &e, nil
}

// Len implements Chain.
func (c *MemoryChain) Len(context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}

// Verify implements Chain.
func (c *MemoryChain) Verify(context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var prev *Entry
	for _, curr := range c.entries {
		if err := verifyLink(prev, curr); err != nil {
			return err
		}
		prev = curr
	}
	return nil
}

// Head implements Chain.
func (c *MemoryChain) Head(context.Context) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[len(c.entries)-1].Hash, nil
}
