package auditlog

import "context"

// Chain is the append-only audit log. MemoryChain and PostgresChain
// implement it.
type Chain interface {
	// Append links a new entry to the tip. payload is JSON-encoded and only
	// its digest is stored.
	Append(ctx context.Context, event, subject, actor string, payload any) (*Entry, error)

	// Get returns the entry at seq.
	Get(ctx context.Context, seq int) (*Entry, error)

	// Len returns the number of entries, genesis included.
	Len(ctx context.Context) (int, error)

	// Verify walks the chain and returns the first inconsistency found.
	Verify(ctx context.Context) error

	// Head returns the hash of the newest entry.
	Head(ctx context.Context) (string, error)
}
