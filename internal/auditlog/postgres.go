package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// appendLockKey serialises appends across board instances sharing one
// database.
const appendLockKey = int64(7_302_114_551)

// PostgresChain persists the chain in the audit_chain table. The genesis
// row is written by the schema migration.
type PostgresChain struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresChain creates a PostgresChain backed by pool.
func NewPostgresChain(pool *pgxpool.Pool, logger *zap.Logger) *PostgresChain {
	return &PostgresChain{pool: pool, logger: logger}
}

const entryColumns = `seq, recorded_at, event, subject, actor, payload_hash, prev_hash, hash`

// Append implements Chain. The tip is read and the new row inserted under a
// transaction-scoped advisory lock.
func (c *PostgresChain) Append(ctx context.Context, event, subject, actor string, payload any) (*Entry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", appendLockKey); err != nil {
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	var tipSeq int
	var tipHash string
	if err := tx.QueryRow(ctx,
		"SELECT seq, hash FROM audit_chain ORDER BY seq DESC LIMIT 1",
	).Scan(&tipSeq, &tipHash); err != nil {
		return nil, fmt.Errorf("read chain tip: %w", err)
	}

	e := &Entry{
		Seq:         tipSeq + 1,
		RecordedAt:  now(),
		Event:       event,
		Subject:     subject,
		Actor:       actor,
		PayloadHash: digest(raw),
		PrevHash:    tipHash,
	}
	e.Hash = e.computeHash()

	if _, err := tx.Exec(ctx,
		`INSERT INTO audit_chain (`+entryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.Seq, e.RecordedAt, e.Event, e.Subject, e.Actor, e.PayloadHash, e.PrevHash, e.Hash,
	); err != nil {
		return nil, fmt.Errorf("insert chain entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit chain entry: %w", err)
	}

	c.logger.Debug("audit entry appended",
		zap.Int("seq", e.Seq),
		zap.String("event", e.Event),
		zap.String("subject", e.Subject),
	)
	return e, nil
}

// Get implements Chain.
func (c *PostgresChain) Get(ctx context.Context, seq int) (*Entry, error) {
	e := &Entry{}
	if err := c.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM audit_chain WHERE seq = $1`, seq,
	).Scan(
		&e.Seq, &e.RecordedAt, &e.Event, &e.Subject, &e.Actor,
		&e.PayloadHash, &e.PrevHash, &e.Hash,
	); err != nil {
		return nil, fmt.Errorf("get chain entry %d: %w", seq, err)
	}
	return e, nil
}

// Len implements Chain.
func (c *PostgresChain) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_chain").Scan(&n); err != nil {
		return 0, fmt.Errorf("count chain entries: %w", err)
	}
	return n, nil
}

// Verify implements Chain. It streams the whole table in seq order.
func (c *PostgresChain) Verify(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `SELECT `+entryColumns+` FROM audit_chain ORDER BY seq ASC`)
	if err != nil {
		return fmt.Errorf("query chain: %w", err)
	}
	defer rows.Close()

	var prev *Entry
	for rows.Next() {
		curr := &Entry{}
		if err := rows.Scan(
			&curr.Seq, &curr.RecordedAt, &curr.Event, &curr.Subject, &curr.Actor,
			&curr.PayloadHash, &curr.PrevHash, &curr.Hash,
		); err != nil {
			return fmt.Errorf("scan chain row: %w", err)
		}
		if err := verifyLink(prev, curr); err != nil {
			return err
		}
		prev = curr
	}
	return rows.Err()
}

// Head implements Chain.
func (c *PostgresChain) Head(ctx context.Context) (string, error) {
	var hash string
	if err := c.pool.QueryRow(ctx,
		"SELECT hash FROM audit_chain ORDER BY seq DESC LIMIT 1",
	).Scan(&hash); err != nil {
		return "", fmt.Errorf("get chain head: %w", err)
	}
	return hash, nil
}
