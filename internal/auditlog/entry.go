// Package auditlog keeps a tamper-evident hash chain over moderation
// decisions. Each entry commits to the previous entry's hash, so any edit to
// a stored row breaks Verify from that point on.
package auditlog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// GenesisHash anchors the chain. The entry at sequence 0 carries it as its
// own hash instead of a computed one.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Event names recorded in the chain.
const (
	EventGenesis      = "genesis"
	EventActionCreate = "action.create"
	EventActionRetire = "action.retire"
	EventReportClose  = "report.close"
)

// Entry is one link of the chain. Subject is the moderation action or report
// ID the event concerns; Actor is the principal that caused it.
type Entry struct {
	Seq         int       `json:"seq"`
	RecordedAt  time.Time `json:"recorded_at"`
	Event       string    `json:"event"`
	Subject     string    `json:"subject"`
	Actor       string    `json:"actor"`
	PayloadHash string    `json:"payload_hash"`
	PrevHash    string    `json:"prev_hash"`
	Hash        string    `json:"hash"`
}

func (e *Entry) computeHash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s|%s|%s|%s",
		e.Seq, e.RecordedAt.UTC().Format(time.RFC3339Nano),
		e.Event, e.Subject, e.Actor, e.PayloadHash, e.PrevHash,
	)
	return hex.EncodeToString(h.Sum(nil))
}

// now is truncated to the precision Postgres stores so hashes survive a
// round trip through timestamptz.
func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// verifyLink checks curr against its predecessor. prev is nil for seq 0.
func verifyLink(prev, curr *Entry) error {
	if prev == nil {
		if curr.Hash != GenesisHash {
			return fmt.Errorf("genesis entry has wrong hash: got %q", curr.Hash)
		}
		return nil
	}
	if curr.PrevHash != prev.Hash {
		return fmt.Errorf("hash chain broken at seq %d", curr.Seq)
	}
	if curr.Hash != curr.computeHash() {
		return fmt.Errorf("entry %d has invalid hash", curr.Seq)
	}
	return nil
}
