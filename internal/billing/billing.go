// Package billing is the engine's append-only billing detail log (C3).
//
// append is total and never mutates an existing record; listByRoom
// returns records in insertion order. Cost aggregation is left to
// callers (RequestState, reporting) — the log itself never computes a
// running total.
//
// Each record is hash-chained to the one before it, the same
// tamper-evidence technique the ledger service's FileLedger uses for
// its event log, narrowed here to an in-memory chain with no on-disk
// component: the billing semantics in the spec do not change, but a
// Verify() pass can detect an in-process corruption of the slice.
package billing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"nrgchamp/hotelac/internal/roomstore"
)

// Kind discriminates the three record shapes the engine ever appends.
type Kind string

const (
	KindAC            Kind = "AC"
	KindPowerOffCycle Kind = "POWER_OFF_CYCLE"
	KindRoomFee       Kind = "ROOM_FEE"
)

// DetailRecord is one append-only billing log entry.
type DetailRecord struct {
	ID         uuid.UUID          `json:"id"`
	RoomID     int                `json:"roomId"`
	Kind       Kind               `json:"kind"`
	StartTime  time.Time          `json:"startTime"`
	EndTime    time.Time          `json:"endTime"`
	FanSpeed   roomstore.FanSpeed `json:"fanSpeed,omitempty"`
	Mode       roomstore.Mode     `json:"mode,omitempty"`
	Rate       float64            `json:"rate"`
	Cost       float64            `json:"cost"`
	CustomerID string             `json:"customerId,omitempty"`

	PrevHash string `json:"prevHash"`
	Hash     string `json:"hash"`
}

// Log is the in-memory, hash-chained, append-only billing detail log.
type Log struct {
	mu       sync.RWMutex
	records  []DetailRecord
	lastHash string

	onAppend []func(DetailRecord)
}

// New returns an empty billing log.
func New() *Log {
	return &Log{}
}

// AddOnAppend registers a callback invoked, in registration order, after
// every successful Append — used by the metrics package to count
// settled records and by the kafkaevents publisher to mirror them,
// without either importing this package's callers.
func (l *Log) AddOnAppend(fn func(DetailRecord)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAppend = append(l.onAppend, fn)
}

// Append stores rec, stamping it with a fresh ID and chaining it to the
// previous record's hash. Append never fails on a well-formed record.
func (l *Log) Append(rec DetailRecord) DetailRecord {
	l.mu.Lock()
	rec.ID = uuid.New()
	rec.PrevHash = l.lastHash
	rec.Hash = computeHash(rec)
	l.lastHash = rec.Hash
	l.records = append(l.records, rec)
	hooks := append([]func(DetailRecord){}, l.onAppend...)
	l.mu.Unlock()

	for _, fn := range hooks {
		fn(rec)
	}
	return rec
}

// ListByRoom returns roomID's records with StartTime in [from, to)
// (zero from/to are unbounded), optionally filtered by customerID, in
// insertion order.
func (l *Log) ListByRoom(roomID int, from, to time.Time, customerID string) []DetailRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]DetailRecord, 0)
	for _, r := range l.records {
		if r.RoomID != roomID {
			continue
		}
		if !from.IsZero() && r.StartTime.Before(from) {
			continue
		}
		if !to.IsZero() && !r.StartTime.Before(to) {
			continue
		}
		if customerID != "" && r.CustomerID != customerID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TotalCost sums Cost across roomID's entire history.
func (l *Log) TotalCost(roomID int) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total float64
	for _, r := range l.records {
		if r.RoomID == roomID {
			total += r.Cost
		}
	}
	return total
}

// Verify walks the chain and reports the first broken link, or nil if
// the log is intact.
func (l *Log) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	prev := ""
	for i, r := range l.records {
		if r.PrevHash != prev {
			return fmt.Errorf("billing: prevHash mismatch at record %d (id=%s)", i, r.ID)
		}
		if computeHash(r) != r.Hash {
			return fmt.Errorf("billing: hash mismatch at record %d (id=%s)", i, r.ID)
		}
		prev = r.Hash
	}
	return nil
}

func computeHash(r DetailRecord) string {
	r.Hash = ""
	b, _ := json.Marshal(r)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
