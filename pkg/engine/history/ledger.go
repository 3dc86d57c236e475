package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DrSkyle/costscope/pkg/storage"
)

const defaultKey = "history/runs.jsonl"

// Snapshot is one analysis run condensed to the signals worth trending.
type Snapshot struct {
	Timestamp        int64   `json:"timestamp"`
	TotalCost        float64 `json:"total_cost"`
	RecordCount      int     `json:"record_count"`
	AnomalyCount     int     `json:"anomaly_count"`
	ProjectedSavings float64 `json:"projected_savings"`
}

// Ledger appends run snapshots to a JSONL blob and reads them back.
type Ledger struct {
	store storage.BlobStore
	key   string
}

func NewLedger(store storage.BlobStore) *Ledger {
	return &Ledger{store: store, key: defaultKey}
}

// NewLedgerAt uses a custom blob key, for stores shared with other
// artifacts under a common prefix.
func NewLedgerAt(store storage.BlobStore, key string) *Ledger {
	if key == "" {
		key = defaultKey
	}
	return &Ledger{store: store, key: key}
}

// Append records a snapshot as one JSON line.
func (l *Ledger) Append(ctx context.Context, s Snapshot) error {
	if s.Timestamp == 0 {
		s.Timestamp = time.Now().Unix()
	}
	line, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return l.store.Append(ctx, l.key, append(line, '\n'))
}

// LoadWindow returns up to n most recent snapshots, oldest first.
// A missing ledger is an empty window, not an error.
func (l *Ledger) LoadWindow(ctx context.Context, n int) ([]Snapshot, error) {
	data, err := l.store.Get(ctx, l.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var all []Snapshot
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var s Snapshot
		if err := json.Unmarshal(line, &s); err != nil {
			// Skip corrupt lines rather than losing the whole ledger.
			continue
		}
		all = append(all, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// Velocity is the dollars-per-hour rate of change of total spend
// between the two most recent snapshots. Returns 0 with ok=false when
// the window is too short to compare.
func Velocity(window []Snapshot) (float64, bool) {
	if len(window) < 2 {
		return 0, false
	}
	current := window[len(window)-1]
	prev := window[len(window)-2]

	hours := float64(current.Timestamp-prev.Timestamp) / 3600.0
	if hours <= 0 {
		return 0, false
	}
	return (current.TotalCost - prev.TotalCost) / hours, true
}
