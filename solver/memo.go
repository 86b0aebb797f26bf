package solver

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/move"
)

// Map bucket slot, string header and the slack a map keeps for growth.
const memoEntryOverhead = 64

// MemoTable maps a canonical position key to the best (fewest steps)
// scorecard seen for it during one search.
type MemoTable struct {
	table      map[string]Scorecard
	maxEntries int
	maxBytes   uint64
	bytes      uint64

	created atomic.Uint64
	lookups atomic.Uint64
	hits    atomic.Uint64
	pruned  atomic.Uint64
}

// NewMemoTable creates an empty table. maxEntries <= 0 means no entry cap.
func NewMemoTable(maxEntries int) *MemoTable {
	return &MemoTable{table: make(map[string]Scorecard), maxEntries: maxEntries}
}

// SetMaxBytes caps the approximate memory the table may hold. 0 means no
// cap.
func (t *MemoTable) SetMaxBytes(n uint64) { t.maxBytes = n }

// MemoBudget converts a fraction of total system memory into a byte budget
// for one table. A fraction <= 0 means unbounded.
func MemoBudget(fractionOfMemory float64) uint64 {
	if fractionOfMemory <= 0 {
		return 0
	}
	totalMem := memory.TotalMemory()
	n := uint64(fractionOfMemory * float64(totalMem))
	log.Debug().Uint64("total-system-memory-bytes", totalMem).
		Float64("fraction", fractionOfMemory).Uint64("max-bytes", n).Msg("memo-budget")
	return n
}

// entrySize is what storing sc under key costs: the key, the scorecard,
// its move list and its position.
func entrySize(key string, sc Scorecard) uint64 {
	n := memoEntryOverhead + uint64(len(key)) + uint64(unsafe.Sizeof(sc)) +
		uint64(cap(sc.Moves))*uint64(unsafe.Sizeof(move.Move{}))
	if sc.Position != nil {
		n += sc.Position.MemSize()
	}
	return n
}

func (t *MemoTable) Lookup(key string) (Scorecard, bool) {
	t.lookups.Add(1)
	sc, ok := t.table[key]
	if ok {
		t.hits.Add(1)
	}
	return sc, ok
}

func (t *MemoTable) store(key string, sc Scorecard) {
	if prior, ok := t.table[key]; ok {
		t.bytes -= entrySize(key, prior)
	}
	t.table[key] = sc
	t.bytes += entrySize(key, sc)
	t.created.Add(1)
}

// full is true when storing sc under a new key would exceed either budget.
// Updating an existing key is always allowed.
func (t *MemoTable) full(key string, sc Scorecard) bool {
	if _, exists := t.table[key]; exists {
		return false
	}
	if t.maxEntries > 0 && len(t.table) >= t.maxEntries {
		return true
	}
	return t.maxBytes > 0 && t.bytes+entrySize(key, sc) > t.maxBytes
}

func (t *MemoTable) Len() int { return len(t.table) }

// Bytes is the approximate memory held by the table.
func (t *MemoTable) Bytes() uint64 { return t.bytes }

// Pruned is how many frames were cut off because the table already had
// an equal or better path to their position.
func (t *MemoTable) Pruned() uint64 { return t.pruned.Load() }

func (t *MemoTable) Stats() string {
	return fmt.Sprintf("entries: %d, bytes: %d, stores: %d, lookups: %d, hits: %d, pruned: %d",
		len(t.table), t.bytes, t.created.Load(), t.lookups.Load(), t.hits.Load(), t.pruned.Load())
}
