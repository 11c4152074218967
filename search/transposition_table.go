package search

import (
	"math"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/lebiraja/chess-bot/board"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

// 24 bytes after padding.
const entrySize = 24

type TableEntry struct {
	// The full 64-bit hash. An index collision between two distinct
	// positions must never be served as a hit, so we compare the whole
	// key on lookup rather than a truncated proxy.
	key   uint64
	move  board.Move
	score int32
	depth uint8
	flag  uint8
	age   uint8
}

func (t TableEntry) valid() bool {
	// a table flag is 1, 2, or 3.
	return t.flag != 0
}

type TranspositionTable struct {
	table        []TableEntry
	created      atomic.Uint64
	lookups      atomic.Uint64
	hits         atomic.Uint64
	sizePowerOf2 int
	sizeMask     uint64
	age          uint8
	// "type 2" collisions. A type 2 collision happens when two positions
	// share the same slot index but not the same hash. A type 1 collision
	// happens when two positions share the same overall hash; we have no
	// easy way to detect those, but they should be much rarer.
	t2collisions atomic.Uint64
}

func (t *TranspositionTable) lookup(zval uint64) TableEntry {
	t.lookups.Add(1)
	idx := zval & t.sizeMask
	entry := t.table[idx]
	if entry.key != zval {
		if entry.valid() {
			// There is another unrelated node at this position.
			t.t2collisions.Add(1)
		}
		return TableEntry{}
	}
	t.hits.Add(1)
	return entry
}

func (t *TranspositionTable) store(zval uint64, tentry TableEntry) {
	idx := zval & t.sizeMask
	existing := t.table[idx]
	if existing.valid() && existing.key == zval && tentry.depth < existing.depth {
		// Keep the deeper result for the same position. Anything else --
		// a colliding position, or a deeper-or-equal search -- overwrites.
		return
	}
	tentry.key = zval
	tentry.age = t.age
	t.table[idx] = tentry
	t.created.Add(1)
}

// NewSearch bumps the table's age. Entries written from now on are
// distinguishable from the previous search's; the replacement policy does
// not use this yet beyond newer-wins on equal depth.
func (t *TranspositionTable) NewSearch() {
	t.age++
}

// Reset allocates (or clears) the table. With sizeMB > 0 the number of
// entries is the biggest power of two that fits the budget; with sizeMB == 0
// the table takes a fraction of total system memory instead.
func (t *TranspositionTable) Reset(sizeMB int, fractionOfMemory float64) {
	var desiredNElems float64
	if sizeMB > 0 {
		desiredNElems = float64(sizeMB) * 1024 * 1024 / float64(entrySize)
	} else {
		totalMem := memory.TotalMemory()
		desiredNElems = fractionOfMemory * (float64(totalMem) / float64(entrySize))
	}
	// find biggest power of 2 lower than desired.
	t.sizePowerOf2 = int(math.Log2(desiredNElems))
	if t.sizePowerOf2 < 16 {
		t.sizePowerOf2 = 16
	}

	numElems := 1 << t.sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	reset := false
	if t.table != nil && len(t.table) == numElems {
		reset = true
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}

	log.Info().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Bool("reset", reset).
		Msg("transposition-table-size")

	t.age = 0
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

// Clear empties every entry but keeps the allocation.
func (t *TranspositionTable) Clear() {
	clear(t.table)
	t.age = 0
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

// FillRate returns the fraction of slots holding a live entry, for logging.
func (t *TranspositionTable) FillRate() float64 {
	filled := 0
	for i := range t.table {
		if t.table[i].valid() {
			filled++
		}
	}
	return float64(filled) / float64(len(t.table))
}
