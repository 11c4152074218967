package search

import (
	"testing"

	"github.com/matryer/is"

	"github.com/lebiraja/chess-bot/board"
)

func TestTTableEntry(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(1, 0)
	is.True(tt.sizePowerOf2 >= 16)

	tentry := TableEntry{
		move:  board.MakeMove(board.Normal, board.SquareE2, board.SquareE4, board.NoPiece, board.WhitePawn),
		score: 12,
		depth: 23,
		flag:  TTUpper,
	}
	tt.store(9409641586937047728, tentry)

	te := tt.lookup(9409641586937047728)
	is.True(te.valid())
	is.Equal(te.depth, uint8(23))
	is.Equal(te.flag, uint8(TTUpper))
	is.Equal(te.score, int32(12))
	is.Equal(te.key, uint64(9409641586937047728))

	is.Equal(tt.t2collisions.Load(), uint64(0))
	// Same slot, different hash: the key check must refuse to serve it.
	te = tt.lookup(9409641586937047728 ^ (1 << 40))
	is.Equal(te, TableEntry{})
	is.Equal(tt.t2collisions.Load(), uint64(1))

	// An empty slot is a miss but not a collision.
	te = tt.lookup(42)
	is.Equal(te, TableEntry{})
	is.Equal(tt.lookups.Load(), uint64(3))
	is.Equal(tt.t2collisions.Load(), uint64(1))
}

func TestTTableReplacementPolicy(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(1, 0)

	key := uint64(0xdeadbeefcafe)
	tt.store(key, TableEntry{score: 100, depth: 5, flag: TTExact})

	// A shallower search of the same position does not evict.
	tt.store(key, TableEntry{score: 200, depth: 3, flag: TTExact})
	is.Equal(tt.lookup(key).score, int32(100))

	// An equally deep search does: newer wins.
	tt.store(key, TableEntry{score: 300, depth: 5, flag: TTLower})
	is.Equal(tt.lookup(key).score, int32(300))

	// A colliding position always evicts, regardless of depth.
	other := key ^ (1 << 40)
	tt.store(other, TableEntry{score: -7, depth: 1, flag: TTExact})
	is.Equal(tt.lookup(other).score, int32(-7))
	is.Equal(tt.lookup(key), TableEntry{})
}

func TestTTableClear(t *testing.T) {
	is := is.New(t)
	tt := &TranspositionTable{}
	tt.Reset(1, 0)

	tt.store(12345, TableEntry{score: 1, depth: 1, flag: TTExact})
	is.True(tt.lookup(12345).valid())

	tt.Clear()
	is.Equal(tt.lookup(12345), TableEntry{})
	is.Equal(tt.created.Load(), uint64(0))
}
