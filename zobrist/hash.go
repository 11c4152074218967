// Package zobrist hashes chess positions for the transposition table.
// https://en.wikipedia.org/wiki/Zobrist_hashing
package zobrist

import (
	"lukechampine.com/frand"

	"github.com/lebiraja/chess-bot/board"
)

const bignum = 1<<63 - 2

// keySeed seeds the key generator. The seed is fixed so that every
// Zobrist instance hashes identically: entries stored by one engine
// can be probed by another, and searches are reproducible.
var keySeed = [32]byte{
	0x6b, 0x37, 0xc2, 0x01, 0x5e, 0x99, 0x4a, 0xd8,
	0x13, 0xf0, 0x8c, 0x75, 0x2a, 0xbe, 0x61, 0x07,
	0xd4, 0x4f, 0x92, 0xe8, 0x3b, 0xa6, 0x50, 0x1d,
	0xc9, 0x78, 0x0e, 0xb3, 0x67, 0xf5, 0x24, 0x8a,
}

// Zobrist holds the random keys hashed over a position's features:
// one key per piece and square, one for the side to move, one per
// castling right and one per en passant file.
type Zobrist struct {
	pieceTable [board.PieceArraySize][board.SquareArraySize]uint64
	blackTurn  uint64
	castle     [4]uint64
	epFile     [8]uint64
}

var castleFlags = [4]board.Castle{
	board.WhiteOO, board.WhiteOOO, board.BlackOO, board.BlackOOO,
}

// New returns a Zobrist with freshly generated keys. Two instances
// always carry identical keys.
func New() *Zobrist {
	z := &Zobrist{}
	rng := frand.NewCustom(keySeed[:], 1024, 12)

	for pi := board.PieceMinValue; pi <= board.PieceMaxValue; pi++ {
		for sq := board.SquareMinValue; sq <= board.SquareMaxValue; sq++ {
			z.pieceTable[pi][sq] = rng.Uint64n(bignum) + 1
		}
	}
	z.blackTurn = rng.Uint64n(bignum) + 1
	for i := range z.castle {
		z.castle[i] = rng.Uint64n(bignum) + 1
	}
	for i := range z.epFile {
		z.epFile[i] = rng.Uint64n(bignum) + 1
	}
	return z
}

// Hash computes the full hash of pos. The en passant file is hashed
// only when an en passant capture is actually available, which the
// board's EnpassantSquare accessor already guarantees.
func (z *Zobrist) Hash(pos *board.Position) uint64 {
	key := uint64(0)

	for pi := board.PieceMinValue; pi <= board.PieceMaxValue; pi++ {
		for bb := pos.ByPiece(pi.Color(), pi.Figure()); bb != 0; {
			sq := bb.Pop()
			key ^= z.pieceTable[pi][sq]
		}
	}

	if pos.Us() == board.Black {
		key ^= z.blackTurn
	}

	rights := pos.CastlingAbility()
	for i, c := range castleFlags {
		if rights&c != 0 {
			key ^= z.castle[i]
		}
	}

	if ep := pos.EnpassantSquare(); ep != board.SquareA1 {
		key ^= z.epFile[ep.File()]
	}

	return key
}
