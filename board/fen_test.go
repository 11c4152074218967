package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		FENStartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	}
	for _, fen := range fens {
		pos, err := PositionFromFEN(fen)
		require.NoError(t, err, fen)
		assert.Equal(t, fen, pos.String())
	}
}

func TestFENInvalid(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1",
	}
	for _, fen := range bad {
		_, err := PositionFromFEN(fen)
		assert.Error(t, err, "fen %q", fen)
	}
}

func TestFENSideToMove(t *testing.T) {
	pos, err := PositionFromFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	require.NoError(t, err)
	assert.Equal(t, Black, pos.Us())
	assert.Equal(t, White, pos.Them())
}

func TestFENCastlingFiltered(t *testing.T) {
	// Castling rights without the rook on its home square are rejected
	// during parsing.
	_, err := PositionFromFEN("rnbqkbn1/pppppppp/7r/8/8/8/PPPPPPPP/RNBQKBNR w KQk - 0 1")
	assert.Error(t, err)
}
