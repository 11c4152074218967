package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perft counts leaf nodes of the legal move tree. Standard reference
// values catch almost any move generation bug, including castling and
// en passant edge cases.
func perft(pos *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	for _, m := range pos.LegalMoves() {
		pos.DoMove(m)
		nodes += perft(pos, depth-1)
		pos.UndoMove()
	}
	return nodes
}

func TestPerftInitialPosition(t *testing.T) {
	pos, err := PositionFromFEN(FENStartPos)
	require.NoError(t, err)

	expected := []uint64{1, 20, 400, 8902, 197281}
	for depth, want := range expected {
		assert.Equal(t, want, perft(pos, depth), "depth %d", depth)
	}
}

func TestPerftKiwipete(t *testing.T) {
	// A position designed to exercise castling, en passant, promotions
	// and pins all at once.
	pos, err := PositionFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	expected := []uint64{1, 48, 2039, 97862}
	for depth, want := range expected {
		assert.Equal(t, want, perft(pos, depth), "depth %d", depth)
	}
}

func TestDoUndoRestoresPosition(t *testing.T) {
	pos, err := PositionFromFEN(FENStartPos)
	require.NoError(t, err)

	fenBefore := pos.String()
	zobristBefore := pos.Zobrist()

	for _, m := range pos.LegalMoves() {
		pos.DoMove(m)
		pos.UndoMove()
		assert.Equal(t, fenBefore, pos.String(), "move %v", m)
		assert.Equal(t, zobristBefore, pos.Zobrist(), "move %v", m)
	}
}

func TestDoUndoDeep(t *testing.T) {
	pos, err := PositionFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	fenBefore := pos.String()
	var walk func(depth int)
	walk = func(depth int) {
		if depth == 0 {
			return
		}
		for _, m := range pos.LegalMoves() {
			pos.DoMove(m)
			walk(depth - 1)
			pos.UndoMove()
		}
	}
	walk(3)
	assert.Equal(t, fenBefore, pos.String())
}

func TestUCIToMove(t *testing.T) {
	pos, err := PositionFromFEN(FENStartPos)
	require.NoError(t, err)

	m, err := pos.UCIToMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, SquareE2, m.From())
	assert.Equal(t, SquareE4, m.To())
	assert.Equal(t, WhitePawn, m.Piece())

	_, err = pos.UCIToMove("e2e5")
	assert.Error(t, err)
}

func TestUCIToMovePromotion(t *testing.T) {
	pos, err := PositionFromFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1")
	require.NoError(t, err)

	m, err := pos.UCIToMove("a7a8q")
	require.NoError(t, err)
	assert.Equal(t, Promotion, m.MoveType())
	assert.Equal(t, WhiteQueen, m.Target())
	assert.Equal(t, "a7a8q", m.UCI())
}

func TestIsCheckmate(t *testing.T) {
	// Back rank mate.
	pos, err := PositionFromFEN("R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	require.NoError(t, err)
	assert.True(t, pos.IsCheckmate())
	assert.False(t, pos.IsStalemate())
}

func TestIsStalemate(t *testing.T) {
	pos, err := PositionFromFEN("k7/8/1Q6/8/8/8/8/K7 b - - 0 1")
	require.NoError(t, err)
	assert.True(t, pos.IsStalemate())
	assert.False(t, pos.IsCheckmate())
}

func TestInsufficientMaterial(t *testing.T) {
	for _, fen := range []string{
		"k7/8/8/8/8/8/8/K7 w - - 0 1",
		"k7/8/8/8/8/8/8/KN6 w - - 0 1",
		"kb6/8/8/8/8/8/8/K1B5 w - - 0 1", // bishops both on dark squares
	} {
		pos, err := PositionFromFEN(fen)
		require.NoError(t, err)
		assert.True(t, pos.InsufficientMaterial(), fen)
	}

	for _, fen := range []string{
		FENStartPos,
		"k7/8/8/8/8/8/8/KR6 w - - 0 1",
		"k7/8/8/8/8/8/P7/K7 w - - 0 1",
		"kb6/8/8/8/8/8/8/KB6 w - - 0 1", // opposite colored bishops
	} {
		pos, err := PositionFromFEN(fen)
		require.NoError(t, err)
		assert.False(t, pos.InsufficientMaterial(), fen)
	}
}

func TestThreeFoldRepetition(t *testing.T) {
	pos, err := PositionFromFEN(FENStartPos)
	require.NoError(t, err)

	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	for i := 0; i < 2; i++ {
		for _, uci := range shuffle {
			m, err := pos.UCIToMove(uci)
			require.NoError(t, err)
			pos.DoMove(m)
		}
	}
	// Start position has now occurred three times.
	assert.True(t, pos.ThreeFoldRepetition() >= 3)
	assert.True(t, pos.CanClaimDraw())
}

func TestFiftyMoveRule(t *testing.T) {
	pos, err := PositionFromFEN("k7/8/8/8/8/8/8/KR6 w - - 100 80")
	require.NoError(t, err)
	assert.True(t, pos.FiftyMoveRule())
	assert.True(t, pos.CanClaimDraw())
}

func TestEnpassantOnlyWhenCapturable(t *testing.T) {
	pos, err := PositionFromFEN(FENStartPos)
	require.NoError(t, err)

	m, err := pos.UCIToMove("e2e4")
	require.NoError(t, err)
	pos.DoMove(m)
	// No black pawn can capture on e3.
	assert.Equal(t, SquareA1, pos.EnpassantSquare())

	// With a black pawn on d4, the double advance is capturable.
	pos, err = PositionFromFEN("rnbqkbnr/ppp1pppp/8/8/3p4/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)
	m, err = pos.UCIToMove("e2e4")
	require.NoError(t, err)
	pos.DoMove(m)
	assert.Equal(t, SquareE3, pos.EnpassantSquare())

	ep, err := pos.UCIToMove("d4e3")
	require.NoError(t, err)
	assert.Equal(t, Enpassant, ep.MoveType())
	assert.Equal(t, WhitePawn, ep.Capture())
}

func TestCastlingRights(t *testing.T) {
	pos, err := PositionFromFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	assert.Equal(t, AnyCastle, pos.CastlingAbility())

	// Moving the king side rook drops king side castling only.
	m, err := pos.UCIToMove("h1g1")
	require.NoError(t, err)
	pos.DoMove(m)
	assert.Equal(t, WhiteOOO|BlackOO|BlackOOO, pos.CastlingAbility())
	pos.UndoMove()
	assert.Equal(t, AnyCastle, pos.CastlingAbility())

	// Castling moves the rook as well.
	m, err = pos.UCIToMove("e1g1")
	require.NoError(t, err)
	pos.DoMove(m)
	assert.Equal(t, WhiteRook, pos.Get(SquareF1))
	assert.Equal(t, WhiteKing, pos.Get(SquareG1))
	assert.Equal(t, NoPiece, pos.Get(SquareH1))
}
