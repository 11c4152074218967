package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebiraja/chess-bot/board"
)

func TestStartPositionIsBalanced(t *testing.T) {
	pos, err := board.PositionFromFEN(board.FENStartPos)
	require.NoError(t, err)

	e := New()
	assert.Equal(t, 0, e.Evaluate(pos))
}

func TestEvaluateIsIdempotent(t *testing.T) {
	pos, err := board.PositionFromFEN("r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10")
	require.NoError(t, err)

	e := New()
	before := pos.String()
	first := e.Evaluate(pos)
	second := e.Evaluate(pos)

	assert.Equal(t, first, second)
	assert.Equal(t, before, pos.String(), "evaluation must not mutate the position")
}

func TestScoreFromMoverPerspective(t *testing.T) {
	// Same position, opposite side to move: the score flips sign exactly.
	white, err := board.PositionFromFEN("k7/8/8/8/8/8/8/KR6 w - - 0 1")
	require.NoError(t, err)
	black, err := board.PositionFromFEN("k7/8/8/8/8/8/8/KR6 b - - 0 1")
	require.NoError(t, err)

	e := New()
	sw := e.Evaluate(white)
	sb := e.Evaluate(black)

	assert.Greater(t, sw, 0, "side up a rook scores positive")
	assert.Equal(t, -sw, sb)
}

func TestMaterialAdvantage(t *testing.T) {
	// White is up a knight.
	pos, err := board.PositionFromFEN("rnbqkb1r/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)

	e := New()
	assert.Greater(t, e.Evaluate(pos), 200)
}

func TestCheckmateScore(t *testing.T) {
	pos, err := board.PositionFromFEN("R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	require.NoError(t, err)

	e := New()
	assert.Equal(t, -MateScore, e.Evaluate(pos))
}

func TestDrawScores(t *testing.T) {
	// Stalemate.
	pos, err := board.PositionFromFEN("k7/8/1Q6/8/8/8/8/K7 b - - 0 1")
	require.NoError(t, err)
	e := New()
	assert.Equal(t, 0, e.Evaluate(pos))

	// Insufficient material, even though White is "up" a knight.
	pos, err = board.PositionFromFEN("k7/8/8/8/8/8/8/KN6 w - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, 0, e.Evaluate(pos))
}

func TestPassedPawnsRewarded(t *testing.T) {
	// Identical except the white pawn is further advanced.
	back, err := board.PositionFromFEN("k7/8/8/8/8/8/4P3/K7 w - - 0 1")
	require.NoError(t, err)
	advanced, err := board.PositionFromFEN("k7/8/8/4P3/8/8/8/K7 w - - 0 1")
	require.NoError(t, err)

	e := New()
	assert.Greater(t, e.Evaluate(advanced), e.Evaluate(back))
}

func TestEndgameClassification(t *testing.T) {
	// Queens on: middlegame.
	middlegame, err := board.PositionFromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	require.NoError(t, err)
	assert.False(t, isEndgame(middlegame))

	// No queens: endgame.
	endgame, err := board.PositionFromFEN("rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNB1KBNR w KQkq - 0 1")
	require.NoError(t, err)
	assert.True(t, isEndgame(endgame))

	// Queens on but few pieces left: endgame.
	sparse, err := board.PositionFromFEN("3qk3/8/8/8/8/8/8/3QK3 w - - 0 1")
	require.NoError(t, err)
	assert.True(t, isEndgame(sparse))
}

func TestPawnStructurePenalties(t *testing.T) {
	// Doubled and isolated white pawns versus a healthy chain, with a
	// mirrored black structure so only White's defects differ.
	healthy := pawnStructureScore(t, "k7/pp6/8/8/8/8/PP6/K7 w - - 0 1")
	doubled := pawnStructureScore(t, "k7/pp6/8/8/8/P7/P7/K7 w - - 0 1")

	assert.Greater(t, healthy, doubled)
}

func pawnStructureScore(t *testing.T, fen string) int {
	t.Helper()
	pos, err := board.PositionFromFEN(fen)
	require.NoError(t, err)
	return pawnStructureSlow(pos)
}
