package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/lebiraja/chess-bot/board"
	"github.com/lebiraja/chess-bot/config"
	"github.com/lebiraja/chess-bot/eval"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.MoveTime = time.Minute
	cfg.TTSizeMB = 8
	return cfg
}

func TestFindBestMoveMateInOne(t *testing.T) {
	is := is.New(t)

	// Back rank mate: Ra1-a8#.
	pos, err := board.PositionFromFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	is.NoErr(err)

	s := New(testConfig())
	m, err := s.FindBestMove(context.Background(), pos)
	is.NoErr(err)
	is.Equal(m.UCI(), "a1a8")

	pos.DoMove(m)
	is.True(pos.IsCheckmate())
}

func TestFindBestMoveNoLegalMoves(t *testing.T) {
	is := is.New(t)

	pos, err := board.PositionFromFEN("R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	is.NoErr(err)

	s := New(testConfig())
	_, err = s.FindBestMove(context.Background(), pos)
	is.Equal(err, ErrNoLegalMoves)
}

func TestFindBestMoveForcedMate(t *testing.T) {
	is := is.New(t)

	// King and rook versus king, mate in two. Play the engine against
	// itself; the defender delays as long as it can, so checkmate must
	// appear within a handful of plies.
	pos, err := board.PositionFromFEN("7k/8/5K2/8/8/8/8/1R6 w - - 0 1")
	is.NoErr(err)

	white := New(testConfig())
	black := New(testConfig())

	for ply := 0; ply < 6; ply++ {
		s := white
		if pos.Us() == board.Black {
			s = black
		}
		m, err := s.FindBestMove(context.Background(), pos)
		if err == ErrNoLegalMoves {
			break
		}
		is.NoErr(err)
		pos.DoMove(m)
		if pos.IsCheckmate() {
			break
		}
	}
	is.True(pos.IsCheckmate())
}

func TestFindBestMoveDeterministic(t *testing.T) {
	is := is.New(t)

	fen := "r1bqkbnr/pppp1ppp/2n5/1B2p3/4P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"

	cfg := testConfig()
	cfg.MaxDepth = 4

	run := func() (board.Move, uint64) {
		pos, err := board.PositionFromFEN(fen)
		is.NoErr(err)
		s := New(cfg)
		m, err := s.FindBestMove(context.Background(), pos)
		is.NoErr(err)
		return m, s.Nodes()
	}

	m1, n1 := run()
	m2, n2 := run()
	is.Equal(m1, m2)
	is.Equal(n1, n2)
}

func TestFindBestMoveAvoidsHangingQueen(t *testing.T) {
	is := is.New(t)

	// The white queen on d4 is attacked by the e5 pawn; any non-queen
	// move loses her.
	pos, err := board.PositionFromFEN("k7/8/8/4p3/3Q4/8/8/K7 w - - 0 1")
	is.NoErr(err)

	cfg := testConfig()
	cfg.MaxDepth = 4
	s := New(cfg)
	m, err := s.FindBestMove(context.Background(), pos)
	is.NoErr(err)
	is.Equal(m.From(), board.SquareD4)
}

func TestFindBestMoveCapturesHangingQueen(t *testing.T) {
	is := is.New(t)

	pos, err := board.PositionFromFEN("k7/8/8/3q4/8/8/3R4/K7 w - - 0 1")
	is.NoErr(err)

	cfg := testConfig()
	cfg.MaxDepth = 3
	s := New(cfg)
	m, err := s.FindBestMove(context.Background(), pos)
	is.NoErr(err)
	is.Equal(m.UCI(), "d2d5")
}

func TestFindBestMoveDeadline(t *testing.T) {
	is := is.New(t)

	pos, err := board.PositionFromFEN(board.FENStartPos)
	is.NoErr(err)

	cfg := testConfig()
	cfg.MaxDepth = 30
	cfg.MoveTime = 50 * time.Millisecond

	s := New(cfg)
	start := time.Now()
	m, err := s.FindBestMove(context.Background(), pos)
	elapsed := time.Since(start)

	is.NoErr(err)
	// Small bounded overshoot: the deadline is polled every few
	// thousand nodes.
	is.True(elapsed < 2*time.Second)
	is.True(pos.IsPseudoLegal(m))
}

func TestFindBestMoveContextDeadline(t *testing.T) {
	is := is.New(t)

	pos, err := board.PositionFromFEN(board.FENStartPos)
	is.NoErr(err)

	cfg := testConfig()
	cfg.MaxDepth = 30

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := New(cfg)
	start := time.Now()
	m, err := s.FindBestMove(ctx, pos)
	elapsed := time.Since(start)

	is.NoErr(err)
	is.True(elapsed < 2*time.Second)
	is.True(pos.IsPseudoLegal(m))
}

// plainNegamax is a full-width reference search with no pruning, no
// table, and no quiescence. Alpha-beta must return the same root score,
// only faster.
func plainNegamax(e *eval.Evaluator, pos *board.Position, depth, ply int) int {
	if pos.IsCheckmate() {
		return -eval.MateScore + ply
	}
	if pos.IsStalemate() || pos.InsufficientMaterial() || pos.CanClaimDraw() {
		return 0
	}
	if depth <= 0 {
		return e.Evaluate(pos)
	}
	best := -eval.MateScore
	for _, m := range pos.LegalMoves() {
		pos.DoMove(m)
		score := -plainNegamax(e, pos, depth-1, ply+1)
		pos.UndoMove()
		if score > best {
			best = score
		}
	}
	return best
}

func TestAlphaBetaMatchesFullWidthSearch(t *testing.T) {
	is := is.New(t)

	fens := []string{
		"r1bqkbnr/pppp1ppp/2n5/1B2p3/4P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"k7/8/8/3q4/8/8/3R4/K7 w - - 0 1",
	}

	for _, fen := range fens {
		pos, err := board.PositionFromFEN(fen)
		is.NoErr(err)

		cfg := testConfig()
		cfg.UseQuiescence = false
		s := New(cfg)
		s.ctx = context.Background()
		s.deadline = time.Now().Add(time.Hour)

		score, _ := s.searchRoot(pos, 3)

		want := plainNegamax(s.evaluator, pos, 3, 0)
		is.Equal(score, want)
	}
}

func TestResetClearsState(t *testing.T) {
	is := is.New(t)

	pos, err := board.PositionFromFEN(board.FENStartPos)
	is.NoErr(err)

	cfg := testConfig()
	cfg.MaxDepth = 3
	s := New(cfg)
	_, err = s.FindBestMove(context.Background(), pos)
	is.NoErr(err)
	is.True(s.ttable.created.Load() > 0)

	s.Reset()
	is.Equal(s.ttable.created.Load(), uint64(0))
	is.Equal(s.killers[1][0], board.NullMove)
	is.Equal(s.history[board.SquareE2][board.SquareE4], 0)
}
