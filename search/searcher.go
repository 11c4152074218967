package search

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/lebiraja/chess-bot/board"
	"github.com/lebiraja/chess-bot/config"
	"github.com/lebiraja/chess-bot/eval"
	"github.com/lebiraja/chess-bot/zobrist"
)

// ErrNoLegalMoves is returned when the position is already checkmate or
// stalemate. The caller should have detected game over before asking for
// a move; we defend against it anyway.
var ErrNoLegalMoves = errors.New("no legal moves in this position")

// Move ordering scores. Only the relative order matters: hash move first,
// then captures by MVV-LVA, killers, promotions, and finally quiet moves
// by their accumulated history weight.
const (
	HashMoveScore  = 10_000_000
	CaptureScore   = 1_000_000
	Killer0Score   = 900_000
	Killer1Score   = 800_000
	PromotionScore = 700_000
)

// The deadline is only checked every this many nodes. Keeps the
// time.Now() syscall off the hot path.
const timeCheckInterval = 4096

const maxKillerDepth = 64

const maxPVLength = 10

// Searcher finds the best move in a position with iterative-deepening
// negamax alpha-beta. A Searcher owns its transposition table, killer
// moves, and history table; it is single-threaded and must not be shared
// across concurrent searches.
type Searcher struct {
	cfg       config.Config
	evaluator *eval.Evaluator
	zobrist   *zobrist.Zobrist
	ttable    *TranspositionTable

	// Killer moves indexed by remaining depth, two per level.
	killers [maxKillerDepth][2]board.Move
	// History heuristic indexed by from/to square, credited depth² when
	// a quiet move raises alpha.
	history [board.SquareArraySize][board.SquareArraySize]int

	// nodes is atomic only so the nps ticker goroutine can read it.
	nodes  atomic.Uint64
	ttHits uint64

	ctx      context.Context
	deadline time.Time
}

func New(cfg config.Config) *Searcher {
	s := &Searcher{
		cfg:       cfg,
		evaluator: eval.New(),
		zobrist:   zobrist.New(),
		ttable:    &TranspositionTable{},
	}
	s.ttable.Reset(cfg.TTSizeMB, 0.25)
	return s
}

// Nodes returns the number of nodes visited by the last search.
func (s *Searcher) Nodes() uint64 { return s.nodes.Load() }

// TTHits returns the number of transposition-table cutoff hits in the
// last search.
func (s *Searcher) TTHits() uint64 { return s.ttHits }

// Reset clears all search state for a new game: the transposition table,
// the killer moves, and the history table.
func (s *Searcher) Reset() {
	s.ttable.Clear()
	s.clearKillers()
	for from := range s.history {
		for to := range s.history[from] {
			s.history[from][to] = 0
		}
	}
}

func (s *Searcher) clearKillers() {
	for d := 0; d < maxKillerDepth; d++ {
		s.killers[d][0] = board.NullMove
		s.killers[d][1] = board.NullMove
	}
}

// FindBestMove searches the position and returns the best move found
// within the configured depth and time budget. The deadline is the
// earlier of the configured move time and ctx's deadline; a deadline
// that expires mid-depth discards that depth and returns the last fully
// completed depth's move.
func (s *Searcher) FindBestMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	if !pos.HasLegalMoves() {
		return board.NullMove, ErrNoLegalMoves
	}

	tstart := time.Now()
	s.nodes.Store(0)
	s.ttHits = 0
	s.ttable.NewSearch()
	s.ctx = ctx
	s.deadline = tstart.Add(s.cfg.MoveTime)
	if d, ok := ctx.Deadline(); ok && d.Before(s.deadline) {
		s.deadline = d
	}

	g := &errgroup.Group{}
	done := make(chan bool)

	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	bestMove := board.NullMove
	bestScore := -eval.MateScore

	for depth := 1; depth <= s.cfg.MaxDepth; depth++ {
		if s.timeUp() {
			break
		}

		score, move := s.searchRoot(pos, depth)

		if move != board.NullMove && !s.timeUp() {
			bestMove = move
			bestScore = score

			elapsed := time.Since(tstart).Seconds()
			nodes := s.nodes.Load()
			nps := float64(0)
			if elapsed > 0 {
				nps = float64(nodes) / elapsed
			}
			pv := s.principalVariation(pos)
			log.Info().Int("depth", depth).
				Int("score", score).
				Uint64("nodes", nodes).
				Float64("nps", nps).
				Strs("pv", lo.Map(pv, func(m board.Move, _ int) string { return m.UCI() })).
				Msg("deepening-iteratively")
		}

		// A forced mate was found; deeper search cannot improve on it.
		if abs(score) > eval.MateScore-100 {
			break
		}
	}

	done <- true
	err := g.Wait()

	log.Info().
		Int("best-score", bestScore).
		Uint64("ttable-created", s.ttable.created.Load()).
		Uint64("ttable-lookups", s.ttable.lookups.Load()).
		Uint64("ttable-hits", s.ttable.hits.Load()).
		Uint64("ttable-t2collisions", s.ttable.t2collisions.Load()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("search-returning")

	if err != nil {
		return bestMove, err
	}
	if bestMove == board.NullMove {
		// Depth 1 never completed. The move time is too short for even a
		// one-ply search.
		return board.NullMove, errors.New("no depth completed within the move time")
	}
	return bestMove, nil
}

func (s *Searcher) searchRoot(pos *board.Position, depth int) (int, board.Move) {
	α := -eval.MateScore
	β := eval.MateScore
	bestMove := board.NullMove
	bestScore := -eval.MateScore

	moves := s.orderMoves(pos, depth, board.NullMove)

	for _, sm := range moves {
		if s.timeUp() {
			break
		}

		pos.DoMove(sm.move)
		score := -s.alphaBeta(pos, depth-1, 1, -β, -α)
		pos.UndoMove()

		if score > bestScore {
			bestScore = score
			bestMove = sm.move
			if score > α {
				α = score
			}
		}
	}

	return bestScore, bestMove
}

func (s *Searcher) alphaBeta(pos *board.Position, depth, ply, α, β int) int {
	if n := s.nodes.Add(1); n%timeCheckInterval == 0 && s.timeUp() {
		// Neutral value; the root discards anything computed past the
		// deadline.
		return 0
	}

	// Terminal checks take precedence over the table lookup.
	if pos.IsCheckmate() {
		// Prefer shorter mates.
		return -eval.MateScore + ply
	}
	if pos.IsStalemate() || pos.InsufficientMaterial() || pos.CanClaimDraw() {
		return 0
	}

	alphaOrig := α
	hashMove := board.NullMove

	nodeKey := s.zobrist.Hash(pos)
	ttEntry := s.ttable.lookup(nodeKey)
	if ttEntry.valid() && int(ttEntry.depth) >= depth {
		s.ttHits++
		score := int(ttEntry.score)
		switch ttEntry.flag {
		case TTExact:
			return score
		case TTLower:
			α = max(α, score)
		case TTUpper:
			β = min(β, score)
		}
		if α >= β {
			return score
		}
	}
	if ttEntry.valid() {
		// Search the hash move first even when the stored depth was too
		// shallow for a cutoff.
		hashMove = ttEntry.move
	}

	if depth <= 0 {
		if s.cfg.UseQuiescence {
			return s.quiescence(pos, s.cfg.QuiescenceDepth, α, β)
		}
		return s.evaluator.Evaluate(pos)
	}

	bestScore := -eval.MateScore
	bestMove := board.NullMove

	moves := s.orderMoves(pos, depth, hashMove)

	for _, sm := range moves {
		pos.DoMove(sm.move)
		score := -s.alphaBeta(pos, depth-1, ply+1, -β, -α)
		pos.UndoMove()

		if score > bestScore {
			bestScore = score
			bestMove = sm.move
		}

		if score > α {
			α = score
			// Credit quiet moves that raise alpha.
			if sm.move.Capture() == board.NoPiece {
				s.history[sm.move.From()][sm.move.To()] += depth * depth
			}
		}

		if α >= β {
			if sm.move.Capture() == board.NoPiece {
				s.storeKiller(sm.move, depth)
			}
			break // beta cut-off
		}
	}

	var flag uint8
	if bestScore <= alphaOrig {
		flag = TTUpper
	} else if bestScore >= β {
		flag = TTLower
	} else {
		flag = TTExact
	}
	s.ttable.store(nodeKey, TableEntry{
		move:  bestMove,
		score: int32(bestScore),
		depth: uint8(max(depth, 0)),
		flag:  flag,
	})

	return bestScore
}

// quiescence extends the search with captures only, so that the static
// evaluation is never taken in the middle of an exchange.
func (s *Searcher) quiescence(pos *board.Position, depth, α, β int) int {
	s.nodes.Add(1)

	// Stand pat: the mover can always decline to capture further.
	standPat := s.evaluator.Evaluate(pos)

	if depth <= 0 {
		return standPat
	}
	if standPat >= β {
		return β
	}
	if standPat > α {
		α = standPat
	}

	for _, sm := range s.captures(pos) {
		pos.DoMove(sm.move)
		score := -s.quiescence(pos, depth-1, -β, -α)
		pos.UndoMove()

		if score >= β {
			return β
		}
		if score > α {
			α = score
		}
	}

	return α
}

type scoredMove struct {
	move  board.Move
	score int
}

// orderMoves scores and sorts the legal moves: hash move, captures by
// MVV-LVA, killers, promotions, then quiet moves by history weight.
// Ordering quality directly determines how much alpha-beta prunes.
func (s *Searcher) orderMoves(pos *board.Position, depth int, hashMove board.Move) []scoredMove {
	moves := pos.LegalMoves()
	scored := make([]scoredMove, 0, len(moves))

	for _, m := range moves {
		var score int
		if m == hashMove && m != board.NullMove {
			score = HashMoveScore
		} else if victim := m.Capture(); victim != board.NoPiece {
			// MVV-LVA: most valuable victim, least valuable attacker.
			score = CaptureScore + int(victim.Figure())*100 - int(m.Figure())
		} else if depth < maxKillerDepth && m == s.killers[depth][0] {
			score = Killer0Score
		} else if depth < maxKillerDepth && m == s.killers[depth][1] {
			score = Killer1Score
		} else if m.MoveType() == board.Promotion {
			score = PromotionScore + int(m.Promotion().Figure())
		} else {
			score = s.history[m.From()][m.To()]
		}
		scored = append(scored, scoredMove{move: m, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

// captures returns the legal capturing moves ordered by MVV-LVA.
func (s *Searcher) captures(pos *board.Position) []scoredMove {
	var scored []scoredMove
	for _, m := range pos.LegalMoves() {
		victim := m.Capture()
		if victim == board.NoPiece {
			continue
		}
		scored = append(scored, scoredMove{
			move:  m,
			score: int(victim.Figure())*100 - int(m.Figure()),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

func (s *Searcher) storeKiller(m board.Move, depth int) {
	if depth >= maxKillerDepth {
		return
	}
	if m != s.killers[depth][0] {
		s.killers[depth][1] = s.killers[depth][0]
		s.killers[depth][0] = m
	}
}

// principalVariation walks the transposition table's best moves from the
// given position. The line can be shorter than expected when the table
// has evicted part of it.
func (s *Searcher) principalVariation(pos *board.Position) []board.Move {
	var pv []board.Move
	for len(pv) < maxPVLength {
		entry := s.ttable.lookup(s.zobrist.Hash(pos))
		if !entry.valid() || entry.move == board.NullMove {
			break
		}
		if !isLegal(pos, entry.move) {
			break
		}
		pv = append(pv, entry.move)
		pos.DoMove(entry.move)
	}
	for range pv {
		pos.UndoMove()
	}
	return pv
}

func isLegal(pos *board.Position, m board.Move) bool {
	if !pos.IsPseudoLegal(m) {
		return false
	}
	pos.DoMove(m)
	checked := pos.IsChecked(pos.Them())
	pos.UndoMove()
	return !checked
}

func (s *Searcher) timeUp() bool {
	return time.Now().After(s.deadline) || s.ctx.Err() != nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
