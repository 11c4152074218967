// Package eval scores chess positions in centipawns.
// Positive scores are good for the side to move.
package eval

import (
	"encoding/binary"

	"github.com/cespare/xxhash"

	"github.com/lebiraja/chess-bot/board"
)

// MateScore is the score of a checkmated position. Search reports
// forced mates relative to it, preferring shorter mates.
const MateScore = 100000

// Piece values in centipawns, indexed by figure.
var figureValue = [board.FigureArraySize]int{0, 100, 320, 330, 500, 900, 20000}

// FigureValue returns fig's material value in centipawns.
func FigureValue(fig board.Figure) int {
	return figureValue[fig]
}

const pawnCacheSize = 1 << 14

type pawnCacheEntry struct {
	key   uint64
	score int32
}

// Evaluator scores positions as a weighted sum of material, piece
// placement, mobility, king safety and pawn structure. King safety is
// only counted in the middlegame.
type Evaluator struct {
	MaterialWeight      float64
	PositionWeight      float64
	MobilityWeight      float64
	KingSafetyWeight    float64
	PawnStructureWeight float64

	// pawnCache memoizes the pawn structure term, keyed by the two pawn
	// bitboards. Purely transparent: scores are identical without it.
	pawnCache []pawnCacheEntry
}

// New returns an Evaluator with the default term weights.
func New() *Evaluator {
	return &Evaluator{
		MaterialWeight:      1.0,
		PositionWeight:      0.3,
		MobilityWeight:      0.1,
		KingSafetyWeight:    0.5,
		PawnStructureWeight: 0.2,
		pawnCache:           make([]pawnCacheEntry, pawnCacheSize),
	}
}

// Evaluate scores pos from the perspective of the side to move.
// The position is left unchanged; the mobility term plays a null move
// internally and takes it back.
func (e *Evaluator) Evaluate(pos *board.Position) int {
	if pos.IsCheckmate() {
		return -MateScore
	}
	if pos.IsStalemate() || pos.InsufficientMaterial() {
		return 0
	}
	if pos.CanClaimDraw() {
		return 0
	}

	// All terms are computed from White's point of view.
	score := e.MaterialWeight * float64(material(pos))
	score += e.PositionWeight * float64(piecePositions(pos))
	score += e.MobilityWeight * float64(mobility(pos))
	score += e.PawnStructureWeight * float64(e.pawnStructure(pos))
	if !isEndgame(pos) {
		score += e.KingSafetyWeight * float64(kingSafety(pos))
	}

	if pos.Us() == board.Black {
		score = -score
	}
	return int(score)
}

// material counts the material difference, including the bishop pair bonus.
func material(pos *board.Position) int {
	score := 0
	for fig := board.FigureMinValue; fig <= board.FigureMaxValue; fig++ {
		white := pos.ByPiece(board.White, fig).Count()
		black := pos.ByPiece(board.Black, fig).Count()
		score += figureValue[fig] * int(white-black)
	}

	if pos.ByPiece(board.White, board.Bishop).CountMax2() == 2 {
		score += 50
	}
	if pos.ByPiece(board.Black, board.Bishop).CountMax2() == 2 {
		score -= 50
	}
	return score
}

// pst looks up the piece-square bonus for col's figure on sq.
func pst(table *[64]int, sq board.Square, col board.Color) int {
	// Tables are listed top rank first, so White squares are flipped.
	if col == board.White {
		sq = sq.POV(board.Black)
	}
	return table[sq]
}

// piecePositions sums the piece-square table bonuses.
func piecePositions(pos *board.Position) int {
	score := 0
	endgame := isEndgame(pos)

	for col := board.ColorMinValue; col <= board.ColorMaxValue; col++ {
		sign := 1
		if col == board.Black {
			sign = -1
		}
		for fig := board.FigureMinValue; fig <= board.FigureMaxValue; fig++ {
			table := figureTable[fig]
			if fig == board.King && endgame {
				table = &kingEndgameTable
			}
			for bb := pos.ByPiece(col, fig); bb != 0; {
				score += sign * pst(table, bb.Pop(), col)
			}
		}
	}
	return score
}

// mobility scores the legal move count difference. The opponent's moves
// are counted by playing a null move; a side in check counts as zero.
func mobility(pos *board.Position) int {
	current := len(pos.LegalMoves())

	pos.DoMove(board.NullMove)
	opponent := 0
	if !pos.IsChecked(pos.Us()) {
		opponent = len(pos.LegalMoves())
	}
	pos.UndoMove()

	diff := current - opponent
	if pos.Us() == board.Black {
		diff = -diff
	}
	return diff * 10
}

// pawnStructure scores doubled, isolated and passed pawns, memoized by
// the two pawn bitboards.
func (e *Evaluator) pawnStructure(pos *board.Position) int {
	whitePawns := pos.ByPiece(board.White, board.Pawn)
	blackPawns := pos.ByPiece(board.Black, board.Pawn)

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(whitePawns))
	binary.LittleEndian.PutUint64(buf[8:], uint64(blackPawns))
	key := xxhash.Sum64(buf[:])

	ent := &e.pawnCache[key&(pawnCacheSize-1)]
	if ent.key == key {
		return int(ent.score)
	}

	score := pawnStructureSlow(pos)
	*ent = pawnCacheEntry{key: key, score: int32(score)}
	return score
}

func pawnStructureSlow(pos *board.Position) int {
	score := 0

	for col := board.ColorMinValue; col <= board.ColorMaxValue; col++ {
		sign := 1
		if col == board.Black {
			sign = -1
		}
		ours := pos.ByPiece(col, board.Pawn)
		theirs := pos.ByPiece(col.Opposite(), board.Pawn)

		// Doubled pawns.
		for f := 0; f < 8; f++ {
			if n := int((ours & board.FileBb(f)).Count()); n > 1 {
				score -= 20 * (n - 1) * sign
			}
		}

		for bb := ours; bb != 0; {
			sq := bb.Pop()

			// Isolated pawns have no friendly pawn on an adjacent file.
			if ours&board.AdjacentFilesBb(sq.File()) == 0 {
				score -= 15 * sign
			}

			// Passed pawns have no enemy pawn ahead on the same or an
			// adjacent file. More advanced pawns are worth more.
			front := sq.Bitboard()
			front |= board.East(front) | board.West(front)
			if theirs&board.ForwardSpan(col, front) == 0 {
				advancement := sq.POV(col).Rank() - 1
				score += (20 + advancement*10) * sign
			}
		}
	}
	return score
}

// kingSafety scores the pawn shield in front of each king and
// penalizes a king sitting on a file without own pawns.
func kingSafety(pos *board.Position) int {
	score := 0

	for col := board.ColorMinValue; col <= board.ColorMaxValue; col++ {
		sign := 1
		if col == board.Black {
			sign = -1
		}
		kingSq := pos.KingSquare(col)
		ours := pos.ByPiece(col, board.Pawn)

		shield := board.Forward(col, kingSq.Bitboard())
		shield |= board.East(shield) | board.West(shield)
		score += 10 * int((ours & shield).Count()) * sign

		if ours&board.FileBb(kingSq.File()) == 0 {
			score -= 20 * sign
		}
	}
	return score
}

// isEndgame reports whether the position is an endgame: both queens off
// the board, or few minor and major pieces left.
func isEndgame(pos *board.Position) bool {
	if pos.ByFigure[board.Queen] == 0 {
		return true
	}
	minorsAndMajors := pos.MinorsAndMajors(board.White) | pos.MinorsAndMajors(board.Black)
	return minorsAndMajors.Count() <= 6
}
