package board

import (
	"fmt"
	"math/rand"
)

const (
	// Violent indicates captures (including en passant) and queen promotions.
	Violent int = 1 << iota
	// Quiet are all other moves including minor promotions and castling.
	Quiet
	// All moves.
	All = Violent | Quiet
)

var (
	// FENStartPos is the FEN string of the starting position.
	FENStartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	// Which castle rights are lost when pieces are moved.
	lostCastleRights [64]Castle

	// The zobrist* arrays hold the keys for the position's incremental
	// hash, used for repetition detection. The transposition table keeps
	// its own full-position hash in the zobrist package.
	zobristPiece     [PieceArraySize][SquareArraySize]uint64
	zobristEnpassant [SquareArraySize]uint64
	zobristCastle    [CastleArraySize]uint64
	zobristColor     [ColorArraySize]uint64
)

func init() {
	lostCastleRights[SquareA1] = WhiteOOO
	lostCastleRights[SquareE1] = WhiteOOO | WhiteOO
	lostCastleRights[SquareH1] = WhiteOO
	lostCastleRights[SquareA8] = BlackOOO
	lostCastleRights[SquareE8] = BlackOOO | BlackOO
	lostCastleRights[SquareH8] = BlackOO

	r := rand.New(rand.NewSource(5))
	f := func() uint64 { return uint64(r.Int63())<<32 ^ uint64(r.Int63()) }
	for pi := PieceMinValue; pi <= PieceMaxValue; pi++ {
		for sq := SquareMinValue; sq <= SquareMaxValue; sq++ {
			zobristPiece[pi][sq] = f()
		}
	}
	for i := 0; i < 8; i++ {
		zobristEnpassant[SquareA3+Square(i)] = f()
		zobristEnpassant[SquareA6+Square(i)] = f()
	}
	castle := [...]uint64{f(), f(), f(), f()}
	for i := CastleMinValue; i <= CastleMaxValue; i++ {
		for j, c := range [...]Castle{WhiteOO, WhiteOOO, BlackOO, BlackOOO} {
			if i&c != 0 {
				zobristCastle[i] ^= castle[j]
			}
		}
	}
	zobristColor[White] = f()
}

type state struct {
	Zobrist         uint64 // Zobrist key, can be zero
	Move            Move   // last move played
	HalfmoveClock   int    // plies since a pawn was moved or a capture was made
	EnpassantSquare Square // en passant square. If none, then SquareA1
	CastlingAbility Castle // remaining castling rights
}

// Position represents the chess board and keeps track of the move history.
type Position struct {
	ByFigure   [FigureArraySize]Bitboard // bitboards of square occupancy by figure
	ByColor    [ColorArraySize]Bitboard  // bitboards of square occupancy by color
	sideToMove Color                     // updated by DoMove and UndoMove
	Ply        int                       // current ply

	fullmoveCounter int     // incremented after black's move
	states          []state // a state for each Ply
	curr            *state  // current state
}

// NewPosition returns a new position representing an empty board.
func NewPosition() *Position {
	pos := &Position{
		fullmoveCounter: 1,
		states:          make([]state, 1, 4),
	}
	pos.curr = &pos.states[pos.Ply]
	return pos
}

// popState pops one ply.
func (pos *Position) popState() {
	n := len(pos.states) - 1
	pos.states = pos.states[:n]
	pos.curr = &pos.states[n-1]
	pos.Ply--
}

// pushState adds one ply.
func (pos *Position) pushState() {
	n := len(pos.states)
	pos.states = append(pos.states, pos.states[n-1])
	pos.curr = &pos.states[n]
	pos.Ply++
}

// FullmoveCounter returns the number of full moves. Starts at 1.
func (pos *Position) FullmoveCounter() int {
	return pos.fullmoveCounter
}

// HalfmoveClock returns the number of halfmoves since the last capture or pawn advance.
func (pos *Position) HalfmoveClock() int {
	return pos.curr.HalfmoveClock
}

// Us returns the side to move.
func (pos *Position) Us() Color {
	return pos.sideToMove
}

// Them returns the side awaiting its move.
func (pos *Position) Them() Color {
	return pos.sideToMove.Opposite()
}

// IsEnpassantSquare returns true if sq is the en passant square.
func (pos *Position) IsEnpassantSquare(sq Square) bool {
	return sq != SquareA1 && sq == pos.EnpassantSquare()
}

// EnpassantSquare returns the en passant square, SquareA1 if none.
// Uses the polyglot definition: if no enemy pawn can capture en passant,
// EnpassantSquare returns SquareA1.
func (pos *Position) EnpassantSquare() Square {
	return pos.curr.EnpassantSquare
}

// CastlingAbility returns the kings' remaining castling rights.
func (pos *Position) CastlingAbility() Castle {
	return pos.curr.CastlingAbility
}

// LastMove returns the last move played, if any.
func (pos *Position) LastMove() Move {
	return pos.curr.Move
}

// Zobrist returns the zobrist key of the position. Never returns 0.
func (pos *Position) Zobrist() uint64 {
	if pos.curr.Zobrist != 0 {
		return pos.curr.Zobrist
	}
	return 0x4204fa763da3abeb
}

// KingSquare returns the location of col's king.
func (pos *Position) KingSquare(col Color) Square {
	return pos.ByPiece(col, King).AsSquare()
}

// MinorsAndMajors returns a bitboard with col's minor and major pieces.
func (pos *Position) MinorsAndMajors(col Color) Bitboard {
	return pos.ByColor[col] &^ pos.ByFigure[Pawn] &^ pos.ByFigure[King]
}

// SetCastlingAbility sets the castling rights, correctly updating the Zobrist key.
func (pos *Position) SetCastlingAbility(castle Castle) {
	if pos.curr.CastlingAbility == castle {
		return
	}
	pos.curr.Zobrist ^= zobristCastle[pos.curr.CastlingAbility]
	pos.curr.CastlingAbility = castle
	pos.curr.Zobrist ^= zobristCastle[pos.curr.CastlingAbility]
}

// SetSideToMove sets the side to move, correctly updating the Zobrist key.
func (pos *Position) SetSideToMove(col Color) {
	pos.curr.Zobrist ^= zobristColor[pos.sideToMove]
	pos.sideToMove = col
	pos.curr.Zobrist ^= zobristColor[pos.sideToMove]
}

// SetEnpassantSquare sets the en passant square, correctly updating the Zobrist key.
func (pos *Position) SetEnpassantSquare(epsq Square) {
	if epsq != SquareA1 {
		// In polyglot the hash key for en passant is updated only if
		// an en passant capture is possible next move, that is if there
		// is an enemy pawn next to the end square of the double advance.
		var theirs Bitboard
		var sq Square
		if epsq.Rank() == 2 { // White
			theirs, sq = pos.ByPiece(Black, Pawn), RankFile(3, epsq.File())
		} else if epsq.Rank() == 5 { // Black
			theirs, sq = pos.ByPiece(White, Pawn), RankFile(4, epsq.File())
		} else {
			panic("bad en passant square")
		}

		if (sq.File() == 0 || !theirs.Has(sq-1)) && (sq.File() == 7 || !theirs.Has(sq+1)) {
			epsq = SquareA1
		}
	}

	pos.curr.Zobrist ^= zobristEnpassant[pos.curr.EnpassantSquare]
	pos.curr.EnpassantSquare = epsq
	pos.curr.Zobrist ^= zobristEnpassant[pos.curr.EnpassantSquare]
}

// ByPiece is a shortcut for ByColor[col]&ByFigure[fig].
func (pos *Position) ByPiece(col Color, fig Figure) Bitboard {
	return pos.ByColor[col] & pos.ByFigure[fig]
}

// ByPiece2 is a shortcut for ByColor[col]&(ByFigure[fig0]|ByFigure[fig1]).
func (pos *Position) ByPiece2(col Color, fig0, fig1 Figure) Bitboard {
	return pos.ByColor[col] & (pos.ByFigure[fig0] | pos.ByFigure[fig1])
}

// Put puts a piece on the board.
// Does nothing if pi is NoPiece. Does not validate input.
func (pos *Position) Put(sq Square, pi Piece) {
	if pi != NoPiece {
		pos.curr.Zobrist ^= zobristPiece[pi][sq]
		bb := sq.Bitboard()
		pos.ByColor[pi.Color()] |= bb
		pos.ByFigure[pi.Figure()] |= bb
	}
}

// Remove removes a piece from the board.
// Does nothing if pi is NoPiece. Does not validate input.
func (pos *Position) Remove(sq Square, pi Piece) {
	if pi != NoPiece {
		pos.curr.Zobrist ^= zobristPiece[pi][sq]
		bb := ^sq.Bitboard()
		pos.ByColor[pi.Color()] &= bb
		pos.ByFigure[pi.Figure()] &= bb
	}
}

// IsEmpty returns true if there is no piece at sq.
func (pos *Position) IsEmpty(sq Square) bool {
	return !(pos.ByColor[White] | pos.ByColor[Black]).Has(sq)
}

// Has returns true if pi is at sq.
// Equivalent to Get(sq) == pi, but faster.
func (pos *Position) Has(sq Square, pi Piece) bool {
	if pi != NoPiece {
		return pos.ByColor[pi.Color()].Has(sq) && pos.ByFigure[pi.Figure()].Has(sq)
	}
	return pos.IsEmpty(sq)
}

// Get returns the piece at sq.
func (pos *Position) Get(sq Square) Piece {
	var col Color
	if pos.ByColor[White].Has(sq) {
		col = White
	} else if pos.ByColor[Black].Has(sq) {
		col = Black
	} else {
		return NoPiece
	}

	for fig := FigureMinValue; fig <= FigureMaxValue; fig++ {
		if pos.ByFigure[fig].Has(sq) {
			return ColorFigure(col, fig)
		}
	}
	panic("unreachable: square has color, but no figure")
}

// DoMove executes a legal move.
func (pos *Position) DoMove(move Move) {
	pos.pushState()
	curr := pos.curr
	curr.Move = move

	// Update castling rights.
	pi := move.Piece()
	if pi != NoPiece { // a null move cannot change castling ability
		pos.SetCastlingAbility(curr.CastlingAbility &^ lostCastleRights[move.From()] &^ lostCastleRights[move.To()])
	}
	if pos.Us() == Black {
		pos.fullmoveCounter++
	}
	curr.HalfmoveClock++
	if pi.Figure() == Pawn || move.Capture() != NoPiece {
		curr.HalfmoveClock = 0
	}
	// Set the en passant square on double advances.
	if pi.Figure() == Pawn && move.From().Rank()^move.To().Rank() == 2 {
		pos.SetEnpassantSquare((move.From() + move.To()) / 2)
	} else if pos.EnpassantSquare() != SquareA1 {
		pos.SetEnpassantSquare(SquareA1)
	}
	// Move the rook on castling.
	if move.MoveType() == Castling {
		rook, start, end := CastlingRook(move.To())
		pos.Remove(start, rook)
		pos.Put(end, rook)
	}

	// Update the pieces on the chess board.
	pos.Remove(move.From(), pi)
	pos.Remove(move.CaptureSquare(), move.Capture())
	pos.Put(move.To(), move.Target())
	pos.SetSideToMove(pos.Them())
}

// UndoMove takes back the last move.
func (pos *Position) UndoMove() {
	move := pos.LastMove()
	pos.SetSideToMove(pos.Them())
	// CastlingAbility and EnpassantSquare are restored by popState.

	pi := move.Piece()
	pos.Put(move.From(), pi)
	pos.Remove(move.To(), move.Target())
	pos.Put(move.CaptureSquare(), move.Capture())

	if move.MoveType() == Castling {
		rook, start, end := CastlingRook(move.To())
		pos.Put(start, rook)
		pos.Remove(end, rook)
	}

	if pos.Us() == Black {
		pos.fullmoveCounter--
	}
	pos.popState()
}

// IsChecked returns true if side's king is checked.
func (pos *Position) IsChecked(side Color) bool {
	return pos.GetAttacker(pos.KingSquare(side), side.Opposite()) != NoFigure
}

// GetAttacker returns the smallest figure of color them that attacks sq.
func (pos *Position) GetAttacker(sq Square, them Color) Figure {
	enemy := pos.ByColor[them]
	if PawnThreats(pos, them).Has(sq) {
		return Pawn
	}
	if enemy&bbKnightAttack[sq]&pos.ByFigure[Knight] != 0 {
		return Knight
	}
	// Quick test of queen's attack on an empty board.
	// Pawns and knights were already tested.
	enemy &^= pos.ByFigure[Pawn]
	enemy &^= pos.ByFigure[Knight]
	if enemy&bbSuperAttack[sq] == 0 {
		return NoFigure
	}
	all := pos.ByColor[White] | pos.ByColor[Black]
	bishop := BishopMobility(sq, all)
	if enemy&pos.ByFigure[Bishop]&bishop != 0 {
		return Bishop
	}
	rook := RookMobility(sq, all)
	if enemy&pos.ByFigure[Rook]&rook != 0 {
		return Rook
	}
	if enemy&pos.ByFigure[Queen]&(bishop|rook) != 0 {
		return Queen
	}
	if enemy&bbKingAttack[sq]&pos.ByFigure[King] != 0 {
		return King
	}
	return NoFigure
}

// HasLegalMoves returns true if the side to move has any legal moves.
// This function is expensive.
func (pos *Position) HasLegalMoves() bool {
	var moves []Move
	pos.GenerateMoves(All, &moves)
	for _, m := range moves {
		pos.DoMove(m)
		checked := pos.IsChecked(pos.Them())
		pos.UndoMove()
		if !checked {
			return true
		}
	}
	return false
}

// LegalMoves returns all legal moves for the side to move.
func (pos *Position) LegalMoves() []Move {
	var pseudo []Move
	pos.GenerateMoves(All, &pseudo)
	legal := pseudo[:0]
	for _, m := range pseudo {
		pos.DoMove(m)
		checked := pos.IsChecked(pos.Them())
		pos.UndoMove()
		if !checked {
			legal = append(legal, m)
		}
	}
	return legal
}

// IsCheckmate returns true if the side to move is checkmated.
func (pos *Position) IsCheckmate() bool {
	return pos.IsChecked(pos.Us()) && !pos.HasLegalMoves()
}

// IsStalemate returns true if the side to move has no legal moves
// and is not in check.
func (pos *Position) IsStalemate() bool {
	return !pos.IsChecked(pos.Us()) && !pos.HasLegalMoves()
}

// InsufficientMaterial returns true if the position is a theoretical draw.
func (pos *Position) InsufficientMaterial() bool {
	// K vs K.
	noKings := (pos.ByColor[White] | pos.ByColor[Black]) &^ pos.ByFigure[King]
	if noKings == 0 {
		return true
	}
	// KN vs K.
	if noKings == pos.ByFigure[Knight] && pos.ByFigure[Knight].CountMax2() == 1 {
		return true
	}
	// KB* vs KB* when all bishops share a square color.
	if bishops := pos.ByFigure[Bishop]; noKings == bishops {
		if bishops&BbWhiteSquares == bishops || bishops&BbBlackSquares == bishops {
			return true
		}
	}
	return false
}

// ThreeFoldRepetition returns how many times the current position was seen,
// capped at 3.
func (pos *Position) ThreeFoldRepetition() int {
	c, z := 0, pos.Zobrist()
	for i := 0; i < len(pos.states) && i <= pos.curr.HalfmoveClock; i += 2 {
		j := len(pos.states) - 1 - i
		if j != 0 && pos.states[j].Move == NullMove {
			// Consecutive null moves repeat the position
			// without an actual repetition.
			break
		}
		if pos.states[j].Zobrist == z {
			if c++; c == 3 {
				break
			}
		}
	}
	return c
}

// FiftyMoveRule returns true if 50 moves were made on each side
// without any capture or pawn move.
func (pos *Position) FiftyMoveRule() bool {
	return pos.curr.HalfmoveClock >= 100
}

// CanClaimDraw returns true if the side to move can claim a draw
// by repetition or by the fifty move rule.
func (pos *Position) CanClaimDraw() bool {
	return pos.FiftyMoveRule() || pos.ThreeFoldRepetition() >= 3
}

// IsPseudoLegal returns true if m is a pseudo legal move for pos, i.e.
// m can be executed even if it leaves the own king in check. NullMove is
// not a valid move. Assumes that there exists a position for which the
// move is well formed, e.g. not a rook moving diagonally.
func (pos *Position) IsPseudoLegal(m Move) bool {
	if m == NullMove ||
		m.Color() != pos.Us() ||
		!pos.Has(m.From(), m.Piece()) ||
		!pos.Has(m.CaptureSquare(), m.Capture()) {
		return false
	}

	from, to := m.From(), m.To()
	all := pos.ByColor[White] | pos.ByColor[Black]

	switch m.Figure() {
	case Pawn:
		if m.MoveType() == Enpassant && !pos.IsEnpassantSquare(m.To()) {
			return false
		}
		if BbPawnStartRank.Has(m.From()) && BbPawnDoubleRank.Has(m.To()) && !pos.IsEmpty((m.From()+m.To())/2) {
			return false
		}
		return true
	case Knight:
		return true
	case Bishop, Rook, Queen:
		// If the line between from and to is empty the move is unobstructed.
		if bbSuperAttack[from]&bbSuperAttack[to]&all == BbEmpty {
			return true
		}
		switch m.Figure() {
		case Bishop:
			return BishopMobility(from, all).Has(to)
		case Rook:
			return RookMobility(from, all).Has(to)
		case Queen:
			return QueenMobility(from, all).Has(to)
		}
	case King:
		if m.MoveType() == Normal {
			return bbKingAttack[from].Has(to)
		}

		// m.MoveType() == Castling
		oo, ooo := WhiteOO, WhiteOOO
		if m.Color() == Black {
			oo, ooo = BlackOO, BlackOOO
		}
		if m.To().File() == 6 { // king side
			if pos.CastlingAbility()&oo == 0 ||
				!pos.IsEmpty(m.From()+1) || !pos.IsEmpty(m.From()+2) {
				return false
			}
		} else { // queen side
			if pos.CastlingAbility()&ooo == 0 ||
				!pos.IsEmpty(m.From()-1) || !pos.IsEmpty(m.From()-2) || !pos.IsEmpty(m.From()-3) {
				return false
			}
		}
		rook, start, end := CastlingRook(m.To())
		if pos.Get(start) != rook {
			return false
		}
		them := m.Color().Opposite()
		if pos.GetAttacker(m.From(), them) != NoFigure ||
			pos.GetAttacker(end, them) != NoFigure ||
			pos.GetAttacker(m.To(), them) != NoFigure {
			return false
		}
	default:
		panic("unreachable")
	}
	return true
}

// UCIToMove parses a move given in UCI format.
// s can be "a2a4" or "h7h8q" for pawn promotion.
func (pos *Position) UCIToMove(s string) (Move, error) {
	if len(s) < 4 {
		return NullMove, fmt.Errorf("%s is too short", s)
	}

	from, err := SquareFromString(s[0:2])
	if err != nil {
		return NullMove, err
	}
	to, err := SquareFromString(s[2:4])
	if err != nil {
		return NullMove, err
	}

	moveType := Normal
	capt := pos.Get(to)
	target := pos.Get(from)

	pi := pos.Get(from)
	if pi.Figure() == Pawn && pos.IsEnpassantSquare(to) {
		moveType = Enpassant
		capt = ColorFigure(pos.Them(), Pawn)
	}
	if pi == WhiteKing && from == SquareE1 && (to == SquareC1 || to == SquareG1) {
		moveType = Castling
	}
	if pi == BlackKing && from == SquareE8 && (to == SquareC8 || to == SquareG8) {
		moveType = Castling
	}
	if pi.Figure() == Pawn && (to.Rank() == 0 || to.Rank() == 7) {
		if len(s) != 5 {
			return NullMove, fmt.Errorf("%s doesn't have a promotion piece", s)
		}
		moveType = Promotion
		target = ColorFigure(pos.Us(), symbolToFigure[rune(s[4])])
	} else if len(s) != 4 {
		return NullMove, fmt.Errorf("%s move is too long", s)
	}

	move := MakeMove(moveType, from, to, capt, target)
	if !pos.IsPseudoLegal(move) {
		return NullMove, fmt.Errorf("%s is not a valid move", s)
	}
	return move, nil
}

func (pos *Position) genPawnPromotions(kind int, moves *[]Move) {
	// Minimum and maximum promotion figures:
	// Quiet -> Knight to Rook, Violent -> Queen.
	pMin, pMax := Queen, Rook
	if kind&Violent != 0 {
		pMax = Queen
	}
	if kind&Quiet != 0 {
		pMin = Knight
	}

	us, them := pos.Us(), pos.Them()
	all := pos.ByColor[White] | pos.ByColor[Black]
	ours := pos.ByPiece(us, Pawn)
	theirs := pos.ByColor[them]

	forward := Square(0)
	if us == White {
		ours &= BbRank7
		forward = RankFile(+1, 0)
	} else {
		ours &= BbRank2
		forward = RankFile(-1, 0)
	}

	for ours != 0 {
		from := ours.Pop()
		to := from + forward

		if !all.Has(to) { // advance
			for p := pMin; p <= pMax; p++ {
				*moves = append(*moves, MakeMove(Promotion, from, to, NoPiece, ColorFigure(us, p)))
			}
		}
		if to.File() != 0 && theirs.Has(to-1) { // take west
			capt := pos.Get(to - 1)
			for p := pMin; p <= pMax; p++ {
				*moves = append(*moves, MakeMove(Promotion, from, to-1, capt, ColorFigure(us, p)))
			}
		}
		if to.File() != 7 && theirs.Has(to+1) { // take east
			capt := pos.Get(to + 1)
			for p := pMin; p <= pMax; p++ {
				*moves = append(*moves, MakeMove(Promotion, from, to+1, capt, ColorFigure(us, p)))
			}
		}
	}
}

// genPawnAdvanceMoves moves pawns one square. Does not generate promotions.
func (pos *Position) genPawnAdvanceMoves(kind int, moves *[]Move) {
	if kind&Quiet == 0 {
		return
	}

	ours := pos.ByPiece(pos.Us(), Pawn)
	occu := pos.ByColor[White] | pos.ByColor[Black]
	pawn := ColorFigure(pos.Us(), Pawn)

	var forward Square
	if pos.Us() == White {
		ours = ours &^ South(occu) &^ BbRank7
		forward = RankFile(+1, 0)
	} else {
		ours = ours &^ North(occu) &^ BbRank2
		forward = RankFile(-1, 0)
	}

	for ours != 0 {
		from := ours.Pop()
		*moves = append(*moves, MakeMove(Normal, from, from+forward, NoPiece, pawn))
	}
}

// genPawnDoubleAdvanceMoves moves pawns two squares.
func (pos *Position) genPawnDoubleAdvanceMoves(kind int, moves *[]Move) {
	if kind&Quiet == 0 {
		return
	}

	ours := pos.ByPiece(pos.Us(), Pawn)
	occu := pos.ByColor[White] | pos.ByColor[Black]
	pawn := ColorFigure(pos.Us(), Pawn)

	var forward Square
	if pos.Us() == White {
		ours &= RankBb(1) &^ South(occu) &^ South(South(occu))
		forward = RankFile(+2, 0)
	} else {
		ours &= RankBb(6) &^ North(occu) &^ North(North(occu))
		forward = RankFile(-2, 0)
	}

	for ours != 0 {
		from := ours.Pop()
		*moves = append(*moves, MakeMove(Normal, from, from+forward, NoPiece, pawn))
	}
}

func (pos *Position) pawnCapture(to Square) (MoveType, Piece) {
	if pos.IsEnpassantSquare(to) {
		return Enpassant, ColorFigure(pos.Them(), Pawn)
	}
	return Normal, pos.Get(to)
}

// genPawnAttackMoves generates pawn captures. Does not generate promotions.
func (pos *Position) genPawnAttackMoves(kind int, moves *[]Move) {
	if kind&Violent == 0 {
		return
	}

	theirs := pos.ByColor[pos.Them()]
	if pos.curr.EnpassantSquare != SquareA1 {
		theirs |= pos.curr.EnpassantSquare.Bitboard()
	}

	forward := 0
	pawn := ColorFigure(pos.Us(), Pawn)
	ours := pos.ByPiece(pos.Us(), Pawn)
	if pos.Us() == White {
		ours = ours &^ BbRank7
		theirs = South(theirs)
		forward = +1
	} else {
		ours = ours &^ BbRank2
		theirs = North(theirs)
		forward = -1
	}

	att := RankFile(forward, -1)
	for bbl := ours & East(theirs); bbl > 0; {
		from := bbl.Pop()
		to := from + att
		mt, capt := pos.pawnCapture(to)
		*moves = append(*moves, MakeMove(mt, from, to, capt, pawn))
	}

	att = RankFile(forward, +1)
	for bbr := ours & West(theirs); bbr > 0; {
		from := bbr.Pop()
		to := from + att
		mt, capt := pos.pawnCapture(to)
		*moves = append(*moves, MakeMove(mt, from, to, capt, pawn))
	}
}

func (pos *Position) genBitboardMoves(pi Piece, from Square, att Bitboard, moves *[]Move) {
	for att != 0 {
		to := att.Pop()
		*moves = append(*moves, MakeMove(Normal, from, to, pos.Get(to), pi))
	}
}

func (pos *Position) getMask(kind int) Bitboard {
	mask := Bitboard(0)
	if kind&Violent != 0 {
		mask |= pos.ByColor[pos.Them()]
	}
	if kind&Quiet != 0 {
		mask |= ^(pos.ByColor[White] | pos.ByColor[Black])
	}
	// Minor promotions and castling are handled specially.
	return mask
}

func (pos *Position) genKnightMoves(mask Bitboard, moves *[]Move) {
	pi := ColorFigure(pos.Us(), Knight)
	for bb := pos.ByPiece(pos.Us(), Knight); bb != 0; {
		from := bb.Pop()
		pos.genBitboardMoves(pi, from, bbKnightAttack[from]&mask, moves)
	}
}

func (pos *Position) genBishopMoves(fig Figure, mask Bitboard, moves *[]Move) {
	pi := ColorFigure(pos.Us(), fig)
	all := pos.ByColor[White] | pos.ByColor[Black]
	for bb := pos.ByPiece(pos.Us(), fig); bb != 0; {
		from := bb.Pop()
		pos.genBitboardMoves(pi, from, BishopMobility(from, all)&mask, moves)
	}
}

func (pos *Position) genRookMoves(fig Figure, mask Bitboard, moves *[]Move) {
	pi := ColorFigure(pos.Us(), fig)
	all := pos.ByColor[White] | pos.ByColor[Black]
	for bb := pos.ByPiece(pos.Us(), fig); bb != 0; {
		from := bb.Pop()
		pos.genBitboardMoves(pi, from, RookMobility(from, all)&mask, moves)
	}
}

func (pos *Position) genKingMovesNear(mask Bitboard, moves *[]Move) {
	pi := ColorFigure(pos.Us(), King)
	from := pos.KingSquare(pos.Us())
	pos.genBitboardMoves(pi, from, bbKingAttack[from]&mask, moves)
}

func (pos *Position) genKingCastles(kind int, moves *[]Move) {
	if kind&Quiet == 0 {
		return
	}

	rank := pos.Us().KingHomeRank()
	oo, ooo := WhiteOO, WhiteOOO
	if pos.Us() == Black {
		oo, ooo = BlackOO, BlackOOO
	}

	// King side.
	if pos.curr.CastlingAbility&oo != 0 {
		r5 := RankFile(rank, 5)
		r6 := RankFile(rank, 6)
		if !pos.IsEmpty(r5) || !pos.IsEmpty(r6) {
			goto EndCastleOO
		}

		r4 := RankFile(rank, 4)
		if pos.GetAttacker(r4, pos.Them()) != NoFigure ||
			pos.GetAttacker(r5, pos.Them()) != NoFigure ||
			pos.GetAttacker(r6, pos.Them()) != NoFigure {
			goto EndCastleOO
		}

		*moves = append(*moves, MakeMove(Castling, r4, r6, NoPiece, ColorFigure(pos.Us(), King)))
	}
EndCastleOO:

	// Queen side.
	if pos.curr.CastlingAbility&ooo != 0 {
		r3 := RankFile(rank, 3)
		r2 := RankFile(rank, 2)
		r1 := RankFile(rank, 1)
		if !pos.IsEmpty(r3) || !pos.IsEmpty(r2) || !pos.IsEmpty(r1) {
			goto EndCastleOOO
		}

		r4 := RankFile(rank, 4)
		if pos.GetAttacker(r4, pos.Them()) != NoFigure ||
			pos.GetAttacker(r3, pos.Them()) != NoFigure ||
			pos.GetAttacker(r2, pos.Them()) != NoFigure {
			goto EndCastleOOO
		}

		*moves = append(*moves, MakeMove(Castling, r4, r2, NoPiece, ColorFigure(pos.Us(), King)))
	}
EndCastleOOO:
}

// GenerateMoves appends to moves all moves valid from pos.
// The generated moves are pseudo-legal, i.e. they can leave the own king
// in check. kind is Quiet or Violent, or both.
func (pos *Position) GenerateMoves(kind int, moves *[]Move) {
	mask := pos.getMask(kind)
	pos.genKingMovesNear(mask, moves)
	pos.genPawnDoubleAdvanceMoves(kind, moves)
	pos.genRookMoves(Rook, mask, moves)
	pos.genBishopMoves(Queen, mask, moves)
	pos.genPawnAttackMoves(kind, moves)
	pos.genPawnAdvanceMoves(kind, moves)
	pos.genPawnPromotions(kind, moves)
	pos.genKnightMoves(mask, moves)
	pos.genBishopMoves(Bishop, mask, moves)
	pos.genKingCastles(kind, moves)
	pos.genRookMoves(Queen, mask, moves)
}
