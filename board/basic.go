// Package board implements the chess board, move generation and the
// game rules needed by the search: bitboard position, legal moves,
// make/unmake, FEN parsing and draw detection.
package board

import (
	"fmt"
	"math/bits"
)

// Figure represents a piece without a color.
type Figure uint

const (
	NoFigure Figure = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King

	FigureArraySize = int(iota)
	FigureMinValue  = Pawn
	FigureMaxValue  = King
)

// Color represents a side.
type Color uint

const (
	NoColor Color = iota
	Black
	White

	ColorArraySize = int(iota)
	ColorMinValue  = Black
	ColorMaxValue  = White
)

// Opposite returns the reversed color of c.
// Result is undefined if c is not White or Black.
func (c Color) Opposite() Color {
	return White + Black - c
}

// KingHomeRank returns c's king rank in the starting position.
func (c Color) KingHomeRank() int {
	return kingHomeRank[c]
}

var kingHomeRank = [ColorArraySize]int{0, 7, 0}

// Square identifies a location on the board. A1 is 0, H8 is 63.
type Square uint8

const (
	SquareA1 Square = iota
	SquareB1
	SquareC1
	SquareD1
	SquareE1
	SquareF1
	SquareG1
	SquareH1
	SquareA2
	SquareB2
	SquareC2
	SquareD2
	SquareE2
	SquareF2
	SquareG2
	SquareH2
	SquareA3
	SquareB3
	SquareC3
	SquareD3
	SquareE3
	SquareF3
	SquareG3
	SquareH3
	SquareA4
	SquareB4
	SquareC4
	SquareD4
	SquareE4
	SquareF4
	SquareG4
	SquareH4
	SquareA5
	SquareB5
	SquareC5
	SquareD5
	SquareE5
	SquareF5
	SquareG5
	SquareH5
	SquareA6
	SquareB6
	SquareC6
	SquareD6
	SquareE6
	SquareF6
	SquareG6
	SquareH6
	SquareA7
	SquareB7
	SquareC7
	SquareD7
	SquareE7
	SquareF7
	SquareG7
	SquareH7
	SquareA8
	SquareB8
	SquareC8
	SquareD8
	SquareE8
	SquareF8
	SquareG8
	SquareH8

	SquareArraySize = int(iota)
	SquareMinValue  = SquareA1
	SquareMaxValue  = SquareH8
)

// RankFile returns the square with rank r and file f, both 0 to 7.
func RankFile(r, f int) Square {
	return Square(r*8 + f)
}

// SquareFromString parses a square in algebraic format, e.g. "e4".
func SquareFromString(s string) (Square, error) {
	if len(s) != 2 {
		return SquareA1, fmt.Errorf("invalid square %s", s)
	}

	f, r := -1, -1
	if 'a' <= s[0] && s[0] <= 'h' {
		f = int(s[0] - 'a')
	}
	if 'A' <= s[0] && s[0] <= 'H' {
		f = int(s[0] - 'A')
	}
	if '1' <= s[1] && s[1] <= '8' {
		r = int(s[1] - '1')
	}
	if f == -1 || r == -1 {
		return SquareA1, fmt.Errorf("invalid square %s", s)
	}
	return RankFile(r, f), nil
}

// Bitboard returns a bitboard with sq set.
func (sq Square) Bitboard() Bitboard {
	return 1 << uint(sq)
}

// Relative returns a square shifted by delta rank and delta file.
func (sq Square) Relative(dr, df int) Square {
	return sq + Square(dr*8+df)
}

// Rank returns sq's rank, 0 to 7.
func (sq Square) Rank() int {
	return int(sq / 8)
}

// File returns sq's file, 0 to 7.
func (sq Square) File() int {
	return int(sq % 8)
}

// POV returns the square from col's point of view: for Black the rank is
// flipped, the file stays the same. Used by square-dependent evaluation.
func (sq Square) POV(col Color) Square {
	return sq ^ povMask[col]
}

var povMask = [ColorArraySize]Square{0x00, 0x38, 0x00}

func (sq Square) String() string {
	return string([]byte{
		uint8(sq.File() + 'a'),
		uint8(sq.Rank() + '1'),
	})
}

// Bitboard is a set of squares of the 8x8 chess board.
type Bitboard uint64

const (
	BbEmpty          Bitboard = 0x0000000000000000
	BbFull           Bitboard = 0xffffffffffffffff
	BbPawnStartRank  Bitboard = 0x00ff00000000ff00
	BbPawnDoubleRank Bitboard = 0x000000ffff000000
	BbBlackSquares   Bitboard = 0xaa55aa55aa55aa55
	BbWhiteSquares   Bitboard = 0x55aa55aa55aa55aa
)

const (
	BbFileA Bitboard = 0x0101010101010101 << iota
	BbFileB
	BbFileC
	BbFileD
	BbFileE
	BbFileF
	BbFileG
	BbFileH
)

const (
	BbRank1 Bitboard = 0x00000000000000ff << (8 * iota)
	BbRank2
	BbRank3
	BbRank4
	BbRank5
	BbRank6
	BbRank7
	BbRank8
)

// RankBb returns a bitboard with all squares on rank set.
func RankBb(rank int) Bitboard {
	return BbRank1 << uint(8*rank)
}

// FileBb returns a bitboard with all squares on file set.
func FileBb(file int) Bitboard {
	return BbFileA << uint(file)
}

// AdjacentFilesBb returns a bitboard with the files adjacent to file set.
func AdjacentFilesBb(file int) Bitboard {
	var bb Bitboard
	if file > 0 {
		bb |= FileBb(file - 1)
	}
	if file < 7 {
		bb |= FileBb(file + 1)
	}
	return bb
}

// North shifts all squares one rank up.
func North(bb Bitboard) Bitboard {
	return bb << 8
}

// South shifts all squares one rank down.
func South(bb Bitboard) Bitboard {
	return bb >> 8
}

// East shifts all squares one file right.
func East(bb Bitboard) Bitboard {
	return bb &^ BbFileH << 1
}

// West shifts all squares one file left.
func West(bb Bitboard) Bitboard {
	return bb &^ BbFileA >> 1
}

// Forward returns bb shifted one rank forward with respect to col.
func Forward(col Color, bb Bitboard) Bitboard {
	if col == White {
		return bb << 8
	}
	if col == Black {
		return bb >> 8
	}
	return bb
}

// Backward returns bb shifted one rank backward with respect to col.
func Backward(col Color, bb Bitboard) Bitboard {
	if col == White {
		return bb >> 8
	}
	if col == Black {
		return bb << 8
	}
	return bb
}

// NorthFill returns bb with all bits set above each set bit.
func NorthFill(bb Bitboard) Bitboard {
	bb |= bb << 8
	bb |= bb << 16
	bb |= bb << 32
	return bb
}

// SouthFill returns bb with all bits set below each set bit.
func SouthFill(bb Bitboard) Bitboard {
	bb |= bb >> 8
	bb |= bb >> 16
	bb |= bb >> 32
	return bb
}

// Fill returns bb with all files with set squares filled.
func Fill(bb Bitboard) Bitboard {
	return NorthFill(bb) | SouthFill(bb)
}

// NorthSpan is like NorthFill shifted one up.
func NorthSpan(bb Bitboard) Bitboard {
	return NorthFill(North(bb))
}

// SouthSpan is like SouthFill shifted one down.
func SouthSpan(bb Bitboard) Bitboard {
	return SouthFill(South(bb))
}

// ForwardSpan computes the forward span with respect to col.
func ForwardSpan(col Color, bb Bitboard) Bitboard {
	if col == White {
		return NorthSpan(bb)
	}
	if col == Black {
		return SouthSpan(bb)
	}
	return bb
}

// BackwardSpan computes the backward span with respect to col.
func BackwardSpan(col Color, bb Bitboard) Bitboard {
	if col == White {
		return SouthSpan(bb)
	}
	if col == Black {
		return NorthSpan(bb)
	}
	return bb
}

// Has returns true if sq is set in bb.
func (bb Bitboard) Has(sq Square) bool {
	return bb>>sq&1 != 0
}

// AsSquare returns the set square assuming bb has exactly one bit set.
func (bb Bitboard) AsSquare() Square {
	return Square(bits.TrailingZeros64(uint64(bb)))
}

// Count counts the number of squares set in bb.
func (bb Bitboard) Count() int32 {
	return int32(bits.OnesCount64(uint64(bb)))
}

// CountMax2 is equivalent to, but faster than, min(bb.Count(), 2).
func (bb Bitboard) CountMax2() int32 {
	if bb == 0 {
		return 0
	}
	if bb&(bb-1) == 0 {
		return 1
	}
	return 2
}

// Pop removes and returns the lowest set square from the bitboard.
func (bb *Bitboard) Pop() Square {
	sq := Square(bits.TrailingZeros64(uint64(*bb)))
	*bb &= *bb - 1
	return sq
}

// Piece is a figure owned by one side.
type Piece uint8

// Piece constants must stay in sync with ColorFigure.
// The order of pieces matches the Polyglot book format.
const (
	NoPiece Piece = iota
	_
	BlackPawn
	WhitePawn
	BlackKnight
	WhiteKnight
	BlackBishop
	WhiteBishop
	BlackRook
	WhiteRook
	BlackQueen
	WhiteQueen
	BlackKing
	WhiteKing

	PieceArraySize = int(iota)
	PieceMinValue  = BlackPawn
	PieceMaxValue  = WhiteKing
)

// ColorFigure returns the piece with color col and figure fig.
func ColorFigure(col Color, fig Figure) Piece {
	return Piece(fig<<1) + Piece(col>>1)
}

// Color returns the piece's color.
func (pi Piece) Color() Color {
	return Color(21844 >> pi & 3)
}

// Figure returns the piece's figure.
func (pi Piece) Figure() Figure {
	return Figure(pi) >> 1
}

var (
	figureToSymbol = map[Figure]string{
		Pawn:   "P",
		Knight: "N",
		Bishop: "B",
		Rook:   "R",
		Queen:  "Q",
		King:   "K",
	}
	pieceToSymbol = ".?pPnNbBrRqQkK"
)

// MoveType defines the move type.
type MoveType uint8

const (
	NoMoveType MoveType = iota // no move or null move
	Normal                     // regular move
	Promotion                  // pawn is promoted. Move.Promotion() gives the new piece
	Castling                   // king castles
	Enpassant                  // pawn captures en passant
)

// NullMove is a move that does nothing. Has value 0.
const NullMove = Move(0)

// Move stores a position dependent move.
//
// Bit representation
//
//	00.00.00.ff - from
//	00.00.ff.00 - to
//	00.0f.00.00 - move type
//	00.f0.00.00 - target
//	0f.00.00.00 - capture
//	f0.00.00.00 - piece
type Move uint32

// MakeMove constructs a move.
func MakeMove(moveType MoveType, from, to Square, capture, target Piece) Move {
	piece := target
	if moveType == Promotion {
		piece = ColorFigure(target.Color(), Pawn)
	}

	return Move(from)<<0 +
		Move(to)<<8 +
		Move(moveType)<<16 +
		Move(target)<<20 +
		Move(capture)<<24 +
		Move(piece)<<28
}

// From returns the starting square.
func (m Move) From() Square {
	return Square(m >> 0 & 0xff)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m >> 8 & 0xff)
}

// MoveType returns the move type.
func (m Move) MoveType() MoveType {
	return MoveType(m >> 16 & 0xf)
}

// Piece returns the piece moved.
func (m Move) Piece() Piece {
	return Piece(m >> 28 & 0xf)
}

// Color returns the color of the piece moved.
func (m Move) Color() Color {
	return m.Piece().Color()
}

// Figure returns the figure of the piece moved.
func (m Move) Figure() Figure {
	return m.Piece().Figure()
}

// CaptureSquare returns the captured piece's square.
// If no piece is captured, the result is the destination square.
func (m Move) CaptureSquare() Square {
	if m.MoveType() != Enpassant {
		return m.To()
	}
	return m.From()&0x38 + m.To()&0x7
}

// Capture returns the captured piece, NoPiece if no capture.
func (m Move) Capture() Piece {
	return Piece(m >> 24 & 0xf)
}

// Target returns the piece on the to square after the move is executed.
func (m Move) Target() Piece {
	return Piece(m >> 20 & 0xf)
}

// Promotion returns the promoted piece if any.
func (m Move) Promotion() Piece {
	if m.MoveType() != Promotion {
		return NoPiece
	}
	return m.Target()
}

// IsViolent returns true if the move is a capture or a promotion.
func (m Move) IsViolent() bool {
	return m.Capture() != NoPiece || m.MoveType() == Promotion
}

// IsQuiet returns true if the move is not violent and not castling.
func (m Move) IsQuiet() bool {
	return m.MoveType() == Normal && m.Capture() == NoPiece
}

// UCI converts the move to UCI format, e.g. "a2a4" or "h7h8q".
func (m Move) UCI() string {
	return m.From().String() + m.To().String() + promoToSymbol[m.Promotion().Figure()]
}

var promoToSymbol = map[Figure]string{
	NoFigure: "",
	Knight:   "n",
	Bishop:   "b",
	Rook:     "r",
	Queen:    "q",
}

// LAN converts the move to long algebraic notation, e.g. "b7-b8Q", "Nb1xc3".
func (m Move) LAN() string {
	r := figureToSymbol[m.Figure()] + m.From().String()
	if m.Capture() != NoPiece {
		r += "x"
	} else {
		r += "-"
	}
	return r + m.To().String() + figureToSymbol[m.Promotion().Figure()]
}

func (m Move) String() string {
	return m.LAN()
}

// Castle represents the castling rights mask.
type Castle uint8

const (
	WhiteOO  Castle = 1 << iota // White can castle king side
	WhiteOOO                    // White can castle queen side
	BlackOO                     // Black can castle king side
	BlackOOO                    // Black can castle queen side

	NoCastle  Castle = 0
	AnyCastle Castle = WhiteOO | WhiteOOO | BlackOO | BlackOOO

	CastleArraySize = int(AnyCastle + 1)
	CastleMinValue  = NoCastle
	CastleMaxValue  = AnyCastle
)

var castleToString = [...]string{
	"-", "K", "Q", "KQ", "k", "Kk", "Qk", "KQk", "q", "Kq", "Qq", "KQq", "kq", "Kkq", "Qkq", "KQkq",
}

func (c Castle) String() string {
	if c > AnyCastle {
		return fmt.Sprintf("Castle(%d)", c)
	}
	return castleToString[c]
}

// CastlingRook returns the rook moved during castling
// together with its start and end squares.
func CastlingRook(kingEnd Square) (Piece, Square, Square) {
	// How rookStart works for king on E1:
	// if kingEnd == C1 == b010, then rookStart == A1 == b000
	// if kingEnd == G1 == b110, then rookStart == H1 == b111
	// So bit 3 will set bit 2 and bit 1.
	//
	// How rookEnd works for king on E1:
	// if kingEnd == C1 == b010, then rookEnd == D1 == b011
	// if kingEnd == G1 == b110, then rookEnd == F1 == b101
	// So bit 3 will invert bit 2. Bit 1 is always set.
	piece := Piece(Rook<<1) + (1 - Piece(kingEnd>>5))
	rookStart := kingEnd&^3 | (kingEnd & 4 >> 1) | (kingEnd & 4 >> 2)
	rookEnd := kingEnd ^ (kingEnd & 4 >> 1) | 1
	return piece, rookStart, rookEnd
}
