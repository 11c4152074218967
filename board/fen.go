package board

import (
	"fmt"
	"strconv"
)

type castleInfo struct {
	Castle Castle
	Piece  [2]Piece
	Square [2]Square
}

var (
	itoa          = "0123456789"
	colorToSymbol = "?bw"

	symbolToCastleInfo = map[rune]castleInfo{
		'K': {
			Castle: WhiteOO,
			Piece:  [2]Piece{WhiteKing, WhiteRook},
			Square: [2]Square{SquareE1, SquareH1},
		},
		'k': {
			Castle: BlackOO,
			Piece:  [2]Piece{BlackKing, BlackRook},
			Square: [2]Square{SquareE8, SquareH8},
		},
		'Q': {
			Castle: WhiteOOO,
			Piece:  [2]Piece{WhiteKing, WhiteRook},
			Square: [2]Square{SquareE1, SquareA1},
		},
		'q': {
			Castle: BlackOOO,
			Piece:  [2]Piece{BlackKing, BlackRook},
			Square: [2]Square{SquareE8, SquareA8},
		},
	}
	symbolToColor = map[string]Color{
		"w": White,
		"b": Black,
	}
	symbolToPiece = map[rune]Piece{
		'p': BlackPawn,
		'n': BlackKnight,
		'b': BlackBishop,
		'r': BlackRook,
		'q': BlackQueen,
		'k': BlackKing,

		'P': WhitePawn,
		'N': WhiteKnight,
		'B': WhiteBishop,
		'R': WhiteRook,
		'Q': WhiteQueen,
		'K': WhiteKing,
	}
	symbolToFigure = map[rune]Figure{
		'p': Pawn, 'n': Knight, 'b': Bishop, 'r': Rook, 'q': Queen, 'k': King,
		'P': Pawn, 'N': Knight, 'B': Bishop, 'R': Rook, 'Q': Queen, 'K': King,
	}
)

// PositionFromFEN parses a position in Forsyth-Edwards Notation.
// All six fields are required.
func PositionFromFEN(fen string) (*Position, error) {
	// Split fen into 6 fields. Same as strings.Fields but
	// creates less garbage.
	f, p := [6]string{}, 0
	for i := 0; i < len(fen); {
		for ; i < len(fen) && fen[i] == ' '; i++ {
		}
		start := i
		for ; i < len(fen) && fen[i] != ' '; i++ {
		}
		if start == i {
			continue
		}
		if p >= len(f) {
			return nil, fmt.Errorf("fen has too many fields")
		}
		f[p] = fen[start:i]
		p++
	}
	if p < len(f) {
		return nil, fmt.Errorf("fen has too few fields")
	}

	pos := NewPosition()
	if err := ParsePiecePlacement(f[0], pos); err != nil {
		return nil, err
	}
	if err := ParseSideToMove(f[1], pos); err != nil {
		return nil, err
	}
	if err := ParseCastlingAbility(f[2], pos); err != nil {
		return nil, err
	}
	if err := ParseEnpassantSquare(f[3], pos); err != nil {
		return nil, err
	}
	var err error
	if pos.curr.HalfmoveClock, err = strconv.Atoi(f[4]); err != nil {
		return nil, err
	}
	if pos.fullmoveCounter, err = strconv.Atoi(f[5]); err != nil {
		return nil, err
	}
	pos.Ply = (pos.fullmoveCounter - 1) * 2
	if pos.Us() == Black {
		pos.Ply++
	}
	return pos, nil
}

// ParsePiecePlacement parses the FEN piece placement field into pos.
func ParsePiecePlacement(str string, pos *Position) error {
	r, f := 0, 0
	for _, p := range str {
		if p == '/' {
			if r == 7 {
				return fmt.Errorf("expected 8 ranks")
			}
			if f != 8 {
				return fmt.Errorf("expected 8 squares per rank, got %d", f)
			}
			r, f = r+1, 0
			continue
		}

		if '1' <= p && p <= '8' {
			f += int(p) - int('0')
			continue
		}
		pi := symbolToPiece[p]
		if pi == NoPiece {
			return fmt.Errorf("expected rank or number, got %s", string(p))
		}
		if f >= 8 {
			return fmt.Errorf("rank %d too long (%d cells)", 8-r, f)
		}

		// 7-r because FEN describes the board from the 8th rank.
		pos.Put(RankFile(7-r, f), pi)
		f++
	}

	if f < 8 {
		return fmt.Errorf("rank %d too short (%d cells)", r+1, f)
	}
	return nil
}

// ParseSideToMove sets the side to move for pos from str.
func ParseSideToMove(str string, pos *Position) error {
	if col, ok := symbolToColor[str]; ok {
		pos.SetSideToMove(col)
		return nil
	}
	return fmt.Errorf("invalid color %s", str)
}

// ParseCastlingAbility sets the castling ability for pos from str.
func ParseCastlingAbility(str string, pos *Position) error {
	if str == "-" {
		pos.SetCastlingAbility(NoCastle)
		return nil
	}

	ability := NoCastle
	for _, p := range str {
		info, ok := symbolToCastleInfo[p]
		if !ok {
			return fmt.Errorf("invalid castling ability %s", str)
		}
		ability |= info.Castle
		for i := 0; i < 2; i++ {
			if info.Piece[i] != pos.Get(info.Square[i]) {
				return fmt.Errorf("expected %v at %v, got %v",
					info.Piece[i], info.Square[i], pos.Get(info.Square[i]))
			}
		}
	}
	pos.SetCastlingAbility(ability)
	return nil
}

// ParseEnpassantSquare parses the en passant square from str.
func ParseEnpassantSquare(str string, pos *Position) error {
	if str[:1] == "-" {
		pos.SetEnpassantSquare(SquareA1)
		return nil
	}
	sq, err := SquareFromString(str)
	if err != nil {
		return err
	}
	pos.SetEnpassantSquare(sq)
	return nil
}

// String returns the position in FEN format.
func (pos *Position) String() string {
	s := FormatPiecePlacement(pos)
	s += " " + FormatSideToMove(pos)
	s += " " + FormatCastlingAbility(pos)
	s += " " + FormatEnpassantSquare(pos)
	s += " " + strconv.Itoa(pos.curr.HalfmoveClock)
	s += " " + strconv.Itoa(pos.fullmoveCounter)
	return s
}

// FormatPiecePlacement converts a position to the FEN piece placement field.
func FormatPiecePlacement(pos *Position) string {
	s := ""
	for r := 7; r >= 0; r-- {
		space := 0
		for f := 0; f < 8; f++ {
			pi := pos.Get(RankFile(r, f))
			if pi == NoPiece {
				space++
			} else {
				if space != 0 {
					s += itoa[space:][:1]
					space = 0
				}
				s += pieceToSymbol[pi:][:1]
			}
		}

		if space != 0 {
			s += itoa[space:][:1]
		}
		if r != 0 {
			s += "/"
		}
	}
	return s
}

// FormatEnpassantSquare converts the position's en passant square to string.
func FormatEnpassantSquare(pos *Position) string {
	if pos.EnpassantSquare() != SquareA1 {
		return pos.EnpassantSquare().String()
	}
	return "-"
}

// FormatSideToMove returns "w" for White to play, "b" for Black.
func FormatSideToMove(pos *Position) string {
	return colorToSymbol[pos.Us():][:1]
}

// FormatCastlingAbility returns the castling ability in FEN format.
func FormatCastlingAbility(pos *Position) string {
	return pos.CastlingAbility().String()
}
