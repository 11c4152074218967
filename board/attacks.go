package board

import "math/bits"

// Precomputed attack tables. Sliding piece attacks are resolved with
// blocker scans along precomputed rays rather than magic bitboards.
var (
	bbPawnAttack   [ColorArraySize][SquareArraySize]Bitboard
	bbKnightAttack [SquareArraySize]Bitboard
	bbKingAttack   [SquareArraySize]Bitboard
	// bbSuperAttack contains queen's attacks on an empty board.
	bbSuperAttack [SquareArraySize]Bitboard

	// rookRays[sq] holds the N, S, E, W rays from sq, excluding sq.
	rookRays [SquareArraySize][4]Bitboard
	// bishopRays[sq] holds the NE, NW, SE, SW rays from sq, excluding sq.
	bishopRays [SquareArraySize][4]Bitboard
)

func init() {
	initJumpAttacks()
	initRays()
	for sq := SquareMinValue; sq <= SquareMaxValue; sq++ {
		bbSuperAttack[sq] = RookMobility(sq, BbEmpty) | BishopMobility(sq, BbEmpty)
	}
}

func initJumpAttacks() {
	knightOffsets := [8][2]int{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	kingOffsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}

	jump := func(sq Square, offsets [8][2]int) Bitboard {
		var bb Bitboard
		for _, off := range offsets {
			r := sq.Rank() + off[0]
			f := sq.File() + off[1]
			if r >= 0 && r < 8 && f >= 0 && f < 8 {
				bb |= RankFile(r, f).Bitboard()
			}
		}
		return bb
	}

	for sq := SquareMinValue; sq <= SquareMaxValue; sq++ {
		bbKnightAttack[sq] = jump(sq, knightOffsets)
		bbKingAttack[sq] = jump(sq, kingOffsets)

		bb := sq.Bitboard()
		bbPawnAttack[White][sq] = East(North(bb)) | West(North(bb))
		bbPawnAttack[Black][sq] = East(South(bb)) | West(South(bb))
	}
}

func initRays() {
	for sq := SquareMinValue; sq <= SquareMaxValue; sq++ {
		rank, file := sq.Rank(), sq.File()

		ray := func(dr, df int) Bitboard {
			var bb Bitboard
			for r, f := rank+dr, file+df; r >= 0 && r < 8 && f >= 0 && f < 8; r, f = r+dr, f+df {
				bb |= RankFile(r, f).Bitboard()
			}
			return bb
		}

		rookRays[sq][0] = ray(+1, 0) // N
		rookRays[sq][1] = ray(-1, 0) // S
		rookRays[sq][2] = ray(0, +1) // E
		rookRays[sq][3] = ray(0, -1) // W

		bishopRays[sq][0] = ray(+1, +1) // NE
		bishopRays[sq][1] = ray(+1, -1) // NW
		bishopRays[sq][2] = ray(-1, +1) // SE
		bishopRays[sq][3] = ray(-1, -1) // SW
	}
}

// slidingAttacks scans the four rays of table from sq and truncates each
// at the first blocker in occ. Directions 0 and 1 must be the increasing
// square-index directions, 2 and 3 the decreasing ones for rook rays;
// bishop rays use 0, 1 increasing and 2, 3 decreasing.
func slidingAttacks(table *[SquareArraySize][4]Bitboard, sq Square, occ Bitboard) Bitboard {
	var attacks Bitboard
	for dir := 0; dir < 4; dir++ {
		ray := table[sq][dir]
		if blockers := ray & occ; blockers != 0 {
			var first Square
			if increasing(table, dir) {
				first = Square(bits.TrailingZeros64(uint64(blockers)))
			} else {
				first = Square(63 - bits.LeadingZeros64(uint64(blockers)))
			}
			ray &^= table[first][dir]
		}
		attacks |= ray
	}
	return attacks
}

func increasing(table *[SquareArraySize][4]Bitboard, dir int) bool {
	if table == &rookRays {
		return dir == 0 || dir == 2 // N, E
	}
	return dir == 0 || dir == 1 // NE, NW
}

// RookMobility returns the squares a rook on sq can move to given occupancy occ.
func RookMobility(sq Square, occ Bitboard) Bitboard {
	return slidingAttacks(&rookRays, sq, occ)
}

// BishopMobility returns the squares a bishop on sq can move to given occupancy occ.
func BishopMobility(sq Square, occ Bitboard) Bitboard {
	return slidingAttacks(&bishopRays, sq, occ)
}

// QueenMobility returns the squares a queen on sq can move to given occupancy occ.
func QueenMobility(sq Square, occ Bitboard) Bitboard {
	return RookMobility(sq, occ) | BishopMobility(sq, occ)
}

// KnightMobility returns the squares a knight on sq attacks.
func KnightMobility(sq Square) Bitboard {
	return bbKnightAttack[sq]
}

// KingMobility returns the squares a king on sq attacks.
func KingMobility(sq Square) Bitboard {
	return bbKingAttack[sq]
}

// PawnAttacks returns the squares a col pawn on sq attacks.
func PawnAttacks(col Color, sq Square) Bitboard {
	return bbPawnAttack[col][sq]
}

// PawnThreats returns the squares attacked by side's pawns.
func PawnThreats(pos *Position, side Color) Bitboard {
	pawns := Forward(side, pos.ByPiece(side, Pawn))
	return East(pawns) | West(pawns)
}
