package eval

import (
	"math/bits"

	"github.com/cricklet/chessmate/internal/rules"
	dragon "github.com/dylhunn/dragontoothmg"
)

// Scores are centipawns from the perspective of the side to move, so
// the search can propagate them with plain negation.

const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	// The king carries no material value; losing it is checkmate, not
	// a material swing.
)

// Evaluator scores the board it was constructed with. It holds the
// board handle the same way the searcher does: the caller guarantees
// nobody else mutates it mid-search.
type Evaluator struct {
	board *rules.Board
}

func NewEvaluator(board *rules.Board) *Evaluator {
	return &Evaluator{board: board}
}

func (e *Evaluator) Evaluate() int {
	white, black := e.board.Bitboards()

	score := sideScore(white, false) - sideScore(black, true)
	if !e.board.WhiteToMove() {
		score = -score
	}
	return score
}

func sideScore(pieces dragon.Bitboards, mirrored bool) int {
	score := 0
	score += piecesScore(pieces.Pawns, PawnValue, &pawnSquares, mirrored)
	score += piecesScore(pieces.Knights, KnightValue, &knightSquares, mirrored)
	score += piecesScore(pieces.Bishops, BishopValue, &bishopSquares, mirrored)
	score += piecesScore(pieces.Rooks, RookValue, &rookSquares, mirrored)
	score += piecesScore(pieces.Queens, QueenValue, &queenSquares, mirrored)
	score += piecesScore(pieces.Kings, 0, &kingSquares, mirrored)
	return score
}

func piecesScore(bb uint64, value int, squares *[64]int, mirrored bool) int {
	score := 0
	for bb != 0 {
		square := bits.TrailingZeros64(bb)
		bb &= bb - 1
		if mirrored {
			square ^= 56 // flip rank
		}
		score += value + squares[square]
	}
	return score
}
