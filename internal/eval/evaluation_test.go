package eval

import (
	"testing"

	. "github.com/cricklet/chessmate/internal/helpers"
	"github.com/cricklet/chessmate/internal/rules"
	"github.com/stretchr/testify/assert"
)

func evaluate(t *testing.T, fen string) int {
	board, err := rules.NewBoard(fen)
	assert.True(t, IsNil(err), err)
	return NewEvaluator(board).Evaluate()
}

func TestStartPositionIsBalanced(t *testing.T) {
	assert.Equal(t, 0, NewEvaluator(rules.NewBoardFromStart()).Evaluate())
}

func TestSwitchingSidesNegatesScore(t *testing.T) {
	// Same placement, opposite side to move.
	white := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR w kq - 0 1"
	black := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b kq - 0 1"
	assert.Equal(t, evaluate(t, white), -evaluate(t, black))
}

func TestMaterialDominatesSquares(t *testing.T) {
	queenUp := evaluate(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	assert.Greater(t, queenUp, QueenValue-100)
	assert.Less(t, queenUp, QueenValue+100)

	rookDown := evaluate(t, "4k2r/8/8/8/8/8/8/4K3 w k - 0 1")
	assert.Greater(t, -rookDown, RookValue-100)
	assert.Less(t, -rookDown, RookValue+100)
}

func TestKnightPrefersTheCenter(t *testing.T) {
	rim := evaluate(t, "4k3/8/8/8/8/8/8/N3K3 w - - 0 1")
	center := evaluate(t, "4k3/8/8/3N4/8/8/8/4K3 w - - 0 1")
	assert.Greater(t, center, rim)
}

func TestAdvancedPawnScoresHigher(t *testing.T) {
	home := evaluate(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	advanced := evaluate(t, "4k3/8/4P3/8/8/8/8/4K3 w - - 0 1")
	assert.Greater(t, advanced, home)
}

func TestMirroredPositionScoresTheSame(t *testing.T) {
	// Colors swapped and ranks flipped: the side to move is in the
	// same spot either way, so the scores must match.
	original := "4k3/8/8/3q4/8/5N2/8/4K3 w - - 0 1"
	mirrored := "4k3/8/5n2/8/3Q4/8/8/4K3 b - - 0 1"
	assert.Equal(t, evaluate(t, original), evaluate(t, mirrored))
}
