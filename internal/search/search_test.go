package search

import (
	"strings"
	"testing"

	"github.com/cricklet/chessmate/internal/eval"
	. "github.com/cricklet/chessmate/internal/helpers"
	"github.com/cricklet/chessmate/internal/rules"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

// fakeBoard is a hand-built game tree keyed by the move path, so tests
// can pin down exactly what the search does without a rules engine in
// the way. It doubles as its own evaluator: Evaluate returns the
// current node's score, which is always from the side to move there.
type fakeBoard struct {
	nodes map[string]fakeNode
	path  []string
	made  []string
}

type fakeNode struct {
	moves    []string
	captures []string
	eval     int
	terminal rules.Termination
}

type fakeMove string

func (m fakeMove) String() string { return string(m) }

func (b *fakeBoard) node() fakeNode {
	return b.nodes[strings.Join(b.path, " ")]
}

func (b *fakeBoard) LegalMoves() []rules.Move {
	return MapSlice(b.node().moves, func(s string) rules.Move {
		return fakeMove(s)
	})
}

func (b *fakeBoard) Make(m rules.Move) Error {
	b.path = append(b.path, m.String())
	b.made = append(b.made, m.String())
	return NilError
}

func (b *fakeBoard) Unmake() Error {
	if len(b.path) == 0 {
		return Errorf("unmake without a matching make")
	}
	b.path = b.path[:len(b.path)-1]
	return NilError
}

func (b *fakeBoard) Termination() rules.Termination {
	return b.node().terminal
}

func (b *fakeBoard) IsCapture(m rules.Move) bool {
	return Contains(b.node().captures, m.String())
}

func (b *fakeBoard) Evaluate() int {
	return b.node().eval
}

var _ rules.Position = (*fakeBoard)(nil)
var _ Evaluator = (*fakeBoard)(nil)

func evaluatorFor(board *rules.Board) Evaluator {
	return eval.NewEvaluator(board)
}

func TestPicksMoveWithBestWorstCase(t *testing.T) {
	// "a" leads to a big gain if the opponent blunders, but the
	// opponent won't: its worst case is -100. "b" guarantees +20.
	board := &fakeBoard{nodes: map[string]fakeNode{
		"":     {moves: []string{"a", "b"}},
		"a":    {moves: []string{"a1", "a2"}},
		"a a1": {eval: 500},
		"a a2": {eval: -100},
		"b":    {moves: []string{"b1", "b2"}},
		"b b1": {eval: 50},
		"b b2": {eval: 20},
	}}

	result, err := NewSearcher(board, board, WithMaxDepth{2}).FindBestMove()
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "b", result.BestMove.Value().String())
	assert.Equal(t, 20, result.Score)
}

func TestEqualScoresKeepFirstMove(t *testing.T) {
	// Leaf scores are for the opponent, so both root moves score +30.
	board := &fakeBoard{nodes: map[string]fakeNode{
		"":  {moves: []string{"x", "y"}},
		"x": {eval: -30},
		"y": {eval: -30},
	}}

	result, err := NewSearcher(board, board, WithMaxDepth{1}).FindBestMove()
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "x", result.BestMove.Value().String())
	assert.Equal(t, 30, result.Score)
}

func TestCapturesSearchedFirst(t *testing.T) {
	board := &fakeBoard{nodes: map[string]fakeNode{
		"":   {moves: []string{"q1", "c", "q2"}, captures: []string{"c"}},
		"q1": {eval: 0},
		"c":  {eval: 0},
		"q2": {eval: 0},
	}}

	_, err := NewSearcher(board, board, WithMaxDepth{1}).FindBestMove()
	assert.True(t, IsNil(err), err)
	assert.Equal(t, []string{"c", "q1", "q2"}, board.made)
}

func TestPrefersShorterMate(t *testing.T) {
	board := &fakeBoard{nodes: map[string]fakeNode{
		"":            {moves: []string{"slow", "fast"}},
		"slow":        {moves: []string{"only"}},
		"slow only":   {moves: []string{"z"}},
		"slow only z": {terminal: rules.Checkmate},
		"fast":        {terminal: rules.Checkmate},
	}}

	result, err := NewSearcher(board, board, WithMaxDepth{4}).FindBestMove()
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "fast", result.BestMove.Value().String())

	plies, isMate := MateIn(result.Score)
	assert.True(t, isMate)
	assert.Equal(t, 1, plies)
}

func TestStalemateScoresZero(t *testing.T) {
	board := &fakeBoard{nodes: map[string]fakeNode{
		"":     {moves: []string{"up", "flat"}},
		"up":   {eval: 80}, // the opponent is better here
		"flat": {terminal: rules.Stalemate},
	}}

	result, err := NewSearcher(board, board, WithMaxDepth{1}).FindBestMove()
	assert.True(t, IsNil(err), err)
	assert.Equal(t, "flat", result.BestMove.Value().String())
	assert.Equal(t, 0, result.Score)
}

// randomTree builds a full tree with pseudo-random leaf scores and a
// few scattered captures, deep enough for the cutoff to matter.
func randomTree(rng *rand.Rand, depth int, branching int) map[string]fakeNode {
	nodes := map[string]fakeNode{}

	var build func(path string, depthLeft int)
	build = func(path string, depthLeft int) {
		if depthLeft == 0 {
			nodes[path] = fakeNode{eval: rng.Intn(2000) - 1000}
			return
		}
		node := fakeNode{}
		for i := 0; i < branching; i++ {
			move := string(rune('a' + i))
			node.moves = append(node.moves, move)
			if rng.Intn(3) == 0 {
				node.captures = append(node.captures, move)
			}
			child := move
			if path != "" {
				child = path + " " + move
			}
			build(child, depthLeft-1)
		}
		nodes[path] = node
	}
	build("", depth)
	return nodes
}

func TestPruningIsSound(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 20; trial++ {
		nodes := randomTree(rng, 4, 4)

		pruned := &fakeBoard{nodes: nodes}
		exhaustive := &fakeBoard{nodes: nodes}

		prunedResult, err := NewSearcher(pruned, pruned, WithMaxDepth{4}).FindBestMove()
		assert.True(t, IsNil(err), err)
		exhaustiveResult, err := NewSearcher(exhaustive, exhaustive,
			WithMaxDepth{4}, WithoutPruning{}).FindBestMove()
		assert.True(t, IsNil(err), err)

		assert.Equal(t, exhaustiveResult.Score, prunedResult.Score, spew.Sdump(nodes))
		assert.Equal(t,
			exhaustiveResult.BestMove.Value().String(),
			prunedResult.BestMove.Value().String())
		assert.LessOrEqual(t, len(pruned.made), len(exhaustive.made))
	}
}

func TestOpeningMoveIsLegal(t *testing.T) {
	board := rules.NewBoardFromStart(rules.WithUndoCheck())

	result, err := NewSearcher(board, evaluatorFor(board), WithMaxDepth{2}).FindBestMove()
	assert.True(t, IsNil(err), err)
	assert.True(t, result.BestMove.HasValue())
	assert.True(t, board.MoveFromString(result.BestMove.Value().String()).HasValue())

	// Whatever white tries, black can mirror it two plies deep.
	assert.Equal(t, 0, result.Score)
}

func TestFindsBackRankMate(t *testing.T) {
	board, err := rules.NewBoard("6k1/5ppp/8/8/8/8/8/R6K w - - 0 1")
	assert.True(t, IsNil(err), err)

	for _, depth := range []int{1, 3} {
		result, searchErr := NewSearcher(board, evaluatorFor(board), WithMaxDepth{depth}).FindBestMove()
		assert.True(t, IsNil(searchErr), searchErr)
		assert.Equal(t, "a1a8", result.BestMove.Value().String())

		plies, isMate := MateIn(result.Score)
		assert.True(t, isMate)
		assert.Equal(t, 1, plies)
	}
}

func TestSearchLeavesPositionUntouched(t *testing.T) {
	board, err := rules.NewBoard(
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
		rules.WithUndoCheck())
	assert.True(t, IsNil(err), err)

	fen := board.Fen()
	hash := board.Hash()

	_, searchErr := NewSearcher(board, evaluatorFor(board), WithMaxDepth{3}).FindBestMove()
	assert.True(t, IsNil(searchErr), searchErr)
	assert.Equal(t, fen, board.Fen())
	assert.Equal(t, hash, board.Hash())
	assert.Equal(t, 0, board.MoveHistoryLen())
}

func TestDeterministic(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"

	results := [2]Result{}
	for i := range results {
		board, err := rules.NewBoard(fen)
		assert.True(t, IsNil(err), err)

		results[i], err = NewSearcher(board, evaluatorFor(board), WithMaxDepth{3}).FindBestMove()
		assert.True(t, IsNil(err), err)
	}

	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t,
		results[0].BestMove.Value().String(),
		results[1].BestMove.Value().String())
}

func TestSearchOnCheckmate(t *testing.T) {
	board, err := rules.NewBoard("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	assert.True(t, IsNil(err), err)

	result, searchErr := NewSearcher(board, evaluatorFor(board)).FindBestMove()
	assert.True(t, searchErr.HasRoot(ErrNoLegalMoves))
	assert.True(t, result.BestMove.IsEmpty())
	assert.Equal(t, -Mate, result.Score)
}

func TestSearchOnStalemate(t *testing.T) {
	board, err := rules.NewBoard("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	assert.True(t, IsNil(err), err)

	result, searchErr := NewSearcher(board, evaluatorFor(board)).FindBestMove()
	assert.True(t, searchErr.HasRoot(ErrNoLegalMoves))
	assert.True(t, result.BestMove.IsEmpty())
	assert.Equal(t, 0, result.Score)
}

func TestInvalidDepth(t *testing.T) {
	board := rules.NewBoardFromStart()
	_, err := NewSearcher(board, evaluatorFor(board), WithMaxDepth{0}).FindBestMove()
	assert.False(t, IsNil(err))
}

func TestMateIn(t *testing.T) {
	plies, isMate := MateIn(Mate - 3)
	assert.True(t, isMate)
	assert.Equal(t, 3, plies)

	plies, isMate = MateIn(-(Mate - 5))
	assert.True(t, isMate)
	assert.Equal(t, 5, plies)

	_, isMate = MateIn(250)
	assert.False(t, isMate)
}

func BenchmarkMiddlegameSearch(b *testing.B) {
	board, err := rules.NewBoard("r1bq1rk1/pp2ppbp/2np1np1/8/2BNP3/2N1BP2/PPPQ2PP/R3K2R w KQ - 3 9")
	if !IsNil(err) {
		b.Fatal(err)
	}

	for i := 0; i < b.N; i++ {
		_, searchErr := NewSearcher(board, evaluatorFor(board), WithMaxDepth{3}).FindBestMove()
		if !IsNil(searchErr) {
			b.Fatal(searchErr)
		}
	}
}
