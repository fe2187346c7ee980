package selector

import (
	"github.com/cricklet/chessmate/internal/eval"
	. "github.com/cricklet/chessmate/internal/helpers"
	"github.com/cricklet/chessmate/internal/rules"
	"github.com/cricklet/chessmate/internal/search"
	"golang.org/x/exp/rand"
)

// Selector proposes a move for the current position. The alpha-beta
// searcher and the LLM chooser both satisfy this; which one plays is
// picked by configuration, never baked in.
type Selector interface {
	// An empty move means the selector could not come up with a legal
	// move for a non-terminal position; callers may fall back to
	// Random.
	ChooseMove(board *rules.Board) (Optional[rules.Move], Error)
}

type SearchingSelector struct {
	depth  int
	logger Logger
}

type SearchingSelectorOption func(*SearchingSelector)

func WithDepth(depth int) SearchingSelectorOption {
	return func(s *SearchingSelector) {
		s.depth = depth
	}
}

func WithSearchLogger(logger Logger) SearchingSelectorOption {
	return func(s *SearchingSelector) {
		s.logger = logger
	}
}

func NewSearchingSelector(options ...SearchingSelectorOption) *SearchingSelector {
	s := &SearchingSelector{depth: 3}
	for _, o := range options {
		o(s)
	}
	if s.logger == nil {
		s.logger = &SilentLogger
	}
	return s
}

var _ Selector = (*SearchingSelector)(nil)

func (s *SearchingSelector) ChooseMove(board *rules.Board) (Optional[rules.Move], Error) {
	if board.Termination() != rules.NotTerminal {
		return Empty[rules.Move](), NilError
	}

	searcher := search.NewSearcher(board, eval.NewEvaluator(board),
		search.WithMaxDepth{MaxDepth: s.depth},
		search.WithLogger{Logger: s.logger})

	result, err := searcher.FindBestMove()
	if !IsNil(err) {
		return Empty[rules.Move](), err
	}

	s.logger.Println("search:", result.String())
	return result.BestMove, NilError
}

// RandomSelector plays a uniformly random legal move. It is the
// fallback when another selector comes back empty-handed.
type RandomSelector struct {
	Rand *rand.Rand
}

var _ Selector = (*RandomSelector)(nil)

func (s *RandomSelector) ChooseMove(board *rules.Board) (Optional[rules.Move], Error) {
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return Empty[rules.Move](), NilError
	}
	if s.Rand == nil {
		return Some(moves[0]), NilError
	}
	return Some(moves[s.Rand.Intn(len(moves))]), NilError
}
