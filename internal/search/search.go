package search

import (
	"errors"
	"fmt"

	. "github.com/cricklet/chessmate/internal/helpers"
	"github.com/cricklet/chessmate/internal/rules"
)

/*
negamax with alpha-beta pruning

Scores are always from the perspective of the side to move, so each
recursive call negates the child's score and flips the (alpha, beta)
window instead of switching between a maximizing and a minimizing code
path.

alpha is the best score the side to move can already force elsewhere;
beta is the best the opponent can force. Once alpha >= beta the
opponent will never allow this line, so the remaining siblings are
skipped. The cutoff only ever skips work -- the score that comes back
is the same one an exhaustive search would return, which is what
TestPruningIsSound pins down.
*/

const Inf = 1 << 30

// Mate is the magnitude of a checkmate score. A mate found at ply p
// scores -(Mate - p) for the side being mated, so shorter mates always
// outrank longer ones and any mate outranks any material score.
const Mate = 1000000

// ErrNoLegalMoves means the search was invoked on a terminal position.
// That is a contract violation by the caller, which should have checked
// Termination first; it is never retried.
var ErrNoLegalMoves = errors.New("search called on a position with no legal moves")

type Evaluator interface {
	Evaluate() int
}

// Result of one top-level search. Built fresh per call; the searcher
// keeps no state between calls.
type Result struct {
	BestMove Optional[rules.Move]
	Score    int
	Depth    int
}

type Searcher struct {
	position  rules.Position
	evaluator Evaluator
	logger    Logger
	maxDepth  int
	noPruning bool
}

type SearchOption interface {
	apply(s *Searcher)
}

type WithMaxDepth struct {
	MaxDepth int
}

func (o WithMaxDepth) apply(s *Searcher) {
	s.maxDepth = o.MaxDepth
}

type WithLogger struct {
	Logger Logger
}

func (o WithLogger) apply(s *Searcher) {
	s.logger = o.Logger
}

// WithoutPruning searches every line exhaustively. Much slower, same
// scores; it exists so tests can check that pruning is sound.
type WithoutPruning struct {
}

func (o WithoutPruning) apply(s *Searcher) {
	s.noPruning = true
}

func NewSearcher(position rules.Position, evaluator Evaluator, opts ...SearchOption) *Searcher {
	s := &Searcher{
		position:  position,
		evaluator: evaluator,
		logger:    &SilentLogger,
		maxDepth:  3,
	}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// FindBestMove searches maxDepth plies deep and returns the best move
// with its score. The searcher borrows the position for the duration of
// the call: every make is unwound before returning, so the position
// comes back in exactly the state it went in.
func (s *Searcher) FindBestMove() (Result, Error) {
	if s.maxDepth < 1 {
		return Result{}, Errorf("max depth %v must be >= 1", s.maxDepth)
	}

	moves := s.orderedMoves()
	if len(moves) == 0 {
		score := 0
		if s.position.Termination() == rules.Checkmate {
			score = -Mate
		}
		return Result{Empty[rules.Move](), score, 0}, Wrap(ErrNoLegalMoves)
	}

	alpha, beta := -Inf, Inf
	bestScore := -Inf
	bestMove := Empty[rules.Move]()

	for _, move := range moves {
		score, err := s.scoreMove(move, alpha, beta, s.maxDepth-1, 1)
		if !IsNil(err) {
			return Result{}, err
		}

		s.logger.Println(move.String(), score)

		// Strictly >, so equal scores keep the move encountered first.
		if score > bestScore {
			bestScore = score
			bestMove = Some(move)
		}
		if !s.noPruning && bestScore > alpha {
			alpha = bestScore
		}
	}

	return Result{bestMove, bestScore, s.maxDepth}, NilError
}

func (s *Searcher) scoreMove(move rules.Move, alpha int, beta int, depthLeft int, ply int) (int, Error) {
	if err := s.position.Make(move); !IsNil(err) {
		return 0, err
	}

	score, searchErr := s.negamax(depthLeft, ply, -beta, -alpha)
	undoErr := s.position.Unmake()

	if !IsNil(searchErr) {
		return 0, searchErr
	}
	if !IsNil(undoErr) {
		return 0, undoErr
	}
	return -score, NilError
}

func (s *Searcher) negamax(depthLeft int, ply int, alpha int, beta int) (int, Error) {
	switch s.position.Termination() {
	case rules.Checkmate:
		return -(Mate - ply), NilError
	case rules.Stalemate, rules.Draw:
		return 0, NilError
	}

	if depthLeft == 0 {
		return s.evaluator.Evaluate(), NilError
	}

	best := -Inf
	for _, move := range s.orderedMoves() {
		score, err := s.scoreMove(move, alpha, beta, depthLeft-1, ply+1)
		if !IsNil(err) {
			return 0, err
		}

		if score > best {
			best = score
		}
		if !s.noPruning {
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break // beta cutoff
			}
		}
	}
	return best, NilError
}

// orderedMoves puts captures before quiet moves, keeping the rules
// engine's order within each group. Cheap and static: no exchange
// evaluation, just "does this land on an occupied square".
func (s *Searcher) orderedMoves() []rules.Move {
	moves := s.position.LegalMoves()
	ordered := FilterSlice(moves, s.position.IsCapture)
	return append(ordered, FilterSlice(moves, func(m rules.Move) bool {
		return !s.position.IsCapture(m)
	})...)
}

// MateIn converts a mate score to its distance in plies, for logs and
// tests; the bool is false for non-mate scores.
func MateIn(score int) (int, bool) {
	if score > Mate-1000 {
		return Mate - score, true
	}
	if score < -(Mate - 1000) {
		return Mate + score, true
	}
	return 0, false
}

func (r Result) String() string {
	moveString := "(none)"
	if r.BestMove.HasValue() {
		moveString = r.BestMove.Value().String()
	}
	if plies, isMate := MateIn(r.Score); isMate {
		return fmt.Sprintf("%v (mate in %v)", moveString, plies)
	}
	return fmt.Sprintf("%v (%v)", moveString, r.Score)
}
