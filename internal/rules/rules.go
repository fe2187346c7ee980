package rules

import (
	. "github.com/cricklet/chessmate/internal/helpers"
)

// The search only ever talks to the rules engine through this file's
// interfaces. Any library that can enumerate legal moves, apply and
// undo them in LIFO order, and classify terminal states is
// substitutable here -- the tests exercise the search against a
// hand-rolled fake as well as the real board.

// Move identifies a legal transition supplied by the rules engine. The
// search never constructs moves itself; it only selects among the moves
// a Position hands out. Two moves are the same move iff they are ==.
type Move interface {
	String() string
}

type Termination int

const (
	NotTerminal Termination = iota
	Checkmate
	Stalemate
	Draw
)

func (t Termination) String() string {
	switch t {
	case NotTerminal:
		return "none"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case Draw:
		return "draw"
	}
	return "unknown"
}

type Position interface {
	// LegalMoves is stable: repeated calls on the same state return the
	// same moves in the same order.
	LegalMoves() []Move

	// Make and Unmake are a strict LIFO pair. Every Make must be undone
	// by exactly one Unmake before a sibling line is explored.
	Make(m Move) Error
	Unmake() Error

	Termination() Termination

	// IsCapture is only used for move ordering; it never affects which
	// move is chosen, only how fast the search converges.
	IsCapture(m Move) bool
}
