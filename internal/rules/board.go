package rules

import (
	"errors"
	"fmt"
	"math/bits"

	. "github.com/cricklet/chessmate/internal/helpers"
	dragon "github.com/dylhunn/dragontoothmg"
)

// ErrUndoMismatch means Make/Unmake failed to round-trip. There is no
// recovery: either the rules engine or our bookkeeping is corrupt, so
// the whole search call aborts.
var ErrUndoMismatch = errors.New("make/unmake did not restore the position")

// Board adapts dragontoothmg to the Position interface. It owns the
// undo stack: dragontoothmg hands back an undo closure per applied
// move and we unwind them in LIFO order.
type Board struct {
	board    dragon.Board
	startFen string
	undos    []undoFrame
	history  []uint64

	checkUndo bool
}

var _ Position = (*Board)(nil)

type undoFrame struct {
	unapply func()
	hash    uint64
	move    dragon.Move
}

type BoardOption func(b *Board)

// WithUndoCheck verifies after every Unmake that the zobrist hash
// returned to its pre-Make value.
func WithUndoCheck() BoardOption {
	return func(b *Board) {
		b.checkUndo = true
	}
}

func NewBoardFromStart(opts ...BoardOption) *Board {
	board, err := NewBoard(dragon.Startpos, opts...)
	if !IsNil(err) {
		panic(err) // the start position always parses
	}
	return board
}

func NewBoard(fen string, opts ...BoardOption) (result *Board, resultErr Error) {
	// dragontoothmg panics on malformed FENs rather than returning an
	// error, so catch that here at the boundary.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			resultErr = Errorf("parsing fen '%v': %v", fen, r)
		}
	}()

	board := &Board{board: dragon.ParseFen(fen)}
	for _, opt := range opts {
		opt(board)
	}
	board.startFen = board.board.ToFen()
	board.history = append(board.history, board.board.Hash())
	return board, NilError
}

type move struct {
	inner dragon.Move
}

func (m move) String() string {
	return m.inner.String()
}

func (b *Board) LegalMoves() []Move {
	legal := b.board.GenerateLegalMoves()
	result := make([]Move, len(legal))
	for i, m := range legal {
		result[i] = move{m}
	}
	return result
}

func (b *Board) Make(m Move) Error {
	wrapped, ok := m.(move)
	if !ok {
		return Errorf("move %v was not produced by this board", m)
	}

	hash := b.board.Hash()
	unapply := b.board.Apply(wrapped.inner)
	b.undos = append(b.undos, undoFrame{unapply, hash, wrapped.inner})
	b.history = append(b.history, b.board.Hash())
	return NilError
}

func (b *Board) Unmake() Error {
	if len(b.undos) == 0 {
		return Errorf("unmake without a matching make")
	}

	frame := b.undos[len(b.undos)-1]
	b.undos = b.undos[:len(b.undos)-1]
	b.history = b.history[:len(b.history)-1]
	frame.unapply()

	if b.checkUndo && b.board.Hash() != frame.hash {
		return Wrap(ErrUndoMismatch)
	}
	return NilError
}

func (b *Board) Termination() Termination {
	if len(b.board.GenerateLegalMoves()) == 0 {
		if b.board.OurKingInCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if b.board.Halfmoveclock >= 100 {
		return Draw
	}
	if b.insufficientMaterial() {
		return Draw
	}
	if b.repetitions() >= 3 {
		return Draw
	}
	return NotTerminal
}

func (b *Board) IsCapture(m Move) bool {
	wrapped, ok := m.(move)
	if !ok {
		return false
	}
	return dragon.IsCapture(wrapped.inner, &b.board)
}

func (b *Board) Fen() string {
	return b.board.ToFen()
}

func (b *Board) Hash() uint64 {
	return b.board.Hash()
}

func (b *Board) WhiteToMove() bool {
	return b.board.Wtomove
}

// Bitboards exposes the piece placement for evaluation.
func (b *Board) Bitboards() (white dragon.Bitboards, black dragon.Bitboards) {
	return b.board.White, b.board.Black
}

// MoveFromString finds the legal move matching a UCI string like
// "e2e4" or "e7e8q".
func (b *Board) MoveFromString(s string) Optional[Move] {
	for _, m := range b.LegalMoves() {
		if m.String() == s {
			return Some(m)
		}
	}
	return Empty[Move]()
}

// MovesFromSquare returns the target squares of every legal move
// leaving the given square, for highlighting in the UI.
func (b *Board) MovesFromSquare(from string) []string {
	targets := []string{}
	for _, m := range b.LegalMoves() {
		s := m.String()
		if len(s) >= 4 && s[0:2] == from && !Contains(targets, s[2:4]) {
			targets = append(targets, s[2:4])
		}
	}
	return targets
}

// MoveHistoryLen counts the makes currently outstanding.
func (b *Board) MoveHistoryLen() int {
	return len(b.undos)
}

func (b *Board) insufficientMaterial() bool {
	white, black := b.board.White, b.board.Black
	if white.Pawns|black.Pawns|white.Rooks|black.Rooks|white.Queens|black.Queens != 0 {
		return false
	}
	minors := bits.OnesCount64(white.Knights|black.Knights) +
		bits.OnesCount64(white.Bishops|black.Bishops)
	return minors <= 1
}

func (b *Board) repetitions() int {
	current := b.board.Hash()
	count := 0
	for _, hash := range b.history {
		if hash == current {
			count++
		}
	}
	return count
}

func (b *Board) String() string {
	return fmt.Sprint("Board(", b.Fen(), ")")
}
