package rules

import (
	"fmt"
	"strings"
	"time"

	dragon "github.com/dylhunn/dragontoothmg"
)

// PGN renders the moves played so far as a portable game notation
// document, replaying them from the starting position to recover
// standard algebraic notation.
func (b *Board) PGN(white string, black string) string {
	scratch := dragon.ParseFen(b.startFen)
	result := pgnResult(b.Termination(), b.board.Wtomove)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[Event \"chessmate\"]\n")
	fmt.Fprintf(&sb, "[Date %q]\n", time.Now().Format("2006.01.02"))
	fmt.Fprintf(&sb, "[White %q]\n[Black %q]\n", white, black)
	if b.startFen != startposFen() {
		fmt.Fprintf(&sb, "[SetUp \"1\"]\n[FEN %q]\n", b.startFen)
	}
	fmt.Fprintf(&sb, "[Result %q]\n\n", result)

	moveNumber := 1
	if fields := strings.Fields(b.startFen); len(fields) >= 6 {
		fmt.Sscanf(fields[5], "%d", &moveNumber)
	}

	for i, frame := range b.undos {
		if scratch.Wtomove {
			fmt.Fprintf(&sb, "%v. ", moveNumber)
		} else {
			if i == 0 {
				fmt.Fprintf(&sb, "%v... ", moveNumber)
			}
			moveNumber++
		}
		sb.WriteString(san(&scratch, frame.move))
		sb.WriteString(" ")
	}

	sb.WriteString(result)
	sb.WriteString("\n")
	return sb.String()
}

func startposFen() string {
	board := dragon.ParseFen(dragon.Startpos)
	return board.ToFen()
}

func pgnResult(t Termination, whiteToMove bool) string {
	switch t {
	case Checkmate:
		if whiteToMove {
			return "0-1"
		}
		return "1-0"
	case Stalemate, Draw:
		return "1/2-1/2"
	}
	return "*"
}

// san converts one move to standard algebraic notation and applies it,
// so successive calls walk the game forward.
func san(board *dragon.Board, m dragon.Move) string {
	uci := m.String()
	from, to := m.From(), m.To()
	piece := pieceLetter(board, from)
	capture := dragon.IsCapture(m, board)

	var text string
	switch {
	case piece == "K" && to == from+2:
		text = "O-O"
	case piece == "K" && from == to+2:
		text = "O-O-O"
	case piece == "":
		if capture {
			text = uci[0:1] + "x" + uci[2:4]
		} else {
			text = uci[2:4]
		}
		if len(uci) == 5 {
			text += "=" + strings.ToUpper(uci[4:5])
		}
	default:
		text = piece + disambiguation(board, m, piece)
		if capture {
			text += "x"
		}
		text += uci[2:4]
	}

	board.Apply(m)
	if len(board.GenerateLegalMoves()) == 0 {
		if board.OurKingInCheck() {
			text += "#"
		}
	} else if board.OurKingInCheck() {
		text += "+"
	}
	return text
}

func pieceLetter(board *dragon.Board, from uint8) string {
	pieces := board.White
	if !board.Wtomove {
		pieces = board.Black
	}
	bit := uint64(1) << from
	switch {
	case pieces.Pawns&bit != 0:
		return ""
	case pieces.Knights&bit != 0:
		return "N"
	case pieces.Bishops&bit != 0:
		return "B"
	case pieces.Rooks&bit != 0:
		return "R"
	case pieces.Queens&bit != 0:
		return "Q"
	}
	return "K"
}

// disambiguation adds the file, rank, or both of the origin square when
// another piece of the same kind could reach the same destination.
func disambiguation(board *dragon.Board, m dragon.Move, piece string) string {
	if piece == "K" {
		return ""
	}
	ambiguous, sameFile, sameRank := false, false, false
	for _, other := range board.GenerateLegalMoves() {
		if other.To() != m.To() || other.From() == m.From() {
			continue
		}
		if pieceLetter(board, other.From()) != piece {
			continue
		}
		ambiguous = true
		if other.From()%8 == m.From()%8 {
			sameFile = true
		}
		if other.From()/8 == m.From()/8 {
			sameRank = true
		}
	}
	if !ambiguous {
		return ""
	}
	file := string(rune('a' + m.From()%8))
	rank := fmt.Sprint(m.From()/8 + 1)
	if !sameFile {
		return file
	}
	if !sameRank {
		return rank
	}
	return file + rank
}
