package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/cricklet/chessmate/internal/config"
	"github.com/cricklet/chessmate/internal/eval"
	. "github.com/cricklet/chessmate/internal/helpers"
	"github.com/cricklet/chessmate/internal/rules"
	"github.com/cricklet/chessmate/internal/search"
	"github.com/cricklet/chessmate/internal/selector"
)

// Terminal front-end: you type UCI moves, the configured selector
// answers. `undo` takes back a full move pair, `hint` runs a shallower
// search for a suggestion, `save` writes the game record, `quit` quits.

func savePGN(board *rules.Board, cfg config.Config) {
	white, black := "Human", "chessmate"
	if !cfg.HumanIsWhite {
		white, black = black, white
	}
	path := RootDir() + "/game.pgn"
	if err := os.WriteFile(path, []byte(board.PGN(white, black)), 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println("saved", path)
}

func main() {
	cfg, err := config.Load(RootDir() + "/chessmate.yaml")
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, arg := range os.Args[1:] {
		switch {
		case arg == "black":
			cfg.HumanIsWhite = false
		case arg == "ollama":
			cfg.Selector = "ollama"
		case strings.HasPrefix(arg, "depth="):
			fmt.Sscanf(arg, "depth=%d", &cfg.Depth)
		}
	}
	if err := cfg.Validate(); !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	board := rules.NewBoardFromStart(rules.WithUndoCheck())
	chooser := cfg.BuildSelector(&SilentLogger)
	fallback := &selector.RandomSelector{}

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println()
		fmt.Print(board.Render())

		if t := board.Termination(); t != rules.NotTerminal {
			fmt.Println("game over:", t)
			savePGN(board, cfg)
			return
		}

		if board.WhiteToMove() == cfg.HumanIsWhite {
			fmt.Print("> ")
			if !scanner.Scan() {
				return
			}
			input := strings.TrimSpace(scanner.Text())

			switch input {
			case "quit":
				return
			case "save":
				savePGN(board, cfg)
			case "undo":
				for i := 0; i < 2 && board.MoveHistoryLen() > 0; i++ {
					if err := board.Unmake(); !IsNil(err) {
						fmt.Fprintln(os.Stderr, err)
						return
					}
				}
			case "hint":
				depth := cfg.Depth - 1
				if depth < 2 {
					depth = 2
				}
				searcher := search.NewSearcher(board, eval.NewEvaluator(board),
					search.WithMaxDepth{MaxDepth: depth})
				result, err := searcher.FindBestMove()
				if !IsNil(err) {
					fmt.Fprintln(os.Stderr, err)
					continue
				}
				fmt.Println("try:", result)
			default:
				if move := board.MoveFromString(input); move.HasValue() {
					if err := board.Make(move.Value()); !IsNil(err) {
						fmt.Fprintln(os.Stderr, err)
						return
					}
				} else {
					fmt.Println("not a legal move (e2e4 style, or quit/undo/hint/save)")
				}
			}
			continue
		}

		move, err := chooser.ChooseMove(board)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, err)
			move = Empty[rules.Move]()
		}
		if move.IsEmpty() {
			move, _ = fallback.ChooseMove(board)
		}
		if move.IsEmpty() {
			fmt.Println("no move found")
			return
		}
		if err := board.Make(move.Value()); !IsNil(err) {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		fmt.Println("engine plays", move.Value())
	}
}
