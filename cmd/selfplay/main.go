package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	. "github.com/cricklet/chessmate/internal/helpers"
	"github.com/cricklet/chessmate/internal/rules"
	"github.com/cricklet/chessmate/internal/selector"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/exp/rand"
)

// Engine-vs-engine runner for eyeballing whether a deeper search
// actually wins more games. Not a rating tool, just a smoke test.
//
//	go run ./cmd/selfplay games=20 white=3 black=2 profile

const maxPlies = 300

func playGame(white selector.Selector, black selector.Selector, rng *rand.Rand) (string, int) {
	board := rules.NewBoardFromStart()
	random := &selector.RandomSelector{Rand: rng}

	for ply := 0; ply < maxPlies; ply++ {
		switch board.Termination() {
		case rules.Checkmate:
			if board.WhiteToMove() {
				return "black", ply
			}
			return "white", ply
		case rules.Stalemate, rules.Draw:
			return "draw", ply
		}

		chooser := black
		if board.WhiteToMove() {
			chooser = white
		}
		// The first move pair is random so the games differ.
		if ply < 2 {
			chooser = random
		}

		move, err := chooser.ChooseMove(board)
		if !IsNil(err) {
			log.Error().Str("err", err.Error()).Msg("selfplay move")
			return "aborted", ply
		}
		if move.IsEmpty() {
			move, _ = random.ChooseMove(board)
		}
		if err := board.Make(move.Value()); !IsNil(err) {
			log.Error().Str("err", err.Error()).Msg("selfplay apply")
			return "aborted", ply
		}
	}
	return "draw", maxPlies
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	games := 10
	whiteDepth, blackDepth := 3, 2

	for _, arg := range os.Args[1:] {
		switch {
		case arg == "profile":
			defer profile.Start(profile.ProfilePath(RootDir() + "/data/selfplay")).Stop()
		case strings.HasPrefix(arg, "games="):
			fmt.Sscanf(arg, "games=%d", &games)
		case strings.HasPrefix(arg, "white="):
			fmt.Sscanf(arg, "white=%d", &whiteDepth)
		case strings.HasPrefix(arg, "black="):
			fmt.Sscanf(arg, "black=%d", &blackDepth)
		}
	}

	white := selector.NewSearchingSelector(selector.WithDepth(whiteDepth))
	black := selector.NewSearchingSelector(selector.WithDepth(blackDepth))
	rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))

	results := map[string]int{}
	totalPlies := 0

	bar := progressbar.Default(int64(games), fmt.Sprintf("depth %v vs %v", whiteDepth, blackDepth))
	start := time.Now()

	for i := 0; i < games; i++ {
		winner, plies := playGame(white, black, rng)
		results[winner]++
		totalPlies += plies
		_ = bar.Add(1)
	}
	_ = bar.Close()

	elapsed := time.Since(start)
	log.Info().
		Int("white", results["white"]).
		Int("black", results["black"]).
		Int("draw", results["draw"]).
		Int("aborted", results["aborted"]).
		Str("perMove", fmt.Sprint(elapsed/time.Duration(max(totalPlies, 1)))).
		Msg("selfplay finished")
}

func max(a int, b int) int {
	if a > b {
		return a
	}
	return b
}
