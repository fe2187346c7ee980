package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"

	"github.com/cricklet/chessmate/internal/config"
	. "github.com/cricklet/chessmate/internal/helpers"
	"github.com/cricklet/chessmate/internal/rules"
	"github.com/cricklet/chessmate/internal/selector"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type UpdateToWeb struct {
	FenString     string   `json:"fenString"`
	LastMove      string   `json:"lastMove"`
	Selection     string   `json:"selection"`
	PossibleMoves []string `json:"possibleMoves"`
	Player        string   `json:"player"`
	WhitePlayer   string   `json:"whitePlayer,omitempty"`
	BlackPlayer   string   `json:"blackPlayer,omitempty"`
	Termination   string   `json:"termination"`
}

func (u UpdateToWeb) String() string {
	return fmt.Sprint("UpdateToWeb: ", u.FenString, ", ", u.LastMove, ", ", u.Selection, ", ", u.PossibleMoves)
}

type MessageFromWeb struct {
	NewFen      *string `json:"newFen"`
	WhitePlayer *string `json:"whitePlayer"`
	BlackPlayer *string `json:"blackPlayer"`
	Selection   *string `json:"selection"`
	Move        *string `json:"move"`
	Ready       *bool   `json:"ready"`
	Rewind      *int    `json:"rewind"`
}

func (u MessageFromWeb) String() string {
	if u.NewFen != nil {
		return fmt.Sprint("MessageFromWeb NewFen: ", *u.NewFen)
	}
	if u.WhitePlayer != nil {
		return fmt.Sprint("MessageFromWeb WhitePlayer: ", *u.WhitePlayer)
	}
	if u.BlackPlayer != nil {
		return fmt.Sprint("MessageFromWeb BlackPlayer: ", *u.BlackPlayer)
	}
	if u.Selection != nil {
		return fmt.Sprint("MessageFromWeb Selection: ", *u.Selection)
	}
	if u.Move != nil {
		return fmt.Sprint("MessageFromWeb Move: ", *u.Move)
	}
	if u.Ready != nil {
		return fmt.Sprint("MessageFromWeb Ready: ", *u.Ready)
	}
	if u.Rewind != nil {
		return fmt.Sprint("MessageFromWeb Rewind: ", *u.Rewind)
	}
	return "MessageFromWeb unknown"
}

type PlayerType int

const (
	User PlayerType = iota
	Engine
	Llm
	Unknown
)

func (t PlayerType) String() string {
	switch t {
	case User:
		return "user"
	case Engine:
		return "engine"
	case Llm:
		return "llm"
	default:
		return "unknown"
	}
}

func PlayerTypeFromString(s string) PlayerType {
	switch s {
	case "user":
		return User
	case "engine":
		return Engine
	case "llm":
		return Llm
	}
	return Unknown
}

type session struct {
	board       *rules.Board
	playerTypes [2]PlayerType // white, black
	ready       bool
	lastMove    string

	engine   selector.Selector
	llm      selector.Selector
	fallback selector.Selector
}

func (s *session) playerToMove() int {
	if s.board.WhiteToMove() {
		return 0
	}
	return 1
}

func (s *session) selectorToMove() selector.Selector {
	switch s.playerTypes[s.playerToMove()] {
	case Engine:
		return s.engine
	case Llm:
		return s.llm
	}
	return nil
}

func serveWs(cfg config.Config) func(http.ResponseWriter, *http.Request) {
	var upgrader = websocket.Upgrader{}

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade")
			return
		}
		defer func() {
			_ = c.Close()
		}()

		// Selector chatter is mirrored into the browser's log panel.
		toWeb := &FnLogger{Callback: func(message string) {
			bytes, err := json.Marshal([]string{message})
			if err != nil {
				return
			}
			_ = c.WriteMessage(websocket.TextMessage, bytes)
		}}

		s := &session{
			board:       rules.NewBoardFromStart(),
			playerTypes: [2]PlayerType{User, Engine},
			engine: selector.NewSearchingSelector(
				selector.WithDepth(cfg.Depth),
				selector.WithSearchLogger(toWeb)),
			llm: selector.NewOllamaSelector(
				selector.WithURL(cfg.Ollama.URL),
				selector.WithModel(cfg.Ollama.Model),
				selector.WithOllamaLogger(toWeb)),
			fallback: &selector.RandomSelector{},
		}
		if !cfg.HumanIsWhite {
			s.playerTypes = [2]PlayerType{Engine, User}
		}

		sendUpdate := func(update UpdateToWeb) {
			update.FenString = s.board.Fen()
			update.LastMove = s.lastMove
			if s.board.WhiteToMove() {
				update.Player = "white"
			} else {
				update.Player = "black"
			}
			if t := s.board.Termination(); t != rules.NotTerminal {
				update.Termination = t.String()
			}

			bytes, err := json.Marshal(update)
			if err != nil {
				log.Error().Err(err).Msg("marshal update")
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, bytes); err != nil {
				log.Error().Err(err).Msg("write update")
			}
		}

		// One synchronous selector call per engine turn; nothing else
		// touches the board until it returns. Called after every handled
		// message, so an engine that plays white opens the game as soon
		// as the client reports ready.
		performMove := func() bool {
			if !s.ready || s.board.Termination() != rules.NotTerminal {
				return false
			}
			chooser := s.selectorToMove()
			if chooser == nil {
				return false
			}

			move, err := chooser.ChooseMove(s.board)
			if !IsNil(err) {
				log.Error().Str("err", err.Error()).Msg("choose move")
				move = Empty[rules.Move]()
			}
			if move.IsEmpty() {
				log.Warn().Msg("selector returned no move, falling back to random")
				move, _ = s.fallback.ChooseMove(s.board)
			}
			if move.IsEmpty() {
				return false
			}

			if err := s.board.Make(move.Value()); !IsNil(err) {
				log.Error().Str("err", err.Error()).Msg("apply engine move")
				return false
			}
			s.lastMove = move.Value().String()
			log.Info().Str("move", s.lastMove).Msg("engine moved")
			return true
		}

		handleMessage := func(bytes []byte) {
			var message MessageFromWeb
			if err := json.Unmarshal(bytes, &message); err != nil {
				log.Error().Err(err).Msg("unmarshal message")
				return
			}
			log.Debug().Stringer("message", message).Msg("received")

			var update UpdateToWeb
			shouldUpdate := false

			if message.NewFen != nil {
				board, err := rules.NewBoard(*message.NewFen)
				if !IsNil(err) {
					log.Error().Str("err", err.Error()).Msg("new fen")
					return
				}
				s.board = board
				s.lastMove = ""
				shouldUpdate = true
			} else if message.WhitePlayer != nil {
				s.playerTypes[0] = PlayerTypeFromString(*message.WhitePlayer)
			} else if message.BlackPlayer != nil {
				s.playerTypes[1] = PlayerTypeFromString(*message.BlackPlayer)
			} else if message.Selection != nil {
				if *message.Selection != "" {
					update.Selection = *message.Selection
					update.PossibleMoves = s.board.MovesFromSquare(*message.Selection)
				}
				shouldUpdate = true
			} else if message.Move != nil {
				if move := s.board.MoveFromString(*message.Move); move.HasValue() {
					if err := s.board.Make(move.Value()); IsNil(err) {
						s.lastMove = *message.Move
					}
				} else {
					log.Warn().Str("move", *message.Move).Msg("illegal move from web")
				}
				shouldUpdate = true
			} else if message.Rewind != nil {
				for i := 0; i < *message.Rewind && s.board.MoveHistoryLen() > 0; i++ {
					if err := s.board.Unmake(); !IsNil(err) {
						log.Error().Str("err", err.Error()).Msg("rewind")
						break
					}
				}
				s.lastMove = ""
				shouldUpdate = true
			} else if message.Ready != nil {
				if !s.ready {
					s.ready = *message.Ready
					shouldUpdate = true
				}
			}

			if performMove() {
				shouldUpdate = true
			}
			if shouldUpdate {
				sendUpdate(update)
			}
		}

		// The client takes the configured side assignment from this
		// first update rather than dictating its own.
		sendUpdate(UpdateToWeb{
			WhitePlayer: s.playerTypes[0].String(),
			BlackPlayer: s.playerTypes[1].String(),
		})

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Info().Err(err).Msg("websocket closed")
				break
			}
			handleMessage(message)
		}
	}
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, fmt.Sprint(r))
			fmt.Fprintln(os.Stderr, string(debug.Stack()))
		}
	}()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(RootDir() + "/chessmate.yaml")
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, arg := range os.Args[1:] {
		if parsed, err := strconv.ParseInt(arg, 10, 64); err == nil {
			cfg.Port = int(parsed)
		}
	}

	index := func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, RootDir()+"/static/index.html")
	}

	log.Info().Int("port", cfg.Port).Msg("serving")

	router := mux.NewRouter()
	router.HandleFunc("/ws", serveWs(cfg))
	router.PathPrefix("/static").Handler(
		http.StripPrefix("/static", http.FileServer(http.Dir(RootDir()+"/static"))))
	router.HandleFunc("/", index)

	if err := http.ListenAndServe(fmt.Sprintf(":%v", cfg.Port), router); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
