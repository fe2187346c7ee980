package selector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	. "github.com/cricklet/chessmate/internal/helpers"
	"github.com/cricklet/chessmate/internal/rules"
)

// OllamaSelector asks a locally running LLM for a move. The model gets
// the FEN plus the full legal move list and must answer with exactly
// one of those moves in UCI; anything else is rejected and the caller
// falls back. Nothing leaves the machine.
type OllamaSelector struct {
	url     string
	model   string
	timeout time.Duration
	logger  Logger

	client *http.Client
}

const DefaultOllamaURL = "http://localhost:11434/api/generate"
const DefaultOllamaModel = "qwen2.5-coder:14b"

type OllamaSelectorOption func(*OllamaSelector)

func WithURL(url string) OllamaSelectorOption {
	return func(s *OllamaSelector) {
		s.url = url
	}
}

func WithModel(model string) OllamaSelectorOption {
	return func(s *OllamaSelector) {
		s.model = model
	}
}

func WithTimeout(timeout time.Duration) OllamaSelectorOption {
	return func(s *OllamaSelector) {
		s.timeout = timeout
	}
}

func WithOllamaLogger(logger Logger) OllamaSelectorOption {
	return func(s *OllamaSelector) {
		s.logger = logger
	}
}

func NewOllamaSelector(options ...OllamaSelectorOption) *OllamaSelector {
	s := &OllamaSelector{
		url:     DefaultOllamaURL,
		model:   DefaultOllamaModel,
		timeout: 120 * time.Second,
	}
	for _, o := range options {
		o(s)
	}
	if s.logger == nil {
		s.logger = &SilentLogger
	}
	s.client = &http.Client{Timeout: s.timeout}
	return s
}

var _ Selector = (*OllamaSelector)(nil)

func (s *OllamaSelector) ChooseMove(board *rules.Board) (Optional[rules.Move], Error) {
	legal := MapSlice(board.LegalMoves(), func(m rules.Move) string {
		return m.String()
	})
	if len(legal) == 0 {
		return Empty[rules.Move](), NilError
	}

	side := "Black"
	if board.WhiteToMove() {
		side = "White"
	}

	raw, err := s.generate(buildPrompt(board.Fen(), legal, side))
	if !IsNil(err) {
		return Empty[rules.Move](), err
	}
	s.logger.Println("ollama:", strings.TrimSpace(raw))

	if uci, ok := parseMoveFromText(raw, legal); ok {
		return board.MoveFromString(uci), NilError
	}
	s.logger.Println("ollama: no legal move in response")
	return Empty[rules.Move](), NilError
}

func buildPrompt(fen string, legal []string, side string) string {
	return "You are a strong chess engine. Pick the best move.\n\n" +
		"Position (FEN): " + fen + "\n" +
		"Side to move: " + side + "\n" +
		"Legal moves (UCI): " + strings.Join(legal, " ") + "\n\n" +
		"Think briefly if you must, but your final output must end with " +
		"exactly ONE legal UCI move from the list and nothing after it, " +
		"e.g. e2e4 or e7e8q.\n"
}

var uciPattern = regexp.MustCompile(`\b[a-h][1-8][a-h][1-8][qrbn]?\b`)

// parseMoveFromText pulls the first UCI-shaped token out of the model's
// reply and accepts it only if it is actually legal.
func parseMoveFromText(text string, legal []string) (string, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if match := uciPattern.FindString(text); match != "" && Contains(legal, match) {
		return match, true
	}
	if Contains(legal, text) {
		return text, true
	}
	return "", false
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (s *OllamaSelector) generate(prompt string) (string, Error) {
	body, err := json.Marshal(generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
		// temperature 0 keeps the single-move output deterministic
		Options: map[string]any{"temperature": 0, "num_ctx": 2048},
	})
	if err != nil {
		return "", Wrap(err)
	}

	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", Wrap(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", Wrap(fmt.Errorf("ollama at %v: %v", s.url, resp.Status))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", Wrap(err)
	}
	return parsed.Response, NilError
}
