package config

import (
	"os"
	"time"

	. "github.com/cricklet/chessmate/internal/helpers"
	"github.com/cricklet/chessmate/internal/selector"
	"gopkg.in/yaml.v3"
)

// Config is read once at startup and handed to whichever binary is
// running; the engine core itself takes depth and side per call and
// stores nothing.
type Config struct {
	Port         int    `yaml:"port"`
	HumanIsWhite bool   `yaml:"human_is_white"`
	Selector     string `yaml:"selector"` // search, ollama or random

	// Search depth in plies. 2-5 is the useful range: below 2 the
	// engine hangs pieces, above 5 moves take too long to be
	// interactive.
	Depth int `yaml:"depth"`

	Ollama OllamaConfig `yaml:"ollama"`
}

type OllamaConfig struct {
	URL         string `yaml:"url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

func Default() Config {
	return Config{
		Port:         8002,
		HumanIsWhite: true,
		Selector:     "search",
		Depth:        3,
		Ollama: OllamaConfig{
			URL:         selector.DefaultOllamaURL,
			Model:       selector.DefaultOllamaModel,
			TimeoutSecs: 120,
		},
	}
}

// Load reads a yaml config, filling anything unset with defaults. A
// missing file is not an error; the defaults are a playable setup.
func Load(path string) (Config, Error) {
	result := Default()

	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return result, NilError
	}
	if err != nil {
		return result, Wrap(err)
	}

	if err := yaml.Unmarshal(bytes, &result); err != nil {
		return result, Wrap(err)
	}
	return result, result.Validate()
}

func (c Config) Validate() Error {
	if c.Depth < 1 {
		return Errorf("depth %v must be >= 1", c.Depth)
	}
	switch c.Selector {
	case "search", "ollama", "random":
	default:
		return Errorf("unknown selector '%v'", c.Selector)
	}
	return NilError
}

// BuildSelector wires up the configured move selector.
func (c Config) BuildSelector(logger Logger) selector.Selector {
	switch c.Selector {
	case "ollama":
		return selector.NewOllamaSelector(
			selector.WithURL(c.Ollama.URL),
			selector.WithModel(c.Ollama.Model),
			selector.WithTimeout(time.Duration(c.Ollama.TimeoutSecs)*time.Second),
			selector.WithOllamaLogger(logger),
		)
	case "random":
		return &selector.RandomSelector{}
	default:
		return selector.NewSearchingSelector(
			selector.WithDepth(c.Depth),
			selector.WithSearchLogger(logger),
		)
	}
}
