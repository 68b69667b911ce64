package params

import (
	"fmt"
	"time"
)

const (
	SchemeBio = "bio"
	SchemePow = "pow"
)

const (
	// DefaultMargin is added to the oracle's base score to form the acceptance threshold.
	DefaultMargin = 100

	// DefaultRounds mirrors the reference miner's rounds per mining pass.
	DefaultRounds = 2000

	DefaultDifficulty     = 16
	DefaultCoinbaseReward = 25

	MaxDifficulty = 256
)

type ChainParams struct {
	ChainID        uint64    `mapstructure:"chain_id"`
	CoinbaseReward uint64    `mapstructure:"coinbase_reward"`
	BioEngine      BioEngine `mapstructure:"bio"`
	PowEngine      PowEngine `mapstructure:"pow"`
}

// BioEngine configures the external alignment oracle.
type BioEngine struct {
	Margin       int64         `mapstructure:"margin"`
	Command      string        `mapstructure:"command"`
	Args         []string      `mapstructure:"args"`
	BuildCommand string        `mapstructure:"build_command"`
	BuildArgs    []string      `mapstructure:"build_args"`
	WorkDir      string        `mapstructure:"workdir"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

func (b *BioEngine) String() string {
	return "bio_engine"
}

type PowEngine struct {
	Difficulty uint64 `mapstructure:"difficulty"`
	Rounds     int    `mapstructure:"rounds"`
}

func (p *PowEngine) String() string {
	return "pow_engine"
}

func DefaultChainParams() ChainParams {
	return ChainParams{
		ChainID:        0,
		CoinbaseReward: DefaultCoinbaseReward,
		BioEngine: BioEngine{
			Margin:       DefaultMargin,
			Command:      "java",
			Args:         []string{"msg/MSG"},
			BuildCommand: "javac",
			BuildArgs:    []string{"msg/MSG.java"},
			WorkDir:      ".",
		},
		PowEngine: PowEngine{
			Difficulty: DefaultDifficulty,
			Rounds:     DefaultRounds,
		},
	}
}

func (c *ChainParams) Validate(scheme string) error {
	switch scheme {
	case SchemeBio:
		if c.BioEngine.Command == "" {
			return fmt.Errorf("invalid `bio.command`; expected: non-empty, given: %q", c.BioEngine.Command)
		}
		if c.BioEngine.Timeout < 0 {
			return fmt.Errorf("invalid `bio.timeout`; expected: >= 0, given: %v", c.BioEngine.Timeout)
		}
	case SchemePow:
		if c.PowEngine.Rounds <= 0 {
			return fmt.Errorf("invalid `pow.rounds`; expected: > 0, given: %d", c.PowEngine.Rounds)
		}
		if c.PowEngine.Difficulty > MaxDifficulty {
			return fmt.Errorf("invalid `pow.difficulty`; expected: <= %d, given: %d", MaxDifficulty, c.PowEngine.Difficulty)
		}
	default:
		return fmt.Errorf("invalid `scheme`; expected: %q or %q, given: %q", SchemeBio, SchemePow, scheme)
	}

	return nil
}
