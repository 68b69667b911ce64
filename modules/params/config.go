package params

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "POLARYS"

type Config struct {
	DataDir     string      `mapstructure:"datadir"`
	Passphrase  string      `mapstructure:"passphrase"`
	Listen      string      `mapstructure:"listen"`
	Peers       []string    `mapstructure:"peers"`
	MetricsAddr string      `mapstructure:"metrics"`
	LogLevel    string      `mapstructure:"loglevel"`
	Scheme      string      `mapstructure:"scheme"`
	Chain       ChainParams `mapstructure:"chain"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:    ".polarys",
		Passphrase: "polarys",
		Listen:     "0.0.0.0:5865",
		LogLevel:   "info",
		Scheme:     SchemeBio,
		Chain:      DefaultChainParams(),
	}
}

func (cfg *Config) Validate() error {
	if cfg.DataDir == "" {
		return fmt.Errorf("invalid `datadir`; expected: non-empty, given: %q", cfg.DataDir)
	}
	return cfg.Chain.Validate(cfg.Scheme)
}

// flagKeys maps config keys to the command line flags that override them.
var flagKeys = map[string]string{
	"datadir":                 "datadir",
	"passphrase":              "passphrase",
	"listen":                  "listen",
	"peers":                   "peers",
	"metrics":                 "metrics",
	"loglevel":                "loglevel",
	"scheme":                  "scheme",
	"chain.bio.command":       "oracle-cmd",
	"chain.bio.args":          "oracle-args",
	"chain.bio.build_command": "oracle-build-cmd",
	"chain.bio.build_args":    "oracle-build-args",
	"chain.bio.workdir":       "oracle-dir",
	"chain.bio.margin":        "margin",
	"chain.bio.timeout":       "oracle-timeout",
	"chain.pow.difficulty":    "difficulty",
	"chain.pow.rounds":        "rounds",
}

// SetFlags registers the flags understood by LoadConfig, using cfg for defaults.
func SetFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("datadir", cfg.DataDir, "Directory holding the chain database")
	flags.String("passphrase", cfg.Passphrase, "Passphrase for the miner wallet and database key")
	flags.String("listen", cfg.Listen, "UDP address the node listens on")
	flags.StringSlice("peers", cfg.Peers, "Bootstrap peers (host:port)")
	flags.String("metrics", cfg.MetricsAddr, "Address for the prometheus /metrics endpoint (empty disables it)")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("scheme", cfg.Scheme, "Proof scheme: bio or pow")

	bio := cfg.Chain.BioEngine
	flags.String("oracle-cmd", bio.Command, "Oracle executable")
	flags.StringSlice("oracle-args", bio.Args, "Arguments placed before the oracle subcommand")
	flags.String("oracle-build-cmd", bio.BuildCommand, "Command that builds the oracle (empty skips the build)")
	flags.StringSlice("oracle-build-args", bio.BuildArgs, "Arguments of the oracle build command")
	flags.String("oracle-dir", bio.WorkDir, "Working directory for oracle invocations")
	flags.Int64("margin", bio.Margin, "Score margin above the oracle base score")
	flags.Duration("oracle-timeout", bio.Timeout, "Timeout for one oracle invocation (0 disables it)")

	pow := cfg.Chain.PowEngine
	flags.Uint64("difficulty", pow.Difficulty, "Leading zero bits required by the pow scheme")
	flags.Int("rounds", pow.Rounds, "Nonces tried per pow mining pass")
}

// LoadConfig merges defaults, the optional config file at path, POLARYS_* environment
// variables and flags, in increasing priority.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
