package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/freecell/board"
)

const (
	ConfigColumns              = "columns"
	ConfigFreeCells            = "free-cells"
	ConfigHardColumns          = "hard-columns"
	ConfigDataPath             = "data-path"
	ConfigStore                = "store"
	ConfigStorePath            = "store-path"
	ConfigDebug                = "debug"
	ConfigSolverMaxNodes       = "solver-max-nodes"
	ConfigSolverMemoryFraction = "solver-memory-fraction"
	ConfigSolverBoundPruning   = "solver-bound-pruning"
	ConfigProgressInterval     = "progress-interval"
	ConfigHintCacheSize        = "hint-cache-size"
	ConfigAutomaticThreads     = "automatic-threads"
)

const EnvPrefix = "FREECELL"

type Config struct {
	*viper.Viper
}

type option struct {
	key   string
	def   any
	usage string
}

var options = []option{
	{ConfigColumns, board.DefaultColumns, "number of columns"},
	{ConfigFreeCells, board.DefaultFreeCells, "number of free cells"},
	{ConfigHardColumns, false, "reserved; has no effect on the rules"},
	{ConfigDataPath, "./data", "directory holding config.yaml and stored games"},
	{ConfigStore, "file", "where to keep the current position: file, sqlite or none"},
	{ConfigStorePath, "", "path of the store; defaults to a file in the data path"},
	{ConfigDebug, false, "debug logging"},
	{ConfigSolverMaxNodes, uint64(0), "node budget per solve; 0 for none"},
	{ConfigSolverMemoryFraction, 0.25, "share of system memory the solver memo may use; 0 for no limit"},
	{ConfigSolverBoundPruning, false, "skip search branches that cannot beat the best solution"},
	{ConfigProgressInterval, uint64(1_000_000), "nodes between solver progress lines"},
	{ConfigHintCacheSize, 64, "number of solved positions kept for hints"},
	{ConfigAutomaticThreads, runtime.NumCPU(), "parallel solves in autoplay"},
}

// DefaultConfig has every default and nothing from the environment.
func DefaultConfig() *Config {
	v := viper.New()
	for _, o := range options {
		v.SetDefault(o.key, o.def)
	}
	return &Config{Viper: v}
}

// Load builds the config from, in increasing precedence: defaults,
// config.yaml in the data path, FREECELL_* environment variables, and
// --key=value arguments.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	fs := pflag.NewFlagSet("freecell", pflag.ContinueOnError)
	for _, o := range options {
		switch d := o.def.(type) {
		case int:
			fs.Int(o.key, d, o.usage)
		case uint64:
			fs.Uint64(o.key, d, o.usage)
		case float64:
			fs.Float64(o.key, d, o.usage)
		case bool:
			fs.Bool(o.key, d, o.usage)
		case string:
			fs.String(o.key, d, o.usage)
		}
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix(EnvPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetConfigName("config")
	c.SetConfigType("yaml")
	c.AddConfigPath(c.GetString(ConfigDataPath))
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

// Rules builds the board rules. They are validated when a position is made.
func (c *Config) Rules() board.Rules {
	return board.Rules{
		Columns:     c.GetInt(ConfigColumns),
		FreeCells:   c.GetInt(ConfigFreeCells),
		HardColumns: c.GetBool(ConfigHardColumns),
	}
}

// StorePath is the configured store path, or a default one in the data
// path that depends on the store kind.
func (c *Config) StorePath() string {
	if p := c.GetString(ConfigStorePath); p != "" {
		return p
	}
	name := "position.fcn"
	if c.GetString(ConfigStore) == "sqlite" {
		name = "freecell.db"
	}
	return filepath.Join(c.GetString(ConfigDataPath), name)
}
