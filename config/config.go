// Package config loads the tribit machine and logging configuration.
//
// Settings are layered, lowest to highest priority: defaults, an optional
// YAML file, TRIBIT_* environment variables, and command line flags.
package config

import (
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ezrec/tribit/cpu"
	"github.com/ezrec/tribit/logging"
)

const ENV_PREFIX = "TRIBIT"

// Config is the effective tribit configuration.
type Config struct {
	Program string `mapstructure:"program" yaml:"program"` // Comma separated program words.
	Asm     string `mapstructure:"asm" yaml:"asm"`         // Assembly source file.
	File    string `mapstructure:"file" yaml:"file"`       // Register dump file.

	A string `mapstructure:"a" yaml:"a"` // Register A, decimal or prefixed.
	B string `mapstructure:"b" yaml:"b"`
	C string `mapstructure:"c" yaml:"c"`

	Dialect string `mapstructure:"dialect" yaml:"dialect"`
	Limit   int    `mapstructure:"limit" yaml:"limit"`
	Lang    string `mapstructure:"lang" yaml:"lang"`

	Log Log `mapstructure:"log" yaml:"log"`
}

// Log configures the log sinks.
type Log struct {
	Verbose    bool   `mapstructure:"verbose" yaml:"verbose"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// Machine is a configured program, ready to load into an emulator.
type Machine struct {
	Program  *cpu.Program
	Register []*big.Int // A, B, C
	Dialect  cpu.Dialect
	Limit    int
}

// flagKeys maps configuration keys to the command line flags bound to them.
var flagKeys = map[string]string{
	"program":     "program",
	"asm":         "asm",
	"file":        "file",
	"a":           "a",
	"b":           "b",
	"c":           "c",
	"dialect":     "dialect",
	"limit":       "limit",
	"lang":        "lang",
	"log.verbose": "verbose",
	"log.file":    "log-file",
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Dialect: cpu.DIALECT_COMBO.String(),
		Log: Log{
			MaxSize:    logging.DEFAULT_MAX_SIZE,
			MaxBackups: logging.DEFAULT_MAX_BACKUPS,
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("program", def.Program)
	v.SetDefault("asm", def.Asm)
	v.SetDefault("file", def.File)
	v.SetDefault("a", def.A)
	v.SetDefault("b", def.B)
	v.SetDefault("c", def.C)
	v.SetDefault("dialect", def.Dialect)
	v.SetDefault("limit", def.Limit)
	v.SetDefault("lang", def.Lang)
	v.SetDefault("log.verbose", def.Log.Verbose)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.max_size", def.Log.MaxSize)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
}

// Load reads the configuration. The path may be empty, in which case only
// defaults, the environment and flags are used. Flags may be nil.
func Load(path string, flags *pflag.FlagSet) (cfg *Config, err error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(path) != 0 {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		err = v.ReadInConfig()
		if err != nil {
			err = &ErrKey{Key: path, Err: err}
			return
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			err = v.BindPFlag(key, flag)
			if err != nil {
				return
			}
		}
	}

	cfg = &Config{}
	err = v.Unmarshal(cfg)
	if err != nil {
		cfg = nil
		return
	}

	return
}

// Save writes the configuration as YAML.
func (cfg *Config) Save(output io.Writer) (err error) {
	enc := yaml.NewEncoder(output)
	enc.SetIndent(2)

	err = enc.Encode(cfg)
	if err != nil {
		return
	}

	err = enc.Close()
	return
}

// Logging returns the logging options.
func (cfg *Config) Logging() logging.Options {
	return logging.Options{
		Verbose:    cfg.Log.Verbose,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
	}
}

// Sources returns the files the machine is read from.
func (cfg *Config) Sources() (paths []string) {
	for _, path := range []string{cfg.File, cfg.Asm} {
		if len(path) != 0 {
			paths = append(paths, path)
		}
	}
	return
}

// Machine builds the program and registers.
// - A register dump file supplies the program and registers.
// - An inline program or assembly source replaces the dump's program.
// - Registers set in the configuration replace the dump's registers.
func (cfg *Config) Machine() (machine *Machine, err error) {
	machine = &Machine{
		Program:  &cpu.Program{},
		Register: []*big.Int{new(big.Int), new(big.Int), new(big.Int)},
		Limit:    cfg.Limit,
	}

	defer func() {
		if err != nil {
			machine = nil
		}
	}()

	if len(cfg.Program) != 0 && len(cfg.Asm) != 0 {
		err = ErrProgramConflict
		return
	}

	if cfg.Limit < 0 {
		err = &ErrKey{Key: "limit", Err: ErrLimitRange}
		return
	}

	machine.Dialect, err = cpu.ParseDialect(cfg.Dialect)
	if err != nil {
		err = &ErrKey{Key: "dialect", Err: err}
		return
	}

	if len(cfg.File) != 0 {
		var snap *cpu.Snapshot
		snap, err = readSnapshot(cfg.File)
		if err != nil {
			err = &ErrKey{Key: cfg.File, Err: err}
			return
		}
		machine.Program = snap.Program
		copy(machine.Register, snap.Registers())
	}

	switch {
	case len(cfg.Program) != 0:
		machine.Program, err = cpu.ParseProgram(cfg.Program)
		if err != nil {
			err = &ErrKey{Key: "program", Err: err}
			return
		}
	case len(cfg.Asm) != 0:
		machine.Program, err = assemble(cfg.Asm)
		if err != nil {
			err = &ErrKey{Key: cfg.Asm, Err: err}
			return
		}
	}

	for n, text := range []string{cfg.A, cfg.B, cfg.C} {
		if len(text) == 0 {
			continue
		}
		var value *big.Int
		value, err = cpu.ParseValue(text)
		if err != nil {
			err = &ErrKey{Key: cpu.Register(n).String(), Err: err}
			return
		}
		machine.Register[n] = value
	}

	return
}

func readSnapshot(path string) (snap *cpu.Snapshot, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	snap, err = cpu.ParseSnapshot(inf)
	return
}

func assemble(path string) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{}
	prog, err = asm.Parse(inf)
	return
}
