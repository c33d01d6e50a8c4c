// Package config provides Viper-based configuration loading for the battle host.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TITHE_COMBAT_RNG_SEED.
const EnvPrefix = "TITHE"

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output lists log sinks: "stderr", "stdout", or file paths.
	Output []string `mapstructure:"output"`
}

// CombatConfig holds encounter pacing and randomness settings.
type CombatConfig struct {
	// StartDelay is the pause between showing the roster and the first turn.
	StartDelay time.Duration `mapstructure:"start_delay"`
	// EndDelay is the pause between a terminal outcome and the encounter exit.
	EndDelay time.Duration `mapstructure:"end_delay"`
	// RNGSeed selects a reproducible dice source when non-zero; 0 uses crypto randomness.
	RNGSeed int64 `mapstructure:"rng_seed"`
	// HistorySize bounds the number of finished encounters kept in memory.
	HistorySize int `mapstructure:"history_size"`
}

// ContentConfig locates the static game data.
type ContentConfig struct {
	// Dir holds the YAML catalog (moves, enemies, masks, floors).
	Dir string `mapstructure:"dir"`
}

// PlayerConfig holds the stats of a fresh character.
type PlayerConfig struct {
	BaseMaxHP   int `mapstructure:"base_max_hp"`
	BaseAttack  int `mapstructure:"base_attack"`
	BaseDefense int `mapstructure:"base_defense"`
	BaseSpeed   int `mapstructure:"base_speed"`
	// StarterMask is granted on a new game; empty means use the catalog's starter mask.
	StarterMask string `mapstructure:"starter_mask"`
}

// ScriptingConfig holds Lua hook settings.
type ScriptingConfig struct {
	// Dir holds *.lua hook scripts; empty disables scripting.
	Dir string `mapstructure:"dir"`
	// InstructionLimit caps opcodes per hook call; 0 uses the scripting default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Enabled reports whether hook scripts should be loaded.
func (s ScriptingConfig) Enabled() bool { return s.Dir != "" }

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns on persistence of progress and encounter history.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Content   ContentConfig   `mapstructure:"content"`
	Player    PlayerConfig    `mapstructure:"player"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, check := range []func() error{
		func() error { return validateLogging(c.Logging) },
		func() error { return validateCombat(c.Combat) },
		func() error { return validateContent(c.Content) },
		func() error { return validatePlayer(c.Player) },
		func() error { return validateScripting(c.Scripting) },
		func() error { return validateDatabase(c.Database) },
	} {
		if err := check(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func joinErrs(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(errs, "; "))
}

func validateLogging(l LoggingConfig) error {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	for _, out := range l.Output {
		if strings.TrimSpace(out) == "" {
			errs = append(errs, "logging.output entries must not be empty")
			break
		}
	}
	return joinErrs(errs)
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.StartDelay < 0 {
		errs = append(errs, "combat.start_delay must not be negative")
	}
	if c.EndDelay < 0 {
		errs = append(errs, "combat.end_delay must not be negative")
	}
	if c.HistorySize < 0 {
		errs = append(errs, fmt.Sprintf("combat.history_size must be >= 0, got %d", c.HistorySize))
	}
	return joinErrs(errs)
}

func validateContent(c ContentConfig) error {
	if c.Dir == "" {
		return fmt.Errorf("content.dir must not be empty")
	}
	return nil
}

func validatePlayer(p PlayerConfig) error {
	var errs []string
	if p.BaseMaxHP < 1 {
		errs = append(errs, fmt.Sprintf("player.base_max_hp must be >= 1, got %d", p.BaseMaxHP))
	}
	if p.BaseAttack < 0 {
		errs = append(errs, fmt.Sprintf("player.base_attack must be >= 0, got %d", p.BaseAttack))
	}
	if p.BaseDefense < 0 {
		errs = append(errs, fmt.Sprintf("player.base_defense must be >= 0, got %d", p.BaseDefense))
	}
	if p.BaseSpeed < 0 {
		errs = append(errs, fmt.Sprintf("player.base_speed must be >= 0, got %d", p.BaseSpeed))
	}
	return joinErrs(errs)
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	return joinErrs(errs)
}

// NewViper returns a Viper instance with defaults and TITHE_ environment
// overrides applied but no file read.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", []string{"stderr"})

	v.SetDefault("combat.start_delay", "0s")
	v.SetDefault("combat.end_delay", "0s")
	v.SetDefault("combat.rng_seed", 0)
	v.SetDefault("combat.history_size", 32)

	v.SetDefault("content.dir", "content")

	v.SetDefault("player.base_max_hp", 100)
	v.SetDefault("player.base_attack", 10)
	v.SetDefault("player.base_defense", 10)
	v.SetDefault("player.base_speed", 10)
	v.SetDefault("player.starter_mask", "")

	v.SetDefault("scripting.dir", "")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tithe")
	v.SetDefault("database.password", "tithe")
	v.SetDefault("database.name", "tithe")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
