package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Generators understood by the board seeder.
const (
	GeneratorUniform = "uniform"
	GeneratorNoise   = "noise"
)

// Limits enforced by Validate.
const (
	MaxBoardRadius = 64
	MinColours     = 2
	MaxColours     = 32
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	JWT     JWTConfig     `yaml:"jwt"`
	Redis   RedisConfig   `yaml:"redis"`
	Board   BoardConfig   `yaml:"board"`
	Session SessionConfig `yaml:"session"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// JWTConfig holds JWT authentication settings. Authentication is disabled
// when PublicKeyURL is empty.
type JWTConfig struct {
	Issuer              string `yaml:"issuer"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// Enabled reports whether connections must present a token.
func (c JWTConfig) Enabled() bool { return c.PublicKeyURL != "" }

// RedisConfig holds Redis connection settings. The token blacklist is
// disabled when Address is empty.
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
}

// BoardConfig holds defaults for newly created boards
type BoardConfig struct {
	Radius     int     `yaml:"radius"`
	Colours    int     `yaml:"colours"`
	Seed       int64   `yaml:"seed"` // 0 picks a random seed per board
	Generator  string  `yaml:"generator"`
	NoiseScale float64 `yaml:"noise_scale"`
	MaxBoards  int     `yaml:"max_boards"`
}

// SessionConfig holds session settings
type SessionConfig struct {
	MaxPlayers int `yaml:"max_players"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Set defaults if not provided
func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Redis.BlacklistPrefix == "" {
		cfg.Redis.BlacklistPrefix = "blacklist:"
	}
	if cfg.Board.Radius == 0 {
		cfg.Board.Radius = 10
	}
	if cfg.Board.Colours == 0 {
		cfg.Board.Colours = 6
	}
	if cfg.Board.Generator == "" {
		cfg.Board.Generator = GeneratorUniform
	}
	if cfg.Board.NoiseScale == 0 {
		cfg.Board.NoiseScale = 0.15
	}
	if cfg.Board.MaxBoards == 0 {
		cfg.Board.MaxBoards = 64
	}
	if cfg.Session.MaxPlayers == 0 {
		cfg.Session.MaxPlayers = 100
	}
}

// Validate checks ranges that defaults cannot repair.
func (cfg *Config) Validate() error {
	if err := cfg.Board.Validate(); err != nil {
		return err
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Board.MaxBoards < 0 {
		return fmt.Errorf("board.max_boards must be >= 0, got %d", cfg.Board.MaxBoards)
	}
	return nil
}

// Validate checks the settings of a single board.
func (b BoardConfig) Validate() error {
	if b.Radius < 0 || b.Radius > MaxBoardRadius {
		return fmt.Errorf("board.radius %d not in 0..%d", b.Radius, MaxBoardRadius)
	}
	if b.Colours < MinColours || b.Colours > MaxColours {
		return fmt.Errorf("board.colours %d not in %d..%d", b.Colours, MinColours, MaxColours)
	}
	switch b.Generator {
	case GeneratorUniform, GeneratorNoise:
	default:
		return fmt.Errorf("board.generator %q unknown", b.Generator)
	}
	if b.NoiseScale <= 0 {
		return fmt.Errorf("board.noise_scale must be > 0, got %v", b.NoiseScale)
	}
	return nil
}
