package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig controls the signup phase.
type ServerConfig struct {
	Address          string        `mapstructure:"address"`
	WebSocketAddress string        `mapstructure:"websocket_address"`
	MinPlayers       int           `mapstructure:"min_players"`
	MaxPlayers       int           `mapstructure:"max_players"`
	SignupWindow     time.Duration `mapstructure:"signup_window"`
	SignupWindows    int           `mapstructure:"signup_windows"`
	NameTimeout      time.Duration `mapstructure:"name_timeout"`
}

// GameConfig controls the referee.
type GameConfig struct {
	Columns           int  `mapstructure:"columns"`
	Rows              int  `mapstructure:"rows"`
	MaxRounds         int  `mapstructure:"max_rounds"`
	MaxGoalGrants     int  `mapstructure:"max_goal_grants"`
	UseProposedBoards bool `mapstructure:"use_proposed_boards"`
}

// RemoteConfig controls player interaction deadlines.
type RemoteConfig struct {
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig controls the optional outcome store. An empty URL disables
// it.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// Load reads configuration from a yaml file, environment variables
// (LABYRINTH_ prefix, underscores for nesting), and built-in defaults. A
// missing file is fine; defaults and environment carry the day.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LABYRINTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return nil, fmt.Errorf("reading config %s: %w", path, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":7776")
	v.SetDefault("server.websocket_address", "")
	v.SetDefault("server.min_players", 2)
	v.SetDefault("server.max_players", 6)
	v.SetDefault("server.signup_window", 20*time.Second)
	v.SetDefault("server.signup_windows", 2)
	v.SetDefault("server.name_timeout", 2*time.Second)

	v.SetDefault("game.columns", 7)
	v.SetDefault("game.rows", 7)
	v.SetDefault("game.max_rounds", 1000)
	v.SetDefault("game.max_goal_grants", 64)
	v.SetDefault("game.use_proposed_boards", false)

	v.SetDefault("remote.call_timeout", 4*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
}

func (c *Config) validate() error {
	if c.Server.MinPlayers < 2 {
		return fmt.Errorf("server.min_players must be at least 2, got %d", c.Server.MinPlayers)
	}
	if c.Server.MaxPlayers < c.Server.MinPlayers {
		return fmt.Errorf("server.max_players %d is below server.min_players %d",
			c.Server.MaxPlayers, c.Server.MinPlayers)
	}
	if c.Game.Columns < 2 || c.Game.Rows < 2 {
		return fmt.Errorf("game board must be at least 2x2, got %dx%d", c.Game.Columns, c.Game.Rows)
	}
	if c.Game.MaxRounds <= 0 {
		return fmt.Errorf("game.max_rounds must be positive, got %d", c.Game.MaxRounds)
	}
	if c.Remote.CallTimeout <= 0 {
		return fmt.Errorf("remote.call_timeout must be positive, got %s", c.Remote.CallTimeout)
	}
	return nil
}
