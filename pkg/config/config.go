package config

import (
	"fmt"
	"time"

	"tiergate/internal/delivery/gameserver"
	"tiergate/internal/repository"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Repo repository.Config `envPrefix:"REPO_"`
	HTTP gameserver.Config `envPrefix:"HTTP_"`

	DiscordToken    string        `env:"DISCORD_TOKEN" envDefault:""`
	DiscordGuildID  string        `env:"DISCORD_GUILD_ID" envDefault:""`
	TierThreeRoleID string        `env:"TIER_THREE_ROLE_ID" envDefault:""`
	AdminUserIDs    []string      `env:"ADMIN_USER_IDS" envSeparator:"," envDefault:""`
	OracleTimeout   time.Duration `env:"ORACLE_TIMEOUT" envDefault:"5s"`

	LogLevel string `env:"LOGGER_LEVEL" envDefault:"debug"`
}

func ReadEnvConfig(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return err
	}
	return cfg.validate()
}

func (c *Config) validate() error {
	switch {
	case c.DiscordToken == "":
		return fmt.Errorf("DISCORD_TOKEN is required")
	case c.DiscordGuildID == "":
		return fmt.Errorf("DISCORD_GUILD_ID is required")
	case c.TierThreeRoleID == "":
		return fmt.Errorf("TIER_THREE_ROLE_ID is required")
	case c.HTTP.APIToken == "":
		return fmt.Errorf("HTTP_API_TOKEN is required")
	case c.OracleTimeout <= 0:
		return fmt.Errorf("ORACLE_TIMEOUT must be positive")
	case c.HTTP.WriteTimeout > 0 && c.OracleTimeout >= c.HTTP.WriteTimeout:
		return fmt.Errorf("ORACLE_TIMEOUT (%s) must be shorter than HTTP_WRITE_TIMEOUT (%s)", c.OracleTimeout, c.HTTP.WriteTimeout)
	}
	return nil
}
