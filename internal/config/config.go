package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/keshon/filament/pkg/superuser"
)

type Config struct {
	DiscordToken   string   `env:"DISCORD_TOKEN,required"`
	CommandPrefix  string   `env:"COMMAND_PREFIX" envDefault:"!"`
	OwnerIDs       []string `env:"OWNER_IDS"`
	Guilds         []string `env:"DISCORD_GUILDS"`
	GuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST"`
	InitSlash      bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	StoragePath    string   `env:"STORAGE_PATH" envDefault:"data/datastore.json"`

	Shell            string        `env:"SHELL"`
	Python           string        `env:"SUPERUSER_PYTHON" envDefault:"python3"`
	SuperuserTimeout time.Duration `env:"SUPERUSER_TIMEOUT" envDefault:"0s"`
	NavigatorTimeout time.Duration `env:"NAVIGATOR_TIMEOUT" envDefault:"120s"`
	RegisterWorkers  int           `env:"REGISTER_WORKERS" envDefault:"4"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile   string `env:"LOG_FILE"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`
}

// Load reads files (default ".env") into the environment without overriding
// variables that are already set, then parses the environment. Missing files
// are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// godotenv.Load stops at the first missing file, so load one at a time.
		_ = godotenv.Load(f)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Shell == "" {
		cfg.Shell = superuser.DefaultShell()
	}
	if cfg.RegisterWorkers < 1 {
		cfg.RegisterWorkers = 1
	}
	if cfg.CommandPrefix == "" {
		return nil, fmt.Errorf("config: COMMAND_PREFIX cannot be empty")
	}
	return &cfg, nil
}

// IsOwner reports whether id is listed in OWNER_IDS.
func (c *Config) IsOwner(id string) bool {
	for _, o := range c.OwnerIDs {
		if o == id {
			return true
		}
	}
	return false
}

// IsGuildBlacklisted reports whether the bot should ignore the guild.
func (c *Config) IsGuildBlacklisted(id string) bool {
	for _, g := range c.GuildBlacklist {
		if g == id {
			return true
		}
	}
	return false
}
