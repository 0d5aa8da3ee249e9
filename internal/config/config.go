package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	StoreDriver    string `envconfig:"STORE_DRIVER" default:"file"`
	DataDir        string `envconfig:"DATA_DIR" default:"./data"`
	SQLitePath     string `envconfig:"SQLITE_PATH"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AuthEnabled    bool   `envconfig:"AUTH_ENABLED" default:"false"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	MDNSEnabled    bool   `envconfig:"MDNS_ENABLED" default:"false"`
	MDNSInstance   string `envconfig:"MDNS_INSTANCE"`
	ExportWidth    int    `envconfig:"EXPORT_WIDTH" default:"1280"`
	ExportHeight   int    `envconfig:"EXPORT_HEIGHT" default:"800"`
}

// Load reads the environment, after applying any .env file in the working
// directory. Variables already set win over the file.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ExportWidth <= 0 || cfg.ExportHeight <= 0 {
		return nil, fmt.Errorf("export size %dx%d must be positive", cfg.ExportWidth, cfg.ExportHeight)
	}
	return &cfg, nil
}

// Origins splits ALLOWED_ORIGINS into websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
