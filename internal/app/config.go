package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"ossql/content"
	"ossql/internal/engine"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "OSSQL_"

// Config controls runtime behavior for the TUI and the CLI commands.
type Config struct {
	DataDir      string        `env:"DATA_DIR"`
	ContentDir   string        `env:"CONTENT_DIR"`
	Engine       string        `env:"ENGINE"`
	LogPath      string        `env:"LOG"`
	ProgressFile string        `env:"PROGRESS_FILE"`
	QueryTimeout time.Duration `env:"QUERY_TIMEOUT"`
	RequireFrom  bool          `env:"REQUIRE_FROM"`
	ASCIIOnly    bool          `env:"ASCII"`
	DebugLayout  bool          `env:"DEBUG_LAYOUT"`
	UI           UIConfig
}

type UIConfig struct {
	StyleVariant string `env:"STYLE"`
}

func DefaultConfig() Config {
	return Config{
		QueryTimeout: 5 * time.Second,
		RequireFrom:  true,
		UI: UIConfig{
			StyleVariant: "modern_arcade",
		},
	}
}

// ApplyEnv overrides c with any OSSQL_* variables present in environ. A nil
// environ reads the process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: envPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Engine != "" {
		kind, err := engine.ParseKind(c.Engine)
		if err != nil {
			return fmt.Errorf("invalid engine: %w", err)
		}
		c.Engine = string(kind)
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("invalid query timeout %s", c.QueryTimeout)
	}
	switch c.UI.StyleVariant {
	case "", "modern_arcade", "cozy_clean", "retro_terminal":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = "modern_arcade"
	}
	if c.ContentDir != "" {
		info, err := os.Stat(c.ContentDir)
		if err != nil {
			return fmt.Errorf("content dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("content dir %s is not a directory", c.ContentDir)
		}
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "ossql")
	}
	if c.ProgressFile == "" {
		c.ProgressFile = filepath.Join(c.DataDir, "progress.json")
	}
	return nil
}

// ContentFS is the embedded catalog unless ContentDir points elsewhere.
func (c Config) ContentFS() fs.FS {
	if c.ContentDir != "" {
		return os.DirFS(c.ContentDir)
	}
	return content.FS
}
