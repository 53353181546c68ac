// Package config loads the server configuration: compiled defaults, then an
// optional YAML file, then SWITCHYARD_* environment overrides. Later layers
// win.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SWITCHYARD_"

// Config is the root of the configuration tree.
type Config struct {
	Server    Server    `yaml:"server" mapstructure:"server"`
	Redis     Redis     `yaml:"redis" mapstructure:"redis"`
	Session   Session   `yaml:"session" mapstructure:"session"`
	Routing   Routing   `yaml:"routing" mapstructure:"routing"`
	Reasoner  Reasoner  `yaml:"reasoner" mapstructure:"reasoner"`
	Retrieval Retrieval `yaml:"retrieval" mapstructure:"retrieval"`
	Privacy   Privacy   `yaml:"privacy" mapstructure:"privacy"`
	Logging   Logging   `yaml:"logging" mapstructure:"logging"`
}

// Server configures the HTTP listener.
type Server struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Redis configures the durable session store. Disabled means sessions live in
// process memory only.
type Redis struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Address  string `yaml:"address" mapstructure:"address"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// Session configures lifetimes and the same-session conflict policy
// ("wait" or "reject").
type Session struct {
	TTL            time.Duration `yaml:"ttl" mapstructure:"ttl"`
	SweepInterval  time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
	ConflictPolicy string        `yaml:"conflict_policy" mapstructure:"conflict_policy"`
	LockTTL        time.Duration `yaml:"lock_ttl" mapstructure:"lock_ttl"`
}

// Routing bounds the per-turn loop.
type Routing struct {
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`
}

// Reasoner configures the language-model client. The API key falls back to
// OPENAI_API_KEY when unset.
type Reasoner struct {
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	Model      string        `yaml:"model" mapstructure:"model"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"`
}

// Retrieval configures the knowledge base. FixturesDir optionally points at a
// directory of JSON fixture files replacing the built-in dataset.
type Retrieval struct {
	TopK        int    `yaml:"top_k" mapstructure:"top_k"`
	FixturesDir string `yaml:"fixtures_dir" mapstructure:"fixtures_dir"`
}

// Privacy configures data-at-rest protection of stored sessions. An empty
// encryption key disables encryption; empty mask patterns disable masking.
type Privacy struct {
	// EncryptionKey is a base64-encoded 32-byte AES-256 key.
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`

	// FallbackKeys are base64-encoded previous keys, tried in order on
	// decryption so keys can rotate without downtime.
	FallbackKeys []string `yaml:"fallback_keys" mapstructure:"fallback_keys"`

	// MaskPatterns are regexes matched against context and lookup keys;
	// matching values are masked before persistence.
	MaskPatterns []string `yaml:"mask_patterns" mapstructure:"mask_patterns"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: Redis{
			Enabled: false,
			Address: "localhost:6379",
		},
		Session: Session{
			TTL:            time.Hour,
			SweepInterval:  5 * time.Minute,
			ConflictPolicy: "wait",
			LockTTL:        30 * time.Second,
		},
		Routing: Routing{
			MaxIterations: 3,
		},
		Reasoner: Reasoner{
			Model:      "gpt-4o-mini",
			Timeout:    30 * time.Second,
			MaxRetries: 2,
		},
		Retrieval: Retrieval{
			TopK: 3,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load assembles the configuration. An empty path skips the file layer; a
// named file that cannot be read or parsed is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.Environ()); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if cfg.Reasoner.APIKey == "" {
		cfg.Reasoner.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

// applyEnv decodes SWITCHYARD_<SECTION>_<KEY> variables on top of cfg.
// Sections are single words, so the first underscore after the prefix is the
// separator: SWITCHYARD_SESSION_CONFLICT_POLICY -> session.conflict_policy.
func applyEnv(cfg *Config, environ []string) error {
	overlay := make(map[string]map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		section, key, ok := strings.Cut(strings.TrimPrefix(name, envPrefix), "_")
		if !ok || key == "" {
			continue
		}
		s := strings.ToLower(section)
		if overlay[s] == nil {
			overlay[s] = make(map[string]string)
		}
		overlay[s][strings.ToLower(key)] = value
	}
	if len(overlay) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(overlay)
}
