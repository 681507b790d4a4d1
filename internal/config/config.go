package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when neither the environment nor config.json sets a value.
const (
	DefaultBaseURL      = "https://openrouter.ai/api/v1"
	DefaultModel        = "anthropic/claude-haiku-4.5"
	DefaultMaxTurns     = 50
	DefaultToolTimeout  = 2 * time.Minute
	DefaultModelTimeout = 5 * time.Minute
	// DefaultConfigDirName is used as the config dir when it exists in the working directory.
	DefaultConfigDirName = ".toolrunner"
)

// ErrMissingAPIKey is returned by Validate when no credential is configured.
var ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY is not set")

// Config holds runtime configuration. The API key is read from the
// environment (or .env); it is never written back anywhere.
type Config struct {
	// APIKey is set from env OPENROUTER_API_KEY.
	APIKey string `json:"-"`
	// BaseURL is the chat completions endpoint base.
	BaseURL string `json:"base_url"`
	// Model is the OpenRouter model id (e.g. anthropic/claude-haiku-4.5).
	Model string `json:"model"`
	// MaxTurns caps model round trips per prompt; 0 = no limit.
	MaxTurns int `json:"max_turns"`
	// ToolTimeout bounds a single tool execution; 0 = no deadline.
	ToolTimeout time.Duration `json:"-"`
	// ModelTimeout is the HTTP client timeout for one model call.
	ModelTimeout time.Duration `json:"-"`
	// ToolOutputMaxRunes caps tool output length (0 = no truncation).
	ToolOutputMaxRunes int `json:"tool_output_max_runes"`
	// AuditDBPath enables the SQLite tool-run audit when non-empty.
	AuditDBPath string `json:"audit_db"`

	// ConfigDir is where config.json lives; empty when none was found.
	ConfigDir string `json:"-"`
	// WorkDir is the working directory for Bash commands.
	WorkDir string `json:"-"`
}

// fileDurations carries the duration keys of config.json as Go duration strings.
type fileDurations struct {
	ToolTimeout  string `json:"tool_timeout"`
	ModelTimeout string `json:"model_timeout"`
}

// DefaultConfigDir returns .toolrunner in the working directory if present, else "".
func DefaultConfigDir() string {
	cwd, _ := os.Getwd()
	local := filepath.Join(cwd, DefaultConfigDirName)
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		return local
	}
	return ""
}

// LoadDotEnv loads dir/.env into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// New builds config from env and an optional config dir. configDir can be
// empty to use TOOLRUNNER_CONFIG_DIR or the default.
// Priority: defaults < env < config.json. Invalid values keep the lower layer.
func New(configDir string) *Config {
	if configDir == "" {
		if d := os.Getenv("TOOLRUNNER_CONFIG_DIR"); d != "" {
			configDir = d
		} else {
			configDir = DefaultConfigDir()
		}
	}
	cwd, _ := os.Getwd()
	cfg := &Config{
		APIKey:       os.Getenv("OPENROUTER_API_KEY"),
		BaseURL:      envString("OPENROUTER_BASE_URL", DefaultBaseURL),
		Model:        envString("TOOLRUNNER_MODEL", DefaultModel),
		MaxTurns:     envInt("TOOLRUNNER_MAX_TURNS", DefaultMaxTurns),
		ToolTimeout:  envDuration("TOOLRUNNER_TOOL_TIMEOUT", DefaultToolTimeout),
		ModelTimeout: envDuration("TOOLRUNNER_MODEL_TIMEOUT", DefaultModelTimeout),
		AuditDBPath:  os.Getenv("TOOLRUNNER_AUDIT_DB"),
		ConfigDir:    configDir,
		WorkDir:      cwd,
	}
	cfg.ToolOutputMaxRunes = envInt("TOOLRUNNER_TOOL_OUTPUT_MAX_RUNES", 0)

	if configDir == "" {
		return cfg
	}
	data, err := os.ReadFile(filepath.Join(configDir, "config.json"))
	if err != nil {
		return cfg
	}
	// Keys present in JSON overwrite; missing keys leave the env value.
	// Decode into a copy so a malformed file changes nothing.
	overlay := *cfg
	if err := json.Unmarshal(data, &overlay); err != nil {
		return cfg
	}
	if overlay.MaxTurns < 0 {
		overlay.MaxTurns = cfg.MaxTurns
	}
	if overlay.ToolOutputMaxRunes < 0 {
		overlay.ToolOutputMaxRunes = cfg.ToolOutputMaxRunes
	}
	var d fileDurations
	if err := json.Unmarshal(data, &d); err == nil {
		overlay.ToolTimeout = parseDuration(d.ToolTimeout, overlay.ToolTimeout)
		overlay.ModelTimeout = parseDuration(d.ModelTimeout, overlay.ModelTimeout)
	}
	return &overlay
}

// Validate reports configuration the CLI cannot run without.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	return parseDuration(os.Getenv(key), def)
}

func parseDuration(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}
