package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/expedanalysis/internal/analytics"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Store        Store             `yaml:"store"`
	Model        Model             `yaml:"model"`
	Topics       map[string]string `yaml:"topics"`
	Preprocess   Preprocess        `yaml:"preprocess"`
	Presentation Presentation      `yaml:"presentation"`
	Server       Server            `yaml:"server"`
	Output       Output            `yaml:"output"`
	Logging      Logging           `yaml:"logging"`
}

type Store struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type Model struct {
	Path                 string   `yaml:"path"`
	Labels               []string `yaml:"labels"`
	Iterations           int      `yaml:"iterations"`
	TransformationPasses int      `yaml:"transformation_passes"`
}

type Preprocess struct {
	ExtraStopwords []string `yaml:"extra_stopwords"`
	MaxInputBytes  int      `yaml:"max_input_bytes"`
}

type Presentation struct {
	Language string `yaml:"language"`
	Chart    string `yaml:"chart"`
	Advisory bool   `yaml:"advisory"`
}

type Server struct {
	Port         int    `yaml:"port"`
	SessionTTL   string `yaml:"session_ttl"`
	LoginPerMin  int    `yaml:"login_per_minute"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"

	ChartPie         = "pie"
	ChartInteractive = "interactive"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ConfigDir returns the XDG config directory for expedanalysis.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "expedanalysis")
}

// DataDir returns the XDG data directory for expedanalysis.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "expedanalysis")
}

// LoadEnv loads variables from a dotenv file. An explicit path must
// exist; the default ./.env is optional.
func LoadEnv(explicit string) error {
	if explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			return fmt.Errorf("loading env file %s: %w", explicit, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/expedanalysis/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'expedanalysis init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file, then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Store: Store{Backend: BackendSQLite, Path: "labeled_documents.csv"},
		Model: Model{
			Path:       "model.json",
			Labels:     []string{"Delay/ Lambat Pengiriman", "Komunikasi Kurir", "Kualitas Pelayan Buruk"},
			Iterations: 200,
		},
		Preprocess:   Preprocess{MaxInputBytes: 10000},
		Presentation: Presentation{Language: "id", Chart: ChartPie, Advisory: true},
		Server:       Server{Port: 8000, SessionTTL: "12h", LoginPerMin: 10},
		Logging:      Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides file values with EXPEDANALYSIS_* variables.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("EXPEDANALYSIS_DATA_DIR"); v != "" {
		c.Output.DataDir = v
	}
	if v := getenv("EXPEDANALYSIS_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := getenv("EXPEDANALYSIS_MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := getenv("EXPEDANALYSIS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("EXPEDANALYSIS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: EXPEDANALYSIS_PORT=%q is not a number", ErrInvalid, v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("%w: store.backend %q (want sqlite or file)", ErrInvalid, c.Store.Backend)
	}
	if c.Store.Backend == BackendFile && c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required for the file backend", ErrInvalid)
	}
	switch strings.ToLower(c.Presentation.Language) {
	case "id", "en":
	default:
		return fmt.Errorf("%w: presentation.language %q (want id or en)", ErrInvalid, c.Presentation.Language)
	}
	switch c.Presentation.Chart {
	case ChartPie, ChartInteractive:
	default:
		return fmt.Errorf("%w: presentation.chart %q (want pie or interactive)", ErrInvalid, c.Presentation.Chart)
	}
	if len(c.Model.Labels) < 2 {
		return fmt.Errorf("%w: model.labels needs at least 2 entries", ErrInvalid)
	}
	if _, err := c.CategoryMap(); err != nil {
		return err
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d", ErrInvalid, c.Server.Port)
	}
	return nil
}

// CategoryMap converts the topics section. An empty section falls back
// to the built-in mapping of the labelled review store.
func (c *Config) CategoryMap() (analytics.CategoryMap, error) {
	if len(c.Topics) == 0 {
		return analytics.DefaultCategoryMap(), nil
	}
	m := make(analytics.CategoryMap, len(c.Topics))
	for topic, name := range c.Topics {
		cat, err := analytics.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: topics[%q]: %v", ErrInvalid, topic, err)
		}
		m[topic] = cat
	}
	return m, nil
}

// Language returns the presentation language.
func (c *Config) Language() analytics.Language {
	lang, err := analytics.ParseLanguage(c.Presentation.Language)
	if err != nil {
		return analytics.Indonesian
	}
	return lang
}

// SessionTTL parses server.session_ttl.
func (c *Config) SessionTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: server.session_ttl %q", ErrInvalid, c.Server.SessionTTL)
	}
	return d, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// ResolvePath makes a relative path relative to the data directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.GetDataDir(), p)
}

// StorePath is the review file for the file backend, resolved like every
// other relative path against the data directory.
func (c *Config) StorePath() string {
	return c.ResolvePath(c.Store.Path)
}

// ModelPath is the resolved topic model artifact path.
func (c *Config) ModelPath() string {
	return c.ResolvePath(c.Model.Path)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
