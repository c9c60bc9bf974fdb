// Package config loads cadet settings from defaults, an optional file and
// CADET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/cadetcorps/cadet/internal/llm"
)

// EnvPrefix prefixes every environment override, e.g. CADET_QUIZ_COOLDOWN.
const EnvPrefix = "CADET"

type Config struct {
	DataDir string `mapstructure:"data_dir"`
	User    string `mapstructure:"user"`

	Log      LogConfig      `mapstructure:"log"`
	LLM      llm.Config     `mapstructure:"llm"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Store    StoreConfig    `mapstructure:"store"`
	Cooldown CooldownConfig `mapstructure:"cooldown"`
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Features FeatureFlags   `mapstructure:"features"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

type GenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type QuizConfig struct {
	DefaultCount int              `mapstructure:"default_count"`
	MinCount     int              `mapstructure:"min_count"`
	MaxCount     int              `mapstructure:"max_count"`
	Cooldown     time.Duration    `mapstructure:"cooldown"`
	PassingScore float64          `mapstructure:"passing_score"`
	Generation   GenerationConfig `mapstructure:"generation"`
	Categories   []string         `mapstructure:"categories"`
	Difficulties []string         `mapstructure:"difficulties"`
	// Bank is an optional JSON question bank offered next to generated quizzes.
	Bank string `mapstructure:"bank"`
}

type ChatConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	History     int     `mapstructure:"history"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres
	DSN    string `mapstructure:"dsn"`    // file path for sqlite, URL for postgres
}

type RedisConfig struct {
	Addrs    []string `mapstructure:"addrs"`
	Password string   `mapstructure:"password"`
	Prefix   string   `mapstructure:"prefix"`
}

type CooldownConfig struct {
	Backend string      `mapstructure:"backend"` // memory, sql, redis
	Redis   RedisConfig `mapstructure:"redis"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	MetricsAddr string   `mapstructure:"metrics_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
	Debug bool   `mapstructure:"debug"`
	// QuizLength is the number of questions in a bot quiz.
	QuizLength int `mapstructure:"quiz_length"`
}

// FeatureFlags switch capabilities off even when they could run.
type FeatureFlags struct {
	Quiz     bool `mapstructure:"quiz"`
	Chat     bool `mapstructure:"chat"`
	Progress bool `mapstructure:"progress"`
	Telegram bool `mapstructure:"telegram"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		User:    defaultUser(),
		Log:     LogConfig{Level: "info", Format: "text"},
		LLM:     llm.DefaultConfig(),
		Quiz: QuizConfig{
			DefaultCount: 10,
			MinCount:     1,
			MaxCount:     50,
			Cooldown:     2 * time.Minute,
			PassingScore: 70,
			Generation:   GenerationConfig{Temperature: 0.4, MaxTokens: 2000},
			Categories: []string{
				"NCC Organization", "National Integration", "Foot Drill",
				"Weapon Training", "Leadership", "Disaster Management",
				"Social Service", "Health & Hygiene", "Adventure Activities",
				"Environment", "Self Defence",
			},
			Difficulties: []string{"Beginner", "Intermediate", "Advanced"},
		},
		Chat:     ChatConfig{Temperature: 0.3, MaxTokens: 1000, History: 10},
		Store:    StoreConfig{Driver: "sqlite"},
		Cooldown: CooldownConfig{Backend: "sql", Redis: RedisConfig{Addrs: []string{"localhost:6379"}, Prefix: "cadet:"}},
		Server:   ServerConfig{Addr: ":8080", MetricsAddr: ":9090", CORSOrigins: []string{"*"}},
		Telegram: TelegramConfig{QuizLength: 5},
		Features: FeatureFlags{Quiz: true, Chat: true, Progress: true, Telegram: true},
	}
}

// Load builds the configuration: defaults first, then file (if non-empty),
// then environment variables. When no LLM provider is usable the standard
// API key variables are probed.
func Load(file string) (Config, error) {
	c := Default()
	if err := load(file, &c); err != nil {
		return Config{}, err
	}
	if !c.LLM.Configured() {
		if found, ok := llm.DiscoverConfig(c.LLM); ok {
			c.LLM = found
		}
	}
	return c, nil
}

// load merges file and environment into config, which must be a pointer
// to a populated struct.
func load(file string, config any) error {
	v := viper.New()
	m := make(map[string]any)

	if err := mapstructure.Decode(config, &m); err != nil {
		return fmt.Errorf("mapstructure: %v", err)
	}

	// Defaults live in their own layer so a config file does not discard
	// them and every key stays visible to AutomaticEnv.
	setDefaults(v, "", m)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config from file %s: %v", file, err)
		}
	}

	if err := v.Unmarshal(config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return fmt.Errorf("unmarshal config: %v", err)
	}

	return nil
}

func setDefaults(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			setDefaults(v, key, nested)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Validate reports every setting that cannot work together.
func (c Config) Validate() error {
	var errs []error

	q := c.Quiz
	if q.MinCount < 1 {
		errs = append(errs, fmt.Errorf("quiz.min_count must be at least 1, got %d", q.MinCount))
	}
	if q.MinCount > q.MaxCount {
		errs = append(errs, fmt.Errorf("quiz.min_count (%d) exceeds quiz.max_count (%d)", q.MinCount, q.MaxCount))
	}
	if q.DefaultCount < q.MinCount || q.DefaultCount > q.MaxCount {
		errs = append(errs, fmt.Errorf("quiz.default_count (%d) must be within [%d, %d]", q.DefaultCount, q.MinCount, q.MaxCount))
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		errs = append(errs, fmt.Errorf("quiz.passing_score must be within 0..100, got %v", q.PassingScore))
	}
	if q.Cooldown <= 0 {
		errs = append(errs, fmt.Errorf("quiz.cooldown must be positive, got %s", q.Cooldown))
	}

	switch c.Store.Driver {
	case "sqlite":
	case "postgres":
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	switch c.Cooldown.Backend {
	case "memory", "sql":
	case "redis":
		if len(c.Cooldown.Redis.Addrs) == 0 {
			errs = append(errs, errors.New("cooldown.redis.addrs is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cooldown.backend %q", c.Cooldown.Backend))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	if c.Chat.History < 0 {
		errs = append(errs, fmt.Errorf("chat.history must not be negative, got %d", c.Chat.History))
	}

	return errors.Join(errs...)
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "cadet")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "cadet")
	}
	return "data"
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cadet"
}
