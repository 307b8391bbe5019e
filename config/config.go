package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"arcade/database"
	"arcade/models"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendJSON     = "json"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string `mapstructure:"DISCORD_TOKEN"`
	GuildID      string `mapstructure:"GUILD_ID"` // Primary Discord guild ID, empty registers commands globally

	// Storage configuration
	StorageBackend string `mapstructure:"STORAGE_BACKEND" validate:"oneof=postgres json"`
	DatabaseURL    string `mapstructure:"DATABASE_URL" validate:"required_if=StorageBackend postgres"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`
	DataDir        string `mapstructure:"DATA_DIR" validate:"required_if=StorageBackend json"`

	// Optional infrastructure
	RedisURL    string `mapstructure:"REDIS_URL"`    // Enables distributed sessions and the world-state reader
	NATSServers string `mapstructure:"NATS_SERVERS"` // NATS server addresses (comma-separated)

	// Economy
	LevelExpUnit       int64         `mapstructure:"LEVEL_EXP_UNIT" validate:"gt=0"`
	MessageExp         int64         `mapstructure:"MESSAGE_EXP" validate:"gte=0"`
	MessageExpCooldown time.Duration `mapstructure:"MESSAGE_EXP_COOLDOWN" validate:"gte=0"`

	// Games
	RoundTimeout        time.Duration `mapstructure:"ROUND_TIMEOUT" validate:"gt=0"`
	QuizRounds          int           `mapstructure:"QUIZ_ROUNDS" validate:"gt=0"`
	MinQuestions        int           `mapstructure:"MIN_QUESTIONS" validate:"gt=0"`
	QuestionBankPath    string        `mapstructure:"QUESTION_BANK_PATH"`
	SessionMaxLifetime  time.Duration `mapstructure:"SESSION_MAX_LIFETIME" validate:"gt=0"`
	RoundRewardCurrency int64         `mapstructure:"ROUND_REWARD_CURRENCY" validate:"gte=0"`
	RoundRewardExp      int64         `mapstructure:"ROUND_REWARD_EXP" validate:"gte=0"`

	// Announcements
	AnnounceChannelID string           `mapstructure:"ANNOUNCE_CHANNEL_ID"` // Level-up announcements, falls back to where the player last spoke
	LevelRoles        map[int64]string `mapstructure:"-"`                   // Level -> Discord role ID, from LEVEL_ROLES="5:123,10:456"

	DebugAPIPort int `mapstructure:"DEBUG_API_PORT" validate:"gt=0,lt=65536"`

	// Environment
	Environment string `mapstructure:"ENVIRONMENT"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// RedisEnabled reports whether a Redis URL is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// NATSEnabled reports whether NATS forwarding is configured
func (c *Config) NATSEnabled() bool {
	return c.NATSServers != ""
}

var keys = []string{
	"DISCORD_TOKEN", "GUILD_ID",
	"STORAGE_BACKEND", "DATABASE_URL", "DATABASE_NAME", "DATA_DIR",
	"REDIS_URL", "NATS_SERVERS",
	"LEVEL_EXP_UNIT", "MESSAGE_EXP", "MESSAGE_EXP_COOLDOWN",
	"ROUND_TIMEOUT", "QUIZ_ROUNDS", "MIN_QUESTIONS", "QUESTION_BANK_PATH", "SESSION_MAX_LIFETIME",
	"ROUND_REWARD_CURRENCY", "ROUND_REWARD_EXP",
	"ANNOUNCE_CHANNEL_ID", "LEVEL_ROLES",
	"DEBUG_API_PORT", "ENVIRONMENT",
}

// load loads configuration from an optional .env file and the environment
func load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	// A missing .env is normal in containers
	_ = v.ReadInConfig()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORAGE_BACKEND", StorageBackendPostgres)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("LEVEL_EXP_UNIT", models.DefaultLevelExpUnit)
	v.SetDefault("MESSAGE_EXP", 15)
	v.SetDefault("MESSAGE_EXP_COOLDOWN", "60s")
	v.SetDefault("ROUND_TIMEOUT", "30s")
	v.SetDefault("QUIZ_ROUNDS", 10)
	v.SetDefault("MIN_QUESTIONS", 10)
	v.SetDefault("QUESTION_BANK_PATH", "data/questions.json")
	v.SetDefault("SESSION_MAX_LIFETIME", "1h")
	v.SetDefault("ROUND_REWARD_CURRENCY", 30)
	v.SetDefault("ROUND_REWARD_EXP", 30)
	v.SetDefault("DEBUG_API_PORT", 8899)
	v.SetDefault("ENVIRONMENT", "development")
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	roles, err := parseLevelRoles(v.GetString("LEVEL_ROLES"))
	if err != nil {
		return nil, err
	}
	config.LevelRoles = roles

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks struct constraints and the environment-dependent required fields
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Environment != "test" && c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	// If DatabaseName is provided, ensure it's not empty
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	return nil
}

// parseLevelRoles parses "level:roleID" pairs separated by commas
func parseLevelRoles(raw string) (map[int64]string, error) {
	roles := make(map[int64]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		levelStr, roleID, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(roleID) == "" {
			return nil, fmt.Errorf("invalid LEVEL_ROLES entry %q", pair)
		}
		level, err := strconv.ParseInt(strings.TrimSpace(levelStr), 10, 64)
		if err != nil || level <= 0 {
			return nil, fmt.Errorf("invalid level in LEVEL_ROLES entry %q", pair)
		}
		roles[level] = strings.TrimSpace(roleID)
	}
	return roles, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		StorageBackend:      StorageBackendJSON,
		DataDir:             os.TempDir(),
		LevelExpUnit:        models.DefaultLevelExpUnit,
		MessageExp:          15,
		MessageExpCooldown:  time.Minute,
		RoundTimeout:        30 * time.Second,
		QuizRounds:          10,
		MinQuestions:        10,
		SessionMaxLifetime:  time.Hour,
		RoundRewardCurrency: 30,
		RoundRewardExp:      30,
		LevelRoles:          map[int64]string{},
		DebugAPIPort:        8899,
		Environment:         "test",
	}
}
