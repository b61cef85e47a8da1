package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App                 `mapstructure:"app"`
	AI         AI                  `mapstructure:"ai"`
	Retry      Retry               `mapstructure:"retry"`
	Links      Links               `mapstructure:"links"`
	Properties map[string]Property `mapstructure:"properties"`
	Draft      Draft               `mapstructure:"draft"`
	Server     Server              `mapstructure:"server"`
	PostHog    PostHog             `mapstructure:"posthog"`
	Logging    Logging             `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug           bool   `mapstructure:"debug"`
	DefaultProperty string `mapstructure:"default_property"`
	Timezone        string `mapstructure:"timezone"`
}

// AI holds provider configuration
type AI struct {
	Provider string       `mapstructure:"provider"` // gemini or openai
	Gemini   GeminiConfig `mapstructure:"gemini"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	EmbeddingDims  int32  `mapstructure:"embedding_dims"`
	Timeout        string `mapstructure:"timeout"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	BaseURL        string `mapstructure:"base_url"`
	Timeout        string `mapstructure:"timeout"`
}

// Retry controls the exponential backoff applied to provider calls
type Retry struct {
	MaxTries        uint    `mapstructure:"max_tries"`
	InitialInterval string  `mapstructure:"initial_interval"`
	Multiplier      float64 `mapstructure:"multiplier"`
}

// Links holds internal link index configuration
type Links struct {
	DataDir    string `mapstructure:"data_dir"`    // seed JSONL files
	StorageDir string `mapstructure:"storage_dir"` // built file indexes
	Backend    string `mapstructure:"backend"`     // file or postgres
	DSN        string `mapstructure:"dsn"`
	BatchSize  int    `mapstructure:"batch_size"`
	DefaultK   int    `mapstructure:"default_k"`
}

// Property describes one publishing property and its link requirements
type Property struct {
	Domains       []string       `mapstructure:"domains"`
	RequiredLinks []RequiredLink `mapstructure:"required_links"`
}

// RequiredLink is a link that must appear in every article for a property
type RequiredLink struct {
	Title   string   `mapstructure:"title"`
	URL     string   `mapstructure:"url"`
	Anchors []string `mapstructure:"anchors"`
}

// Draft holds draft executor configuration
type Draft struct {
	KeywordTarget   int    `mapstructure:"keyword_target"`
	MaxLinks        int    `mapstructure:"max_links"`
	DefaultState    string `mapstructure:"default_state"`
	LinksPerSection int    `mapstructure:"links_per_section"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	ReadTimeout     string   `mapstructure:"read_timeout"`
	WriteTimeout    string   `mapstructure:"write_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
	CORSEnabled     bool     `mapstructure:"cors_enabled"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
}

// PostHog holds usage analytics configuration
type PostHog struct {
	APIKey string `mapstructure:"api_key"`
	Host   string `mapstructure:"host"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".planwrite")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.default_property", "action_network")
	viper.SetDefault("app.timezone", "America/New_York")

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.embedding_model", "gemini-embedding-001")
	viper.SetDefault("ai.gemini.embedding_dims", 768)
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "60s")

	viper.SetDefault("retry.max_tries", 3)
	viper.SetDefault("retry.initial_interval", "500ms")
	viper.SetDefault("retry.multiplier", 2.0)

	viper.SetDefault("links.data_dir", "data")
	viper.SetDefault("links.storage_dir", "storage")
	viper.SetDefault("links.backend", "file")
	viper.SetDefault("links.batch_size", 64)
	viper.SetDefault("links.default_k", 3)

	viper.SetDefault("properties", map[string]any{
		"action_network": map[string]any{"domains": []string{"actionnetwork.com"}},
		"vegas_insider":  map[string]any{"domains": []string{"vegasinsider.com"}},
		"sportshandle":   map[string]any{"domains": []string{"sportshandle.com"}},
		"rotogrinders":   map[string]any{"domains": []string{"rotogrinders.com"}},
		"fantasy_labs":   map[string]any{"domains": []string{"fantasylabs.com"}},
	})

	viper.SetDefault("draft.keyword_target", 9)
	viper.SetDefault("draft.max_links", 12)
	viper.SetDefault("draft.default_state", "ALL")
	viper.SetDefault("draft.links_per_section", 3)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "5m")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.cors_enabled", true)
	viper.SetDefault("server.cors_origins", []string{"*"})

	viper.SetDefault("posthog.host", "https://app.posthog.com")

	viper.SetDefault("logging.level", "info")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.provider", []string{
		"PLANWRITE_PROVIDER",
		"LLM_PROVIDER",
	})

	bindEnvKeys("links.dsn", []string{
		"DATABASE_URL",
		"PLANWRITE_DATABASE_URL",
	})

	bindEnvKeys("posthog.api_key", []string{
		"POSTHOG_API_KEY",
		"POSTHOG_KEY",
	})

	bindEnvKeys("posthog.host", []string{
		"POSTHOG_HOST",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"PLANWRITE_DEBUG",
	})

	bindEnvKeys("app.default_property", []string{
		"OFFERS_PROPERTY",
		"PLANWRITE_PROPERTY",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Links.DataDir != "" {
		config.Links.DataDir = expandPath(config.Links.DataDir)
	}
	if config.Links.StorageDir != "" {
		config.Links.StorageDir = expandPath(config.Links.StorageDir)
	}
	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.Links.Backend = strings.ToLower(strings.TrimSpace(config.Links.Backend))
	config.Draft.DefaultState = strings.ToUpper(strings.TrimSpace(config.Draft.DefaultState))

	durations := map[string]string{
		"ai.gemini.timeout":       config.AI.Gemini.Timeout,
		"ai.openai.timeout":       config.AI.OpenAI.Timeout,
		"retry.initial_interval":  config.Retry.InitialInterval,
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig checks value ranges and cross-field requirements. API keys
// are checked when a provider client is built, so offline commands work
// without credentials.
func validateConfig(config *Config) error {
	var errors []string

	switch config.AI.Provider {
	case "gemini", "openai":
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: gemini, openai", config.AI.Provider))
	}

	switch config.Links.Backend {
	case "file":
	case "postgres":
		if config.Links.DSN == "" {
			errors = append(errors, "Postgres link backend requires a DSN. Set DATABASE_URL or links.dsn")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown links backend: %s. Supported: file, postgres", config.Links.Backend))
	}

	if config.Links.BatchSize <= 0 {
		errors = append(errors, "links.batch_size must be positive")
	}
	if config.Links.DefaultK <= 0 {
		errors = append(errors, "links.default_k must be positive")
	}
	if config.Retry.MaxTries == 0 {
		errors = append(errors, "retry.max_tries must be at least 1")
	}
	if config.Draft.KeywordTarget <= 0 {
		errors = append(errors, "draft.keyword_target must be positive")
	}
	if config.Draft.MaxLinks < 0 {
		errors = append(errors, "draft.max_links must not be negative")
	}

	for name, prop := range config.Properties {
		for i, link := range prop.RequiredLinks {
			if link.Title == "" || link.URL == "" {
				errors = append(errors, fmt.Sprintf("properties.%s.required_links[%d] needs both title and url", name, i))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App         { return Get().App }
func GetAI() AI           { return Get().AI }
func GetRetry() Retry     { return Get().Retry }
func GetLinks() Links     { return Get().Links }
func GetDraft() Draft     { return Get().Draft }
func GetServer() Server   { return Get().Server }
func GetPostHog() PostHog { return Get().PostHog }
func GetLogging() Logging { return Get().Logging }

func GetGeminiAPIKey() string { return Get().AI.Gemini.APIKey }
func GetOpenAIAPIKey() string { return Get().AI.OpenAI.APIKey }
func IsDebugMode() bool       { return Get().App.Debug }

// GetProperty returns the named property, or a zero Property when unknown
func GetProperty(name string) Property {
	return Get().Properties[strings.ToLower(name)]
}

// PropertyForDomain returns the property whose domains include host, or ""
func (c *Config) PropertyForDomain(host string) string {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	for name, prop := range c.Properties {
		for _, d := range prop.Domains {
			d = strings.TrimPrefix(strings.ToLower(d), "www.")
			if host == d || strings.HasSuffix(host, "."+d) {
				return name
			}
		}
	}
	return ""
}

// PropertyDomains returns a domain to property map for every configured property
func (c *Config) PropertyDomains() map[string]string {
	out := make(map[string]string)
	for name, prop := range c.Properties {
		for _, d := range prop.Domains {
			out[strings.TrimPrefix(strings.ToLower(d), "www.")] = name
		}
	}
	return out
}

// Duration parses a validated duration string, falling back when empty
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
