// Package config loads the two configuration surfaces: credentials and
// knobs from the environment, and the run description (destination,
// sources, flair map, prompt) from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultPrompt = "Summarize the following text into 1-2 clear, concise sentences " +
	"suitable for a Reddit post, highlighting why it's relevant to large " +
	"language model (LLM) security:\n\n{content}"

const defaultDisclaimer = "*Automated post. Please discuss below.*"

type Config struct {
	// Reddit settings
	RedditClientID     string
	RedditClientSecret string
	RedditUsername     string
	RedditPassword     string
	UserAgent          string

	// AI settings
	AIProvider  string // "openai", "gemini" or "none"
	OpenAIKey   string
	GeminiKey   string
	Model       string
	MaxTokens   int
	Temperature float64

	// App settings
	RunConfigPath  string
	RequestTimeout time.Duration
	AITimeout      time.Duration
	Debug          bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		AIProvider:     "openai",
		MaxTokens:      150,
		Temperature:    0.3,
		RunConfigPath:  "configs/sources.yaml",
		RequestTimeout: 30 * time.Second,
		AITimeout:      60 * time.Second,
	}

	// Load from environment
	cfg.RedditClientID = os.Getenv("REDDIT_CLIENT_ID")
	cfg.RedditClientSecret = os.Getenv("REDDIT_CLIENT_SECRET")
	cfg.RedditUsername = os.Getenv("REDDIT_USERNAME")
	cfg.RedditPassword = os.Getenv("REDDIT_PASSWORD")
	cfg.UserAgent = getEnvOrDefault("USER_AGENT", "llmsecbot/1.0")

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GeminiKey = os.Getenv("GEMINI_API_KEY")
	cfg.AIProvider = getEnvOrDefault("AI_PROVIDER", cfg.AIProvider)
	cfg.Model = os.Getenv("AI_MODEL")
	cfg.MaxTokens = getEnvIntOrDefault("AI_MAX_TOKENS", cfg.MaxTokens)

	if v := os.Getenv("AI_TEMPERATURE"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val >= 0 {
			cfg.Temperature = val
		}
	}

	cfg.RunConfigPath = getEnvOrDefault("RUN_CONFIG_PATH", cfg.RunConfigPath)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("AI_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.AITimeout = time.Duration(val) * time.Second
		}
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	// Provider default models
	if cfg.Model == "" {
		switch cfg.AIProvider {
		case "gemini":
			cfg.Model = "gemini-1.5-flash"
		default:
			cfg.Model = "gpt-3.5-turbo"
		}
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.RedditClientID == "" {
		return fmt.Errorf("REDDIT_CLIENT_ID is required")
	}
	if c.RedditClientSecret == "" {
		return fmt.Errorf("REDDIT_CLIENT_SECRET is required")
	}
	if c.RedditUsername == "" {
		return fmt.Errorf("REDDIT_USERNAME is required")
	}
	if c.RedditPassword == "" {
		return fmt.Errorf("REDDIT_PASSWORD is required")
	}
	switch c.AIProvider {
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	case "gemini":
		if c.GeminiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case "none":
		// summaries pass through unrewritten
	default:
		return fmt.Errorf("AI_PROVIDER must be 'openai', 'gemini' or 'none'")
	}
	return nil
}

// SourceConfig describes one configured origin in the run config.
type SourceConfig struct {
	Name              string   `yaml:"name"`
	Kind              string   `yaml:"kind"` // "feed" or "reddit_search"
	URL               string   `yaml:"url"`
	URLTemplate       string   `yaml:"url_template"` // one %s, gets the escaped query
	Query             string   `yaml:"query"`
	UnwrapRedirect    bool     `yaml:"unwrap_redirect"`
	TimeFilter        string   `yaml:"time_filter"`
	Limit             int      `yaml:"limit"`
	ExcludeSubreddits []string `yaml:"exclude_subreddits"`
}

// RunConfig is the YAML run description.
type RunConfig struct {
	Subreddit  string            `yaml:"subreddit"`
	MaxPosts   int               `yaml:"max_posts"`
	Disclaimer string            `yaml:"disclaimer"`
	Prompt     string            `yaml:"prompt"`
	FlairMap   map[string]string `yaml:"flair_map"`
	Sources    []SourceConfig    `yaml:"sources"`
}

// LoadRun reads and validates the YAML run config.
func LoadRun(path string) (*RunConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	run := &RunConfig{
		MaxPosts:   3,
		Disclaimer: defaultDisclaimer,
		Prompt:     defaultPrompt,
	}
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(run); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if run.Subreddit == "" {
		return nil, fmt.Errorf("%s: subreddit is required", path)
	}
	if len(run.Sources) == 0 {
		return nil, fmt.Errorf("%s: at least one source is required", path)
	}

	for i := range run.Sources {
		src := &run.Sources[i]
		if src.Name == "" {
			return nil, fmt.Errorf("%s: source %d has no name", path, i)
		}
		switch src.Kind {
		case "feed":
			if src.URL == "" && src.URLTemplate == "" {
				return nil, fmt.Errorf("%s: feed source %q needs url or url_template", path, src.Name)
			}
		case "reddit_search":
			if src.Query == "" {
				return nil, fmt.Errorf("%s: reddit_search source %q needs a query", path, src.Name)
			}
			if src.TimeFilter == "" {
				src.TimeFilter = "day"
			}
			if src.Limit <= 0 {
				src.Limit = 10
			}
		default:
			return nil, fmt.Errorf("%s: source %q has unknown kind %q", path, src.Name, src.Kind)
		}
	}

	return run, nil
}
