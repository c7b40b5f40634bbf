package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"joblens/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Search struct {
		Roles     []string `yaml:"roles" validate:"min=1"`
		Locations []string `yaml:"locations" validate:"min=1"`
	} `yaml:"search"`

	Fetch struct {
		Backend         string        `yaml:"backend" validate:"oneof=browser searchapi firecrawl"`
		FallbackBackend string        `yaml:"fallback_backend"`
		MaxPages        int           `yaml:"max_pages" validate:"min=1"`
		MinDelay        time.Duration `yaml:"min_delay"`
		MaxDelay        time.Duration `yaml:"max_delay"`
		MaxRetries      int           `yaml:"max_retries" validate:"min=0"`
		BackoffBase     time.Duration `yaml:"backoff_base"`
		BackoffCap      time.Duration `yaml:"backoff_cap"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		RateLimit       int           `yaml:"rate_limit"` // requests per minute per host
	} `yaml:"fetch"`

	Workers struct {
		PoolSize   int           `yaml:"pool_size" validate:"min=1"`
		RunTimeout time.Duration `yaml:"run_timeout"`
	} `yaml:"workers"`

	Browser struct {
		UserAgent    string `yaml:"user_agent"`
		HeadlessMode bool   `yaml:"headless_mode"`
		StealthMode  bool   `yaml:"stealth_mode"`
		Captcha      struct {
			APIKey          string        `yaml:"api_key"`
			Timeout         time.Duration `yaml:"timeout"`
			EnableAutoSolve bool          `yaml:"enable_auto_solve"`
		} `yaml:"captcha"`
	} `yaml:"browser"`

	SearchAPI struct {
		APIKey         string        `yaml:"api_key"`
		BaseURL        string        `yaml:"base_url"`
		ResultsPerPage int           `yaml:"results_per_page"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"search_api"`

	Firecrawl struct {
		APIKey  string        `yaml:"api_key"`
		APIURL  string        `yaml:"api_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"firecrawl"`

	Aggregation struct {
		TrendWindowMonths int `yaml:"trend_window_months" validate:"min=1"`
		TopSkills         int `yaml:"top_skills"`
		TopCompanies      int `yaml:"top_companies"`
	} `yaml:"aggregation"`

	Insights struct {
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
		Enabled  bool   `yaml:"enabled"`
	} `yaml:"insights"`

	Output struct {
		Directory   string `yaml:"directory"`
		JSONLFile   string `yaml:"jsonl_file"`
		CSVFile     string `yaml:"csv_file"`
		SummaryFile string `yaml:"summary_file"`
	} `yaml:"output"`

	Scheduler struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"scheduler"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"redis"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	Vocabulary Vocabulary `yaml:"vocabulary"`
}

// Queries builds the (role x location) cross-product of fetch work for one
// run.
func (c *Config) Queries() []models.Query {
	queries := make([]models.Query, 0, len(c.Search.Roles)*len(c.Search.Locations))
	for _, role := range c.Search.Roles {
		for _, loc := range c.Search.Locations {
			queries = append(queries, models.Query{
				Role:     role,
				Location: loc,
				Backend:  c.Fetch.Backend,
			})
		}
	}
	return queries
}

// Validate checks the configuration before a run starts. Validation errors
// are the only run-fatal condition: nothing is fetched when they occur.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Fetch.MinDelay > c.Fetch.MaxDelay {
		return fmt.Errorf("invalid configuration: min_delay %v exceeds max_delay %v", c.Fetch.MinDelay, c.Fetch.MaxDelay)
	}
	if c.Fetch.FallbackBackend == c.Fetch.Backend {
		return fmt.Errorf("invalid configuration: fallback backend must differ from primary")
	}
	return nil
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second

	config.Search.Roles = []string{"Software Engineer", "Backend Engineer", "ML Engineer"}
	config.Search.Locations = []string{"United States", "India"}

	config.Fetch.Backend = "browser"
	config.Fetch.FallbackBackend = "searchapi"
	config.Fetch.MaxPages = 5
	config.Fetch.MinDelay = 2 * time.Second
	config.Fetch.MaxDelay = 5 * time.Second
	config.Fetch.MaxRetries = 3
	config.Fetch.BackoffBase = 3 * time.Second
	config.Fetch.BackoffCap = 60 * time.Second
	config.Fetch.RequestTimeout = 30 * time.Second
	config.Fetch.RateLimit = 60

	config.Workers.PoolSize = 4
	config.Workers.RunTimeout = 30 * time.Minute

	config.Browser.HeadlessMode = true
	config.Browser.StealthMode = true
	config.Browser.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	config.Browser.Captcha.Timeout = 120 * time.Second
	config.Browser.Captcha.EnableAutoSolve = false

	config.SearchAPI.BaseURL = "https://serpapi.com/search.json"
	config.SearchAPI.ResultsPerPage = 10
	config.SearchAPI.Timeout = 15 * time.Second

	config.Firecrawl.APIURL = "https://api.firecrawl.dev"
	config.Firecrawl.Timeout = 60 * time.Second

	config.Aggregation.TrendWindowMonths = 24
	config.Aggregation.TopSkills = 20
	config.Aggregation.TopCompanies = 20

	config.Insights.Provider = "claude"
	config.Insights.Model = "claude-3-haiku-20240307"

	config.Output.Directory = "output"
	config.Output.JSONLFile = "jobs.jsonl"
	config.Output.CSVFile = "jobs.csv"
	config.Output.SummaryFile = "run_summary.json"

	config.Scheduler.Cron = "0 6 * * 1"

	config.Redis.URL = ""
	config.Redis.Timeout = 5 * time.Second

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Vocabulary = DefaultVocabulary()

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	// Yaml may have provided a partial vocabulary; fill the gaps from the
	// compiled defaults so classification always has a full rule set.
	config.Vocabulary.fillDefaults()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if backend := os.Getenv("FETCH_BACKEND"); backend != "" {
		c.Fetch.Backend = backend
	}

	if fallback := os.Getenv("FETCH_FALLBACK_BACKEND"); fallback != "" {
		c.Fetch.FallbackBackend = fallback
	}

	if maxPages := os.Getenv("FETCH_MAX_PAGES"); maxPages != "" {
		if n, err := strconv.Atoi(maxPages); err == nil {
			c.Fetch.MaxPages = n
		}
	}

	if apiKey := os.Getenv("SEARCH_API_KEY"); apiKey != "" {
		c.SearchAPI.APIKey = apiKey
	}

	if baseURL := os.Getenv("SEARCH_API_BASE_URL"); baseURL != "" {
		c.SearchAPI.BaseURL = baseURL
	}

	if firecrawlAPIKey := os.Getenv("FIRECRAWL_API_KEY"); firecrawlAPIKey != "" {
		c.Firecrawl.APIKey = firecrawlAPIKey
	}

	if firecrawlAPIURL := os.Getenv("FIRECRAWL_API_URL"); firecrawlAPIURL != "" {
		c.Firecrawl.APIURL = firecrawlAPIURL
	}

	if captchaAPIKey := os.Getenv("CAPTCHA_API_KEY"); captchaAPIKey != "" {
		c.Browser.Captcha.APIKey = captchaAPIKey
	}

	// Also support 2CAPTCHA_API_KEY for compatibility
	if captchaAPIKey := os.Getenv("2CAPTCHA_API_KEY"); captchaAPIKey != "" {
		c.Browser.Captcha.APIKey = captchaAPIKey
	}

	if insightsKey := os.Getenv("INSIGHTS_API_KEY"); insightsKey != "" {
		c.Insights.APIKey = insightsKey
		c.Insights.Enabled = true
	}

	if model := os.Getenv("INSIGHTS_MODEL"); model != "" {
		c.Insights.Model = model
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if outputDir := os.Getenv("OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}
}
