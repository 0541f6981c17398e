package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	CaptchaAuto   = "auto"
	CaptchaManual = "manual"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	BaseURL         string        `yaml:"base_url"`
	MaxPages        int           `yaml:"max_pages"`
	Headless        bool          `yaml:"headless"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`
	WaitTimeout     time.Duration `yaml:"wait_timeout"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	WindowWidth     int           `yaml:"window_width"`
	WindowHeight    int           `yaml:"window_height"`
	LogLevel        string        `yaml:"log_level"`
	CSVPath         string        `yaml:"csv_path"`

	Selectors Selectors     `yaml:"selectors"`
	Captcha   CaptchaConfig `yaml:"captcha"`
	Storage   StorageConfig `yaml:"storage"`
}

// Selectors are the CSS selectors the listing page is read with.
type Selectors struct {
	Container    string `yaml:"container"`
	Description  string `yaml:"description"`
	Location     string `yaml:"location"`
	Price        string `yaml:"price"`
	CaptchaFrame string `yaml:"captcha_frame"`
}

type CaptchaConfig struct {
	Mode             string        `yaml:"mode"`
	APIKey           string        `yaml:"api_key"`
	SubmitURL        string        `yaml:"submit_url"`
	ResultURL        string        `yaml:"result_url"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	MaxAttempts      int           `yaml:"max_attempts"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	ResponseField    string        `yaml:"response_field"`
	Callback         string        `yaml:"callback"`
	PauseOnFirstPage bool          `yaml:"pause_on_first_page"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://www.yad2.co.il/pets/all",
		MaxPages:        10,
		Headless:        false,
		NavigateTimeout: 60 * time.Second,
		WaitTimeout:     30 * time.Second,
		SettleDelay:     5 * time.Second,
		WindowWidth:     1920,
		WindowHeight:    1080,
		LogLevel:        "info",
		CSVPath:         "output/pets.csv",
		Selectors: Selectors{
			Container:    ".feeditem.table",
			Description:  ".row-1",
			Location:     ".second-obj .val",
			Price:        ".third-obj .price",
			CaptchaFrame: `iframe[src*="recaptcha"]`,
		},
		Captcha: CaptchaConfig{
			Mode:           CaptchaAuto,
			SubmitURL:      "http://2captcha.com/in.php",
			ResultURL:      "http://2captcha.com/res.php",
			PollInterval:   10 * time.Second,
			MaxAttempts:    10,
			RequestTimeout: 30 * time.Second,
			ResponseField:  "g-recaptcha-response",
			Callback:       "recaptchaCallback",
		},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: "pets.db",
			DBHost:     "localhost",
			DBPort:     5432,
			DBUser:     "postgres",
			DBPassword: "postgres",
			DBName:     "pets",
			DBSSLMode:  "disable",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment. A missing .env file is not an error; a missing YAML file is
// only an error when path is non-empty.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	applyEnv(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.BaseURL = getEnvAsString("YAD2_BASE_URL", cfg.BaseURL)
	cfg.MaxPages = getEnvAsInt("YAD2_MAX_PAGES", cfg.MaxPages)
	cfg.LogLevel = getEnvAsString("LOG_LEVEL", cfg.LogLevel)
	cfg.Captcha.APIKey = getEnvAsString("TWOCAPTCHA_API_KEY", cfg.Captcha.APIKey)
	cfg.Captcha.Mode = getEnvAsString("CAPTCHA_MODE", cfg.Captcha.Mode)
	cfg.Storage.Driver = getEnvAsString("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.SQLitePath = getEnvAsString("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.DBHost = getEnvAsString("DB_HOST", cfg.Storage.DBHost)
	cfg.Storage.DBPort = getEnvAsInt("DB_PORT", cfg.Storage.DBPort)
	cfg.Storage.DBUser = getEnvAsString("DB_USER", cfg.Storage.DBUser)
	cfg.Storage.DBPassword = getEnvAsString("DB_PASSWORD", cfg.Storage.DBPassword)
	cfg.Storage.DBName = getEnvAsString("DB_NAME", cfg.Storage.DBName)
}

// Validate rejects configurations the scraper cannot run with.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1, got %d", c.MaxPages)
	}
	if c.WaitTimeout <= 0 || c.NavigateTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.SettleDelay < 0 || c.Captcha.PollInterval < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.Captcha.MaxAttempts < 1 {
		return fmt.Errorf("captcha.max_attempts must be at least 1, got %d", c.Captcha.MaxAttempts)
	}
	switch c.Captcha.Mode {
	case CaptchaAuto, CaptchaManual:
	default:
		return fmt.Errorf("unknown captcha mode %q", c.Captcha.Mode)
	}
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return valueInt
}
