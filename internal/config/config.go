package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"indigo/internal/models"

	"github.com/joho/godotenv"
	yamlv2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Admin      AdminConfig      `yaml:"admin"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Google     GoogleConfig     `yaml:"google"`
	Session    SessionConfig    `yaml:"session"`
	Seed       SeedConfig       `yaml:"seed"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// PublicURL is the address shown in the admin banner; empty means the
	// request host is used.
	PublicURL       string        `yaml:"public_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	DBName         string `yaml:"dbname"`
	SSLMode        string `yaml:"sslmode"`
	MaxConnections int    `yaml:"max_connections"`
}

// DSN builds a libpq connection string.
func (p PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
	if p.MaxConnections > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", p.MaxConnections)
	}
	return dsn
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Channel  string `yaml:"channel"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type AdminConfig struct {
	PIN string `yaml:"pin"`
}

type AssistantConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type GoogleConfig struct {
	CredentialsFile   string `yaml:"credentials_file"`
	MenuSpreadsheetID string `yaml:"menu_spreadsheet_id"`
	SheetName         string `yaml:"sheet_name"`
}

// MirrorEnabled reports whether the Sheets mirror has everything it needs.
func (g GoogleConfig) MirrorEnabled() bool {
	return g.CredentialsFile != "" && g.MenuSpreadsheetID != ""
}

type SessionConfig struct {
	IdleTTL    time.Duration `yaml:"idle_ttl"`
	CookieName string        `yaml:"cookie_name"`
}

type SeedConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// Загружаем .env файл если существует
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case "postgres":
		if c.Database.Postgres.Host == "" || c.Database.Postgres.DBName == "" {
			return errors.New("postgres host and dbname are required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE") {
		return errors.New("telegram bot token is required when telegram is enabled")
	}

	if c.Assistant.Temperature < 0 || c.Assistant.TopP < 0 || c.Assistant.TopP > 1 {
		return errors.New("assistant temperature and top_p must be within range")
	}

	if c.Admin.PIN == "" {
		return errors.New("admin pin must not be empty")
	}

	return nil
}

// LoadSeed reads a starter catalog that replaces the built-in one.
func LoadSeed(path string) ([]models.MenuItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var seed struct {
		Items []models.MenuItem `yaml:"items"`
	}
	if err := yamlv2.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	if err := ValidateSeed(seed.Items); err != nil {
		return nil, err
	}
	return seed.Items, nil
}

// ValidateSeed checks ids, required fields and categories of a starter catalog.
func ValidateSeed(items []models.MenuItem) error {
	if len(items) == 0 {
		return errors.New("seed catalog is empty")
	}

	itemIDs := make(map[string]bool)
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("item '%s' has empty ID", item.Name)
		}
		if itemIDs[item.ID] {
			return fmt.Errorf("duplicate item ID found: %s", item.ID)
		}
		itemIDs[item.ID] = true

		if strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Price) == "" {
			return fmt.Errorf("item %s must have a name and a price", item.ID)
		}
		if !models.IsValidCategory(item.Category) {
			return fmt.Errorf("item %s has unknown category %q", item.ID, item.Category)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "indigo-menu"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = models.DefaultHTTPAddr
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "postgres" {
		if c.Database.Postgres.Port == 0 {
			c.Database.Postgres.Port = 5432
		}
		if c.Database.Postgres.SSLMode == "" {
			c.Database.Postgres.SSLMode = "disable"
		}
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = models.MenuCollection + ":changed"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Admin.PIN == "" {
		c.Admin.PIN = models.AdminPIN
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = models.DefaultAssistantModel
	}
	if c.Assistant.BaseURL == "" {
		c.Assistant.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.Assistant.Temperature == 0 {
		c.Assistant.Temperature = 0.8
	}
	if c.Assistant.TopP == 0 {
		c.Assistant.TopP = 0.95
	}
	if c.Google.SheetName == "" {
		c.Google.SheetName = "Menu"
	}
	if c.Session.IdleTTL == 0 {
		c.Session.IdleTTL = models.DefaultSessionIdleTTL
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "indigo_session"
	}
}
