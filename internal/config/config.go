package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"`   // postgres, sqlite
		DSN      string `yaml:"url"`      // строка подключения или путь к файлу sqlite
		Listener string `yaml:"listener"` // pgx, pq (только для postgres)
		Channel  string `yaml:"channel"`  // канал LISTEN/NOTIFY для новых работ
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // минуты
	} `yaml:"jwt"`

	Storage struct {
		Type       string `yaml:"type"`        // local, cloudflare_r2
		BasePath   string `yaml:"base_path"`   // For local storage
		BaseURL    string `yaml:"base_url"`    // Public URL base
		Bucket     string `yaml:"bucket"`      // For R2
		AccountID  string `yaml:"account_id"`  // For R2
		AccessKey  string `yaml:"access_key"`  // For R2
		SecretKey  string `yaml:"secret_key"`  // For R2
		PublicRead bool   `yaml:"public_read"` // Отдавать публичные URL вместо подписанных
	} `yaml:"storage"`

	Upload struct {
		MaxSize          int64    `yaml:"max_size"`            // Max file size in bytes
		AllowedTypes     []string `yaml:"allowed_types"`       // Allowed MIME types
		ImageQuality     int      `yaml:"image_quality"`       // JPEG quality (1-100)
		ThumbnailWidth   int      `yaml:"thumbnail_width"`     // ширина превью, px
		MaxPending       int      `yaml:"max_pending"`         // черновиков загрузки на сессию
		PendingTTLMinute int      `yaml:"pending_ttl_minutes"` // время жизни черновика
	} `yaml:"upload"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

var AppConfig *Config

// PendingTTL возвращает время жизни черновика загрузки
func (c *Config) PendingTTL() time.Duration {
	return time.Duration(c.Upload.PendingTTLMinute) * time.Minute
}

// TokenTTL возвращает время жизни JWT
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTL) * time.Minute
}

// Addr возвращает адрес для http.Server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Default возвращает конфиг со значениями по умолчанию (тесты, локальный запуск)
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults заполняет незаданные поля
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Listener == "" {
		c.Database.Listener = "pgx"
	}
	if c.Database.Channel == "" {
		c.Database.Channel = "artwork_added"
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 60 * 24
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.BasePath == "" {
		c.Storage.BasePath = "./uploads"
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = "/api/v1/files"
	}
	if c.Upload.MaxSize == 0 {
		c.Upload.MaxSize = 10 * 1024 * 1024 // 10MB
	}
	if len(c.Upload.AllowedTypes) == 0 {
		c.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	if c.Upload.ImageQuality == 0 {
		c.Upload.ImageQuality = 85
	}
	if c.Upload.ThumbnailWidth == 0 {
		c.Upload.ThumbnailWidth = 480
	}
	if c.Upload.MaxPending == 0 {
		c.Upload.MaxPending = 20
	}
	if c.Upload.PendingTTLMinute == 0 {
		c.Upload.PendingTTLMinute = 30
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Database.Listener {
	case "pgx", "pq":
	default:
		return fmt.Errorf("unsupported database listener %q", c.Database.Listener)
	}
	switch c.Storage.Type {
	case "local", "cloudflare_r2":
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	return nil
}

// LoadFile читает конфиг из YAML файла
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv собирает конфиг из переменных окружения
func LoadEnv() (*Config, error) {
	var cfg Config

	cfg.Database.DSN = os.Getenv("DATABASE_URL")
	cfg.Database.Driver = os.Getenv("DATABASE_DRIVER")
	cfg.Database.Listener = os.Getenv("DATABASE_LISTENER")
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")

	cfg.Storage.Type = os.Getenv("STORAGE_TYPE")
	cfg.Storage.BasePath = os.Getenv("STORAGE_BASE_PATH")
	cfg.Storage.BaseURL = os.Getenv("STORAGE_BASE_URL")
	cfg.Storage.AccountID = os.Getenv("R2_ACCOUNT_ID")
	cfg.Storage.Bucket = os.Getenv("R2_BUCKET")
	cfg.Storage.AccessKey = os.Getenv("R2_ACCESS_KEY")
	cfg.Storage.SecretKey = os.Getenv("R2_SECRET_KEY")

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = strings.Split(origins, ",")
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig загружает глобальный конфиг.
// Если задан DATABASE_URL, конфиг берётся из окружения, иначе из config.yaml.
func LoadConfig() {
	var (
		cfg *Config
		err error
	)

	if os.Getenv("DATABASE_URL") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}
		log.Printf("Загрузка конфигурации из %s", configPath)
		cfg, err = LoadFile(configPath)
	} else {
		log.Println("Загрузка конфигурации из переменных окружения")
		cfg, err = LoadEnv()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
