package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anime-shed/ui-critic-go/pkg/validation"

	"github.com/spf13/viper"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Crop store backends
const (
	CropStoreLocal = "local"
	CropStoreMinio = "minio"
	CropStoreAzure = "azure"
)

// DefaultModelBaseURL is Gemini's OpenAI-compatible endpoint
const DefaultModelBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Config holds the server configuration
type Config struct {
	Host        string
	Port        string
	Environment string
	GinMode     string
	LogLevel    string
	LogFormat   string

	RequestTimeout time.Duration
	ModelTimeout   time.Duration
	MaxUploadSize  int64
	UploadDir      string

	Model ModelConfig

	CropStore      string
	CropsDir       string
	CropsURLPrefix string
	Minio          MinioConfig
	Azure          AzureConfig
}

// ModelConfig selects the model endpoint
type ModelConfig struct {
	APIKey  string
	Name    string
	BaseURL string
}

// MinioConfig configures the minio crop store
type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
}

// AzureConfig configures the azure crop store
type AzureConfig struct {
	AccountName string
	AccountKey  string
	Container   string
	ServiceURL  string
}

// ServerAddress returns the host:port to listen on
func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Load reads configuration from defaults, an optional dotenv file and the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("MODEL_TIMEOUT", "25s")
	v.SetDefault("MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	v.SetDefault("UPLOAD_DIR", os.TempDir())
	v.SetDefault("MODEL_NAME", "gemini-1.5-flash")
	v.SetDefault("MODEL_BASE_URL", DefaultModelBaseURL)
	v.SetDefault("CROP_STORE", CropStoreLocal)
	v.SetDefault("CROPS_DIR", "public/crops")
	v.SetDefault("CROPS_URL_PREFIX", "/crops")
	v.SetDefault("MINIO_REGION", "us-east-1")
	v.SetDefault("MINIO_BUCKET", "crops")
	v.SetDefault("AZURE_CONTAINER", "crops")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Host:           v.GetString("HOST"),
		Port:           v.GetString("PORT"),
		Environment:    v.GetString("ENVIRONMENT"),
		GinMode:        v.GetString("GIN_MODE"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		ModelTimeout:   v.GetDuration("MODEL_TIMEOUT"),
		MaxUploadSize:  v.GetInt64("MAX_UPLOAD_SIZE"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		Model: ModelConfig{
			APIKey:  v.GetString("GEMINI_API_KEY"),
			Name:    v.GetString("MODEL_NAME"),
			BaseURL: v.GetString("MODEL_BASE_URL"),
		},
		CropStore:      strings.ToLower(strings.TrimSpace(v.GetString("CROP_STORE"))),
		CropsDir:       v.GetString("CROPS_DIR"),
		CropsURLPrefix: strings.TrimRight(v.GetString("CROPS_URL_PREFIX"), "/"),
		Minio: MinioConfig{
			Endpoint:      v.GetString("MINIO_ENDPOINT"),
			AccessKey:     v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:     v.GetString("MINIO_SECRET_KEY"),
			Bucket:        v.GetString("MINIO_BUCKET"),
			Region:        v.GetString("MINIO_REGION"),
			UseSSL:        v.GetBool("MINIO_USE_SSL"),
			PublicBaseURL: v.GetString("MINIO_PUBLIC_BASE_URL"),
		},
		Azure: AzureConfig{
			AccountName: v.GetString("AZURE_STORAGE_ACCOUNT"),
			AccountKey:  v.GetString("AZURE_STORAGE_KEY"),
			Container:   v.GetString("AZURE_CONTAINER"),
			ServiceURL:  v.GetString("AZURE_SERVICE_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and backend-specific requirements
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", c.MaxUploadSize)
	}
	if c.RequestTimeout <= 0 || c.ModelTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, model=%s)",
			c.RequestTimeout, c.ModelTimeout)
	}
	if c.ModelTimeout > c.RequestTimeout {
		return fmt.Errorf("MODEL_TIMEOUT (%s) must not exceed REQUEST_TIMEOUT (%s)",
			c.ModelTimeout, c.RequestTimeout)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE: %q", c.GinMode)
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		return fmt.Errorf("MODEL_NAME must not be empty")
	}
	if err := validation.NewEndpointValidator().Validate(c.Model.BaseURL); err != nil {
		return fmt.Errorf("invalid MODEL_BASE_URL: %w", err)
	}

	switch c.CropStore {
	case CropStoreLocal:
		if strings.TrimSpace(c.CropsDir) == "" {
			return fmt.Errorf("CROPS_DIR must not be empty")
		}
		if !strings.HasPrefix(c.CropsURLPrefix, "/") || c.CropsURLPrefix == "/" {
			return fmt.Errorf("CROPS_URL_PREFIX must be an absolute path below / (got %q)", c.CropsURLPrefix)
		}
	case CropStoreMinio:
		if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required for the minio crop store")
		}
		if c.Minio.PublicBaseURL != "" {
			if err := validation.NewEndpointValidator().Validate(c.Minio.PublicBaseURL); err != nil {
				return fmt.Errorf("invalid MINIO_PUBLIC_BASE_URL: %w", err)
			}
		}
	case CropStoreAzure:
		if c.Azure.AccountName == "" || c.Azure.AccountKey == "" || c.Azure.Container == "" {
			return fmt.Errorf("AZURE_STORAGE_ACCOUNT, AZURE_STORAGE_KEY and AZURE_CONTAINER are required for the azure crop store")
		}
	default:
		return fmt.Errorf("unsupported CROP_STORE: %q", c.CropStore)
	}
	return nil
}
