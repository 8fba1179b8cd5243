package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	BackendMinio  = "minio"
	BackendMemory = "memory"
)

// Config holds all configuration values. Every key can be overridden by the
// upper-case environment variable of the same name (db_host -> DB_HOST).
type Config struct {
	AppPort string `mapstructure:"storage_port"`

	DBHost     string `mapstructure:"db_host"`
	DBPort     string `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`

	// StorageBackend selects the content store: "minio" or "memory".
	StorageBackend string `mapstructure:"storage_backend"`
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
	MinioSSL       bool   `mapstructure:"minio_ssl"`

	// Revision cache. Redis is used when RedisHost is set.
	RedisHost        string        `mapstructure:"redis_host"`
	RedisPort        string        `mapstructure:"redis_port"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	CacheMemoryBytes int64         `mapstructure:"cache_memory_bytes"`

	// External exchange-format decoder, see conversion.CommandDecoder.
	DecoderCommand string        `mapstructure:"decoder_command"`
	DecoderArgs    []string      `mapstructure:"decoder_args"`
	DecoderTimeout time.Duration `mapstructure:"decoder_timeout"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	ProjectName   string `mapstructure:"project_name"`
	DefaultAuthor string `mapstructure:"default_author"`
	MaxUploadMB   int    `mapstructure:"max_upload_mb"`
}

// ReportsEnabled reports whether a database is configured for published reports.
func (c *Config) ReportsEnabled() bool {
	return c.DBHost != ""
}

// LoadConfig reads defaults, the optional file named by REVIEW_CONFIG, and the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("storage_port", "8080")
	v.SetDefault("db_host", "")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "")
	v.SetDefault("storage_backend", BackendMinio)
	v.SetDefault("minio_endpoint", "")
	v.SetDefault("minio_access_key", "")
	v.SetDefault("minio_secret_key", "")
	v.SetDefault("minio_bucket", "bim-models")
	v.SetDefault("minio_ssl", false)
	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("cache_ttl", "30m")
	v.SetDefault("cache_memory_bytes", int64(256<<20))
	v.SetDefault("decoder_command", "ifc-dump")
	v.SetDefault("decoder_args", []string{"{input}", "{output}"})
	v.SetDefault("decoder_timeout", "5m")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("project_name", "BIM Review")
	v.SetDefault("default_author", "Anonymous")
	v.SetDefault("max_upload_mb", 200)

	if path := os.Getenv("REVIEW_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected backends are fully configured.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMinio:
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" || c.MinioBucket == "" {
			return fmt.Errorf("minio configuration is incomplete")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.DBHost != "" && (c.DBUser == "" || c.DBName == "") {
		return fmt.Errorf("database configuration is incomplete")
	}
	if c.DecoderCommand == "" {
		return fmt.Errorf("decoder command must not be empty")
	}
	return nil
}

// ConnectDatabase initializes a GORM database connection to PostgreSQL.
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
