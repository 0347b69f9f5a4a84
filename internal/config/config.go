package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPixelDensity is the calibration used when a request supplies none (pixels per mm).
const DefaultPixelDensity = 95 / 7.9375

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Analysis    AnalysisConfig    `mapstructure:"analysis"`
	ImageAccess ImageAccessConfig `mapstructure:"image_access"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug or release
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	AdminToken   string        `mapstructure:"admin_token"` // empty disables the region write guard
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AnalysisConfig struct {
	PixelDensity           float64 `mapstructure:"pixel_density"`
	ActiveRegionsOnly      bool    `mapstructure:"active_regions_only"`
	SpatialIndexMinDefects int     `mapstructure:"spatial_index_min_defects"` // 0 keeps the plain scan
	BatchWorkers           int     `mapstructure:"batch_workers"`
}

type ImageAccessConfig struct {
	Protocol     string    `mapstructure:"protocol"` // local or ftp
	FallbackPath string    `mapstructure:"fallback_path"`
	FTP          FTPConfig `mapstructure:"ftp"`
}

type FTPConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	BasePath     string        `mapstructure:"base_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Directory string `mapstructure:"directory"`
}

// Load reads .env, then the YAML config file (CONFIG_FILE, default config/config.yaml),
// then PORO_* environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	return LoadFile(getEnv("CONFIG_FILE", filepath.Join("config", "config.yaml")))
}

// LoadFile is Load without the .env step, for an explicit config path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PORO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Secrets keep their historical variable names.
	cfg.Database.Path = getEnv("DATABASE_PATH", cfg.Database.Path)
	cfg.ImageAccess.FTP.Password = getEnv("IMAGE_ACCESS_FTP_PASSWORD", cfg.ImageAccess.FTP.Password)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if !(c.Analysis.PixelDensity > 0) {
		return fmt.Errorf("analysis.pixel_density must be positive, got %v", c.Analysis.PixelDensity)
	}
	if c.Analysis.BatchWorkers < 1 {
		return fmt.Errorf("analysis.batch_workers must be at least 1, got %d", c.Analysis.BatchWorkers)
	}
	switch c.ImageAccess.Protocol {
	case "local", "ftp":
	default:
		return fmt.Errorf("image_access.protocol must be local or ftp, got %q", c.ImageAccess.Protocol)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.admin_token", "")

	v.SetDefault("database.path", filepath.Join("data", "porosity.db"))

	v.SetDefault("analysis.pixel_density", DefaultPixelDensity)
	v.SetDefault("analysis.active_regions_only", false)
	v.SetDefault("analysis.spatial_index_min_defects", 64)
	v.SetDefault("analysis.batch_workers", 4)

	v.SetDefault("image_access.protocol", "local")
	v.SetDefault("image_access.fallback_path", filepath.Join(".", "images"))
	v.SetDefault("image_access.ftp.host", "")
	v.SetDefault("image_access.ftp.port", 21)
	v.SetDefault("image_access.ftp.username", "")
	v.SetDefault("image_access.ftp.password", "")
	v.SetDefault("image_access.ftp.base_path", "")
	v.SetDefault("image_access.ftp.timeout", 10*time.Second)
	v.SetDefault("image_access.ftp.max_retries", 2)
	v.SetDefault("image_access.ftp.cache_enabled", true)
	v.SetDefault("image_access.ftp.cache_ttl", time.Hour)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.directory", filepath.Join(".", "logs"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
