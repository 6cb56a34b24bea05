package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "TASKS"

type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

type StorageConfig struct {
	Type   string `mapstructure:"type" validate:"required,oneof=file sqlite postgres memory"` // "file", "sqlite", "postgres" или "memory"
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json yaml yml"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections" validate:"gte=0"`
	MinConnections int           `mapstructure:"min_connections" validate:"gte=0"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`
}

type WorkerConfig struct {
	Interval  time.Duration `mapstructure:"interval" validate:"gt=0"`
	BatchSize int           `mapstructure:"batch_size" validate:"gt=0"`
}

// Load читает конфиг из path (или ищет config.yml в текущем каталоге и ~/.config/tasks),
// затем накладывает переменные окружения TASKS_*. Отсутствие файла - не ошибка.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "tasks"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("не могу прочитать конфиг: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфига: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default - конфигурация без файла и переменных окружения
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Development: false, Level: "warn"},
		Storage: StorageConfig{Type: "file", Path: DefaultStoragePath(), Format: "json"},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
		},
		Worker: WorkerConfig{Interval: time.Minute, BatchSize: 100},
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("неверная конфигурация: %w", err)
	}
	if c.Storage.Type == "postgres" && c.Database.URL == "" {
		return errors.New("неверная конфигурация: для storage.type=postgres нужен database.url")
	}
	if (c.Storage.Type == "file" || c.Storage.Type == "sqlite") && c.Storage.Path == "" {
		return fmt.Errorf("неверная конфигурация: для storage.type=%s нужен storage.path", c.Storage.Type)
	}
	if c.Database.MaxConnections > 0 && c.Database.MinConnections > c.Database.MaxConnections {
		return errors.New("неверная конфигурация: min_connections больше max_connections")
	}
	return nil
}

func DefaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("data", "tasks.json")
	}
	return filepath.Join(home, ".tasks", "tasks.json")
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("logging.level", d.Logging.Level)

	v.SetDefault("storage.type", d.Storage.Type)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.format", d.Storage.Format)

	v.SetDefault("database.url", d.Database.URL)
	v.SetDefault("database.max_connections", d.Database.MaxConnections)
	v.SetDefault("database.min_connections", d.Database.MinConnections)
	v.SetDefault("database.idle_timeout", d.Database.IdleTimeout)

	v.SetDefault("worker.interval", d.Worker.Interval)
	v.SetDefault("worker.batch_size", d.Worker.BatchSize)
}
