// config реализует конфигурацию qrtoken-service: загрузка из YAML/ENV
// с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Backend токен-хранилища.
const (
	BackendMongo = "mongo"
	BackendRedis = "redis"
)

// Схемы идентичности токена (см. internal/storage.Scheme).
const (
	SchemeSingleSlot = "single_slot"
	SchemeAppendOnly = "append_only"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Ops      OpsConfig     `yaml:"ops"`
	Token    TokenConfig   `yaml:"token"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Notify   NotifyConfig  `yaml:"notify"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки основного HTTP-сервера (API).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50091"`
}

// OpsConfig — служебный HTTP (health/metrics).
type OpsConfig struct {
	Host string `yaml:"host" env:"OPS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"OPS_PORT" env-default:"50191"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (o OpsConfig) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// TokenConfig — параметры выпуска и хранения QR-токенов.
type TokenConfig struct {
	// Window — окно действия токена: expires_at = issued_at + Window.
	Window time.Duration `yaml:"window" env:"TOKEN_WINDOW" env-default:"60s"`
	// Retention — сколько истёкший токен доживает в хранилище
	// (различимый TOKEN_EXPIRED вместо NO_ACTIVE_TOKEN), прежде чем
	// будет вытеснен TTL-механизмом бэкенда.
	Retention time.Duration `yaml:"retention" env:"TOKEN_RETENTION" env-default:"24h"`
	// Scheme — идентичность токена: single_slot | append_only.
	Scheme string `yaml:"scheme" env:"TOKEN_SCHEME" env-default:"append_only"`
	// Backend — токен-хранилище: mongo | redis.
	Backend string `yaml:"backend" env:"TOKEN_BACKEND" env-default:"mongo"`
	// SlotID — идентификатор документа/ключа при single_slot.
	SlotID string `yaml:"slot_id" env:"TOKEN_SLOT_ID" env-default:"current"`
	// RetryInterval — пауза перед повтором после неудачной ротации.
	RetryInterval time.Duration `yaml:"retry_interval" env:"TOKEN_RETRY_INTERVAL" env-default:"5s"`
}

// DBConfig — настройки подключения к MongoDB.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

// RedisConfig — настройки подключения к Redis.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

// NotifyConfig — внешний приёмник результатов валидации.
// Пустой WebhookURL — результаты только логируются.
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url" env:"NOTIFY_WEBHOOK_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"NOTIFY_TIMEOUT" env-default:"3s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}

		if err := c.verify(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}

		if err := c.verify(); err != nil {
			return nil, err
		}

		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.verify(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.verify(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// verify отбрасывает заведомо нерабочие сочетания настроек до старта сервиса.
func (c *Config) verify() error {
	if c.Token.Window <= 0 {
		return fmt.Errorf("config: token.window must be positive, got %s", c.Token.Window)
	}

	switch c.Token.Scheme {
	case SchemeSingleSlot, SchemeAppendOnly:
	default:
		return fmt.Errorf("config: unknown token.scheme %q", c.Token.Scheme)
	}

	switch c.Token.Backend {
	case BackendMongo:
		if c.DB.URL == "" {
			return fmt.Errorf("config: db.url is required for mongo backend")
		}
	case BackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("config: redis.url is required for redis backend")
		}
		if c.Token.Scheme == SchemeAppendOnly {
			return fmt.Errorf("config: redis backend supports single_slot scheme only")
		}
	default:
		return fmt.Errorf("config: unknown token.backend %q", c.Token.Backend)
	}

	return nil
}
