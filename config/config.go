package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	Sentry     SentryConfig
	Tracing    TracingConfig
	Realtime   RealtimeConfig
	RateLimit  RateLimitConfig
	Replicator ReplicatorConfig
}

type ServerConfig struct {
	Port int
	Mode string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	Secret string
	Expire time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

type SentryConfig struct {
	DSN         string
	Environment string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string `mapstructure:"service_name"`
}

type RealtimeConfig struct {
	SendBuffer         int           `mapstructure:"send_buffer"`
	PingInterval       time.Duration `mapstructure:"ping_interval"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type ReplicatorConfig struct {
	QueueSize int `mapstructure:"queue_size"`
	Workers   int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:im.db?_busy_timeout=5000")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expire", 168*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "im-delivery")
	v.SetDefault("realtime.send_buffer", 64)
	v.SetDefault("realtime.ping_interval", 25*time.Second)
	v.SetDefault("realtime.write_timeout", 10*time.Second)
	v.SetDefault("realtime.insecure_skip_verify", false)
	v.SetDefault("ratelimit.rps", 20.0)
	v.SetDefault("ratelimit.burst", 40)
	v.SetDefault("replicator.queue_size", 10000)
	v.SetDefault("replicator.workers", 4)
}

// Load 读取 config/config.yaml（或 CONFIG_FILE），环境变量 APP_* 覆盖
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if f := os.Getenv("CONFIG_FILE"); f != "" {
		v.SetConfigFile(f)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.JWT.Secret == "" && cfg.Server.Mode == "release" {
		return nil, errors.New("jwt.secret is required in release mode")
	}
	return &cfg, nil
}
