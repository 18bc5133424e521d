package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "default_secret_change_in_production"

type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt" yaml:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Cache     CacheConfig     `mapstructure:"cache" yaml:"cache"`
	Kafka     KafkaConfig     `mapstructure:"kafka" yaml:"kafka"`
	Client    ClientConfig    `mapstructure:"client" yaml:"client"`
	Web       WebConfig       `mapstructure:"web" yaml:"web"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host" yaml:"host"`
	Port           int           `mapstructure:"port" yaml:"port"`
	Environment    string        `mapstructure:"environment" yaml:"environment"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver          string        `mapstructure:"driver" yaml:"driver"`
	DSNOverride     string        `mapstructure:"dsn" yaml:"dsn"`
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	User            string        `mapstructure:"user" yaml:"user"`
	Password        string        `mapstructure:"password" yaml:"password"`
	Name            string        `mapstructure:"name" yaml:"name"`
	SSLMode         string        `mapstructure:"sslmode" yaml:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	MigrationsPath  string        `mapstructure:"migrations_path" yaml:"migrations_path"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         int           `mapstructure:"port" yaml:"port"`
	Password     string        `mapstructure:"password" yaml:"password"`
	DB           int           `mapstructure:"db" yaml:"db"`
	PoolSize     int           `mapstructure:"pool_size" yaml:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries" yaml:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret" yaml:"secret"`
	Issuer     string        `mapstructure:"issuer" yaml:"issuer"`
	Audience   string        `mapstructure:"audience" yaml:"audience"`
	AccessTTL  time.Duration `mapstructure:"access_ttl" yaml:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl" yaml:"refresh_ttl"`
}

type RateLimitConfig struct {
	RequestsPerMin int `mapstructure:"requests_per_min" yaml:"requests_per_min"`
	BurstSize      int `mapstructure:"burst_size" yaml:"burst_size"`
	// Auth limits apply per client IP to /auth routes when redis is available.
	AuthRequests int           `mapstructure:"auth_requests" yaml:"auth_requests"`
	AuthWindow   time.Duration `mapstructure:"auth_window" yaml:"auth_window"`
	// Task limits apply per signed-in user to /tasks routes when redis is available.
	TaskRequests int           `mapstructure:"task_requests" yaml:"task_requests"`
	TaskWindow   time.Duration `mapstructure:"task_window" yaml:"task_window"`
}

type CacheConfig struct {
	TaskListTTL   time.Duration `mapstructure:"task_list_ttl" yaml:"task_list_ttl"`
	L1TTL         time.Duration `mapstructure:"l1_ttl" yaml:"l1_ttl"`
	WarmupWorkers int           `mapstructure:"warmup_workers" yaml:"warmup_workers"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
	GroupID string   `mapstructure:"group_id" yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type ClientConfig struct {
	APIURL          string        `mapstructure:"api_url" yaml:"api_url"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CredentialsFile string        `mapstructure:"credentials_file" yaml:"credentials_file"`
}

type WebConfig struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         int           `mapstructure:"port" yaml:"port"`
	SessionTTL   time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	SecureCookie bool          `mapstructure:"secure_cookie" yaml:"secure_cookie"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8081"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "taskify")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.migrations_path", "file://migrations")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.issuer", "taskify-backend")
	v.SetDefault("jwt.audience", "taskify-users")
	v.SetDefault("jwt.access_ttl", time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("rate_limit.requests_per_min", 600)
	v.SetDefault("rate_limit.burst_size", 50)
	v.SetDefault("rate_limit.auth_requests", 20)
	v.SetDefault("rate_limit.auth_window", time.Minute)
	v.SetDefault("rate_limit.task_requests", 300)
	v.SetDefault("rate_limit.task_window", time.Minute)

	v.SetDefault("cache.task_list_ttl", 5*time.Minute)
	v.SetDefault("cache.l1_ttl", 30*time.Second)
	v.SetDefault("cache.warmup_workers", 3)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "")
	v.SetDefault("kafka.group_id", "taskify-events")

	v.SetDefault("client.api_url", "http://localhost:8080/api/v1")
	v.SetDefault("client.timeout", 10*time.Second)
	v.SetDefault("client.credentials_file", "")

	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 8081)
	v.SetDefault("web.session_ttl", 12*time.Hour)
	v.SetDefault("web.secure_cookie", false)
}

// Load reads defaults, then the optional YAML file at path, then TASKIFY_*
// environment variables (TASKIFY_DATABASE_HOST overrides database.host).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("TASKIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Web.Port <= 0 {
		return errors.New("server.port and web.port must be positive")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt.access_ttl and jwt.refresh_ttl must be positive")
	}
	if c.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		return errors.New("jwt.secret must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c *Config) GetWebAddr() string {
	return net.JoinHostPort(c.Web.Host, strconv.Itoa(c.Web.Port))
}

func (c *Config) GetRedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port))
}

// DSN returns the explicit dsn when set, otherwise builds a postgres
// connection string from the individual fields.
func (d DatabaseConfig) DSN() string {
	if d.DSNOverride != "" {
		return d.DSNOverride
	}
	if d.Driver == "sqlite" {
		return "taskify.db"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}
