package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/configparser"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/validator"
)

// Flags
var (
	modeFlag = flag.String("mode", "", "application mode")
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode     types.ServiceMode
		LogLevel string `env:"LOG_LEVEL" default:"INFO"`

		Database DatabaseConfig
		RabbitMQ RabbitMQConfig
		Redis    RedisConfig
		Kafka    KafkaConfig
		Services ServicesConfig
		Auth     Auth
		Dispatch DispatchConfig
		Session  SessionConfig
		Agent    AgentConfig
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"dispatch_user"`
		Password string `env:"DATABASE_PASSWORD" default:"dispatch_pass"`
		Database string `env:"DATABASE_DATABASE" default:"dispatch_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`         // максимум открытых соединений
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`          // минимум соединений в пуле
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"` // макс. "время жизни" соединения
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`  // макс. "время простоя" соединения
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	RedisConfig struct {
		Host     string `env:"REDIS_HOST" default:"localhost"`
		Port     string `env:"REDIS_PORT" default:"6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" default:"0"`
	}

	// KafkaConfig is the optional driver location stream.
	KafkaConfig struct {
		Enabled       bool          `env:"KAFKA_ENABLED" default:"false"`
		Brokers       []string      `env:"KAFKA_BROKERS" default:"localhost:9092"`
		LocationTopic string        `env:"KAFKA_LOCATION_TOPIC" default:"driver-locations"`
		WriteTimeout  time.Duration `env:"KAFKA_WRITE_TIMEOUT" default:"2s"`
	}

	ServicesConfig struct {
		RideService   string `env:"SERVICES_RIDE_SERVICE" default:"3000"`
		DriverService string `env:"SERVICES_DRIVER_SERVICE" default:"3001"`
		AuthService   string `env:"SERVICES_AUTH_SERVICE" default:"3005"`
		DriverAgent   string `env:"SERVICES_DRIVER_AGENT" default:"3010"`
	}

	Auth struct {
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"12h"`
		JWTSecret      string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}

	// DispatchConfig tunes bookings and the driver session loop.
	DispatchConfig struct {
		FixedCharge      float64       `env:"DISPATCH_FIXED_CHARGE" default:"5000"`
		DefaultLatitude  float64       `env:"DISPATCH_DEFAULT_LATITUDE" default:"0"`
		DefaultLongitude float64       `env:"DISPATCH_DEFAULT_LONGITUDE" default:"0"`
		PollInterval     time.Duration `env:"DISPATCH_POLL_INTERVAL" default:"5s"`
		LocationInterval time.Duration `env:"DISPATCH_LOCATION_INTERVAL" default:"10s"`
		GeoTimeout       time.Duration `env:"DISPATCH_GEO_TIMEOUT" default:"5s"`
		NoticeLimit      int           `env:"DISPATCH_NOTICE_LIMIT" default:"20"`
	}

	// SessionConfig selects where per-client state lives: "redis" or "memory".
	SessionConfig struct {
		Store  string        `env:"SESSION_STORE" default:"redis"`
		Prefix string        `env:"SESSION_PREFIX" default:"session"`
		TTL    time.Duration `env:"SESSION_TTL" default:"24h"`
	}

	// AgentConfig is read only in driver-agent mode.
	AgentConfig struct {
		SessionID   string        `env:"AGENT_SESSION_ID" default:"driver-agent"`
		Username    string        `env:"AGENT_USERNAME"`
		Password    string        `env:"AGENT_PASSWORD"`
		AuthURL     string        `env:"AGENT_AUTH_URL" default:"http://localhost:3005"`
		PushURL     string        `env:"AGENT_PUSH_URL" default:"http://localhost:3001"`
		HTTPTimeout time.Duration `env:"AGENT_HTTP_TIMEOUT" default:"10s"`

		GeoMode        types.GeoMode `env:"AGENT_GEO_MODE" default:"fixed"`
		FixedLatitude  float64       `env:"AGENT_FIXED_LATITUDE" default:"43.238949"`
		FixedLongitude float64       `env:"AGENT_FIXED_LONGITUDE" default:"76.889709"`
		DeviceMaxAge   time.Duration `env:"AGENT_DEVICE_MAX_AGE" default:"30s"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) PoolLimits() (maxConns, minConns int32, maxLifetime, maxIdle time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func (c RedisConfig) GetAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c RedisConfig) GetPassword() string {
	return c.Password
}

func (c RedisConfig) GetDB() int {
	return c.DB
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	// Parsing flags
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFlags(cfg *Config) error {
	if modeFlag == nil || *modeFlag == "" {
		return ErrModeNotProvided
	}

	cfg.Mode = types.ServiceMode(*modeFlag)

	return nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case types.RideService, types.DriverService, types.AuthService:
	case types.DriverAgent:
		if c.Agent.Username == "" || c.Agent.Password == "" {
			return errors.New("driver-agent requires AGENT_USERNAME and AGENT_PASSWORD")
		}
		switch c.Agent.GeoMode {
		case types.GeoFixed, types.GeoDevice, types.GeoDisabled:
		default:
			return fmt.Errorf("unknown AGENT_GEO_MODE %q", c.Agent.GeoMode)
		}
	default:
		return fmt.Errorf("invalid mode: %s", c.Mode)
	}

	if !logger.ValidateLogLevel(c.LogLevel) {
		return fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}

	if !validator.PermittedValue(c.Session.Store, "redis", "memory") {
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}
	return nil
}
