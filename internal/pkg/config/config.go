package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction = "production"
	EnvTest       = "test"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTTTL    time.Duration `env:"JWT_TTL,    default=24h"`

	PhoneVerificationCooldown time.Duration `env:"PHONE_VERIFICATION_COOLDOWN, default=1m"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Twilio TwilioConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=infield"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type TwilioConfig struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	SenderID   string `env:"TWILIO_SENDER_ID, default=Infield"`
}

// IsTest reports whether outbound side effects such as SMS should be skipped.
func (c *Config) IsTest() bool { return c.Env == EnvTest }

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// Load reads configuration from environment variables using go-envconfig.
// Values in a .env file in the working directory are loaded first; variables
// already set in the environment win.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if !cfg.IsTest() && (cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "") {
		return nil, fmt.Errorf("config: TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN are required outside the test environment")
	}
	return &cfg, nil
}
