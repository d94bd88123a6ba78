package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "bakery-service/pkg/aws"

	"github.com/joho/godotenv"
)

// Secret names read when AWS_USE_SECRETS=true.
const (
	dbSecretName       = "bakery/DB_CREDENTIALS"
	razorpaySecretName = "bakery/RAZORPAY"
)

// Event sinks selectable through EVENTS_SINK.
const (
	EventsSinkNone  = "none"
	EventsSinkSNS   = "sns"
	EventsSinkKafka = "kafka"
)

// Config holds all configuration for the bakery service.
type Config struct {
	Port string
	Env  string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL string
	CartTTL  time.Duration
	CacheTTL time.Duration

	JWTSecret      string
	AllowedOrigins []string

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	EventsSink          string
	OrderEventsTopicARN string
	KafkaBrokers        []string
	KafkaTopic          string

	CloudWatchEnabled bool
}

// SecretGetter is the part of the Secrets Manager client the loader needs.
type SecretGetter interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// LoadConfig reads configuration from the environment (and .env when present),
// with an optional Secrets Manager override for credentials. When
// AWS_USE_SECRETS=true, an unreachable or malformed secret fails the load.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := fromEnv()

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config for secrets: %w", err)
		}
		if err := cfg.applySecrets(ctx, aws_pkg.NewSecretsClient(awsCfg)); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		Env:                   getEnv("ENV", "development"),
		PostgresUser:          os.Getenv("POSTGRES_USER"),
		PostgresPassword:      os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:            os.Getenv("POSTGRES_DB"),
		PostgresHost:          getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:          getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:       getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone:      getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CartTTL:               getDuration("CART_TTL", 7*24*time.Hour),
		CacheTTL:              getDuration("CACHE_TTL", 5*time.Minute),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		AllowedOrigins:        splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		EventsSink:            strings.ToLower(getEnv("EVENTS_SINK", EventsSinkNone)),
		OrderEventsTopicARN:   os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		KafkaBrokers:          splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:            getEnv("KAFKA_TOPIC", "bakery.order-events"),
		CloudWatchEnabled:     os.Getenv("CLOUDWATCH_ENABLED") == "true",
	}
}

// applySecrets overrides credentials with the JSON key/value secrets stored in
// Secrets Manager. Keys absent or empty in a secret leave the environment value.
func (c *Config) applySecrets(ctx context.Context, sm SecretGetter) error {
	db, err := sm.GetSecretMap(ctx, dbSecretName)
	if err != nil {
		return fmt.Errorf("read database secret: %w", err)
	}
	override(&c.PostgresUser, db, "POSTGRES_USER")
	override(&c.PostgresPassword, db, "POSTGRES_PASSWORD")
	override(&c.PostgresDB, db, "POSTGRES_DB")
	override(&c.PostgresHost, db, "POSTGRES_HOST")
	override(&c.PostgresPort, db, "POSTGRES_PORT")

	rzp, err := sm.GetSecretMap(ctx, razorpaySecretName)
	if err != nil {
		return fmt.Errorf("read razorpay secret: %w", err)
	}
	override(&c.RazorpayKeyID, rzp, "RAZORPAY_KEY_ID")
	override(&c.RazorpayKeySecret, rzp, "RAZORPAY_KEY_SECRET")
	override(&c.RazorpayWebhookSecret, rzp, "RAZORPAY_WEBHOOK_SECRET")
	return nil
}

// Validate fails startup on settings the service cannot run without.
func (c *Config) Validate() error {
	if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" || c.PostgresHost == "" {
		return fmt.Errorf("database config incomplete")
	}
	if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
		return fmt.Errorf("razorpay key id and secret are required")
	}
	if c.RazorpayWebhookSecret == "" {
		return fmt.Errorf("RAZORPAY_WEBHOOK_SECRET not set")
	}
	switch c.EventsSink {
	case EventsSinkNone:
	case EventsSinkSNS:
		if c.OrderEventsTopicARN == "" {
			return fmt.Errorf("ORDER_EVENTS_TOPIC_ARN required when EVENTS_SINK=sns")
		}
	case EventsSinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS required when EVENTS_SINK=kafka")
		}
	default:
		return fmt.Errorf("unknown EVENTS_SINK %q", c.EventsSink)
	}
	return nil
}

// DSN is the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func override(dst *string, m map[string]string, key string) {
	if v, ok := m[key]; ok && v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getDuration accepts Go durations ("72h") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
