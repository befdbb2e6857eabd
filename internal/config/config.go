package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "KOZI"

type Config struct {
	Port        string `envconfig:"PORT" default:"5000"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Remote HR platform
	APIBaseURL       string        `envconfig:"API_BASE_URL" default:"https://apis.kozi.rw"`
	APILoginEndpoint string        `envconfig:"API_LOGIN_ENDPOINT" default:"/login"`
	APIEmail         string        `envconfig:"API_EMAIL"`
	APIPassword      string        `envconfig:"API_PASSWORD"`
	APIRoleID        int           `envconfig:"API_ROLE_ID" default:"1"`
	APITimeout       time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	APICacheTTL      time.Duration `envconfig:"API_CACHE_TTL" default:"5m"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	// Knowledge base
	VectorBackend   string `envconfig:"VECTOR_BACKEND" default:"file"`
	VectorStorePath string `envconfig:"VECTOR_STORE_PATH" default:"./data/vectors"`
	DocsDir         string `envconfig:"DOCS_DIR" default:"./data/docs"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"kozi-knowledge"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Prefix    string `envconfig:"S3_PREFIX" default:"docs/"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"server360.web-hosting.com"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"465"`
	SMTPSSL      bool   `envconfig:"SMTP_SSL" default:"true"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM" default:"no-reply@kozi.rw"`
	MailFromName string `envconfig:"MAIL_FROM_NAME" default:"Kozi Platform"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	ReminderInterval   time.Duration `envconfig:"REMINDER_INTERVAL" default:"1h"`
	ReminderRecipients []string      `envconfig:"REMINDER_RECIPIENTS"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// RequireDatabase fails when DATABASE_URL is unset. Only commands that open
// a pool call it.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("required key %s_DATABASE_URL missing value", envPrefix)
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

func (c *Config) UsePostgresVectors() bool {
	return strings.EqualFold(c.VectorBackend, "postgres")
}

// ReminderEnabled reports whether the payroll reminder worker can deliver mail.
func (c *Config) ReminderEnabled() bool {
	return c.HasSMTP() && len(c.ReminderRecipients) > 0 && c.ReminderInterval > 0
}
