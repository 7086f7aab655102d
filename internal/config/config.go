package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/order-bot/internal/catalog"
	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// ErrConfiguration marks any startup configuration problem. The process exits
// with status 1 when Load returns it.
var ErrConfiguration = errors.New("configuration error")

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

type Config struct {
	Telegram TelegramConfig
	SMTP     SMTPConfig
	Notify   NotifyConfig
	SendGrid SendGridConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	HTTP     ServerConfig
	GRPC     ServerConfig
	Log      LogConfig
	Catalog  []ProductConfig `validate:"dive"`
}

type TelegramConfig struct {
	Token         string `validate:"required"`
	Mode          string `validate:"oneof=polling webhook"`
	WebhookURL    string `validate:"omitempty,url"`
	WebhookSecret string
	Workers       int `validate:"min=1"`
}

type SMTPConfig struct {
	Server   string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	User     string
	Password string
}

type NotifyConfig struct {
	Recipient string `validate:"required,email"`
	Sender    string
	Transport string `validate:"oneof=smtp sendgrid kafka redis"`
	Breaker   bool
}

type SendGridConfig struct {
	APIKey string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string `validate:"required"`
}

type RedisConfig struct {
	Addr     string `validate:"required"`
	Password string
	Stream   string `validate:"required"`
}

type ServerConfig struct {
	Port string `validate:"required,numeric"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

type ProductConfig struct {
	ID    string `mapstructure:"id" validate:"required,max=60"` // add:<id> must fit in 64 bytes of callback data
	Name  string `mapstructure:"name" validate:"required"`
	Price string `mapstructure:"price" validate:"required"`
}

// env maps config keys to the variable names operators already use.
var env = map[string]string{
	"telegram.token":          "TELEGRAM_TOKEN",
	"telegram.mode":           "TELEGRAM_MODE",
	"telegram.webhook_url":    "TELEGRAM_WEBHOOK_URL",
	"telegram.webhook_secret": "TELEGRAM_WEBHOOK_SECRET",
	"telegram.workers":        "TELEGRAM_WORKERS",
	"smtp.server":             "SMTP_SERVER",
	"smtp.port":               "SMTP_PORT",
	"smtp.user":               "SMTP_USER",
	"smtp.password":           "SMTP_PASSWORD",
	"notify.recipient":        "LATE_NITE_EMAIL",
	"notify.sender":           "NOTIFY_SENDER",
	"notify.transport":        "NOTIFY_TRANSPORT",
	"notify.breaker":          "NOTIFY_BREAKER",
	"sendgrid.api_key":        "SENDGRID_API_KEY",
	"kafka.brokers":           "KAFKA_BROKERS",
	"kafka.topic":             "KAFKA_TOPIC",
	"redis.addr":              "REDIS_ADDR",
	"redis.password":          "REDIS_PASSWORD",
	"redis.stream":            "REDIS_STREAM",
	"http.port":               "HTTP_PORT",
	"grpc.port":               "GRPC_PORT",
	"log.level":               "LOG_LEVEL",
	"log.format":              "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.mode", ModePolling)
	v.SetDefault("telegram.workers", 8)
	v.SetDefault("smtp.server", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("notify.recipient", "orders@latenitelube.com")
	v.SetDefault("notify.transport", "smtp")
	v.SetDefault("notify.breaker", true)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "order-notifications")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.stream", "orders")
	v.SetDefault("http.port", "8080")
	v.SetDefault("grpc.port", "50051")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration.
// Priority (highest to lowest):
// 1. Environment variables (TELEGRAM_TOKEN, SMTP_SERVER, ...)
// 2. The config file at path, or config.yaml in . and /etc/order-bot when path is empty
// 3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/order-bot")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config file: %v", ErrConfiguration, err)
		}
	}

	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, fmt.Errorf("%w: binding %s: %v", ErrConfiguration, name, err)
		}
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:         strings.TrimSpace(v.GetString("telegram.token")),
			Mode:          strings.ToLower(v.GetString("telegram.mode")),
			WebhookURL:    v.GetString("telegram.webhook_url"),
			WebhookSecret: v.GetString("telegram.webhook_secret"),
			Workers:       v.GetInt("telegram.workers"),
		},
		SMTP: SMTPConfig{
			Server:   v.GetString("smtp.server"),
			Port:     v.GetInt("smtp.port"),
			User:     v.GetString("smtp.user"),
			Password: v.GetString("smtp.password"),
		},
		Notify: NotifyConfig{
			Recipient: v.GetString("notify.recipient"),
			Sender:    v.GetString("notify.sender"),
			Transport: strings.ToLower(v.GetString("notify.transport")),
			Breaker:   v.GetBool("notify.breaker"),
		},
		SendGrid: SendGridConfig{
			APIKey: v.GetString("sendgrid.api_key"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetStringSlice("kafka.brokers")),
			Topic:   v.GetString("kafka.topic"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			Stream:   v.GetString("redis.stream"),
		},
		HTTP: ServerConfig{Port: v.GetString("http.port")},
		GRPC: ServerConfig{Port: v.GetString("grpc.port")},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}
	if err := v.UnmarshalKey("catalog", &cfg.Catalog); err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", ErrConfiguration, err)
	}
	if cfg.Notify.Sender == "" {
		cfg.Notify.Sender = cfg.SMTP.User
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q validation", ErrConfiguration, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if c.Telegram.Mode == ModeWebhook && c.Telegram.WebhookURL == "" {
		return fmt.Errorf("%w: TELEGRAM_WEBHOOK_URL is required in webhook mode", ErrConfiguration)
	}

	switch c.Notify.Transport {
	case "sendgrid":
		if c.SendGrid.APIKey == "" {
			return fmt.Errorf("%w: SENDGRID_API_KEY is required for the sendgrid transport", ErrConfiguration)
		}
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("%w: KAFKA_BROKERS is required for the kafka transport", ErrConfiguration)
		}
	}

	if _, err := c.BuildCatalog(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// MissingSMTPCredentials reports whether the smtp transport would fail on first send.
func (c *Config) MissingSMTPCredentials() bool {
	return c.Notify.Transport == "smtp" && (c.SMTP.User == "" || c.SMTP.Password == "")
}

// BuildCatalog returns the configured catalog, or the default one when none is configured.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	if len(c.Catalog) == 0 {
		return catalog.Default(), nil
	}
	products := make([]domain.Product, 0, len(c.Catalog))
	for _, p := range c.Catalog {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %q: invalid price %q", p.ID, p.Price)
		}
		products = append(products, domain.Product{ID: p.ID, Name: p.Name, Price: price})
	}
	return catalog.New(products...)
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
