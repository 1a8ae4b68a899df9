package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`

	StripeAPIKey        string `env:"STRIPE_API_KEY,required"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	ProdigiAPIKey       string `env:"PRODIGI_API_KEY,required"`
	SendgridAPIKey      string `env:"SENDGRID_API_KEY,required"`
	OpenAIAPIKey        string `env:"OPENAI_API_KEY,required"`

	ProdigiBaseURL  string `env:"PRODIGI_BASE_URL" envDefault:"https://api.prodigi.com/v4.0"`
	SendgridBaseURL string `env:"SENDGRID_BASE_URL" envDefault:"https://api.sendgrid.com/v3"`

	// Stripe rejects signatures whose timestamp is older than this window.
	WebhookToleranceS int `env:"WEBHOOK_TOLERANCE_S" envDefault:"300"`

	// Total fulfillment attempts per admitted event, first try included.
	FulfillmentMaxAttempts int `env:"FULFILLMENT_MAX_ATTEMPTS" envDefault:"3"`
	// Budget for in-request fulfillment work before the webhook is acked and
	// remaining retries move to the background.
	AckBudgetMs       int `env:"ACK_BUDGET_MS" envDefault:"8000"`
	ProviderTimeoutS  int `env:"PROVIDER_TIMEOUT_S" envDefault:"10"`

	CheckoutSuccessURL string `env:"CHECKOUT_SUCCESS_URL" envDefault:"https://printloom.shop/success?session_id={CHECKOUT_SESSION_ID}"`
	CheckoutCancelURL  string `env:"CHECKOUT_CANCEL_URL" envDefault:"https://printloom.shop/cancel"`
	CheckoutUnitAmount int64  `env:"CHECKOUT_UNIT_AMOUNT" envDefault:"2000"`

	MailFromAddress string `env:"MAIL_FROM_ADDRESS" envDefault:"no-reply@printloom.shop"`
	MailFromName    string `env:"MAIL_FROM_NAME" envDefault:"Printloom"`

	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
