package config

import "github.com/jessevdk/go-flags"

type Config struct {
	HTTPAddr    string `long:"http-addr" env:"HTTP_ADDR" default:":8080" description:"HTTP listen address"`
	PostgresURL string `long:"postgres-url" env:"POSTGRES_URL" required:"true" description:"Postgres connection string"`
	RedisAddr   string `long:"redis-addr" env:"REDIS_ADDR" required:"true" description:"Redis address"`

	GatewayURL    string `long:"gateway-url" env:"GATEWAY_URL" required:"true" description:"payment gateway base URL"`
	GatewayAPIKey string `long:"gateway-api-key" env:"GATEWAY_API_KEY" description:"payment gateway API key"`

	ProviderNotificationsURL string `long:"provider-notifications-url" env:"PROVIDER_NOTIFICATIONS_URL" description:"provider notifications service base URL"`

	// WebhookSecret signs inbound gateway webhooks. Leaving it empty disables
	// verification, which is only acceptable for local development.
	WebhookSecret string `long:"webhook-secret" env:"WEBHOOK_SECRET" description:"shared secret for webhook signatures"`

	JaegerEndpoint string `long:"jaeger-endpoint" env:"JAEGER_ENDPOINT" description:"jaeger collector endpoint"`
}

func Parse() (Config, error) {
	var cfg Config
	_, err := flags.Parse(&cfg)
	return cfg, err
}
