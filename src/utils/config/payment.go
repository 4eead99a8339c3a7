package config

import (
	"time"

	"github.com/spf13/viper"
)

type Payment struct {
	// Payment provider API, e.g. https://api.mercadopago.com
	Url string

	// Bearer token used for payment lookups
	AccessToken string

	// Shared secret the provider signs webhook notifications with
	WebhookSecret string

	// Request timeout for payment lookups
	RequestTimeout time.Duration

	// How many times a failed lookup is retried before giving up
	RetryCount int

	// Client side rate limit for provider calls, requests per second
	RateLimit float64

	// Burst size for the rate limiter
	RateLimitBurst int
}

func setPaymentDefaults() {
	viper.SetDefault("Payment.Url", "https://api.mercadopago.com")
	viper.SetDefault("Payment.AccessToken", "")
	viper.SetDefault("Payment.WebhookSecret", "")
	viper.SetDefault("Payment.RequestTimeout", "30s")
	viper.SetDefault("Payment.RetryCount", "1")
	viper.SetDefault("Payment.RateLimit", "10")
	viper.SetDefault("Payment.RateLimitBurst", "10")
}
