package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Operating modes for the Stripe integration. Test and live identifiers must
// never be mixed; the mode is derived strictly from the secret key prefix.
const (
	ModeTest = "test"
	ModeLive = "live"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	// Comma-separated allowlist of browser origins for CORS.
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeAdminToken    string `mapstructure:"STRIPE_ADMIN_TOKEN"`

	// Mode-scoped price/product IDs. Only the pair matching the current
	// operating mode is ever consulted.
	StripeTestPriceID   string `mapstructure:"STRIPE_TEST_PRICE_ID"`
	StripeTestProductID string `mapstructure:"STRIPE_TEST_PRODUCT_ID"`
	StripeLivePriceID   string `mapstructure:"STRIPE_LIVE_PRICE_ID"`
	StripeLiveProductID string `mapstructure:"STRIPE_LIVE_PRODUCT_ID"`

	// Legacy, mode-agnostic IDs. Present only so we can reject them loudly
	// instead of silently mixing live and test objects.
	StripePriceID   string `mapstructure:"STRIPE_PRICE_ID"`
	StripeProductID string `mapstructure:"STRIPE_PRODUCT_ID"`

	StripeProductName string `mapstructure:"STRIPE_PRODUCT_NAME"`
	StripeCurrency    string `mapstructure:"STRIPE_CURRENCY"`
	StripeUnitAmount  int64  `mapstructure:"STRIPE_UNIT_AMOUNT"`

	DriveFolderID  string `mapstructure:"DRIVE_FOLDER_ID"`
	DriveFolderURL string `mapstructure:"DRIVE_FOLDER_URL"`

	// SMTP settings for the purchase confirmation email. All optional; the
	// mailer is disabled when SMTPHost or SMTPUser is empty.
	SMTPHost   string `mapstructure:"SMTP_HOST"`
	SMTPPort   string `mapstructure:"SMTP_PORT"`
	SMTPUser   string `mapstructure:"SMTP_USER"`
	SMTPPass   string `mapstructure:"SMTP_PASS"`
	SMTPSender string `mapstructure:"SMTP_SENDER"`
}

// LoadConfig loads configuration from environment variables using Viper.
// All required-field validation happens here, once, at startup; there are no
// silent fallbacks later in the request path.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("STRIPE_PRODUCT_NAME", "Luxury NYX - Full Access")
	viper.SetDefault("STRIPE_CURRENCY", "usd")
	viper.SetDefault("STRIPE_UNIT_AMOUNT", 1200)
	viper.SetDefault("SMTP_PORT", "2525")

	for _, key := range []string{
		"PORT", "GIN_MODE", "ALLOWED_ORIGINS",
		"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
		"STRIPE_SECRET", "STRIPE_WEBHOOK_SECRET", "STRIPE_ADMIN_TOKEN",
		"STRIPE_TEST_PRICE_ID", "STRIPE_TEST_PRODUCT_ID",
		"STRIPE_LIVE_PRICE_ID", "STRIPE_LIVE_PRODUCT_ID",
		"STRIPE_PRICE_ID", "STRIPE_PRODUCT_ID",
		"STRIPE_PRODUCT_NAME", "STRIPE_CURRENCY", "STRIPE_UNIT_AMOUNT",
		"DRIVE_FOLDER_ID", "DRIVE_FOLDER_URL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_SENDER",
	} {
		viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.GoogleApplicationCredentials == "" && cfg.FirebaseServiceAccountJSONBase64 == "" {
		return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, errors.New("STRIPE_SECRET is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is required")
	}

	return &cfg, nil
}

// StripeMode reports the operating mode derived from the secret key prefix.
// A key starting with "sk_test" selects test mode; everything else is live.
func (c *Config) StripeMode() string {
	if strings.HasPrefix(c.StripeSecretKey, "sk_test") {
		return ModeTest
	}
	return ModeLive
}

// Origins returns the parsed CORS allowlist.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
