package infrastructures

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type GatewayConfig struct {
	MerchantID  string
	SaltKey     string
	SaltIndex   int
	Environment string // "sandbox" or "production"
	BaseURL     string
	CallbackURL string
	RedirectURL string
}

type AppConfig struct {
	DATABASE_URL          string
	REDIS_ADDRESS         string
	REDIS_PASSWORD        string
	JWT_SECRET            string
	VOUCHER_VALIDITY_DAYS int
	SESSION_WINDOW_MIN    int
	GatewayConfig         GatewayConfig
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		DATABASE_URL:          os.Getenv("DATABASE_URL"),
		REDIS_ADDRESS:         os.Getenv("REDIS_ADDRESS"),
		REDIS_PASSWORD:        os.Getenv("REDIS_PASSWORD"),
		JWT_SECRET:            os.Getenv("JWT_SECRET"),
		VOUCHER_VALIDITY_DAYS: getEnvInt("VOUCHER_VALIDITY_DAYS", 90),
		SESSION_WINDOW_MIN:    getEnvInt("SESSION_WINDOW_MINUTES", 10),
		GatewayConfig: GatewayConfig{
			MerchantID:  os.Getenv("GATEWAY_MERCHANT_ID"),
			SaltKey:     os.Getenv("GATEWAY_SALT_KEY"),
			SaltIndex:   getEnvInt("GATEWAY_SALT_INDEX", 1),
			Environment: getEnv("GATEWAY_ENVIRONMENT", "sandbox"),
			BaseURL:     os.Getenv("GATEWAY_BASE_URL"),
			CallbackURL: os.Getenv("GATEWAY_CALLBACK_URL"),
			RedirectURL: os.Getenv("GATEWAY_REDIRECT_URL"),
		},
	}

	return Config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
