package app

import (
	"strings"
	"time"

	"github.com/elemephant/backend/internal/platform/envutil"
)

// Config aggregates the environment the server wiring reads at startup.
// Component packages (bucket, openai, postgres) read their own env.
type Config struct {
	Port          string
	LogMode       string
	Environment   string
	Version       string
	AllowOrigins  []string
	AdminAPIToken string
	JWTSecretKey  string
	TokenTTL      time.Duration
}

func LoadConfig() Config {
	cfg := Config{
		Port:          envutil.String("PORT", "8080"),
		LogMode:       envutil.String("LOG_MODE", "development"),
		Environment:   envutil.String("APP_ENV", "development"),
		Version:       envutil.String("APP_VERSION", "dev"),
		AdminAPIToken: envutil.String("ADMIN_API_TOKEN", ""),
		JWTSecretKey:  envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		TokenTTL:      time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
	}
	for _, origin := range strings.Split(envutil.String("CORS_ALLOW_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}
	return cfg
}
