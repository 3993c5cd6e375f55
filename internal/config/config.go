package config

import "os"

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	OIDC     OIDCConfig
	Postgres PostgresConfig
	Tracker  TrackerConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

type AuthConfig struct {
	JWTSecret      string
	JWTAccessTTL   string
	JWTRefreshTTL  string
	AllowSignup    string
	AdminLoginID   string
	AdminPassword  string
	CookieSecure   string
	CookieSameSite string
	CookieDomain   string
	CookiePath     string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type TrackerConfig struct {
	BaseURL string
}

type AnalysisConfig struct {
	APIKey         string
	DefaultModel   string
	EmbeddingModel string
	StaleAfter     string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			AllowedOrigins: getenv("ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			JWTAccessTTL:   getenv("JWT_ACCESS_TTL", "15m"),
			JWTRefreshTTL:  getenv("JWT_REFRESH_TTL", "720h"),
			AllowSignup:    os.Getenv("ALLOW_SIGNUP"),
			AdminLoginID:   os.Getenv("ADMIN_USERNAME"),
			AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
			CookieSecure:   os.Getenv("AUTH_COOKIE_SECURE"),
			CookieSameSite: os.Getenv("AUTH_COOKIE_SAMESITE"),
			CookieDomain:   os.Getenv("AUTH_COOKIE_DOMAIN"),
			CookiePath:     os.Getenv("AUTH_COOKIE_PATH"),
		},
		OIDC: OIDCConfig{
			Issuer:       os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
		Tracker: TrackerConfig{
			BaseURL: getenv("TRACKER_BASE_URL", "https://sentry.io/api/0"),
		},
		Analysis: AnalysisConfig{
			APIKey:         os.Getenv("AI_API_KEY"),
			DefaultModel:   getenv("AI_MODEL", "gemini-2.0-flash"),
			EmbeddingModel: getenv("AI_EMBEDDING_MODEL", "text-embedding-004"),
			StaleAfter:     getenv("ANALYSIS_STALE_AFTER", "15m"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
