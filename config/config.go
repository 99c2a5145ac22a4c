package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the runtime settings for the server.
type Config struct {
	Environment string
	Addr        string

	Persistence Persistence
	Auth        Auth
}

// Persistence configures the database layer.
type Persistence struct {
	Driver                string
	DSN                   string
	Debug                 bool
	PingTimeoutExpression string
}

func (p Persistence) GetDriver() string { return p.Driver }
func (p Persistence) GetDSN() string    { return p.DSN }
func (p Persistence) GetDebug() bool    { return p.Debug }

// GetServer and GetOtelIdentifier satisfy persistence.Config; telemetry
// identifiers are unused here.
func (p Persistence) GetServer() string         { return "" }
func (p Persistence) GetOtelIdentifier() string { return "" }

func (p Persistence) GetPingTimeout() time.Duration {
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		return 5 * time.Second
	}
	return dur
}

// Auth configures cookies, signing, and the pipeline routes.
type Auth struct {
	SigningKey        string
	JWKSEndpoint      string
	CookieName        string
	LoginPath         string
	BaseURL           string
	AuthErrorPath     string
	OrganizationsPath string
	TOTPChallengePath string
	TokenDuration     time.Duration
}

// Load reads configuration from the environment, first merging in a local
// .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment: getenv("ENVIRONMENT", "development"),
		Addr:        getenv("ADDR", ":8572"),
		Persistence: Persistence{
			Driver:                getenv("DB_DRIVER", "sqlite"),
			DSN:                   getenv("DB_DSN", "file::memory:?cache=shared"),
			Debug:                 getbool("DB_DEBUG", false),
			PingTimeoutExpression: getenv("DB_PING_TIMEOUT", "5s"),
		},
		Auth: Auth{
			SigningKey:        getenv("AUTH_SIGNING_KEY", ""),
			JWKSEndpoint:      getenv("AUTH_JWKS_ENDPOINT", ""),
			CookieName:        getenv("AUTH_COOKIE_NAME", "launchbay.session-token"),
			LoginPath:         getenv("AUTH_LOGIN_PATH", "/login"),
			BaseURL:           getenv("AUTH_BASE_URL", ""),
			AuthErrorPath:     getenv("AUTH_ERROR_PATH", "/auth/error"),
			OrganizationsPath: getenv("AUTH_ORGANIZATIONS_PATH", "/organizations"),
			TOTPChallengePath: getenv("AUTH_TOTP_PATH", "/auth/totp"),
			TokenDuration:     getdur("AUTH_TOKEN_DURATION", 24*time.Hour),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
