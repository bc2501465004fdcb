package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port        string
	CORSOrigins string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// Firebase (firestore backend and firebase auth)
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string
	FirebaseCheckRevoked    bool
	FirebaseServiceAccount  ServiceAccount
	FirebaseFallbackFile    string

	// Auth
	AuthProvider string
	JWTSecret    string
	JWTIssuer    string
	JWTAudience  string

	// AMQP ledger events, disabled when the URL is empty
	AMQPURL      string
	AMQPExchange string

	// Limits and caching
	RateLimitPerMinute int
	SummaryCacheTTL    time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"

	minJWTSecretLen = 16

	DefaultFirebaseFallbackFile = "firebase_admin.json"
)

// ServiceAccount is a Google service-account key assembled from the
// FIREBASE_* variables. Literal \n sequences in FIREBASE_PRIVATE_KEY are
// turned into newlines.
type ServiceAccount struct {
	Type                string `json:"type"`
	ProjectID           string `json:"project_id"`
	PrivateKeyID        string `json:"private_key_id"`
	PrivateKey          string `json:"private_key"`
	ClientEmail         string `json:"client_email"`
	ClientID            string `json:"client_id"`
	AuthURI             string `json:"auth_uri"`
	TokenURI            string `json:"token_uri"`
	AuthProviderCertURL string `json:"auth_provider_x509_cert_url"`
	ClientCertURL       string `json:"client_x509_cert_url"`
}

// Complete reports whether the key carries enough to sign tokens.
func (a ServiceAccount) Complete() bool {
	return a.ProjectID != "" && a.PrivateKey != "" && a.ClientEmail != ""
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		DataBackend:  getEnv("DATA_BACKEND", BackendMemory),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/plenio.db"),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		FirebaseCheckRevoked:    getEnvBool("FIREBASE_CHECK_REVOKED", false),
		FirebaseServiceAccount: ServiceAccount{
			Type:                getEnv("FIREBASE_TYPE", "service_account"),
			ProjectID:           getEnv("FIREBASE_PROJECT_ID", ""),
			PrivateKeyID:        getEnv("FIREBASE_PRIVATE_KEY_ID", ""),
			PrivateKey:          strings.ReplaceAll(getEnv("FIREBASE_PRIVATE_KEY", ""), `\n`, "\n"),
			ClientEmail:         getEnv("FIREBASE_CLIENT_EMAIL", ""),
			ClientID:            getEnv("FIREBASE_CLIENT_ID", ""),
			AuthURI:             getEnv("FIREBASE_AUTH_URI", "https://accounts.google.com/o/oauth2/auth"),
			TokenURI:            getEnv("FIREBASE_TOKEN_URI", "https://oauth2.googleapis.com/token"),
			AuthProviderCertURL: getEnv("FIREBASE_AUTH_PROVIDER_X509_CERT_URL", "https://www.googleapis.com/oauth2/v1/certs"),
			ClientCertURL:       getEnv("FIREBASE_CLIENT_X509_CERT_URL", ""),
		},
		FirebaseFallbackFile: getEnv("FIREBASE_FALLBACK_FILE", DefaultFirebaseFallbackFile),

		AuthProvider: getEnv("AUTH_PROVIDER", AuthFirebase),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTIssuer:    getEnv("JWT_ISSUER", "plenio"),
		JWTAudience:  getEnv("JWT_AUDIENCE", "plenio-api"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "plenio"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		SummaryCacheTTL:    getEnvDuration("SUMMARY_CACHE_TTL", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// AllowedOrigins splits CORS_ORIGINS into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// FirebaseCredentials picks the service-account source in order:
// FIREBASE_CREDENTIALS_JSON, the FIREBASE_* key variables,
// FIREBASE_CREDENTIALS_FILE, then the fallback file if it exists. Both
// results are empty when application default credentials should be used.
func (c *Config) FirebaseCredentials() (credentialsJSON, credentialsFile string) {
	if c.FirebaseCredentialsJSON != "" {
		return c.FirebaseCredentialsJSON, ""
	}
	if c.FirebaseServiceAccount.Complete() {
		raw, err := json.Marshal(c.FirebaseServiceAccount)
		if err == nil {
			return string(raw), ""
		}
	}
	if c.FirebaseCredentialsFile != "" {
		return "", c.FirebaseCredentialsFile
	}
	if c.FirebaseFallbackFile != "" {
		if info, err := os.Stat(c.FirebaseFallbackFile); err == nil && !info.IsDir() {
			return "", c.FirebaseFallbackFile
		}
	}
	return "", ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if len(c.AllowedOrigins()) == 0 {
		errors = append(errors, "CORS origins cannot be empty: use '*' to allow any origin")
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			errors = append(errors, "FIREBASE_PROJECT_ID is required when using firestore backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s %s]",
			c.DataBackend, BackendMemory, BackendSQLite, BackendFirestore))
	}

	switch c.AuthProvider {
	case AuthFirebase:
		if c.FirebaseProjectID == "" {
			errors = append(errors, "FIREBASE_PROJECT_ID is required when using firebase auth")
		}
	case AuthJWT:
		if len(c.JWTSecret) < minJWTSecretLen {
			errors = append(errors, fmt.Sprintf("JWT_SECRET must be at least %d bytes when using jwt auth", minJWTSecretLen))
		}
		if c.JWTIssuer == "" || c.JWTAudience == "" {
			errors = append(errors, "JWT_ISSUER and JWT_AUDIENCE cannot be empty when using jwt auth")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid auth provider '%s': must be one of [%s %s]", c.AuthProvider, AuthFirebase, AuthJWT))
	}

	if c.FirebaseCredentialsFile != "" {
		if _, err := os.Stat(c.FirebaseCredentialsFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Firebase credentials file does not exist: %s", c.FirebaseCredentialsFile))
		}
	}

	if sa := c.FirebaseServiceAccount; (sa.PrivateKey != "") != (sa.ClientEmail != "") {
		errors = append(errors, "FIREBASE_PRIVATE_KEY and FIREBASE_CLIENT_EMAIL must be set together")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	} else if c.RateLimitPerMinute > 10000 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at most 10000", c.RateLimitPerMinute))
	}

	if c.SummaryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must not be negative", c.SummaryCacheTTL))
	} else if c.SummaryCacheTTL > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must be at most 1 hour", c.SummaryCacheTTL))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") and bare seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
