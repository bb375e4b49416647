// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
	GetStaticDir() string
	GetWebhookRateLimit() (rps float64, burst int)
}

// SheetsConfig provides settings for the Google Sheets client.
type SheetsConfig interface {
	GetSheetsID() string
	GetSheetTitle() string
	GetGoogleProjectID() string
	GetGoogleClientEmail() string
	GetGooglePrivateKey() string
	GetGooglePrivateKeyID() string
	GetGoogleAuthMode() string
	GetGoogleTokenURL() string
	GetSheetsAPIURL() string
}

// TrackDriveConfig provides settings for the TrackDrive lead API client.
type TrackDriveConfig interface {
	GetTrackDriveAPIURL() string
	GetTrackDriveAPIKey() string
	GetTrackDriveLeadToken() string
}

// EnvStatusReporter reports which required variables are configured.
type EnvStatusReporter interface {
	RequiredEnvStatus() map[string]string
}

// =============================================================================
// Main Config Struct
// =============================================================================

const (
	envPresent = "OK"
	envMissing = "MISSING"

	AuthModeOAuth = "oauth"
	AuthModeJWT   = "jwt"

	defaultRateLimitRPS   = 0
	defaultRateLimitBurst = 20
)

// RequiredEnv lists the variables the sink clients cannot run without.
var RequiredEnv = []string{
	"GOOGLE_SHEETS_ID",
	"GOOGLE_PROJECT_ID",
	"GOOGLE_CLIENT_EMAIL",
	"GOOGLE_PRIVATE_KEY",
	"TRACKDRIVE_API_KEY",
	"TRACKDRIVE_LEAD_TOKEN",
}

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	CORSOrigins           []string
	StaticDir             string
	WebhookRateLimitRPS   float64
	WebhookRateLimitBurst int
	SheetsID              string
	SheetTitle            string
	GoogleProjectID       string
	GoogleClientEmail     string
	GooglePrivateKey      string
	GooglePrivateKeyID    string
	GoogleAuthMode        string
	GoogleTokenURL        string
	SheetsAPIURL          string
	TrackDriveAPIURL      string
	TrackDriveAPIKey      string
	TrackDriveLeadToken   string

	lookup func(string) (string, bool)
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetStaticDir() string     { return c.StaticDir }
func (c *Config) GetWebhookRateLimit() (float64, int) {
	return c.WebhookRateLimitRPS, c.WebhookRateLimitBurst
}

// SheetsConfig implementation
func (c *Config) GetSheetsID() string           { return c.SheetsID }
func (c *Config) GetSheetTitle() string         { return c.SheetTitle }
func (c *Config) GetGoogleProjectID() string    { return c.GoogleProjectID }
func (c *Config) GetGoogleClientEmail() string  { return c.GoogleClientEmail }
func (c *Config) GetGooglePrivateKey() string   { return c.GooglePrivateKey }
func (c *Config) GetGooglePrivateKeyID() string { return c.GooglePrivateKeyID }
func (c *Config) GetGoogleAuthMode() string     { return c.GoogleAuthMode }
func (c *Config) GetGoogleTokenURL() string     { return c.GoogleTokenURL }
func (c *Config) GetSheetsAPIURL() string       { return c.SheetsAPIURL }

// TrackDriveConfig implementation
func (c *Config) GetTrackDriveAPIURL() string    { return c.TrackDriveAPIURL }
func (c *Config) GetTrackDriveAPIKey() string    { return c.TrackDriveAPIKey }
func (c *Config) GetTrackDriveLeadToken() string { return c.TrackDriveLeadToken }

// RequiredEnvStatus reports OK or MISSING per required variable. Values are never exposed.
// GOOGLE_PRIVATE_KEY counts as present when only the base64 variant is set.
func (c *Config) RequiredEnvStatus() map[string]string {
	lookup := c.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	status := make(map[string]string, len(RequiredEnv))
	for _, key := range RequiredEnv {
		present := isSet(lookup, key)
		if key == "GOOGLE_PRIVATE_KEY" && !present {
			present = isSet(lookup, "GOOGLE_PRIVATE_KEY_BASE64")
		}
		if present {
			status[key] = envPresent
		} else {
			status[key] = envMissing
		}
	}
	return status
}

// Load reads configuration from environment variables.
// Missing sink credentials are not an error here; the sink clients report them.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromLookup(os.LookupEnv), nil
}

func fromLookup(lookup func(string) (string, bool)) *Config {
	getEnv := func(key, fallback string) string {
		if val, ok := lookup(key); ok {
			return val
		}
		return fallback
	}

	httpAddr := getEnv("HTTP_ADDR", "")
	if httpAddr == "" {
		httpAddr = ":" + strings.TrimSpace(getEnv("PORT", "5000"))
	}

	privateKey := getEnv("GOOGLE_PRIVATE_KEY", "")
	if strings.TrimSpace(privateKey) == "" {
		privateKey = getEnv("GOOGLE_PRIVATE_KEY_BASE64", "")
	}

	authMode := strings.ToLower(strings.TrimSpace(getEnv("GOOGLE_AUTH_MODE", AuthModeOAuth)))
	if authMode != AuthModeJWT {
		authMode = AuthModeOAuth
	}

	return &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              httpAddr,
		CORSOrigins:           splitCSV(getEnv("CORS_ORIGINS", "*")),
		StaticDir:             getEnv("STATIC_DIR", "public"),
		WebhookRateLimitRPS:   floatOr(getEnv("WEBHOOK_RATE_LIMIT_RPS", ""), defaultRateLimitRPS),
		WebhookRateLimitBurst: positiveIntOr(getEnv("WEBHOOK_RATE_LIMIT_BURST", ""), defaultRateLimitBurst),
		SheetsID:              strings.TrimSpace(getEnv("GOOGLE_SHEETS_ID", "")),
		SheetTitle:            getEnv("GOOGLE_SHEET_TITLE", "rideshare"),
		GoogleProjectID:       strings.TrimSpace(getEnv("GOOGLE_PROJECT_ID", "")),
		GoogleClientEmail:     strings.TrimSpace(getEnv("GOOGLE_CLIENT_EMAIL", "")),
		GooglePrivateKey:      privateKey,
		GooglePrivateKeyID:    strings.TrimSpace(getEnv("GOOGLE_PRIVATE_KEY_ID", "")),
		GoogleAuthMode:        authMode,
		GoogleTokenURL:        getEnv("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		SheetsAPIURL:          getEnv("GOOGLE_SHEETS_API_URL", "https://sheets.googleapis.com"),
		TrackDriveAPIURL:      getEnv("TRACKDRIVE_API_URL", "https://api.trackdrive.com/api/v1/leads"),
		TrackDriveAPIKey:      strings.TrimSpace(getEnv("TRACKDRIVE_API_KEY", "")),
		TrackDriveLeadToken:   strings.TrimSpace(getEnv("TRACKDRIVE_LEAD_TOKEN", "")),
		lookup:                lookup,
	}
}

func isSet(lookup func(string) (string, bool), key string) bool {
	val, ok := lookup(key)
	return ok && strings.TrimSpace(val) != ""
}

// positiveIntOr parses value, keeping fallback when it is unset, malformed
// or below 1.
func positiveIntOr(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || result < 1 {
		return fallback
	}
	return result
}

// floatOr parses value, keeping fallback when it is unset, malformed or negative.
func floatOr(value string, fallback float64) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || result < 0 {
		return fallback
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
