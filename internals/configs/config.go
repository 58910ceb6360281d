package configs

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	AppEnv         string
	AppName        string
	Port           string
	JWTSecret      string
	JWTTTL         time.Duration
	GoogleClientID string
	PublicBaseURL  string
	FrontendURL    string
	CORSOrigins    []string

	PasswordResetTimeout time.Duration
	MaxUploadSize        int64
)

const defaultJWTTTL = 7 * 24 * time.Hour

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required in production")

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RENDER") == "" && os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found, using system environment")
		}
	}

	AppEnv = strings.ToLower(GetEnv("APP_ENV", GetEnv("NODE_ENV", "development")))
	AppName = GetEnv("APP_NAME", "kindergarten")
	Port = GetEnv("PORT", "5001")
	JWTSecret = strings.TrimSpace(GetEnv("JWT_SECRET"))
	JWTTTL = GetDuration("JWT_TTL", defaultJWTTTL)
	GoogleClientID = GetEnv("GOOGLE_CLIENT_ID")
	PublicBaseURL = strings.TrimRight(GetEnv("PUBLIC_BASE_URL", "http://localhost:"+Port), "/")
	FrontendURL = strings.TrimRight(GetEnv("FRONTEND_URL", "http://localhost:3000"), "/")
	CORSOrigins = GetList("CORS_ORIGINS")

	PasswordResetTimeout = time.Duration(GetInt("PASSWORD_RESET_TIMEOUT_DAYS", 3)) * 24 * time.Hour
	MaxUploadSize = int64(GetInt("MAX_UPLOAD_MB", 5)) * 1024 * 1024
}

// Validate refuses to run production without a signing secret. Elsewhere an
// ephemeral secret is generated so tokens die with the process.
func Validate() error {
	if JWTSecret != "" {
		return nil
	}
	if IsProduction() {
		return ErrMissingJWTSecret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	JWTSecret = hex.EncodeToString(buf)
	log.Println("JWT_SECRET not set, using a random secret for this process")
	return nil
}

func IsProduction() bool {
	return AppEnv == "production" || AppEnv == "prod"
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || value == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func GetBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// GetDuration accepts Go durations ("15m") and day counts ("7d").
func GetDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if strings.HasSuffix(v, "d") {
		if n, err := strconv.Atoi(strings.TrimSuffix(v, "d")); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour
		}
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return def
}

func GetList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	out := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
