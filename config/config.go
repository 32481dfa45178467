package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

// Settings holds everything read from the environment at startup.
// It is read-only after Load.
type Settings struct {
	SecretKey      []byte
	SigningMethod  jwt.SigningMethod
	TokenTTL       time.Duration
	ModelsDir      string
	DatabaseURL    string
	CookieSecure   bool
	AllowedOrigins []string
	Port           string
}

// C is the global settings instance, populated by Load.
var C Settings

// Load reads .env (if present) and the environment into C.
// Missing required values are an error; the process must not start without them.
func Load() error {
	godotenv.Load()

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return fmt.Errorf("SECRET_KEY environment variable not set")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}

	alg := os.Getenv("ALGORITHM")
	if alg == "" {
		alg = "HS256"
	}
	method := jwt.GetSigningMethod(alg)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return fmt.Errorf("ALGORITHM %q is not a supported HMAC algorithm", alg)
	}

	ttlMinutes := 60 * 4
	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid ACCESS_TOKEN_EXPIRE_MINUTES: %q", v)
		}
		ttlMinutes = n
	}

	modelsDir := os.Getenv("MODELS_DIR")
	if modelsDir == "" {
		modelsDir = "static/models"
	}
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create models directory %q: %w", modelsDir, err)
	}

	cookieSecure := true
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid COOKIE_SECURE: %q", v)
		}
		cookieSecure = b
	}

	origins := []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	C = Settings{
		SecretKey:      []byte(secret),
		SigningMethod:  method,
		TokenTTL:       time.Duration(ttlMinutes) * time.Minute,
		ModelsDir:      modelsDir,
		DatabaseURL:    dsn,
		CookieSecure:   cookieSecure,
		AllowedOrigins: origins,
		Port:           port,
	}
	return nil
}
