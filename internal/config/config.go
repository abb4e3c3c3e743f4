package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SecretBackend selects where credential secret material lives.
const (
	SecretBackendFirestore     = "firestore"
	SecretBackendSecretManager = "secretmanager"
)

type Config struct {
	ProjectID     string
	Region        string
	LogLevel      string
	Port          string
	KMSKeyName    string
	LocalKeyHex   string
	SecretBackend string
	HTTPTimeout   time.Duration
}

func New() *Config {
	// .env is optional; deployed environments set variables directly.
	_ = godotenv.Load()

	return &Config{
		ProjectID:     os.Getenv("PROJECTID"),
		Region:        os.Getenv("REGION"),
		LogLevel:      os.Getenv("LOGLEVEL"),
		Port:          getPort(os.Getenv("PORT")),
		KMSKeyName:    os.Getenv("KMSKEYNAME"),
		LocalKeyHex:   os.Getenv("LOCALKEYHEX"),
		SecretBackend: getSecretBackend(os.Getenv("SECRETBACKEND")),
		HTTPTimeout:   getHTTPTimeout(os.Getenv("HTTPTIMEOUT")),
	}
}

func getPort(port string) string {
	if port == "" {
		return "8080"
	}
	return port
}

func getSecretBackend(backend string) string {
	switch backend {
	case SecretBackendSecretManager:
		return SecretBackendSecretManager
	default:
		return SecretBackendFirestore
	}
}

// getHTTPTimeout parses a timeout in seconds for outbound provider fetches.
func getHTTPTimeout(raw string) time.Duration {
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(secs) * time.Second
}
