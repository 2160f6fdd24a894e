package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup
type Config struct {
	Port string
	DSN  string

	JWTSecret   []byte
	CORSOrigins []string

	HMRCBaseURL      string
	HMRCEnv          string // sandbox or production
	HMRCTestScenario string
	HMRCTimeout      time.Duration
	HMRCMaxRetries   int
	CutoverYear      int

	VendorProductName string
	VendorVersion     string
	VendorPublicIP    string
	VendorLicenseIDs  map[string]string

	TaxRatesPath string
	PeriodKind   string
}

// Load reads configs/.env when present, then the process environment
func Load() Config {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := getenv("DB_HOST", "localhost")
	dbPort := getenv("DB_PORT", "5432")
	dbUser := getenv("DB_USER", "postgres")
	dbPassword := getenv("DB_PASSWORD", "postgres")
	dbName := getenv("DB_NAME", "mtd")
	dbSslMode := getenv("DB_SSLMODE", "disable")

	return Config{
		Port:        getenv("PORT", "8080"),
		DSN:         "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode,
		JWTSecret:   jwtSecret(),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),

		HMRCBaseURL:      os.Getenv("HMRC_BASE_URL"),
		HMRCEnv:          getenv("HMRC_ENV", "sandbox"),
		HMRCTestScenario: os.Getenv("HMRC_TEST_SCENARIO"),
		HMRCTimeout:      time.Duration(getint("HMRC_TIMEOUT_SECONDS", 30)) * time.Second,
		HMRCMaxRetries:   getint("HMRC_MAX_RETRIES", 3),
		CutoverYear:      getint("MTD_CUMULATIVE_FROM", 2025),

		VendorProductName: getenv("VENDOR_PRODUCT_NAME", "mtd-filer"),
		VendorVersion:     getenv("VENDOR_VERSION", "1.0.0"),
		VendorPublicIP:    os.Getenv("VENDOR_PUBLIC_IP"),
		VendorLicenseIDs:  parsePairs(os.Getenv("VENDOR_LICENSE_IDS")),

		TaxRatesPath: os.Getenv("TAX_RATES_PATH"),
		PeriodKind:   getenv("MTD_PERIOD_KIND", "standard"),
	}
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			log.Fatal("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // development fallback only
	}
	return []byte(secret)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Ignoring invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePairs reads "name=value,name=value"
func parsePairs(s string) map[string]string {
	out := map[string]string{}
	for _, part := range splitList(s) {
		name, value, ok := strings.Cut(part, "=")
		if ok && name != "" {
			out[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	return out
}
