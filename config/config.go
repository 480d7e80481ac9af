package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	PagesToScrape  int
	UserAgent      string

	Yad2BaseURL    string
	FacebookGroups string
	ChromeBin      string

	CSVOutputPath string

	APIHost string
	APIPort int

	// Valuation parameters. The three weights must sum to 1.0.
	CPUWeight            float64
	GPUWeight            float64
	OtherWeight          float64
	VRAMPenaltyThreshold int
	VRAMPenaltyFactor    float64

	EnableLLM        bool
	OllamaHost       string
	OllamaModel      string
	OllamaTimeoutSec int

	Debug bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scout"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scout123"),
		PostgresDB:       getEnv("POSTGRES_DB", "market_scout"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		PagesToScrape:  getEnvInt("PAGES_TO_SCRAPE", 3),
		UserAgent: getEnv("USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),

		Yad2BaseURL:    getEnv("YAD2_BASE_URL", "https://www.yad2.co.il"),
		FacebookGroups: getEnv("FACEBOOK_GROUPS", ""),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_listings.csv"),

		APIHost: getEnv("API_HOST", "localhost"),
		APIPort: getEnvInt("API_PORT", 8000),

		CPUWeight:            getEnvFloat("CPU_WEIGHT", 0.4),
		GPUWeight:            getEnvFloat("GPU_WEIGHT", 0.5),
		OtherWeight:          getEnvFloat("OTHER_WEIGHT", 0.1),
		VRAMPenaltyThreshold: getEnvInt("VRAM_PENALTY_THRESHOLD", 8),
		VRAMPenaltyFactor:    getEnvFloat("VRAM_PENALTY_FACTOR", 0.85),

		EnableLLM:        getEnvBool("ENABLE_LLM", false),
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3"),
		OllamaTimeoutSec: getEnvInt("OLLAMA_TIMEOUT_SECONDS", 30),

		Debug: getEnvBool("DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
