// Package config loads the bot's static configuration from environment
// variables, with a .env file discovered in the current or parent
// directories filling in anything not already set.
package config

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultGatewayBaseURL = "https://discord.com/api/v10"
	defaultPort           = "8080"
	defaultStoreName      = "Eclipse"
	defaultCurrency       = "EUR"
	defaultRefreshMinutes = 5
	defaultStanSubject    = "eclipse.audit"
)

type Config struct {
	Token          string
	GatewayBaseURL string
	DatabaseURL    string
	Port           string

	StaffRoleID         string
	TicketCategoryID    string
	StorefrontChannelID string
	LogChannelID        string

	StoreName       string
	Currency        string
	RefreshInterval time.Duration

	NatsURL       string
	StanClusterID string
	StanClientID  string
	StanSubject   string
}

// Load reads the configuration. Token and database URL are required;
// everything else has a default or is optional.
func Load(logger *log.Logger) (Config, error) {
	if logger == nil {
		logger = log.Default()
	}
	loadEnvFile(logger)

	cfg := Config{
		Token:          os.Getenv("DISCORD_TOKEN"),
		GatewayBaseURL: getenv("GATEWAY_BASE_URL", defaultGatewayBaseURL),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           getenv("PORT", defaultPort),

		StaffRoleID:         os.Getenv("STAFF_ROLE_ID"),
		TicketCategoryID:    os.Getenv("TICKET_CATEGORY_ID"),
		StorefrontChannelID: os.Getenv("STOREFRONT_CHANNEL_ID"),
		LogChannelID:        os.Getenv("LOG_CHANNEL_ID"),

		StoreName: getenv("STORE_NAME", defaultStoreName),
		Currency:  getenv("CURRENCY", defaultCurrency),

		NatsURL:       os.Getenv("NATS_URL"),
		StanClusterID: getenv("STAN_CLUSTER_ID", "eclipse-cluster"),
		StanClientID:  getenv("STAN_CLIENT_ID", "eclipse-bot"),
		StanSubject:   getenv("STAN_SUBJECT", defaultStanSubject),
	}

	if cfg.Token == "" {
		return Config{}, fmt.Errorf("missing required env var: DISCORD_TOKEN")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing required env var: DATABASE_URL")
	}

	minutes := defaultRefreshMinutes
	if raw := os.Getenv("STOREFRONT_REFRESH_MINUTES"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("invalid STOREFRONT_REFRESH_MINUTES: %q", raw)
		}
		minutes = parsed
	}
	cfg.RefreshInterval = time.Duration(minutes) * time.Minute

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadEnvFile(logger *log.Logger) {
	path, err := findEnvFile()
	if err != nil {
		logger.Printf("WARN: failed to locate .env: %v", err)
		return
	}
	if path == "" {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Printf("WARN: failed to open %s: %v", path, err)
		return
	}
	defer file.Close()

	if err := parseEnvFile(logger, file); err != nil {
		logger.Printf("WARN: failed to load %s: %v", path, err)
	} else {
		logger.Printf("loaded env from %s", path)
	}
}

func findEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

func parseEnvFile(logger *log.Logger, file *os.File) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = trimQuotes(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			logger.Printf("WARN: failed to set %s from env file", key)
		}
	}
	return scanner.Err()
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
