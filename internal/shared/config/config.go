package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL      string
	Port             string
	Env              string
	OpenAIKey        string
	WhatsAppStoreURL string
	FollowUpSchedule string
	FlowMaxSteps     int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             os.Getenv("PORT"),
		Env:              os.Getenv("ENV"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		WhatsAppStoreURL: os.Getenv("WHATSAPP_STORE_URL"),
		FollowUpSchedule: os.Getenv("FOLLOWUP_SCHEDULE"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.FollowUpSchedule == "" {
		cfg.FollowUpSchedule = "0 */5 * * * *" // every 5 minutes
	}

	cfg.FlowMaxSteps = 50
	if raw := os.Getenv("FLOW_MAX_STEPS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.FlowMaxSteps = n
		}
	}

	return cfg
}
