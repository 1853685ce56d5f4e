package config

import (
	"os"
)

type AppConfig struct {
	ListenAddr    string
	SessionSecret string
	SessionName   string
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
	OperatorEmail      string
}

func LoadAppConfig() AppConfig {
	return AppConfig{
		ListenAddr:    getEnvOrDefault("LISTEN_ADDR", ":8080"),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", "change-me"),
		SessionName:   getEnvOrDefault("SESSION_NAME", "bakerysess"),
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
		OperatorEmail:      os.Getenv("OPERATOR_EMAIL"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
