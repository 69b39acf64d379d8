package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Email    EmailConfig
	Session  SessionConfig
	Token    TokenConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	BaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SessionConfig struct {
	ExpiryHours int
}

type TokenConfig struct {
	VerifyExpiryHours  int
	ResetExpiryMinutes int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("VERIFY_TOKEN_EXPIRY_HOURS", 24)
	viper.SetDefault("RESET_TOKEN_EXPIRY_MINUTES", 60)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("BASE_URL", "http://localhost:8080")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
			BaseURL: viper.GetString("BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Token: TokenConfig{
			VerifyExpiryHours:  viper.GetInt("VERIFY_TOKEN_EXPIRY_HOURS"),
			ResetExpiryMinutes: viper.GetInt("RESET_TOKEN_EXPIRY_MINUTES"),
		},
	}

	return config, nil
}
