package config

import (
	"strings"
	"sync"

	"admission-api/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
	Env     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTTLMinutes  int
	RefreshTTLMinutes int
}

type GoogleAPIConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// PaymentConfig points at the external payment provider that issues
// checkout links for appointments.
type PaymentConfig struct {
	BaseURL   string
	ClientID  string
	APIKey    string
	ReturnURL string
	CancelURL string
}

// ChatbotConfig points at the external chatbot engine.
type ChatbotConfig struct {
	BaseURL string
	APIKey  string
}

type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	GoogleAPI GoogleAPIConfig
	Payment   PaymentConfig
	Chatbot   ChatbotConfig
	S3        S3Config
	Email     EmailConfig
}

var (
	instance *Config
	once     sync.Once
)

// Load reads .env (if present) then the environment, and builds the config
// singleton. Missing optional sections stay zero-valued; callers that need
// them use GetSafe and degrade.
func Load() (*Config, error) {
	var err error
	once.Do(func() {
		if envErr := godotenv.Load(); envErr != nil {
			logger.Info("No .env file found, using environment variables")
		}

		v := viper.New()
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		v.SetDefault("SERVER_HOST", "0.0.0.0")
		v.SetDefault("SERVER_PORT", 7070)
		v.SetDefault("APP_ENV", "development")
		v.SetDefault("DB_HOST", "localhost")
		v.SetDefault("DB_PORT", 5432)
		v.SetDefault("DB_SSLMODE", "disable")
		v.SetDefault("REDIS_ADDR", "localhost:6379")
		v.SetDefault("JWT_ACCESS_TTL_MINUTES", 60)
		v.SetDefault("JWT_REFRESH_TTL_MINUTES", 60*24*7)
		v.SetDefault("EMAIL_PORT", 587)

		instance = &Config{
			Server: ServerConfig{
				Host:    v.GetString("SERVER_HOST"),
				Port:    v.GetInt("SERVER_PORT"),
				BaseURL: v.GetString("SERVER_BASE_URL"),
				Env:     v.GetString("APP_ENV"),
			},
			Database: DatabaseConfig{
				Host:     v.GetString("DB_HOST"),
				Port:     v.GetInt("DB_PORT"),
				User:     v.GetString("DB_USER"),
				Password: v.GetString("DB_PASSWORD"),
				DBName:   v.GetString("DB_NAME"),
				SSLMode:  v.GetString("DB_SSLMODE"),
			},
			Redis: RedisConfig{
				Addr:     v.GetString("REDIS_ADDR"),
				Password: v.GetString("REDIS_PASSWORD"),
				DB:       v.GetInt("REDIS_DB"),
			},
			JWT: JWTConfig{
				Secret:            v.GetString("JWT_SECRET"),
				AccessTTLMinutes:  v.GetInt("JWT_ACCESS_TTL_MINUTES"),
				RefreshTTLMinutes: v.GetInt("JWT_REFRESH_TTL_MINUTES"),
			},
			GoogleAPI: GoogleAPIConfig{
				ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
				ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
				RedirectURI:  v.GetString("GOOGLE_REDIRECT_URI"),
			},
			Payment: PaymentConfig{
				BaseURL:   v.GetString("PAYMENT_BASE_URL"),
				ClientID:  v.GetString("PAYMENT_CLIENT_ID"),
				APIKey:    v.GetString("PAYMENT_API_KEY"),
				ReturnURL: v.GetString("PAYMENT_RETURN_URL"),
				CancelURL: v.GetString("PAYMENT_CANCEL_URL"),
			},
			Chatbot: ChatbotConfig{
				BaseURL: v.GetString("CHATBOT_BASE_URL"),
				APIKey:  v.GetString("CHATBOT_API_KEY"),
			},
			S3: S3Config{
				Region:    v.GetString("S3_REGION"),
				Bucket:    v.GetString("S3_BUCKET"),
				AccessKey: v.GetString("S3_ACCESS_KEY"),
				SecretKey: v.GetString("S3_SECRET_KEY"),
				Endpoint:  v.GetString("S3_ENDPOINT"),
			},
			Email: EmailConfig{
				Host:     v.GetString("EMAIL_HOST"),
				Port:     v.GetInt("EMAIL_PORT"),
				Username: v.GetString("EMAIL_USERNAME"),
				Password: v.GetString("EMAIL_PASSWORD"),
				From:     v.GetString("EMAIL_FROM"),
			},
		}
	})
	return instance, err
}

// Get returns the loaded config. Panics if Load was never called; use only
// after server bootstrap.
func Get() *Config {
	if instance == nil {
		panic("config.Get called before config.Load")
	}
	return instance
}

// GetSafe returns the config without panicking; ok is false before Load.
func GetSafe() (*Config, bool) {
	if instance == nil {
		return nil, false
	}
	return instance, true
}
