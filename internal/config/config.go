package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	AppEnv                string
	Logger                LoggerConfig
	DatabaseURL           string
	Redis                 RedisConfig
	AuthSecret            string
	AccessTokenTTLMinutes int
	SuperAdminPIN         string
	ShopName              string
	Timezone              string
	TopProducts           int
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func Load() Config {
	appEnv := getEnv("APP_ENV", "production")
	logLevel, logEncoding := "info", "json"
	if appEnv == "development" {
		logLevel, logEncoding = "debug", "console"
	}

	return Config{
		Port:          getEnv("PORT", "8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		AppEnv:        appEnv,
		Logger: LoggerConfig{
			Level:             getEnv("LOG_LEVEL", logLevel),
			Encoding:          getEnv("LOG_ENCODING", logEncoding),
			DisableCaller:     getEnvBool("LOG_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOG_DISABLE_STACKTRACE", false),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "shopos:"),
		},
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: getEnvPositiveInt("ACCESS_TOKEN_TTL_MINUTES", 720),
		SuperAdminPIN:         strings.TrimSpace(os.Getenv("SUPER_ADMIN_PIN")),
		ShopName:              getEnv("SHOP_NAME", "ShopOS"),
		Timezone:              getEnv("SHOP_TIMEZONE", "Africa/Lagos"),
		TopProducts:           getEnvPositiveInt("TOP_PRODUCTS", 5),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvPositiveInt(key string, fallback int) int {
	n := getEnvInt(key, fallback)
	if n < 1 {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return b
}
