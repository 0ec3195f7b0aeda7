// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек приложения.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	ProjectName             string `yaml:"project_name" env:"PROJECT_NAME" env-default:"Cookieflix"`
	APIPrefix               string `yaml:"api_prefix" env:"API_PREFIX" env-default:"/api/v1"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	FrontendURL             string `yaml:"frontend_url" env:"FRONTEND_URL"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitConnection        `yaml:"rabbit_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	PaymentProvider         `yaml:"payment_provider"`
	SMTP                    `yaml:"smtp"`
	AdminBootstrap          `yaml:"admin"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitConnection структура для настройки подключения к rabbitmq.
type RabbitConnection struct {
	AddressRabbit string        `yaml:"addressrabbit" env:"RABBIT_ADDRESS"`
	RetriesRabbit int           `yaml:"retries" env-default:"5"`
	DelayRabbit   time.Duration `yaml:"delay" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"168h"`
}

// PaymentProvider настройки клиента платёжного провайдера и вебхуков.
type PaymentProvider struct {
	ProviderAPIURL string `yaml:"api_url" env:"PROVIDER_API_URL" env-default:"https://api.stripe.com/v1"`
	ProviderAPIKey string `yaml:"api_key" env:"PROVIDER_API_KEY"`
	WebhookSecret  string `yaml:"webhook_secret" env:"PROVIDER_WEBHOOK_SECRET"`
}

// SMTP настройки почтового транспорта для исходящих уведомлений.
type SMTP struct {
	SMTPHost   string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort   string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser   string `yaml:"user" env:"SMTP_USER"`
	SMTPPass   string `yaml:"pass" env:"SMTP_PASS"`
	AdminEmail string `yaml:"admin_email" env:"ADMIN_EMAIL" env-default:"admin@cookieflix.com"`
}

// AdminBootstrap учетные данные администратора, создаваемого при старте.
type AdminBootstrap struct {
	AdminBootstrapEmail    string `yaml:"email" env:"ADMIN_BOOTSTRAP_EMAIL"`
	AdminBootstrapPassword string `yaml:"password" env:"ADMIN_BOOTSTRAP_PASSWORD"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, при ошибке завершает процесс.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
