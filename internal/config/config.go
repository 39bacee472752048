package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Meta         Meta         `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	SnapshotSync SnapshotSync `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	Enabled  bool   `mapstructure:"database_enabled"`
}

type Meta struct {
	BaseURL     string `mapstructure:"meta_base_url"`
	AuthBaseURL string `mapstructure:"meta_auth_base_url"`
	URL         string `mapstructure:"-"`
	Version     string `mapstructure:"meta_version"`
	AppID       string `mapstructure:"meta_app_id"`
	AppSecret   string `mapstructure:"meta_app_secret"`
	RedirectURI string `mapstructure:"meta_redirect_uri"`

	// Orçamento de chamadas imposto pela API e comportamento de backoff
	QuotaMaxCalls      int `mapstructure:"meta_quota_max_calls"`
	QuotaWindowMinutes int `mapstructure:"meta_quota_window_minutes"`
	BackoffBaseMs      int `mapstructure:"meta_backoff_base_ms"`
	BackoffMaxMs       int `mapstructure:"meta_backoff_max_ms"`

	// Cache de respostas
	CacheTTLSeconds     int `mapstructure:"meta_cache_ttl_seconds"`
	CacheMaxEntries     int `mapstructure:"meta_cache_max_entries"`
	InsightsTTLSeconds  int `mapstructure:"meta_insights_ttl_seconds"`
	MaxRetryAttempts    int `mapstructure:"meta_max_retry_attempts"`
	MaxPagesPerPaginate int `mapstructure:"meta_max_pages_per_paginate"`
	RequestLogSize      int `mapstructure:"meta_request_log_size"`
	RequestTimeoutSecs  int `mapstructure:"meta_request_timeout_seconds"`
}

type Auth struct {
	Secret               string `mapstructure:"auth_secret"`
	OperatorEmail        string `mapstructure:"auth_operator_email"`
	OperatorPasswordHash string `mapstructure:"auth_operator_password_hash"`
	TokenTTLHours        int    `mapstructure:"auth_token_ttl_hours"`
}

type SnapshotSync struct {
	CronSchedule        string   `mapstructure:"snapshot_sync_cron"`
	LookbackDays        int      `mapstructure:"snapshot_sync_lookback_days"`
	RequestDelaySeconds int      `mapstructure:"snapshot_sync_request_delay_seconds"`
	Enabled             bool     `mapstructure:"snapshot_sync_enabled"`
	AccountIDs          []string `mapstructure:"snapshot_sync_account_ids"`
	RetentionDays       int      `mapstructure:"snapshot_sync_retention_days"`
}

// QuotaWindow retorna a janela de quota como duração
func (m Meta) QuotaWindow() time.Duration {
	return time.Duration(m.QuotaWindowMinutes) * time.Minute
}

// CacheTTL retorna o TTL padrão do cache como duração
func (m Meta) CacheTTL() time.Duration {
	return time.Duration(m.CacheTTLSeconds) * time.Second
}

// InsightsTTL retorna o TTL curto usado para métricas quase em tempo real
func (m Meta) InsightsTTL() time.Duration {
	return time.Duration(m.InsightsTTLSeconds) * time.Second
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/warroom")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_ENABLED", false)

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_AUTH_BASE_URL", "https://www.facebook.com")
	viper.SetDefault("META_VERSION", "v19.0")
	viper.SetDefault("META_APP_ID", "your_app_id")
	viper.SetDefault("META_APP_SECRET", "your_app_secret")
	viper.SetDefault("META_REDIRECT_URI", "http://localhost:3000/auth/meta/callback")

	// A API do Meta não publica o limite real; 200 chamadas/hora é uma
	// estimativa conservadora para apps em modo de desenvolvimento
	viper.SetDefault("META_QUOTA_MAX_CALLS", 200)
	viper.SetDefault("META_QUOTA_WINDOW_MINUTES", 60)
	viper.SetDefault("META_BACKOFF_BASE_MS", 1000)
	viper.SetDefault("META_BACKOFF_MAX_MS", 60000)

	viper.SetDefault("META_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("META_CACHE_MAX_ENTRIES", 1000)
	viper.SetDefault("META_INSIGHTS_TTL_SECONDS", 300)
	viper.SetDefault("META_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("META_MAX_PAGES_PER_PAGINATE", 10)
	viper.SetDefault("META_REQUEST_LOG_SIZE", 100)
	viper.SetDefault("META_REQUEST_TIMEOUT_SECONDS", 30)

	viper.SetDefault("AUTH_SECRET", "your_secret_key")
	viper.SetDefault("AUTH_OPERATOR_EMAIL", "")
	viper.SetDefault("AUTH_OPERATOR_PASSWORD_HASH", "")
	viper.SetDefault("AUTH_TOKEN_TTL_HOURS", 12)

	viper.SetDefault("SNAPSHOT_SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("SNAPSHOT_SYNC_LOOKBACK_DAYS", 7)
	viper.SetDefault("SNAPSHOT_SYNC_REQUEST_DELAY_SECONDS", 2)
	viper.SetDefault("SNAPSHOT_SYNC_ENABLED", false)
	viper.SetDefault("SNAPSHOT_SYNC_ACCOUNT_IDS", "")
	viper.SetDefault("SNAPSHOT_SYNC_RETENTION_DAYS", 90)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
