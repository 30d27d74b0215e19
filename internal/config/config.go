package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultGuildID     = "1475014802194567238"
	defaultStaffRoleID = "1475015141882855424"
)

// ErrMissingToken is returned by Load when no bot credential is configured.
var ErrMissingToken = errors.New("DISCORD_BOT_TOKEN env var not set")

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Discord  DiscordConfig
	Branding BrandingConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Ops      OpsConfig
}

// AppConfig controls the ops HTTP server.
type AppConfig struct {
	Name        string
	Env         string
	Host        string
	Port        string
	Version     string
	HTTPEnabled bool
}

// DiscordConfig holds the platform credential and the guild-scoped ids.
// Empty ids mean the feature that needs them is skipped.
type DiscordConfig struct {
	Token                  string
	GuildID                string
	TicketCategoryID       string
	TicketLogChannelID     string
	ChangelogChannelID     string
	StaffRoleID            string
	AttachmentFetchTimeout time.Duration
}

// BrandingConfig carries the user-visible names used in embeds.
type BrandingConfig struct {
	Name          string
	Product       string
	PanelFooter   string
	StaffRoleName string
}

// PostgresConfig holds DB connection values for the audit read-model.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values for the event stream.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	EventStream string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// OpsConfig defines operator token parameters for the ops API.
type OpsConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
}

// Load reads configuration from environment variables, applying defaults where possible.
// envFiles are passed to godotenv; a missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "ticketbot"),
			Env:         getEnv("APP_ENV", "development"),
			Host:        getEnv("APP_HOST", "0.0.0.0"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "dev"),
			HTTPEnabled: getEnvAsBool("HTTP_ENABLED", true),
		},
		Discord: DiscordConfig{
			Token:                  strings.TrimSpace(os.Getenv("DISCORD_BOT_TOKEN")),
			GuildID:                getEnvAsID("DISCORD_GUILD_ID", defaultGuildID),
			TicketCategoryID:       getEnvAsID("TICKET_CATEGORY_ID", ""),
			TicketLogChannelID:     getEnvAsID("TICKET_LOG_ID", ""),
			ChangelogChannelID:     getEnvAsID("CHANGELOG_CHANNEL_ID", ""),
			StaffRoleID:            getEnvAsID("SUPPORT_ROLE_ID", defaultStaffRoleID),
			AttachmentFetchTimeout: time.Duration(getEnvAsInt("ATTACHMENT_FETCH_TIMEOUT_SECONDS", 0)) * time.Second,
		},
		Branding: BrandingConfig{
			Name:          getEnv("BOT_BRAND_NAME", "Lite"),
			Product:       getEnv("BOT_PRODUCT_NAME", "Lite Scanner"),
			PanelFooter:   getEnv("BOT_PANEL_FOOTER", "Lite Forensic Platform"),
			StaffRoleName: getEnv("STAFF_ROLE_NAME", "Lite"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 0)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:        os.Getenv("REDIS_ADDR"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			EventStream: getEnv("REDIS_EVENT_STREAM", "ticketbot:events"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Ops: OpsConfig{
			JWTSecret:       os.Getenv("OPS_JWT_SECRET"),
			TokenTTLMinutes: getEnvAsInt("OPS_TOKEN_TTL_MINUTES", 60),
		},
	}

	if cfg.Discord.Token == "" {
		return cfg, ErrMissingToken
	}
	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvAsID treats "0" the same as unset, matching how ids are documented.
func getEnvAsID(key, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		val = fallback
	}
	if val == "0" {
		return ""
	}
	return val
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
