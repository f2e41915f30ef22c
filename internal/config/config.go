package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type AppCfg struct{ Name, Env, Port, LogLevel string }

type DBCfg struct {
	Driver         string // postgres | memory
	DSN            string
	MaxConns       int32
	ConnectTimeout time.Duration
}

type RedisCfg struct {
	Addr     string // empty disables the dashboard cache
	Password string
	DB       int
	Prefix   string
}

type ListCfg struct {
	DefaultLimit int
	MaxLimit     int    // 0 means unbounded
	OrderType    string // asc | desc
}

type DashboardCfg struct {
	CacheTTL     time.Duration
	RefreshEvery time.Duration // 0 disables the warmer
}

type CORSCfg struct {
	AllowOrigin      string
	AllowCredentials bool
}

type Cfg struct {
	App       AppCfg
	DB        DBCfg
	Redis     RedisCfg
	List      ListCfg
	Dashboard DashboardCfg
	CORS      CORSCfg
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "Easy Aspataal")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_PORT", "8060")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("DB_MAX_CONNS", 15)
	v.SetDefault("DB_CONNECT_TIMEOUT", "30s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "aspataal:")
	v.SetDefault("LIST_DEFAULT_LIMIT", 20)
	v.SetDefault("LIST_MAX_LIMIT", 500)
	v.SetDefault("LIST_ORDER_TYPE", "desc")
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_REFRESH_EVERY", "0s")
	v.SetDefault("CORS_ALLOW_ORIGIN", "*")
	v.SetDefault("CORS_ALLOW_CREDENTIALS", false)
}

// FromViper builds the config from an already populated viper instance.
func FromViper(v *viper.Viper) (Cfg, error) {
	setDefaults(v)

	cfg := Cfg{
		App: AppCfg{
			Name:     v.GetString("APP_NAME"),
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBCfg{
			Driver:         strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
			DSN:            strings.TrimSpace(v.GetString("DB_DSN")),
			MaxConns:       v.GetInt32("DB_MAX_CONNS"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
		},
		Redis: RedisCfg{
			Addr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("REDIS_PREFIX"),
		},
		List: ListCfg{
			DefaultLimit: v.GetInt("LIST_DEFAULT_LIMIT"),
			MaxLimit:     v.GetInt("LIST_MAX_LIMIT"),
			OrderType:    strings.ToLower(v.GetString("LIST_ORDER_TYPE")),
		},
		Dashboard: DashboardCfg{
			CacheTTL:     v.GetDuration("DASHBOARD_CACHE_TTL"),
			RefreshEvery: v.GetDuration("DASHBOARD_REFRESH_EVERY"),
		},
		CORS: CORSCfg{
			AllowOrigin:      v.GetString("CORS_ALLOW_ORIGIN"),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
		},
	}

	switch cfg.DB.Driver {
	case DriverPostgres:
		if cfg.DB.DSN == "" {
			return cfg, fmt.Errorf("DB_DSN is required when STORE_DRIVER=%s", DriverPostgres)
		}
	case DriverMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.DB.Driver)
	}
	if cfg.List.DefaultLimit <= 0 {
		return cfg, fmt.Errorf("LIST_DEFAULT_LIMIT must be positive")
	}
	if cfg.List.MaxLimit > 0 && cfg.List.MaxLimit < cfg.List.DefaultLimit {
		return cfg, fmt.Errorf("LIST_MAX_LIMIT must not be below LIST_DEFAULT_LIMIT")
	}
	if cfg.List.OrderType != "asc" && cfg.List.OrderType != "desc" {
		return cfg, fmt.Errorf("LIST_ORDER_TYPE must be asc or desc")
	}
	return cfg, nil
}

func Load() Cfg {
	// 1) Load .env into process env (if file exists)
	_ = godotenv.Load(".env")

	// 2) Read from env via viper
	v := viper.New()
	v.AutomaticEnv()

	// 3) Fail fast on invalid settings
	cfg, err := FromViper(v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}
