package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig
	Cache    CacheConfig
	Business BusinessConfig
	Run      RunConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds the warehouse connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	SummaryTTLSeconds int
}

// BusinessConfig holds the merchandising constants that used to be embedded
// literals in the health computation: trailing windows, turnover targets,
// Pareto breakpoints and the store eligibility filters.
type BusinessConfig struct {
	BaselineWindowDays int     // trailing sales window for the baseline average
	RecentWindowDays   int     // trailing sales window for the recent average
	UrgentDays         int     // turnover below this is an urgent shortage
	RestockDays        int     // turnover below this needs restocking
	TargetTurnoverDays int     // replenishment targets this many days of cover
	TurnoverSentinel   int64   // stands in for infinite turnover when there are no sales
	ParetoHotShare     float64 // cumulative sales share boundary for grade S
	ParetoCoreShare    float64 // cumulative sales share boundary for grade A
	ParetoRegularShare float64 // cumulative sales share boundary for grade B
	WarehouseStoreCode string  // code of the main warehouse store
	EcommercePrefix    string  // store-code prefix marking e-commerce channels
}

type RunConfig struct {
	LogLevel string
	// FailFast aborts the run when a fact-availability stage reports a
	// problem. The default keeps the historical behavior of computing
	// against possibly-stale facts with a warning.
	FailFast bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "hefang_dw")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SUMMARY_TTL_SECONDS", 3600)
		viper.SetDefault("HEALTH_BASELINE_WINDOW_DAYS", 30)
		viper.SetDefault("HEALTH_RECENT_WINDOW_DAYS", 7)
		viper.SetDefault("HEALTH_URGENT_DAYS", 30)
		viper.SetDefault("HEALTH_RESTOCK_DAYS", 70)
		viper.SetDefault("HEALTH_TARGET_TURNOVER_DAYS", 90)
		viper.SetDefault("HEALTH_TURNOVER_SENTINEL", 9999)
		viper.SetDefault("PARETO_HOT_SHARE", 0.30)
		viper.SetDefault("PARETO_CORE_SHARE", 0.70)
		viper.SetDefault("PARETO_REGULAR_SHARE", 0.90)
		viper.SetDefault("WAREHOUSE_STORE_CODE", "001")
		viper.SetDefault("ECOMMERCE_STORE_PREFIX", "DS")
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("RUN_FAIL_FAST", false)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				SummaryTTLSeconds: viper.GetInt("CACHE_SUMMARY_TTL_SECONDS"),
			},
			Business: BusinessConfig{
				BaselineWindowDays: viper.GetInt("HEALTH_BASELINE_WINDOW_DAYS"),
				RecentWindowDays:   viper.GetInt("HEALTH_RECENT_WINDOW_DAYS"),
				UrgentDays:         viper.GetInt("HEALTH_URGENT_DAYS"),
				RestockDays:        viper.GetInt("HEALTH_RESTOCK_DAYS"),
				TargetTurnoverDays: viper.GetInt("HEALTH_TARGET_TURNOVER_DAYS"),
				TurnoverSentinel:   viper.GetInt64("HEALTH_TURNOVER_SENTINEL"),
				ParetoHotShare:     viper.GetFloat64("PARETO_HOT_SHARE"),
				ParetoCoreShare:    viper.GetFloat64("PARETO_CORE_SHARE"),
				ParetoRegularShare: viper.GetFloat64("PARETO_REGULAR_SHARE"),
				WarehouseStoreCode: viper.GetString("WAREHOUSE_STORE_CODE"),
				EcommercePrefix:    viper.GetString("ECOMMERCE_STORE_PREFIX"),
			},
			Run: RunConfig{
				LogLevel: viper.GetString("LOG_LEVEL"),
				FailFast: viper.GetBool("RUN_FAIL_FAST"),
			},
		}
	})

	return instance
}
