// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Planner  PlannerConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	DataDir   string
	ReportDir string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// PlannerConfig holds every tunable the planning batch consumes. Values come
// from the admin settings store upstream; here they arrive as environment
// variables with documented defaults.
type PlannerConfig struct {
	ServiceLevel        float64 // target in-stock probability during lead time (0..1)
	DefaultLeadTimeDays float64 // substituted when no vendor lead-time stats exist
	HoldingCostRate     float64 // annual holding cost as a fraction of unit cost
	OrderCost           float64 // fixed cost per purchase order
	DemandWindowMonths  int     // trailing demand history window
	MinHistoryMonths    int     // below this an item is insufficient_history
	HoldoutMonths       int     // backtest test-set length
	MinTestMonths       int     // holdout never shrinks below this
	ForecastHorizon     int     // forward months to forecast
	DemandRateMonths    int     // forecast months averaged for the demand-rate proxy
	MovingAverageWindow int
	SeasonalPeriod      int
	WorkerCount         int // 0 means use all CPUs
	FitTimeoutSeconds   int // per-model fit budget
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
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "replenish")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_DATA_DIR", "./data/extracts")
		viper.SetDefault("APP_REPORT_DIR", "./data/reports")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "replenish-extracts")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("PLANNER_SERVICE_LEVEL", 0.95)
		viper.SetDefault("PLANNER_DEFAULT_LEAD_TIME_DAYS", 21.0)
		viper.SetDefault("PLANNER_HOLDING_COST_RATE", 0.25)
		viper.SetDefault("PLANNER_ORDER_COST", 50.0)
		viper.SetDefault("PLANNER_DEMAND_WINDOW_MONTHS", 24)
		viper.SetDefault("PLANNER_MIN_HISTORY_MONTHS", 6)
		viper.SetDefault("PLANNER_HOLDOUT_MONTHS", 3)
		viper.SetDefault("PLANNER_MIN_TEST_MONTHS", 2)
		viper.SetDefault("PLANNER_FORECAST_HORIZON", 12)
		viper.SetDefault("PLANNER_DEMAND_RATE_MONTHS", 1)
		viper.SetDefault("PLANNER_MOVING_AVERAGE_WINDOW", 3)
		viper.SetDefault("PLANNER_SEASONAL_PERIOD", 12)
		viper.SetDefault("PLANNER_WORKER_COUNT", 0)
		viper.SetDefault("PLANNER_FIT_TIMEOUT_SECONDS", 5)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure data and report directories exist
		ensureDir(viper.GetString("APP_DATA_DIR"))
		ensureDir(viper.GetString("APP_REPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				DataDir:   viper.GetString("APP_DATA_DIR"),
				ReportDir: viper.GetString("APP_REPORT_DIR"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Planner: PlannerConfig{
				ServiceLevel:        viper.GetFloat64("PLANNER_SERVICE_LEVEL"),
				DefaultLeadTimeDays: viper.GetFloat64("PLANNER_DEFAULT_LEAD_TIME_DAYS"),
				HoldingCostRate:     viper.GetFloat64("PLANNER_HOLDING_COST_RATE"),
				OrderCost:           viper.GetFloat64("PLANNER_ORDER_COST"),
				DemandWindowMonths:  viper.GetInt("PLANNER_DEMAND_WINDOW_MONTHS"),
				MinHistoryMonths:    viper.GetInt("PLANNER_MIN_HISTORY_MONTHS"),
				HoldoutMonths:       viper.GetInt("PLANNER_HOLDOUT_MONTHS"),
				MinTestMonths:       viper.GetInt("PLANNER_MIN_TEST_MONTHS"),
				ForecastHorizon:     viper.GetInt("PLANNER_FORECAST_HORIZON"),
				DemandRateMonths:    viper.GetInt("PLANNER_DEMAND_RATE_MONTHS"),
				MovingAverageWindow: viper.GetInt("PLANNER_MOVING_AVERAGE_WINDOW"),
				SeasonalPeriod:      viper.GetInt("PLANNER_SEASONAL_PERIOD"),
				WorkerCount:         viper.GetInt("PLANNER_WORKER_COUNT"),
				FitTimeoutSeconds:   viper.GetInt("PLANNER_FIT_TIMEOUT_SECONDS"),
			},
		}
	})

	return instance
}

// Validate checks for configuration-level errors that must fail a planning
// batch up front. Zero or negative cost inputs are NOT checked here: those
// degrade to the documented fallback branches inside the optimizer instead.
func (p PlannerConfig) Validate() error {
	if p.ServiceLevel <= 0 || p.ServiceLevel >= 1 {
		return fmt.Errorf("invalid_configuration: service level %.4f must be in (0, 1)", p.ServiceLevel)
	}
	if p.DefaultLeadTimeDays <= 0 {
		return fmt.Errorf("invalid_configuration: default lead time %.1f must be positive", p.DefaultLeadTimeDays)
	}
	if p.MinHistoryMonths < 2 {
		return fmt.Errorf("invalid_configuration: min history months %d must be at least 2", p.MinHistoryMonths)
	}
	if p.MinTestMonths < 1 || p.HoldoutMonths < p.MinTestMonths {
		return fmt.Errorf("invalid_configuration: holdout %d / min test %d", p.HoldoutMonths, p.MinTestMonths)
	}
	if p.ForecastHorizon < 3 {
		return fmt.Errorf("invalid_configuration: forecast horizon %d must be at least 3", p.ForecastHorizon)
	}
	if p.DemandRateMonths < 1 || p.DemandRateMonths > p.ForecastHorizon {
		return fmt.Errorf("invalid_configuration: demand rate months %d out of range", p.DemandRateMonths)
	}
	if p.SeasonalPeriod < 2 {
		return fmt.Errorf("invalid_configuration: seasonal period %d must be at least 2", p.SeasonalPeriod)
	}
	return nil
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
