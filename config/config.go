package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Storage. DBDriver is one of "mongo", "postgres" or "sqlite".
	DBDriver     string `mapstructure:"DB_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	SQLDSN       string `mapstructure:"SQL_DSN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	PromotionCacheTTL time.Duration `mapstructure:"PROMOTION_CACHE_TTL"`
	ApprovalLockTTL   time.Duration `mapstructure:"APPROVAL_LOCK_TTL"`

	// Pricing constants.
	AdminFee           int64  `mapstructure:"ADMIN_FEE"`
	UtilityDepositRate string `mapstructure:"UTILITY_DEPOSIT_RATE"`
	PaymentDueDays     int    `mapstructure:"PAYMENT_DUE_DAYS"`

	// Lifecycle automation.
	AutoActivate        bool   `mapstructure:"AUTO_ACTIVATE"`
	CompletionSweepCron string `mapstructure:"COMPLETION_SWEEP_CRON"`
	WorkerConcurrency   int    `mapstructure:"WORKER_CONCURRENCY"`
}

var AppConfig Config

// SetDefaults registers default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("DB_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "vidaview")
	v.SetDefault("SQL_DSN", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_LOCK_DB", 1)
	v.SetDefault("REDIS_QUEUE_DB", 2)
	v.SetDefault("PROMOTION_CACHE_TTL", 5*time.Minute)
	v.SetDefault("APPROVAL_LOCK_TTL", 10*time.Second)
	v.SetDefault("ADMIN_FEE", 500000)
	v.SetDefault("UTILITY_DEPOSIT_RATE", "0.20")
	v.SetDefault("PAYMENT_DUE_DAYS", 3)
	v.SetDefault("AUTO_ACTIVATE", true)
	v.SetDefault("COMPLETION_SWEEP_CRON", "@hourly")
	v.SetDefault("WORKER_CONCURRENCY", 10)
}

// Load reads configuration from config.yaml (current or ./config directory)
// and the environment into a Config.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates AppConfig from the global viper instance.
func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
