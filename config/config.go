package config

import (
	"os"
	"strconv"

	"food-ordering-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the application configuration
type Config struct {
	AppPort   string
	DBPath    string
	JWTSecret string // signing key for session tokens, read-only after startup
	RedisAddr string
	RedisPass string
	RedisDB   int
	IsProd    bool
}

// Load reads configuration from the environment, with an optional .env file.
func Load() *Config {
	_ = godotenv.Load()
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:   getEnv("APP_PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "food_ordering.db"),
		JWTSecret: getEnv("JWT_SECRET", "food_ordering_dev_secret"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   redisDB,
		IsProd:    os.Getenv("IS_PROD") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// OpenDB opens the sqlite database and migrates the schema. The returned
// handle is passed into the handler constructors; there is no package-level
// database state.
func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewRedis returns a redis client, or nil when no address is configured
// (caching is then skipped entirely).
func NewRedis(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
}
