// Package repositories provides the data access layer.
// It handles all database operations and data persistence logic.
package repositories

import (
	"log"
	"os"
	"time"

	"vendora/internal/config"
	"vendora/internal/models"
	"vendora/internal/repositories/cache"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance used across the application.
var DB *gorm.DB
var CacheService *cache.CacheService

// DBConfig holds database connection pool configuration.
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

var dbConfig = DBConfig{
	MaxIdleConns:    10,
	MaxOpenConns:    100,
	ConnMaxLifetime: time.Hour,
	ConnMaxIdleTime: time.Minute * 30,
}

// InitDB initializes the database connection.
// It sets up the connection pool, performs migrations, and creates the
// partial unique indexes that back the single-pending-application and
// once-per-day invariants.
func InitDB() error {
	initPostgres()

	redisCfg := &cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	}
	redisClient := cache.NewRedisClient(redisCfg)
	CacheService = cache.NewCacheService(redisClient, 24*time.Hour)

	err := DB.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.PointsTransaction{},
		&models.Merchant{},
		&models.DepositApplication{},
		&models.DepositTopUpApplication{},
		&models.DepositRefundApplication{},
		&models.DepositViolation{},
		&models.CheckInRecord{},
		&models.ReferralRecord{},
		&models.ContactReveal{},
		&models.PlatformSettings{},
		&models.NotificationEvent{},
	)
	if err != nil {
		return err
	}

	return createPartialIndexes(DB)
}

// createPartialIndexes enforces "at most one pending application per merchant
// per kind" at the database level. A concurrent second submission fails the
// insert with a duplicate-key error instead of slipping past an
// application-level existence check.
func createPartialIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_deposit_app_pending
			ON deposit_applications (merchant_id) WHERE status = 'pending'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_deposit_topup_pending
			ON deposit_top_up_applications (merchant_id) WHERE status = 'pending'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_deposit_refund_pending
			ON deposit_refund_applications (merchant_id) WHERE status = 'pending'`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func initPostgres() {
	dbName := config.GetEnv("DB_NAME", "vendora")
	dsn := "host=" + config.GetEnv("DB_HOST", "localhost") +
		" user=" + config.GetEnv("DB_USER", "postgres") +
		" password=" + config.GetEnv("DB_PASSWORD", "postgres") +
		" dbname=" + dbName +
		" port=" + config.GetEnv("DB_PORT", "5432") +
		" sslmode=disable"

	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey, which the deposit repositories rely on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
	db.Logger = newLogger
}
