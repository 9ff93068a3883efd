package db

import (
	"fmt"
	"math"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"asset_tracker/internal/models"
)

type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

var DefaultPool = Pool{MaxOpen: 25, MaxIdle: 10, MaxLifetime: 30 * time.Minute}

// SessionDSN sets innodb_lock_wait_timeout as a session variable on every
// connection the pool opens, rounded up to whole seconds. A zero lockWait
// leaves the server default.
func SessionDSN(dsn string, lockWait time.Duration) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	if lockWait <= 0 {
		return cfg.FormatDSN(), nil
	}
	secs := int(math.Ceil(lockWait.Seconds()))
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params["innodb_lock_wait_timeout"] = strconv.Itoa(secs)
	return cfg.FormatDSN(), nil
}

func Connect(dsn string, pool Pool, log *zap.Logger) (*gorm.DB, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if pool.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdle)
	}
	if pool.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info("database connected", zap.Int("max_open_conns", pool.MaxOpen))
	return gdb, nil
}

// Models lists every table owned by the service, parents first.
func Models() []any {
	return []any{
		&models.Category{},
		&models.Product{},
		&models.Sector{},
		&models.Branch{},
		&models.Employee{},
		&models.Asset{},
		&models.Assignment{},
		&models.Repair{},
		&models.AuditLog{},
	}
}

func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
