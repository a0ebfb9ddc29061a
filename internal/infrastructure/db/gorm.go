package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/loan"
	"lender-agent-backend/internal/domain/wallet"
)

// Open connects with the configured driver: "mysql" for a real deployment,
// "sqlite" for standalone/demo mode (the default DSN is an in-memory
// database, matching the engine's process-lifetime persistence contract).
func Open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "mysql":
		gdb, err = gorm.Open(mysql.Open(dsn), cfg)
	case "sqlite":
		gdb, err = gorm.Open(sqlite.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// sqlite serializes writers; more connections just add lock errors.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(30)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate creates or updates the engine's schema.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&agent.Agent{},
		&loan.Record{},
		&wallet.Transaction{},
		&wallet.ConnectedWallet{},
		&wallet.Account{},
		&wallet.Session{},
	)
}
