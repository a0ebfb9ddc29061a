package mysql

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lender-agent-backend/internal/domain/agent"
	"lender-agent-backend/internal/domain/loan"
	"lender-agent-backend/internal/domain/wallet"
)

// openTestDB creates an in-memory sqlite DB with the full schema. The models
// carry no mysql-only column types, so the domain structs migrate as-is.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&agent.Agent{},
		&loan.Record{},
		&wallet.Transaction{},
		&wallet.ConnectedWallet{},
		&wallet.Account{},
		&wallet.Session{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
