package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/time"
	"github.com/google/uuid"
)

// TestDBManager wraps a Manager connected to a private in-memory SQLite database
type TestDBManager struct {
	*Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// TestSQLiteDSN returns a DSN for a fresh shared-cache in-memory database with foreign keys on
func TestSQLiteDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000", uuid.NewString())
}

// NewTestDBManager connects to a new in-memory database and migrates it.
// The connection is closed when the test ends.
func NewTestDBManager(t testing.TB) *TestDBManager {
	t.Helper()

	log := logger.NewNoopLogger()
	timeProvider := timeprovider.NewRealTimeProvider()

	config := &Config{
		Driver: DriverSQLite,
		Path:   TestSQLiteDSN(),
		// one connection keeps the in-memory database alive and serializes writers
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Hour,
		QueryTimeout:    5 * time.Second,
		LogLevel:        "silent",
		RetryAttempts:   1,
	}

	manager := NewManager(config, log, timeProvider)
	if _, err := manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})

	if err := manager.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDBManager{
		Manager:      manager,
		Config:       config,
		Logger:       log,
		TimeProvider: timeProvider,
	}
}
