package database

import (
	"context"
	"errors"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	coremocks "github.com/amirhossein-jamali/bank-ledger/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestExtractQueryType(t *testing.T) {
	assert.Equal(t, "SELECT", extractQueryType(`  select * from "users"`))
	assert.Equal(t, "INSERT", extractQueryType(`INSERT INTO "transactions" ("user_id") VALUES (1)`))
	assert.Equal(t, "UPDATE", extractQueryType(`UPDATE "users" SET "balance"=1`))
	assert.Equal(t, "DELETE", extractQueryType(`DELETE FROM "sessions" WHERE token = 'x'`))
	assert.Equal(t, "", extractQueryType(`PRAGMA foreign_keys`))
}

func TestExtractTableName(t *testing.T) {
	assert.Equal(t, "users", extractTableName(`SELECT * FROM "users" WHERE "users"."id" = 1`))
	assert.Equal(t, "transactions", extractTableName(`INSERT INTO "transactions" ("user_id") VALUES (1)`))
	assert.Equal(t, "users", extractTableName(`UPDATE "users" SET "balance"=1`))
	assert.Equal(t, "", extractTableName(`BEGIN`))
}

func TestDatabaseLogger_Trace(t *testing.T) {
	ctx := coreport.ContextWithRequestID(context.Background(), "req-42")
	sql := func() (string, int64) { return `SELECT * FROM "users"`, 1 }

	t.Run("should log SQL errors with the request id", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		tp := coremocks.NewMockTimeProvider(t)
		tp.EXPECT().Since(mock.Anything).Return(time.Millisecond)
		log.EXPECT().Error("SQL Error", mock.MatchedBy(func(fields map[string]any) bool {
			return fields["trace_id"] == "req-42" && fields["table"] == "users" && fields["error"] == "boom"
		})).Once()

		NewDatabaseLogger(log, tp, "warn", time.Second).Trace(ctx, time.Now(), sql, errors.New("boom"))
	})

	t.Run("should ignore record not found", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		tp := coremocks.NewMockTimeProvider(t)
		tp.EXPECT().Since(mock.Anything).Return(time.Millisecond)

		NewDatabaseLogger(log, tp, "warn", time.Second).Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	})

	t.Run("should warn about slow queries", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		tp := coremocks.NewMockTimeProvider(t)
		tp.EXPECT().Since(mock.Anything).Return(2 * time.Second)
		log.EXPECT().Warn("Slow SQL Query", mock.Anything).Once()

		NewDatabaseLogger(log, tp, "warn", time.Second).Trace(ctx, time.Now(), sql, nil)
	})

	t.Run("should trace every statement at debug", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		tp := coremocks.NewMockTimeProvider(t)
		tp.EXPECT().Since(mock.Anything).Return(time.Millisecond)
		log.EXPECT().Debug("SQL Query", mock.Anything).Once()

		NewDatabaseLogger(log, tp, "debug", time.Second).Trace(ctx, time.Now(), sql, nil)
	})

	t.Run("should stay quiet when silent", func(t *testing.T) {
		log := coremocks.NewMockLogger(t)
		tp := coremocks.NewMockTimeProvider(t)

		NewDatabaseLogger(log, tp, "silent", time.Second).Trace(ctx, time.Now(), sql, errors.New("boom"))
	})
}
