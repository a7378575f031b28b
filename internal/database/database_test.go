package database

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"readrover/internal/models"
	"readrover/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	// Running migrations twice must be a no-op
	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"users", "friendships", "books", "reviews",
		"activities", "comments", "replies",
		"activity_visibilities", "notifications",
	} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	// The visibility set relies on its composite unique index
	assert.True(t, db.Migrator().HasIndex(&models.ActivityVisibility{}, "idx_activity_viewer"))
}

func TestFriendshipPairUniqueAcrossOrders(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:pair_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.Friendship{
		RequesterID: 1, AddresseeID: 2, Status: models.FriendshipStatusPending,
	}).Error)

	// The reversed pair is the same friendship and must be rejected
	err = db.Create(&models.Friendship{
		RequesterID: 2, AddresseeID: 1, Status: models.FriendshipStatusPending,
	}).Error
	assert.Error(t, err)

	// An unrelated pair is unaffected
	assert.NoError(t, db.Create(&models.Friendship{
		RequesterID: 1, AddresseeID: 3, Status: models.FriendshipStatusPending,
	}).Error)
}

func TestCustomGormLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := &CustomGormLogger{
		logger: slog.New(slog.NewTextHandler(&buf, nil)),
		Config: logger.Config{
			SlowThreshold: 100 * time.Millisecond,
			LogLevel:      logger.Warn,
		},
	}

	ctx := context.Background()

	// Below Warn level, Info output is suppressed
	l.Info(ctx, "info message")
	assert.Empty(t, buf.String())

	l.Warn(ctx, "warn message")
	assert.Contains(t, buf.String(), "warn message")

	// Fast queries stay quiet at Warn level
	buf.Reset()
	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Empty(t, buf.String())

	// Slow queries cross the threshold and get logged
	l.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Contains(t, buf.String(), "slow query")
}

func TestTraceRecordsQueryLatency(t *testing.T) {
	l := &CustomGormLogger{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: logger.Config{LogLevel: logger.Warn},
	}

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT * FROM books", 3 }, nil)

	assert.GreaterOrEqual(t,
		testutil.CollectAndCount(observability.DatabaseQueryLatency, "readrover_database_query_latency_seconds"), 1)
	assert.Equal(t, "select", sqlOperation("  SELECT * FROM books"))
	assert.Equal(t, "insert", sqlOperation("INSERT INTO books VALUES (1)"))
}
