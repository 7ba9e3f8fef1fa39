package persistence

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/resumescore/backend/internal/infrastructure/logger"
)

// openMocked wires a Database onto a sqlmock connection. Tests that
// exercise Close register ExpectClose themselves; the rest let the
// mock connection leak, which sqlmock tolerates.
func openMocked(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock
}

// The server opens its connection through NewDatabaseWithCustomLogger so
// statements log through zap. This exercises the same wiring against a
// mocked connection: a query executed on a GormLogger-configured DB must
// surface in the zap core.
func TestDatabaseUsesCustomGormLogger(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	core, recorded := observer.New(zapcore.DebugLevel)
	gl := logger.NewGormLogger(zap.New(core), gormlogger.Info)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	db := &Database{DB: gormDB}

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	var count int64
	require.NoError(t, db.DB.Raw("SELECT count(*) FROM analyses").Scan(&count).Error)
	require.Equal(t, int64(3), count)

	logs := recorded.FilterMessage("SQL Query").All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Contains(t, fields["sql"], "FROM analyses")
	assert.Equal(t, int64(1), fields["rows"])
}

func TestDatabaseStats(t *testing.T) {
	db, _ := openMocked(t)

	stats, err := db.Stats()
	require.NoError(t, err)

	// a fresh pool reports non-negative counters and no waiters
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.GreaterOrEqual(t, stats.InUse, 0)
	assert.GreaterOrEqual(t, stats.Idle, 0)
	assert.Equal(t, int64(0), stats.WaitCount)
	assert.Equal(t, time.Duration(0), stats.WaitDuration)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestDatabasePing(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	// gorm.Open pings once to verify the connection
	mock.ExpectPing()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	db := &Database{DB: gormDB}

	mock.ExpectPing()
	assert.NoError(t, db.Ping())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseClose(t *testing.T) {
	db, mock := openMocked(t)

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseTransaction(t *testing.T) {
	type record struct {
		ID   uint
		Name string
	}

	t.Run("commit on success", func(t *testing.T) {
		db, mock := openMocked(t)

		mock.ExpectBegin()
		// the postgres dialector issues INSERT ... RETURNING as a query
		mock.ExpectQuery(`INSERT INTO "records"`).
			WithArgs("senior engineer resume").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&record{Name: "senior engineer resume"}).Error
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock := openMocked(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
