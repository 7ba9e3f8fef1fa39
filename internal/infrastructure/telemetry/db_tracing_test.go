package telemetry

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openTracedDB(t *testing.T, cfg DBTracingConfig) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	require.NoError(t, RegisterDBTracing(db, cfg, zap.NewNop()))
	return db, mock
}

func TestRegisterDBTracingDisabled(t *testing.T) {
	recorder := newRecordingProvider(t)
	db, mock := openTracedDB(t, DBTracingConfig{Enabled: false})

	mock.ExpectQuery(`SELECT count`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	var count int64
	require.NoError(t, db.WithContext(context.Background()).
		Table("analyses").Count(&count).Error)

	assert.Empty(t, recorder.Ended(), "disabled tracing must not create spans")
}

func TestRegisterDBTracingRecordsQuerySpans(t *testing.T) {
	recorder := newRecordingProvider(t)
	db, mock := openTracedDB(t, DBTracingConfig{Enabled: true, DBName: "resumescore"})

	mock.ExpectQuery(`SELECT count`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	var count int64
	require.NoError(t, db.WithContext(context.Background()).
		Table("analyses").Count(&count).Error)
	require.Equal(t, int64(7), count)

	spans := recorder.Ended()
	require.Len(t, spans, 1, "each statement opens exactly one span")
}

func TestRegisterDBTracingSpanIsChildOfCaller(t *testing.T) {
	recorder := newRecordingProvider(t)
	db, mock := openTracedDB(t, DBTracingConfig{Enabled: true, DBName: "resumescore"})

	mock.ExpectQuery(`SELECT count`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ctx, parent := StartServiceSpan(context.Background(), "scoring", "list")
	var count int64
	require.NoError(t, db.WithContext(ctx).Table("analyses").Count(&count).Error)
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	sql, svc := spans[0], spans[1]
	assert.Equal(t, svc.SpanContext().TraceID(), sql.SpanContext().TraceID())
	assert.Equal(t, svc.SpanContext().SpanID(), sql.Parent().SpanID())
}
