package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls SQL span instrumentation.
type DBTracingConfig struct {
	Enabled   bool
	DBName    string
	RecordSQL bool // include query variables in span statements; off in production
}

// RegisterDBTracing attaches the otelgorm plugin to db so every statement
// opens a child span under the request span. The plugin records the
// statement, row count, and failures on its own; slow query detection
// stays with the zap GORM logger.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, log *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := make([]otelgorm.Option, 0, 2)
	if cfg.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(cfg.DBName))
	}
	if !cfg.RecordSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	log.Info("Database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Bool("record_sql", cfg.RecordSQL),
	)
	return nil
}
