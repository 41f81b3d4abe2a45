package store

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm/logger"
)

// gormHclogAdapter adapts hclog.Logger to gorm's logger.Interface.
type gormHclogAdapter struct {
	logger hclog.Logger
	level  logger.LogLevel
}

func newGormLogger(log hclog.Logger) logger.Interface {
	return &gormHclogAdapter{
		logger: log,
		level:  logger.Info,
	}
}

// LogMode sets the log level for GORM queries.
func (g *gormHclogAdapter) LogMode(level logger.LogLevel) logger.Interface {
	return &gormHclogAdapter{
		logger: g.logger,
		level:  level,
	}
}

// Info logs info messages.
func (g *gormHclogAdapter) Info(_ context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info && g.logger != nil {
		g.logger.Info(msg, data...)
	}
}

// Warn logs warning messages.
func (g *gormHclogAdapter) Warn(_ context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn && g.logger != nil {
		g.logger.Warn(msg, data...)
	}
}

// Error logs error messages.
func (g *gormHclogAdapter) Error(_ context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error && g.logger != nil {
		g.logger.Error(msg, data...)
	}
}

// Trace logs SQL queries and execution time.
func (g *gormHclogAdapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && g.level >= logger.Error {
		g.logger.Error("database query failed",
			"error", err,
			"elapsed", elapsed,
			"rows", rows,
			"sql", sql,
		)
	} else if elapsed > 200*time.Millisecond && g.level >= logger.Warn {
		g.logger.Warn("slow database query",
			"elapsed", elapsed,
			"rows", rows,
			"sql", sql,
		)
	} else if g.level >= logger.Info {
		g.logger.Debug("database query",
			"elapsed", elapsed,
			"rows", rows,
			"sql", sql,
		)
	}
}
