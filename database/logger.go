package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/artifactstore/logger"
)

// parseLogLevel maps the config's log_level onto GORM levels. Unknown
// values fall back to warn.
func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// gormLogger routes GORM output into the structured logger under component
// "gorm". Record-not-found is not logged: absent blobs are an ordinary
// answer for the storage layer.
type gormLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(log *logger.Logger, slow time.Duration, level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{log: log.WithComponent("gorm"), level: level, slow: slow}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Debug(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		sql, rows := fc()
		g.log.Error("query failed", queryFields(sql, rows, elapsed, err))
	case g.slow > 0 && elapsed > g.slow && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn("slow query", queryFields(sql, rows, elapsed, nil))
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug("query", queryFields(sql, rows, elapsed, nil))
	}
}

func queryFields(sql string, rows int64, elapsed time.Duration, err error) map[string]interface{} {
	fields := logger.Fields("sql", sql, "rows", rows, logger.FieldDuration, elapsed.Milliseconds())
	if err != nil {
		fields = logger.MergeWithError(fields, err)
	}
	return fields
}
