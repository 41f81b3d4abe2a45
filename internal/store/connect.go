package store

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds database connection configuration. Supports PostgreSQL for
// deployments and SQLite for local use and tests.
type Config struct {
	Driver string // "postgres" or "sqlite"

	// PostgreSQL.
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// SQLite.
	Path string // e.g. ":memory:" or "data/engine.db"

	// Connection pool settings.
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Connect opens a database connection, retrying transient failures with
// exponential backoff. Writes are never retried; only connection
// establishment is.
func Connect(cfg Config, log hclog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{}
	if log != nil {
		gormConfig.Logger = newGormLogger(log.Named("gorm"))
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	var db *gorm.DB
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second
	err = backoff.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(dialector, gormConfig)
		return openErr
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 10
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 25
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	if log != nil {
		log.Info("connected to database",
			"driver", cfg.Driver,
			"database", cfg.DBName,
			"max_idle_conns", maxIdleConns,
			"max_open_conns", maxOpenConns,
		)
	}

	return db, nil
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres:
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)
		return postgres.Open(dsn), nil
	case DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
