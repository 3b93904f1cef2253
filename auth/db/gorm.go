package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypePostgres  DatabaseType = "postgres"
	DatabaseTypeOracle    DatabaseType = "oracle"
	DatabaseTypeMySQL     DatabaseType = "mysql"
	DatabaseTypeSQLServer DatabaseType = "sqlserver"
	DatabaseTypeSQLite    DatabaseType = "sqlite"
)

// Pool defaults
const (
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 2
	DefaultConnMaxLifetime = 4 * time.Minute
	DefaultConnMaxIdleTime = 30 * time.Second
)

// GormConfig holds the configuration for a GORM database connection.
// Host/Port/User/Password/Database apply to the network databases; SQLitePath
// is a file path or ":memory:".
type GormConfig struct {
	Type     DatabaseType
	Host     string
	Port     string
	User     string
	Password string //nolint:gosec // database password
	Database string
	SSLMode  string

	OracleConnectString  string
	OracleWalletLocation string

	SQLitePath string

	// Tracing installs the OpenTelemetry GORM plugin.
	Tracing bool
}

// GormDB wraps a GORM connection for any of the supported databases
type GormDB struct {
	db  *gorm.DB
	cfg GormConfig
}

// Dialector builds the gorm dialector for cfg
func (cfg GormConfig) Dialector() (gorm.Dialector, error) {
	switch cfg.Type {
	case DatabaseTypePostgres:
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return postgres.Open(fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode,
		)), nil
	case DatabaseTypeMySQL:
		// parseTime=true is required for time.Time scanning
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)), nil
	case DatabaseTypeSQLServer:
		return sqlserver.Open(fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)), nil
	case DatabaseTypeSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(path), nil
	case DatabaseTypeOracle:
		dialector := getOracleDialector(cfg)
		if dialector == nil {
			return nil, fmt.Errorf("oracle support not compiled in (build with -tags oracle)")
		}
		return dialector, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// NewGormDB opens a connection, configures the pool and pings the server
func NewGormDB(cfg GormConfig) (*GormDB, error) {
	log := slogging.Get()
	log.Debug("Initializing GORM connection for database type: %s", cfg.Type)

	dialector, err := cfg.Dialector()
	if err != nil {
		return nil, err
	}

	gdb, err := OpenDialector(dialector, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Type != DatabaseTypeSQLite {
		sqlDB.SetMaxOpenConns(DefaultMaxOpenConns)
		sqlDB.SetMaxIdleConns(DefaultMaxIdleConns)
		sqlDB.SetConnMaxLifetime(DefaultConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(DefaultConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Error("Failed to ping database: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Debug("GORM connection established successfully")

	return gdb, nil
}

// OpenDialector opens a GORM connection on an existing dialector. Tests use
// it with sqlite or sqlmock-backed dialectors.
func OpenDialector(dialector gorm.Dialector, cfg GormConfig) (*GormDB, error) {
	log := slogging.Get()

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	if err != nil {
		log.Error("Failed to open GORM connection: %v", err)
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	if cfg.Type == DatabaseTypeSQLite {
		// every sqlite :memory: connection is a separate database
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if cfg.Tracing {
		if err := db.Use(otelgorm.NewPlugin()); err != nil {
			return nil, fmt.Errorf("failed to install gorm tracing: %w", err)
		}
	}

	return &GormDB{db: db, cfg: cfg}, nil
}

// Close closes the database connection
func (g *GormDB) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("error closing database connection: %w", err)
	}
	return nil
}

// DB returns the GORM database instance
func (g *GormDB) DB() *gorm.DB {
	return g.db
}

// DatabaseType returns the configured database type
func (g *GormDB) DatabaseType() DatabaseType {
	return g.cfg.Type
}

// Ping checks if the database connection is alive
func (g *GormDB) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// LogStats logs statistics about the database connection pool
func (g *GormDB) LogStats() {
	log := slogging.Get()

	sqlDB, err := g.db.DB()
	if err != nil {
		log.Error("Failed to get underlying sql.DB for stats: %v", err)
		return
	}

	stats := sqlDB.Stats()
	log.Debug("GORM connection pool stats: open=%d, inUse=%d, idle=%d, waitCount=%d, waitDuration=%s",
		stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount, stats.WaitDuration)
}

// AutoMigrate runs GORM auto-migration for the given models
func (g *GormDB) AutoMigrate(models ...any) error {
	log := slogging.Get()
	log.Debug("Running GORM auto-migration for %d models", len(models))

	if err := g.db.AutoMigrate(models...); err != nil {
		// ORA-01442: column is already NOT NULL, schema already in the desired state
		if g.cfg.Type == DatabaseTypeOracle && strings.Contains(err.Error(), "ORA-01442") {
			log.Warn("Oracle migration warning ignored: column already NOT NULL")
			return nil
		}
		log.Error("GORM auto-migration failed: %v", err)
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Info("Database schema migrated (%d models)", len(models))
	return nil
}

// gormLogger adapts slogging to GORM's logger interface
type gormLogger struct {
	log *slogging.Logger
}

func newGormLogger(log *slogging.Logger) logger.Interface {
	return &gormLogger{log: log}
}

func (l *gormLogger) LogMode(logger.LogLevel) logger.Interface {
	return l
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...any) {
	l.log.Info(msg, data...)
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...any) {
	l.log.Warn(msg, data...)
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...any) {
	l.log.Error(msg, data...)
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err == nil:
		l.log.Debug("GORM query: %s (%d rows, %s)", sql, rows, elapsed)
	case IsNotFound(err), IsUniqueViolation(err):
		// expected outcomes, reported by the caller
		l.log.Debug("GORM query: %s (%v, %s)", sql, err, elapsed)
	default:
		l.log.Error("GORM query error: %v [%s] (%d rows, %s)", err, sql, rows, elapsed)
	}
}
