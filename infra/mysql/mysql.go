package mysqldb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fazamuttaqien/cards/config"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DatabaseConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
	Charset      string
	ParseTime    bool
	Loc          string
}

// ConfigFromApp builds the connection settings from the service config.
func ConfigFromApp(cfg *config.Config) *DatabaseConfig {
	port, err := strconv.Atoi(cfg.MYSQL_PORT)
	if err != nil {
		port = 3306
	}

	return &DatabaseConfig{
		Host:         cfg.MYSQL_HOST,
		Port:         port,
		Username:     cfg.MYSQL_USER,
		Password:     cfg.MYSQL_PASSWORD,
		DatabaseName: cfg.MYSQL_DBNAME,
		Charset:      cfg.MYSQL_CHARSET,
		ParseTime:    cfg.MYSQL_PARSE_TIME,
		Loc:          cfg.MYSQL_LOC,
	}
}

func (c *DatabaseConfig) BuildDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Username, c.Password, c.Host, c.Port,
		c.DatabaseName, c.Charset, c.ParseTime, c.Loc,
	)
}

func Connect(c *DatabaseConfig, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(mysql.Open(c.BuildDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func ConnectWithRetry(c *DatabaseConfig, debug bool, maxRetries int, retryDelay time.Duration) (*gorm.DB, error) {
	var lastErr error
	for i := range maxRetries {
		db, err := Connect(c, debug)
		if err == nil {
			zap.L().Info("Connected to MySQL",
				zap.Int("attempt", i+1),
				zap.String("host", c.Host),
				zap.String("database", c.DatabaseName),
			)
			return db, nil
		}
		lastErr = err

		zap.L().Warn("Failed to connect to MySQL",
			zap.Int("attempt", i+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)

		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
}

func Close(db *gorm.DB, ctx context.Context) error {
	sqlDB, err := db.WithContext(ctx).DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return sqlDB.Close()
}

func Ping(db *gorm.DB, ctx context.Context) error {
	sqlDB, err := db.WithContext(ctx).DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return sqlDB.PingContext(ctx)
}

func GetStats(db *gorm.DB) map[string]any {
	sqlDB, err := db.DB()
	if err != nil {
		return map[string]any{
			"error": err.Error(),
		}
	}

	stats := sqlDB.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
	}
}

// InitializeDatabase connects with five attempts two seconds apart. SQL
// logging follows DEV_MODE.
func InitializeDatabase(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithRetry(ConfigFromApp(cfg), cfg.DEV_MODE, 5, 2*time.Second)
}
