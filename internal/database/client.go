// Package database opens PostgreSQL connections through GORM with logging
// routed to the application's zap logger.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/horologium/internal/log"
	"go.uber.org/zap"
)

// Client holds a connection to a PostgreSQL database
type Client struct {
	connectionString string
	DB               *gorm.DB // Exported so it can be accessed from other packages
	logger           *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	return &Client{
		connectionString: connectionString,
		logger:           logger,
	}
}

// Connect connects to the database
func (c *Client) Connect() error {
	if c.connectionString == "" {
		return fmt.Errorf("no connection string configured")
	}

	c.logger.Info("connecting to PostgreSQL...")
	db, err := gorm.Open(postgres.Open(c.connectionString), &gorm.Config{Logger: gormLogger()})
	if err != nil {
		c.logger.Warnf("unable to create a PostgreSQL connection: %v", err)
		return fmt.Errorf("error connecting to PostgreSQL: %w", err)
	}
	c.DB = db
	c.logger.Info("PostgreSQL connection successful")

	return nil
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func gormLogger() logger.Interface {
	return logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,        // Missing days fall back, not an error
			Colorful:                  false,
		},
	)
}
