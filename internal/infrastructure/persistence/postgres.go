package persistence

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewPostgres opens a GORM connection to PostgreSQL. SQL logging is only
// enabled when debug is set.
func NewPostgres(dsn string, debug bool) (*gorm.DB, error) {
	logMode := gormlogger.Silent
	if debug {
		logMode = gormlogger.Info
	}

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logMode),
		TranslateError: true,
	})
}
