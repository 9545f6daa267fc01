package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLDSN returns MYSQL_DSN or a DSN assembled from the MYSQL_* parts.
func MySQLDSN() string {
	if dsn := v.GetString("MYSQL_DSN"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local",
		v.GetString("MYSQL_USER"), v.GetString("MYSQL_PASS"), v.GetString("MYSQL_HOST"),
		v.GetString("MYSQL_PORT"), v.GetString("MYSQL_DB"))
}

// NewDB opens the catalog/order database. DB_DRIVER=sqlite uses a local file,
// anything else MySQL.
func NewDB() (*gorm.DB, error) {
	logMode := logger.Warn
	switch v.GetString("GORM_LOG") {
	case "off":
		logMode = logger.Silent
	case "info":
		logMode = logger.Info
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logMode,
			Colorful:      true,
		},
	)

	var dialector gorm.Dialector
	if v.GetString("DB_DRIVER") == "sqlite" {
		dialector = sqlite.Open(v.GetString("SQLITE_PATH"))
	} else {
		dialector = mysql.Open(MySQLDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", v.GetString("DB_DRIVER"), err)
	}
	return db, nil
}
