package query

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/logutils"
)

var (
	once     sync.Once
	instance *gorm.DB
)

// GetDB returns the singleton instance of the database connection.
func GetDB() *gorm.DB {
	once.Do(func() {
		dbConfig := config.GetConfig()

		var err error
		instance, err = Open(dbConfig)
		if err != nil {
			panic(err)
		}
		logutils.Log.Info("Postgres init success!")
	})
	return instance
}

// Open connects to Postgres with the pool settings used across the service.
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	maxIdleConns := 5
	maxOpenConns := 10
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// DSN prefers a full connection URL (DATABASE_URL) over the discrete fields.
func DSN(cfg *config.Config) string {
	if cfg.Postgres.URL != "" {
		return cfg.Postgres.URL
	}
	p := cfg.Postgres
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode, p.TimeZone)
}
