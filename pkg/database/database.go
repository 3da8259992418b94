package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/octostats/octostats/pkg/config"
	"github.com/octostats/octostats/pkg/logger"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// Init opens the SQLite database (creating it if needed) and runs migrations.
func Init() error {
	var err error

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_busy_timeout=30000", config.AppConfig.Database.Path)
	DB, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(10)
	DB.SetConnMaxLifetime(time.Hour)

	if err = DB.Ping(); err != nil {
		return err
	}

	if err = runMigrations(); err != nil {
		return err
	}

	logger.Info("Database connected")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// runMigrations executes every .sql file in the migrations directory in
// lexical order.
func runMigrations() error {
	sqlDir := "migrations"
	files, err := os.ReadDir(sqlDir)
	if err != nil {
		return err
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) != ".sql" {
			continue
		}
		sqlContent, err := os.ReadFile(filepath.Join(sqlDir, file.Name()))
		if err != nil {
			return err
		}
		if _, err = DB.Exec(string(sqlContent)); err != nil {
			return fmt.Errorf("migration %s: %w", file.Name(), err)
		}
		logger.Debugf("Executed migration %s", file.Name())
	}

	return nil
}
