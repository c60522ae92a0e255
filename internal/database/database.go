package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"auto_service_backend/pkg/utils"
)

//go:embed schema.sql
var schemaSQL string

var DB *sqlx.DB

// InitDB opens the Postgres pool, pings it and optionally applies the embedded schema.
func InitDB(dsn string, applySchemaOnStart bool) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	utils.LogInfo("Successfully connected to the database")

	if applySchemaOnStart {
		if err := applySchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	DB = db
	return db, nil
}

// applySchema executes the embedded schema. Every statement is idempotent.
func applySchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied")
	return nil
}

// GetDB returns the database connection pool
func GetDB() *sqlx.DB {
	return DB
}
