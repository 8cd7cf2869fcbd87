package config

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func NewDB(cfg *Config) (*sqlx.DB, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		return NewPostgresDB(cfg)
	case "sqlite", "sqlite3":
		return NewSQLiteDB(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func NewPostgresDB(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// NewSQLiteDB opens path with foreign keys enforced. A single connection is
// used so ":memory:" databases survive across queries.
func NewSQLiteDB(path string) (*sqlx.DB, error) {
	if path == "" {
		path = "memoria.db"
	}
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=1"
	} else {
		dsn += "?_foreign_keys=1"
	}

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	return db, nil
}
