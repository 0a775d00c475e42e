package database

import (
	"fmt"
	"strings"

	"github.com/Amund211/timba/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const DB_NAME = "timba"

const LOCAL_CONNECTION_STRING = "user=postgres password=postgres dbname=timba sslmode=disable"

const MAIN_SCHEMA = "timba"
const TESTING_SCHEMA = "timba_test"

func GetSchemaName(isTesting bool) string {
	if isTesting {
		return TESTING_SCHEMA
	}
	return MAIN_SCHEMA
}

func NewPostgresDatabase(connectionString string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	err = createDatabaseIfNotExists(db, DB_NAME)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	return db, nil
}

func NewPostgresDatabaseFromConfig(conf config.Config) (*sqlx.DB, error) {
	var connectionString string
	if conf.IsDevelopment() && conf.DBHost() == "" {
		connectionString = LOCAL_CONNECTION_STRING
	} else {
		connectionString = GetConnectionString(conf.DBHost(), conf.DBUsername(), conf.DBPassword())
	}

	db, err := NewPostgresDatabase(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres database: %w", err)
	}

	return db, nil
}

// Build a lib/pq key/value connection string. A host starting with / is a unix socket directory.
func GetConnectionString(host, username, password string) string {
	sslMode := "require"
	if strings.HasPrefix(host, "/") {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s sslmode=%s",
		quoteConnectionValue(host),
		quoteConnectionValue(username),
		quoteConnectionValue(password),
		DB_NAME,
		sslMode,
	)
}

func quoteConnectionValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}

func createDatabaseIfNotExists(db *sqlx.DB, dbName string) error {
	row := db.QueryRowx("SELECT COUNT(*) FROM pg_database WHERE datname = $1", dbName)
	if row.Err() != nil {
		return fmt.Errorf("createDB: failed to check if database exists: %w", row.Err())
	}

	var count int
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("createDB: failed to scan row: %w", err)
	}

	if count > 0 {
		return nil
	}

	_, err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName)))
	if err != nil {
		return fmt.Errorf("createDB: failed to create database: %w", err)
	}

	return nil
}
