package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/oaiiae/contacts-api/datastores"
)

type StoreOptions struct {
	Driver string `doc:"contacts store from memory, sqlite or postgres" default:"memory"`
	DSN    string `doc:"data source name for sqlite and postgres"`
}

var errMissingDSN = errors.New("missing data source name")

// Store holds the contacts store and the database behind it, if any.
type Store struct {
	Contacts datastores.ContactsStore
	db       *sql.DB
}

// NewStore opens the contacts store selected by options.
func NewStore(ctx context.Context, options *StoreOptions, logger *slog.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(options.Driver) {
	case "", "memory":
		return &Store{Contacts: datastores.NewContactsInmem()}, nil
	case "sqlite":
		dialector = sqlite.Open(options.DSN)
	case "postgres":
		dialector = postgres.Open(options.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", options.Driver)
	}
	if options.DSN == "" {
		return nil, fmt.Errorf("%s: %w", options.Driver, errMissingDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormLogger.New(
			slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
			gormLogger.Config{
				SlowThreshold:             1 * time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", options.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dialector.Name() == "sqlite" {
		sqlDB.SetMaxOpenConns(1) // single writer
	}

	contacts, err := datastores.NewContactsGorm(ctx, db)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Store{Contacts: contacts, db: sqlDB}, nil
}

// Ping checks the database connection. Memory stores are always ready.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
