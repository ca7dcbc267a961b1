package database

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strings"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// OpenPostgres connects using the simple query protocol.
func OpenPostgres(dsn string, gormLogger logger.Interface) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      gormLogger,
	})
}

// sqlite's builtin lower only folds ASCII; replace it so LOWER(x) folds case the
// same way as LikePattern and postgres.
func init() {
	gosqlite.MustRegisterDeterministicScalarFunction("lower", 1, unicodeLower)
}

func unicodeLower(_ *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return string(bytes.ToLower(v)), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// OpenSQLite opens a pure Go sqlite database. ":memory:" databases are pinned to
// a single connection since every connection gets its own in-memory database.
func OpenSQLite(path string, gormLogger logger.Interface) (*gorm.DB, error) {
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// UseReplica routes reads to a postgres replica while writes stay on the primary.
func UseReplica(db *gorm.DB, replicaDSN string) error {
	if replicaDSN == "" {
		return nil
	}
	return db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{postgres.New(postgres.Config{
			DSN:                  replicaDSN,
			PreferSimpleProtocol: true,
		})},
		Policy:            dbresolver.RandomPolicy{},
		TraceResolverMode: true,
	}))
}
