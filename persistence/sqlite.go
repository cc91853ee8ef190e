package persistence

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openSQLite opens a sqlite database file (or a "file:...?mode=memory" DSN). sqlite allows a single writer, so all
// access is serialized on one connection; callers must not use the outer Persister inside Transaction.
func openSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
