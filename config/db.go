package config

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is a global variable to hold the database connection
var DB *gorm.DB

// Connect opens the postgres connection and stores it in DB.
// TranslateError maps driver-specific constraint violations onto
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated so callers can use
// errors.Is regardless of the backend.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	DB = db
	return db, nil
}
