package database

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrNotFound   = gorm.ErrRecordNotFound
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}
