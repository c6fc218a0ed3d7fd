// Package store implements the organisation directory on top of gorm:
// companies, departments, job roles, user assignments, users and settings.
package store

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("record already exists")
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// wrap translates gorm sentinel errors into store errors.
func wrap(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, msg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(ErrConflict, msg)
	default:
		return errors.Wrap(err, msg)
	}
}

func likePattern(search string) string {
	return "%" + search + "%"
}
