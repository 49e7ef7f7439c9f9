// Package store implements the repository contracts on GORM/Postgres.
//
// Soft deletion is uniform: every entity that supports it carries a
// gorm.DeletedAt column, so GORM's default scope excludes deleted rows from
// all lookups automatically; joined tables get an explicit deleted_at IS NULL
// predicate. Mutations that depend on a read-then-write decision (uniqueness
// re-checks, duplicate-assignment checks, attempt increments) run inside
// their own transaction.
package store

import (
	"context"
	"errors"

	"iam/internal/service"

	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// notFound maps GORM's sentinel onto the repository contract.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrNotFound
	}
	return err
}
