package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

// Store is the gorm backed resource.Store. T must be a pointer to a gorm
// model, e.g. *identity.User.
type Store[T identity.Document] struct {
	db        *gorm.DB
	newRecord func() T
}

func NewStore[T identity.Document](db *gorm.DB, newRecord func() T) *Store[T] {
	return &Store[T]{db: db, newRecord: newRecord}
}

func (s *Store[T]) List(ctx context.Context, populate ...string) ([]T, error) {
	var records []T
	err := preload(s.db.WithContext(ctx), populate).Order("created_at ASC").Find(&records).Error
	if err != nil {
		return nil, translate(err)
	}
	return records, nil
}

func (s *Store[T]) Get(ctx context.Context, id string, populate ...string) (T, error) {
	rec := s.newRecord()
	err := preload(s.db.WithContext(ctx), populate).Where("id = ?", id).First(rec).Error
	if err != nil {
		var zero T
		return zero, translate(err)
	}
	return rec, nil
}

func (s *Store[T]) Create(ctx context.Context, rec T) error {
	return translate(s.db.WithContext(ctx).Create(rec).Error)
}

// Update writes every column of rec, zero values included, except the
// omitted ones. Associations are never written here.
func (s *Store[T]) Update(ctx context.Context, rec T, omit ...string) error {
	omitted := append([]string{clause.Associations}, omit...)
	result := s.db.WithContext(ctx).
		Model(rec).
		Select("*").
		Omit(omitted...).
		Updates(rec)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return resource.ErrNotFound
	}
	return nil
}

// Delete removes rec and the join rows of the named associations.
func (s *Store[T]) Delete(ctx context.Context, rec T, associations ...string) error {
	q := s.db.WithContext(ctx)
	if len(associations) > 0 {
		q = q.Select(associations)
	}
	result := q.Delete(rec)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return resource.ErrNotFound
	}
	return nil
}

func preload(q *gorm.DB, populate []string) *gorm.DB {
	for _, p := range populate {
		q = q.Preload(p)
	}
	return q
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return resource.ErrNotFound
	case IsDuplicate(err):
		return fmt.Errorf("%w: %v", resource.ErrDuplicate, err)
	}
	return err
}

// IsDuplicate recognizes unique index violations from Postgres and SQLite,
// whether or not gorm translated them.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
