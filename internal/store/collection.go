// Package store holds the entity collections. Each Collection owns one table
// and exposes the list/get/append/replace/remove operations the services build on.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// Scope narrows a List or Count, e.g. store.Eq("project_id", 3).
type Scope = func(*gorm.DB) *gorm.DB

type Collection[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Collection[T] {
	return &Collection[T]{db: db}
}

// WithTx binds the collection to a running transaction.
func (c *Collection[T]) WithTx(tx *gorm.DB) *Collection[T] {
	return &Collection[T]{db: tx}
}

func (c *Collection[T]) DB() *gorm.DB {
	return c.db
}

// List returns matching records in insertion order. Scopes may add their own
// ordering, which takes precedence over id.
func (c *Collection[T]) List(ctx context.Context, scopes ...Scope) ([]T, error) {
	items := make([]T, 0)
	if err := apply(c.db.WithContext(ctx), scopes).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Collection[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	err := apply(c.db.WithContext(ctx).Model(new(T)), scopes).Count(&n).Error
	return n, err
}

func (c *Collection[T]) Get(ctx context.Context, id uint) (*T, error) {
	item := new(T)
	if err := c.db.WithContext(ctx).First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

// Lock reads the record under a row lock. On a collection bound with WithTx the
// lock is held until the transaction ends, so the record cannot be removed
// while dependent rows are written.
func (c *Collection[T]) Lock(ctx context.Context, id uint) (*T, error) {
	item := new(T)
	if err := lockRow(c.db.WithContext(ctx), item, id); err != nil {
		return nil, err
	}
	return item, nil
}

// Create appends the record. The primary key comes from the table's
// auto-increment sequence, so ids of removed records are never handed out again.
func (c *Collection[T]) Create(ctx context.Context, item *T) error {
	return c.db.WithContext(ctx).Create(item).Error
}

// Update loads the record under a row lock, applies mutate and saves the result
// in the same transaction. If mutate fails nothing is written.
func (c *Collection[T]) Update(ctx context.Context, id uint, mutate func(*T) error) (*T, error) {
	item := new(T)
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, item, id); err != nil {
			return err
		}
		if err := mutate(item); err != nil {
			return err
		}
		return tx.Save(item).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the record and returns it as it was.
func (c *Collection[T]) Delete(ctx context.Context, id uint) (*T, error) {
	item := new(T)
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, item, id); err != nil {
			return err
		}
		res := tx.Delete(item)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func lockRow(db *gorm.DB, item interface{}, id uint) error {
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// apply runs the scopes immediately. gorm defers Scopes until execution,
// which would put a scope's ordering behind id.
func apply(db *gorm.DB, scopes []Scope) *gorm.DB {
	for _, scope := range scopes {
		db = scope(db)
	}
	return db
}

// Eq filters on column = value.
func Eq(column string, value interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
}

// Between filters on lo <= column <= hi.
func Between(column string, lo, hi interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.And(
			clause.Gte{Column: clause.Column{Name: column}, Value: lo},
			clause.Lte{Column: clause.Column{Name: column}, Value: hi},
		))
	}
}

// In filters on column IN values.
func In(column string, values interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.IN{Column: clause.Column{Name: column}, Values: toSlice(values)})
	}
}

// OrderBy puts the given column ahead of the default id ordering.
func OrderBy(column string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}})
	}
}

func toSlice(values interface{}) []interface{} {
	switch v := values.(type) {
	case []uint:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []string:
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []interface{}:
		return v
	default:
		return []interface{}{values}
	}
}
