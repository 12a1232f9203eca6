package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/wanderlust-backend/pkg/db"
)

// Base provides a shared foundation for the catalog, booking and intent repositories.
type Base struct {
	conn *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}

// FirstOrNil runs query.First into a new T. A missing row is (nil, nil).
func FirstOrNil[T any](query *gorm.DB, conds ...any) (*T, error) {
	var out T
	if err := query.First(&out, conds...).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
