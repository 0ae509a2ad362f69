package query

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusConflict = errors.New("status conflict")
	ErrDuplicate      = errors.New("duplicate record")
)

// Query groups the table accessors that share one *gorm.DB (or one transaction).
type Query struct {
	db *gorm.DB

	ClientRequest *clientRequestDao
	Client        *clientDao
	ProjectLogin  *projectLoginDao
	ProjectAccess *projectAccessDao
	Diary         *diaryDao
}

// Q is the default instance, set once at startup with SetDefault.
var Q = new(Query)

func SetDefault(db *gorm.DB) {
	*Q = *Use(db)
}

func Use(db *gorm.DB) *Query {
	return &Query{
		db:            db,
		ClientRequest: &clientRequestDao{db: db},
		Client:        &clientDao{db: db},
		ProjectLogin:  &projectLoginDao{db: db},
		ProjectAccess: &projectAccessDao{db: db},
		Diary:         &diaryDao{db: db},
	}
}

func (q *Query) DB() *gorm.DB { return q.db }

// Transaction runs fn with a Query bound to a single transaction.
func (q *Query) Transaction(ctx context.Context, fn func(tx *Query) error) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Use(tx))
	})
}

// Page is an offset/limit window; a zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	return db
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
