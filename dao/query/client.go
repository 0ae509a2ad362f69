package query

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/b0ase/portal/dao/model"
)

type clientDao struct {
	db *gorm.DB
}

func (d *clientDao) List(ctx context.Context, page Page) ([]*model.Client, int64, error) {
	db := d.db.WithContext(ctx).Model(&model.Client{}).Session(&gorm.Session{})
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, 0, translate(err, "count clients")
	}
	var rows []*model.Client
	if err := page.apply(db.Order("created_at DESC")).Find(&rows).Error; err != nil {
		return nil, 0, translate(err, "list clients")
	}
	return rows, count, nil
}

func (d *clientDao) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	var c model.Client
	email = model.NormalizeEmail(email)
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&c).Error; err != nil {
		return nil, translate(err, "get client "+email)
	}
	return &c, nil
}

// CreateIfAbsent inserts c unless a client with the same email exists, ignoring case.
// It reports whether a new row was written.
func (d *clientDao) CreateIfAbsent(ctx context.Context, c *model.Client) (bool, error) {
	c.Email = model.NormalizeEmail(c.Email)
	_, err := d.GetByEmail(ctx, c.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	res := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(c)
	if res.Error != nil {
		return false, translate(res.Error, "create client "+c.Email)
	}
	return res.RowsAffected > 0, nil
}
