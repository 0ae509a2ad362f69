package query

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/b0ase/portal/dao/model"
)

type projectLoginDao struct {
	db *gorm.DB
}

func (d *projectLoginDao) List(ctx context.Context) ([]*model.ProjectLogin, error) {
	var rows []*model.ProjectLogin
	err := d.db.WithContext(ctx).Order("project_slug ASC").Find(&rows).Error
	return rows, translate(err, "list project logins")
}

func (d *projectLoginDao) GetBySlug(ctx context.Context, slug string) (*model.ProjectLogin, error) {
	var l model.ProjectLogin
	if err := d.db.WithContext(ctx).Where("project_slug = ?", slug).First(&l).Error; err != nil {
		return nil, translate(err, "get project login "+slug)
	}
	return &l, nil
}

func (d *projectLoginDao) Create(ctx context.Context, l *model.ProjectLogin) error {
	_, err := d.GetBySlug(ctx, l.ProjectSlug)
	if err == nil {
		return fmt.Errorf("project login %s: %w", l.ProjectSlug, ErrDuplicate)
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return translate(d.db.WithContext(ctx).Create(l).Error, "create project login "+l.ProjectSlug)
}

func (d *projectLoginDao) UpdatePassword(ctx context.Context, slug, passwordHash string) error {
	res := d.db.WithContext(ctx).
		Model(&model.ProjectLogin{}).
		Where("project_slug = ?", slug).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return translate(res.Error, "update project login "+slug)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project login %s: %w", slug, ErrNotFound)
	}
	return nil
}

func (d *projectLoginDao) DeleteBySlug(ctx context.Context, slug string) error {
	res := d.db.WithContext(ctx).Where("project_slug = ?", slug).Delete(&model.ProjectLogin{})
	if res.Error != nil {
		return translate(res.Error, "delete project login "+slug)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("project login %s: %w", slug, ErrNotFound)
	}
	return nil
}

type projectAccessDao struct {
	db *gorm.DB
}

// Append writes one access record. Rows are never updated or deleted.
func (d *projectAccessDao) Append(ctx context.Context, a *model.ProjectAccess) error {
	return translate(d.db.WithContext(ctx).Create(a).Error, "append project access "+a.ProjectSlug)
}

func (d *projectAccessDao) ListBySlug(ctx context.Context, slug string, page Page) ([]*model.ProjectAccess, error) {
	var rows []*model.ProjectAccess
	db := d.db.WithContext(ctx).Where("project_slug = ?", slug).Order("accessed_at DESC")
	err := page.apply(db).Find(&rows).Error
	return rows, translate(err, "list project access "+slug)
}

func (d *projectAccessDao) CountBySlug(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.ProjectAccess{}).Where("project_slug = ?", slug).Count(&count).Error
	return count, translate(err, "count project access "+slug)
}
